package csvsource

import (
	"math"
	"strconv"
	"strings"
	"time"

	"review_sentiment/internal/domain"
)

// Field coercion. A value that is empty or cannot be parsed becomes nil;
// only the Id column is strict.

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optInt accepts "5", " 5 " and "5.0" (pandas writes integer columns with
// missing values as floats).
func optInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
		n := int(f)
		return &n
	}
	return nil
}

func optFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}

// optEpoch converts UNIX seconds to a UTC time.
func optEpoch(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || f < float64(domain.MinEpoch) || f > float64(domain.MaxEpoch) {
			return nil
		}
		secs = int64(f)
	}
	return domain.TimeFromEpoch(secs)
}

func optLabel(s string) *domain.Label {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	l := domain.Label(s)
	return &l
}

func parseID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrSyntax
	}
	return int64(f), nil
}
