// Package csvsource loads review tables from delimited files, local or
// remote, into schema-tagged domain tables.
package csvsource

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"review_sentiment/internal/domain"
)

// Opener opens a remote dataset (remote.Client satisfies it).
type Opener interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Source reads the file at Path on every Load. A path for which IsRemote
// returns true is opened through Remote.
type Source struct {
	Path     string
	Remote   Opener
	IsRemote func(path string) bool
}

func New(path string, remote Opener, isRemote func(string) bool) *Source {
	return &Source{Path: path, Remote: remote, IsRemote: isRemote}
}

func (s *Source) Load(ctx context.Context) (domain.Table, error) {
	rc, err := s.open(ctx)
	if err != nil {
		return domain.Table{}, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer rc.Close()

	t, err := Read(rc)
	if err != nil {
		return domain.Table{}, fmt.Errorf("read %s: %w", s.Path, err)
	}
	log.Debug().Str("path", s.Path).Int("rows", t.Len()).Msg("source loaded")
	return t, nil
}

func (s *Source) open(ctx context.Context) (io.ReadCloser, error) {
	if s.IsRemote != nil && s.IsRemote(s.Path) {
		if s.Remote == nil {
			return nil, errors.New("remote path without a remote client")
		}
		return s.Remote.Open(ctx, s.Path)
	}
	return os.Open(s.Path)
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// Read parses a CSV stream with a header row. Structural problems (ragged
// rows, bad quoting) and unparsable Id values are errors; other malformed
// fields become missing values.
func Read(r io.Reader) (domain.Table, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, bom) {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.Table{}, domain.ErrEmptySource
	}
	if err != nil {
		return domain.Table{}, err
	}

	idx, schema := resolveHeader(header)
	if !schema.ID {
		return domain.Table{}, fmt.Errorf("%w: %s", domain.ErrMissingColumn, domain.ColID)
	}

	var rows []domain.Review
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Table{}, err
		}
		line, _ := cr.FieldPos(0)
		rv, err := decodeRow(rec, idx)
		if err != nil {
			return domain.Table{}, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, rv)
	}
	return domain.Table{Schema: schema, Rows: rows}, nil
}

// resolveHeader maps known columns to record positions. Names match exactly
// first, then case-insensitively; the first occurrence wins.
func resolveHeader(header []string) (map[domain.Column]int, domain.Schema) {
	idx := make(map[domain.Column]int, len(domain.AnnotatedColumns))
	var schema domain.Schema
	for _, c := range domain.AnnotatedColumns {
		pos := -1
		for i, h := range header {
			if strings.TrimSpace(h) == string(c) {
				pos = i
				break
			}
		}
		if pos < 0 {
			for i, h := range header {
				if strings.EqualFold(strings.TrimSpace(h), string(c)) {
					pos = i
					break
				}
			}
		}
		if pos >= 0 {
			idx[c] = pos
			schema.Set(c)
		}
	}
	return idx, schema
}

func decodeRow(rec []string, idx map[domain.Column]int) (domain.Review, error) {
	get := func(c domain.Column) (string, bool) {
		i, ok := idx[c]
		if !ok || i >= len(rec) {
			return "", false
		}
		return rec[i], true
	}

	var rv domain.Review
	raw, _ := get(domain.ColID)
	id, err := parseID(raw)
	if err != nil {
		return domain.Review{}, fmt.Errorf("invalid Id %q", raw)
	}
	rv.ID = id

	// cloned so retained fields do not pin the whole record line
	if v, ok := get(domain.ColProductID); ok {
		rv.ProductID = optString(strings.Clone(v))
	}
	if v, ok := get(domain.ColUserID); ok {
		rv.UserID = optString(strings.Clone(v))
	}
	if v, ok := get(domain.ColScore); ok {
		rv.Score = optInt(v)
	}
	if v, ok := get(domain.ColTime); ok {
		rv.Time = optEpoch(v)
	}
	if v, ok := get(domain.ColSummary); ok {
		rv.Summary = optString(strings.Clone(v))
	}
	if v, ok := get(domain.ColText); ok {
		rv.Text = optString(strings.Clone(v))
	}
	if v, ok := get(domain.ColCleanedText); ok {
		// an empty cleaned text is a valid value, not a missing one
		s := strings.Clone(v)
		rv.CleanedText = &s
	}
	if v, ok := get(domain.ColSentimentScore); ok {
		rv.SentimentScore = optFloat(v)
	}
	if v, ok := get(domain.ColSentimentLabel); ok {
		rv.SentimentLabel = optLabel(v)
	}
	return rv, nil
}
