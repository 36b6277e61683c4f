package domain

import "time"

// Review is one row of the review table. Optional fields are nil when the
// source value was missing or could not be coerced.
type Review struct {
	ID        int64
	ProductID *string
	UserID    *string
	Score     *int
	Time      *time.Time // converted from UNIX seconds at load time
	Summary   *string
	Text      *string

	// derived by the annotator
	CleanedText    *string
	SentimentScore *float64
	SentimentLabel *Label
}

// Label is the three-way sentiment class stored in SentimentLabel.
type Label string

const (
	Positive Label = "Positive"
	Negative Label = "Negative"
	Neutral  Label = "Neutral"
)

// LabelFor maps a polarity to its label. Strict inequalities, so 0.0 and
// -0.0 are Neutral.
func LabelFor(score float64) Label {
	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}

func (l Label) String() string { return string(l) }

// Review times are UNIX seconds within 1970-01-01 .. 9999-12-31 UTC.
const (
	MinEpoch int64 = 0
	MaxEpoch int64 = 253402300799
)

// TimeFromEpoch converts UNIX seconds to a UTC time. Values outside
// [MinEpoch, MaxEpoch] are treated as missing.
func TimeFromEpoch(secs int64) *time.Time {
	if secs < MinEpoch || secs > MaxEpoch {
		return nil
	}
	t := time.Unix(secs, 0).UTC()
	return &t
}
