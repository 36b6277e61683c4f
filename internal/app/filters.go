package app

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"review_sentiment/internal/domain"
)

// AllChoice is the select value meaning "no constraint".
const AllChoice = "All"

// Filters are the explorer's three AND-combined predicates. Zero values are
// unconstrained.
type Filters struct {
	Sentiment domain.Label `json:"sentiment,omitempty"`
	Score     *int         `json:"score,omitempty"`
	Product   string       `json:"product,omitempty"` // case-insensitive substring
}

// ParseFilters reads raw control values; "All" and "" mean unconstrained.
func ParseFilters(sentiment, score, product string) (Filters, error) {
	var f Filters
	if sentiment != "" && sentiment != AllChoice {
		f.Sentiment = domain.Label(sentiment)
	}
	if score != "" && score != AllChoice {
		n, err := strconv.Atoi(strings.TrimSpace(score))
		if err != nil {
			return Filters{}, fmt.Errorf("%w: score %q is not an integer", domain.ErrInvalidFilter, score)
		}
		f.Score = &n
	}
	f.Product = product
	return f, nil
}

func (f Filters) key() string {
	q := url.Values{}
	q.Set("s", string(f.Sentiment))
	if f.Score != nil {
		q.Set("n", strconv.Itoa(*f.Score))
	}
	q.Set("p", f.Product)
	return q.Encode()
}

// effective drops predicates whose column is absent from the schema.
func (f Filters) effective(s domain.Schema) Filters {
	if !s.SentimentLabel {
		f.Sentiment = ""
	}
	if !s.Score {
		f.Score = nil
	}
	if !s.ProductID {
		f.Product = ""
	}
	return f
}

// Apply returns the rows matching every enabled predicate, in source order.
func Apply(t domain.Table, f Filters) []domain.Review {
	f = f.effective(t.Schema)
	needle := strings.ToLower(f.Product)

	out := make([]domain.Review, 0, len(t.Rows))
	for _, r := range t.Rows {
		if f.Sentiment != "" && (r.SentimentLabel == nil || *r.SentimentLabel != f.Sentiment) {
			continue
		}
		if f.Score != nil && (r.Score == nil || *r.Score != *f.Score) {
			continue
		}
		if needle != "" && (r.ProductID == nil || !strings.Contains(strings.ToLower(*r.ProductID), needle)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Options lists which filters are offered and their choices.
type Options struct {
	Total int `json:"total"`

	SentimentEnabled bool           `json:"sentiment_enabled"`
	Sentiments       []domain.Label `json:"sentiments,omitempty"`
	ScoreEnabled     bool           `json:"score_enabled"`
	Scores           []int          `json:"scores,omitempty"`
	ProductEnabled   bool           `json:"product_enabled"`
}

func optionsFor(t domain.Table) Options {
	o := Options{
		Total:            t.Len(),
		SentimentEnabled: t.Schema.SentimentLabel,
		ScoreEnabled:     t.Schema.Score,
		ProductEnabled:   t.Schema.ProductID,
	}
	if o.SentimentEnabled {
		seen := map[domain.Label]bool{}
		for _, r := range t.Rows {
			if r.SentimentLabel != nil && !seen[*r.SentimentLabel] {
				seen[*r.SentimentLabel] = true
				o.Sentiments = append(o.Sentiments, *r.SentimentLabel)
			}
		}
		slices.Sort(o.Sentiments)
	}
	if o.ScoreEnabled {
		seen := map[int]bool{}
		for _, r := range t.Rows {
			if r.Score != nil && !seen[*r.Score] {
				seen[*r.Score] = true
				o.Scores = append(o.Scores, *r.Score)
			}
		}
		slices.Sort(o.Scores)
	}
	return o
}
