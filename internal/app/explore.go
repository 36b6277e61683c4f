package app

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"review_sentiment/internal/domain"
)

// MaxDetailRows caps the details table.
const MaxDetailRows = 10

// MaxMonthlyBins bounds the contiguous monthly series. Wider spans keep only
// the months that have reviews.
const MaxMonthlyBins = 1200

// DetailColumns are shown in the details table when present, in this order.
var DetailColumns = []domain.Column{domain.ColSummary, domain.ColCleanedText, domain.ColSentimentLabel, domain.ColScore}

type DetailRow struct {
	Summary        *string       `json:"Summary,omitempty"`
	CleanedText    *string       `json:"CleanedText,omitempty"`
	SentimentLabel *domain.Label `json:"SentimentLabel,omitempty"`
	Score          *int          `json:"Score,omitempty"`
}

type LabelCount struct {
	Label domain.Label `json:"label"`
	Count int          `json:"count"`
}

// MonthBin is one calendar month (UTC). Mean is nil when the month has no
// scored reviews.
type MonthBin struct {
	Month string   `json:"month"` // 2006-01
	Count int      `json:"count"`
	Mean  *float64 `json:"mean,omitempty"`
}

// View is the explorer's answer for one filter selection. Chart series are
// nil when their column is absent or the result is empty.
type View struct {
	Generation string  `json:"generation"`
	Filters    Filters `json:"filters"`
	Total      int     `json:"total"`
	Empty      bool    `json:"empty"`

	Columns []domain.Column `json:"columns,omitempty"`
	Rows    []DetailRow     `json:"rows,omitempty"`

	ScoreHistogram     []domain.ScoreCount `json:"score_histogram,omitempty"`
	SentimentHistogram []LabelCount        `json:"sentiment_histogram,omitempty"`
	MonthlyCount       []MonthBin          `json:"monthly_count,omitempty"`
	MonthlyScore       []MonthBin          `json:"monthly_score,omitempty"`
}

type ExplorerService struct {
	data     *DatasetCache
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewExplorerService(d *DatasetCache, c domain.Cache, ttl time.Duration) *ExplorerService {
	if c == nil {
		c = NopCache{}
	}
	return &ExplorerService{data: d, cache: c, cacheTTL: ttl}
}

func (s *ExplorerService) Options(ctx context.Context) (Options, error) {
	ds, err := s.data.Get(ctx)
	if err != nil {
		return Options{}, err
	}
	return optionsFor(ds.Table), nil
}

func (s *ExplorerService) View(ctx context.Context, f Filters) (View, error) {
	ds, err := s.data.Get(ctx)
	if err != nil {
		return View{}, err
	}
	f = f.effective(ds.Table.Schema)

	key := "view:" + ds.Generation + ":" + f.key()
	var v View
	if ok, err := s.cache.Get(ctx, key, &v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("view cache get failed")
	} else if ok {
		return v, nil
	}

	v = BuildView(ds.Table, f)
	v.Generation = ds.Generation
	if err := s.cache.Set(ctx, key, v, int(s.cacheTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("view cache set failed")
	}
	return v, nil
}

// BuildView filters t and derives the details table and chart series.
func BuildView(t domain.Table, f Filters) View {
	f = f.effective(t.Schema)
	rows := Apply(t, f)

	v := View{Filters: f, Total: len(rows), Empty: len(rows) == 0}
	for _, c := range DetailColumns {
		if t.Schema.Has(c) {
			v.Columns = append(v.Columns, c)
		}
	}
	if v.Empty {
		return v
	}

	v.Rows = detailRows(t.Schema, rows)
	if t.Schema.Score {
		v.ScoreHistogram = ScoreHistogram(rows)
	}
	if t.Schema.SentimentLabel {
		v.SentimentHistogram = SentimentHistogram(rows)
	}
	if t.Schema.Time {
		v.MonthlyCount = Monthly(rows)
		if t.Schema.Score {
			v.MonthlyScore = v.MonthlyCount
		}
	}
	return v
}

func detailRows(s domain.Schema, rows []domain.Review) []DetailRow {
	sorted := slices.Clone(rows)
	if s.Score {
		// score descending, missing scores last
		slices.SortStableFunc(sorted, func(a, b domain.Review) int {
			switch {
			case a.Score == nil && b.Score == nil:
				return 0
			case a.Score == nil:
				return 1
			case b.Score == nil:
				return -1
			}
			return cmp.Compare(*b.Score, *a.Score)
		})
	}
	if len(sorted) > MaxDetailRows {
		sorted = sorted[:MaxDetailRows]
	}

	out := make([]DetailRow, len(sorted))
	for i, r := range sorted {
		if s.Summary {
			out[i].Summary = r.Summary
		}
		if s.CleanedText {
			out[i].CleanedText = r.CleanedText
		}
		if s.SentimentLabel {
			out[i].SentimentLabel = r.SentimentLabel
		}
		if s.Score {
			out[i].Score = r.Score
		}
	}
	return out
}

// ScoreHistogram counts rows per distinct score, ascending by score.
func ScoreHistogram(rows []domain.Review) []domain.ScoreCount {
	counts := map[int]int{}
	for _, r := range rows {
		if r.Score != nil {
			counts[*r.Score]++
		}
	}
	var out []domain.ScoreCount
	for score, n := range counts {
		out = append(out, domain.ScoreCount{Score: score, Count: n})
	}
	slices.SortFunc(out, func(a, b domain.ScoreCount) int { return cmp.Compare(a.Score, b.Score) })
	return out
}

// SentimentHistogram counts rows per label, most frequent first; equal
// counts are ordered by label.
func SentimentHistogram(rows []domain.Review) []LabelCount {
	return labelCounts(rows)
}

func labelCounts(rows []domain.Review) []LabelCount {
	counts := map[domain.Label]int{}
	for _, r := range rows {
		if r.SentimentLabel != nil {
			counts[*r.SentimentLabel]++
		}
	}
	var out []LabelCount
	for l, n := range counts {
		out = append(out, LabelCount{Label: l, Count: n})
	}
	slices.SortFunc(out, func(a, b LabelCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}

// Monthly bins rows by calendar month of Time (UTC), from the earliest to the
// latest month with no gaps. Rows without a time are skipped. Spans over
// MaxMonthlyBins months are returned sparse.
func Monthly(rows []domain.Review) []MonthBin {
	type acc struct {
		count, scored, sum int
	}
	bins := map[time.Time]*acc{}
	var first, last time.Time
	for _, r := range rows {
		if r.Time == nil {
			continue
		}
		t := r.Time.UTC()
		m := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		if len(bins) == 0 || m.Before(first) {
			first = m
		}
		if len(bins) == 0 || m.After(last) {
			last = m
		}
		a := bins[m]
		if a == nil {
			a = &acc{}
			bins[m] = a
		}
		a.count++
		if r.Score != nil {
			a.scored++
			a.sum += *r.Score
		}
	}
	if len(bins) == 0 {
		return nil
	}

	bin := func(m time.Time) MonthBin {
		b := MonthBin{Month: m.Format("2006-01")}
		if a := bins[m]; a != nil {
			b.Count = a.count
			if a.scored > 0 {
				mean := float64(a.sum) / float64(a.scored)
				b.Mean = &mean
			}
		}
		return b
	}

	span := (last.Year()-first.Year())*12 + int(last.Month()-first.Month()) + 1
	if span > MaxMonthlyBins {
		months := make([]time.Time, 0, len(bins))
		for m := range bins {
			months = append(months, m)
		}
		slices.SortFunc(months, func(a, b time.Time) int { return a.Compare(b) })
		out := make([]MonthBin, 0, len(months))
		for _, m := range months {
			out = append(out, bin(m))
		}
		return out
	}

	out := make([]MonthBin, 0, span)
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, bin(m))
	}
	return out
}
