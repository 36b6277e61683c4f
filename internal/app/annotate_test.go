package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review_sentiment/internal/app"
	"review_sentiment/internal/domain"
	"review_sentiment/internal/nlp"
)

func rawSchema() domain.Schema {
	var s domain.Schema
	for _, c := range domain.RawColumns {
		s.Set(c)
	}
	return s
}

func rawTable(n int) domain.Table {
	rows := make([]domain.Review, n)
	for i := range rows {
		rows[i] = domain.Review{
			ID:        int64(i + 1),
			ProductID: ptr("B00" + string(rune('A'+i%3))),
			Score:     ptr(i%5 + 1),
			Text:      ptr("This is GOOD!! http://x.com"),
		}
	}
	return domain.Table{Schema: rawSchema(), Rows: rows}
}

func opts() app.AnnotateOptions {
	return app.AnnotateOptions{SampleSize: 4, PreviewRows: 2, TopProducts: 5}
}

func TestRun_SamplesAnnotatesAndReplaces(t *testing.T) {
	src := &fakeSource{tbl: rawTable(10)}
	store := &fakeStore{}
	svc := app.NewAnnotationService(src, store, nlp.NewLexicon(), clockwork.NewFakeClock(), opts())

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, sum.RunID)
	assert.Len(t, sum.Preview, 2)
	assert.Equal(t, 4, sum.Total)
	require.Len(t, store.rows, 4)

	// prefix sample, order preserved
	for i, r := range store.rows {
		assert.Equal(t, int64(i+1), r.ID)
		require.NotNil(t, r.CleanedText)
		assert.Equal(t, "this is good", *r.CleanedText)
		require.NotNil(t, r.SentimentLabel)
		assert.Equal(t, domain.Positive, *r.SentimentLabel)
		assert.Equal(t, domain.LabelFor(*r.SentimentScore), *r.SentimentLabel)
	}
	assert.Equal(t, []app.LabelCount{{Label: domain.Positive, Count: 4}}, sum.Labels)
}

func TestRun_MissingTextIsNeutral(t *testing.T) {
	tbl := rawTable(1)
	tbl.Rows[0].Text = nil
	store := &fakeStore{}
	svc := app.NewAnnotationService(&fakeSource{tbl: tbl}, store, fixedEstimator(0.9), nil, opts())

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, store.rows, 1)
	assert.Equal(t, "", *store.rows[0].CleanedText)
	assert.Equal(t, 0.0, *store.rows[0].SentimentScore)
	assert.Equal(t, domain.Neutral, *store.rows[0].SentimentLabel)
}

func TestRun_DiscardsPreexistingAnnotations(t *testing.T) {
	tbl := rawTable(1)
	tbl.Schema = domain.FullSchema()
	tbl.Rows[0].SentimentLabel = ptr(domain.Negative)
	store := &fakeStore{}
	svc := app.NewAnnotationService(&fakeSource{tbl: tbl}, store, fixedEstimator(0.5), nil, opts())

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Positive, *store.rows[0].SentimentLabel)
}

func TestRun_MissingColumnIsFatal(t *testing.T) {
	tbl := rawTable(3)
	tbl.Schema.Time = false
	store := &fakeStore{}
	svc := app.NewAnnotationService(&fakeSource{tbl: tbl}, store, fixedEstimator(0), nil, opts())

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
	assert.Contains(t, err.Error(), "Time")
	assert.Zero(t, store.replaced, "nothing may be written")
}

func TestRun_LoadFailureIsFatal(t *testing.T) {
	boom := errors.New("boom")
	store := &fakeStore{}
	svc := app.NewAnnotationService(&fakeSource{err: boom}, store, fixedEstimator(0), nil, opts())

	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.replaced)
}

func TestRun_StoreFailureSurfaces(t *testing.T) {
	boom := errors.New("disk full")
	svc := app.NewAnnotationService(&fakeSource{tbl: rawTable(2)}, &fakeStore{err: boom}, fixedEstimator(0), nil, opts())

	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRun_SampleLargerThanSource(t *testing.T) {
	store := &fakeStore{}
	o := opts()
	o.SampleSize = 10000
	svc := app.NewAnnotationService(&fakeSource{tbl: rawTable(3)}, store, fixedEstimator(-0.1), nil, o)

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, []app.LabelCount{{Label: domain.Negative, Count: 3}}, sum.Labels)
}
