//go:build integration || !unit

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review_sentiment/internal/adapters/csvsource"
	httpserver "review_sentiment/internal/adapters/http_server"
	"review_sentiment/internal/adapters/remote"
	"review_sentiment/internal/app"
	"review_sentiment/internal/domain"
	"review_sentiment/internal/nlp"
	"review_sentiment/internal/storage/sqlstore"
)

const reviewsCSV = `Id,ProductId,UserId,ProfileName,HelpfulnessNumerator,HelpfulnessDenominator,Score,Time,Summary,Text
1,B001E4KFG0,A3SGXH7AUHU8GW,delmartian,1,1,5,1303862400,Good Quality Dog Food,"I have bought several of the Vitality canned dog food products and have found them all to be of good quality."
2,B00813GRG4,A1D87F6ZCVE5NK,dll pa,0,0,1,1346976000,Not as Advertised,"Product arrived labeled as Jumbo Salted Peanuts...the peanuts were actually small sized unsalted. Not sure if this was an error."
3,B000LQOCH0,ABXLMWJIXXAIN,Natalia,1,1,4,1219017600,"""Delight"" says it all","This is a confection that has been around a few centuries. http://example.com/x Highly recommended!"
4,B000UA0QIQ,A395BORC6FGVXV,Karl,3,3,2,1307923200,Cough Medicine,"If you are looking for the secret ingredient in Robitussin I believe I have found it."
5,B006K2ZZ7K,A1UQRSCLF8GW1T,Michael,0,0,5,1350777600,Great taffy,Great taffy at a great price.
6,B006K2ZZ7K,ADT0SRK1MGOEU,Twoapennything,0,0,4,1342051200,Nice Taffy,
`

func writeCSV(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "Reviews.csv")
	require.NoError(t, os.WriteFile(p, []byte(reviewsCSV), 0o644))
	return p
}

func openStore(t *testing.T) *sqlstore.Repo {
	t.Helper()
	repo, err := sqlstore.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "amazon_reviews.db"), "reviews")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sortedIDs(rows []domain.Review) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestAnnotate_RoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	src := csvsource.New(writeCSV(t), nil, nil)
	repo := openStore(t)

	svc := app.NewAnnotationService(src, repo, nlp.NewLexicon(), clockwork.NewRealClock(),
		app.AnnotateOptions{SampleSize: 5, PreviewRows: 5, TopProducts: 5})
	sum, err := svc.Run(ctx)
	require.NoError(t, err)

	source, err := src.Load(ctx)
	require.NoError(t, err)
	sample := source.Head(5)

	stored, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample.Len(), len(stored))
	assert.Equal(t, sortedIDs(sample.Rows), sortedIDs(stored))
	assert.Equal(t, 5, sum.Total)

	for _, r := range stored {
		require.NotNil(t, r.CleanedText)
		assert.Equal(t, nlp.CleanPtr(r.Text), *r.CleanedText)
		assert.Equal(t, domain.LabelFor(*r.SentimentScore), *r.SentimentLabel)
	}
	assert.NotContains(t, *stored[2].CleanedText, "http")

	// every product in the sample ties at one review; ties sort by ProductId
	require.Len(t, sum.TopProducts, 5)
	assert.Equal(t, "B000LQOCH0", *sum.TopProducts[0].ProductID)

	assert.Equal(t, []domain.ScoreCount{
		{Score: 1, Count: 1}, {Score: 2, Count: 1}, {Score: 4, Count: 1}, {Score: 5, Count: 2},
	}, sum.ScoreDistribution)
}

func TestAnnotate_RerunReplaces(t *testing.T) {
	ctx := context.Background()
	src := csvsource.New(writeCSV(t), nil, nil)
	repo := openStore(t)

	for _, n := range []int{6, 2} {
		svc := app.NewAnnotationService(src, repo, nlp.NewLexicon(), nil,
			app.AnnotateOptions{SampleSize: n, PreviewRows: 5, TopProducts: 5})
		sum, err := svc.Run(ctx)
		require.NoError(t, err)
		assert.Equal(t, n, sum.Total)
	}
}

func TestAnnotate_RemoteSource(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, reviewsCSV)
	}))
	defer origin.Close()

	src := csvsource.New(origin.URL+"/Reviews.csv", remote.New(10), remote.IsURL)
	repo := openStore(t)
	svc := app.NewAnnotationService(src, repo, nlp.NewLexicon(), nil,
		app.AnnotateOptions{SampleSize: 10000, PreviewRows: 5, TopProducts: 5})

	sum, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Total)
}

func TestExplorer_OverAnnotatedStore(t *testing.T) {
	ctx := context.Background()
	repo := openStore(t)
	svc := app.NewAnnotationService(csvsource.New(writeCSV(t), nil, nil), repo, nlp.NewLexicon(), nil,
		app.AnnotateOptions{SampleSize: 10000, PreviewRows: 5, TopProducts: 5})
	_, err := svc.Run(ctx)
	require.NoError(t, err)

	x := app.NewExplorerService(app.NewDatasetCache(repo, nil), app.NopCache{}, time.Minute)
	srv := httpserver.New(0)
	srv.MountHandlers(&httpserver.Handlers{X: x})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/reviews?product=b006k")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v app.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, 2, v.Total)
	assert.Equal(t, app.DetailColumns, v.Columns)
	assert.Equal(t, 5, *v.Rows[0].Score)
	require.Len(t, v.MonthlyCount, 4) // 2012-07 through 2012-10
	assert.Equal(t, "2012-07", v.MonthlyCount[0].Month)

	page, err := http.Get(ts.URL + "/?sentiment=All&score=All&product=")
	require.NoError(t, err)
	defer page.Body.Close()
	body, _ := io.ReadAll(page.Body)
	assert.True(t, strings.Contains(string(body), "Showing 6 Filtered Reviews"))
}
