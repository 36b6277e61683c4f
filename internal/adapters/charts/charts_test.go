package charts_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review_sentiment/internal/adapters/charts"
	"review_sentiment/internal/domain"
)

func TestScoreDistribution(t *testing.T) {
	var buf bytes.Buffer
	err := charts.ScoreDistribution(&buf, []domain.ScoreCount{{Score: 1, Count: 2}, {Score: 5, Count: 7}})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Distribution of Review Scores")
	assert.Contains(t, html, "teal")
}

func TestLine_GapsForMissing(t *testing.T) {
	v := 4.25
	var buf bytes.Buffer
	err := charts.Line(&buf, "Monthly Average Review Score", "Date", "Average Score", "orange",
		[]string{"2011-01", "2011-02"}, []*float64{&v, nil})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "4.25")
	assert.Contains(t, buf.String(), `"-"`)
}

func TestBar_LengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := charts.Bar(&buf, "t", "x", "y", "teal", []string{"a"}, nil)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
