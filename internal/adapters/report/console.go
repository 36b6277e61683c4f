// Package report prints the annotator's run summary for a terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"review_sentiment/internal/app"
	"review_sentiment/internal/domain"
)

const cellWidth = 40

type Console struct {
	w       io.Writer
	heading lipgloss.Style
	muted   lipgloss.Style
	cell    lipgloss.Style
}

func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:       w,
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		muted:   r.NewStyle().Faint(true),
		cell:    r.NewStyle().Padding(0, 1),
	}
}

// Write prints the raw preview, total row count, top products (one per line)
// and the sentiment breakdown.
func (c *Console) Write(sum app.RunSummary) error {
	var b strings.Builder

	b.WriteString(c.heading.Render("Raw data preview") + "\n")
	b.WriteString(c.previewTable(sum.PreviewSchema, sum.Preview) + "\n\n")

	fmt.Fprintf(&b, "%s %d\n\n", c.heading.Render("Total reviews:"), sum.Total)

	b.WriteString(c.heading.Render(fmt.Sprintf("Top %d products by review count:", len(sum.TopProducts))) + "\n")
	for _, p := range sum.TopProducts {
		id := c.muted.Render("(missing)")
		if p.ProductID != nil {
			id = *p.ProductID
		}
		fmt.Fprintf(&b, "%s: %d\n", id, p.Count)
	}

	if len(sum.Labels) > 0 {
		b.WriteString("\n" + c.heading.Render("Sentiment breakdown:") + "\n")
		for _, l := range sum.Labels {
			fmt.Fprintf(&b, "%s: %d\n", l.Label, l.Count)
		}
	}
	b.WriteString(c.muted.Render("run "+sum.RunID) + "\n")

	_, err := io.WriteString(c.w, b.String())
	return err
}

func (c *Console) previewTable(s domain.Schema, rows []domain.Review) string {
	var cols []domain.Column
	for _, col := range domain.AnnotatedColumns {
		if s.Has(col) {
			cols = append(cols, col)
		}
	}
	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = string(col)
	}

	// Unpadded cells lose their last character to the table's truncation tail.
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(_, _ int) lipgloss.Style { return c.cell }).
		Headers(headers...)
	for _, r := range rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = truncate(cell(r, col), cellWidth)
		}
		t.Row(cells...)
	}
	return t.String()
}

func cell(r domain.Review, c domain.Column) string {
	str := func(p *string) string {
		if p == nil {
			return "NaN"
		}
		return *p
	}
	switch c {
	case domain.ColID:
		return strconv.FormatInt(r.ID, 10)
	case domain.ColProductID:
		return str(r.ProductID)
	case domain.ColUserID:
		return str(r.UserID)
	case domain.ColScore:
		if r.Score == nil {
			return "NaN"
		}
		return strconv.Itoa(*r.Score)
	case domain.ColTime:
		if r.Time == nil {
			return "NaN"
		}
		return strconv.FormatInt(r.Time.Unix(), 10)
	case domain.ColSummary:
		return str(r.Summary)
	case domain.ColText:
		return str(r.Text)
	case domain.ColCleanedText:
		return str(r.CleanedText)
	case domain.ColSentimentScore:
		if r.SentimentScore == nil {
			return "NaN"
		}
		return strconv.FormatFloat(*r.SentimentScore, 'f', 4, 64)
	case domain.ColSentimentLabel:
		if r.SentimentLabel == nil {
			return "NaN"
		}
		return r.SentimentLabel.String()
	}
	return ""
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n-3]) + "..."
}
