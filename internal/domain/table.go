package domain

// Column names as they appear in the source file and the persisted table.
type Column string

const (
	ColID             Column = "Id"
	ColProductID      Column = "ProductId"
	ColUserID         Column = "UserId"
	ColScore          Column = "Score"
	ColTime           Column = "Time"
	ColSummary        Column = "Summary"
	ColText           Column = "Text"
	ColCleanedText    Column = "CleanedText"
	ColSentimentScore Column = "SentimentScore"
	ColSentimentLabel Column = "SentimentLabel"
)

// RawColumns is the projection the annotator requires from its input.
var RawColumns = []Column{ColID, ColProductID, ColUserID, ColScore, ColTime, ColSummary, ColText}

// AnnotatedColumns is the persisted column order.
var AnnotatedColumns = []Column{
	ColID, ColProductID, ColUserID, ColScore, ColTime, ColSummary, ColText,
	ColCleanedText, ColSentimentScore, ColSentimentLabel,
}

// Schema records which columns exist in a loaded table.
type Schema struct {
	ID             bool
	ProductID      bool
	UserID         bool
	Score          bool
	Time           bool
	Summary        bool
	Text           bool
	CleanedText    bool
	SentimentScore bool
	SentimentLabel bool
}

// FullSchema has every annotated column present.
func FullSchema() Schema {
	return Schema{
		ID: true, ProductID: true, UserID: true, Score: true, Time: true,
		Summary: true, Text: true, CleanedText: true, SentimentScore: true, SentimentLabel: true,
	}
}

// Has reports whether column c is present. Unknown names are never present.
func (s Schema) Has(c Column) bool {
	switch c {
	case ColID:
		return s.ID
	case ColProductID:
		return s.ProductID
	case ColUserID:
		return s.UserID
	case ColScore:
		return s.Score
	case ColTime:
		return s.Time
	case ColSummary:
		return s.Summary
	case ColText:
		return s.Text
	case ColCleanedText:
		return s.CleanedText
	case ColSentimentScore:
		return s.SentimentScore
	case ColSentimentLabel:
		return s.SentimentLabel
	}
	return false
}

// Set marks column c present. Unknown names are ignored.
func (s *Schema) Set(c Column) {
	switch c {
	case ColID:
		s.ID = true
	case ColProductID:
		s.ProductID = true
	case ColUserID:
		s.UserID = true
	case ColScore:
		s.Score = true
	case ColTime:
		s.Time = true
	case ColSummary:
		s.Summary = true
	case ColText:
		s.Text = true
	case ColCleanedText:
		s.CleanedText = true
	case ColSentimentScore:
		s.SentimentScore = true
	case ColSentimentLabel:
		s.SentimentLabel = true
	}
}

// Missing returns the subset of cols absent from the schema, in order.
func (s Schema) Missing(cols ...Column) []Column {
	var out []Column
	for _, c := range cols {
		if !s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Table is an in-memory review table tagged with its schema.
type Table struct {
	Schema Schema
	Rows   []Review
}

// Len returns the row count.
func (t Table) Len() int { return len(t.Rows) }

// Head returns the first n rows in source order (the whole table when n is
// larger than the row count or not positive). The row slice is copied.
func (t Table) Head(n int) Table {
	if n <= 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	rows := make([]Review, n)
	copy(rows, t.Rows[:n])
	return Table{Schema: t.Schema, Rows: rows}
}
