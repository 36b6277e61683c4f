package sqlstore

import (
	"strings"

	"review_sentiment/internal/domain"
)

// rows per multi-row INSERT; 10 params each stays well under both drivers'
// placeholder limits.
const insertBatch = 500

func (d Dialect) columnList() string {
	cols := make([]string, len(domain.AnnotatedColumns))
	for i, c := range domain.AnnotatedColumns {
		cols[i] = d.quote(string(c))
	}
	return strings.Join(cols, ", ")
}

func (d Dialect) createTableSQL(table string) string {
	defs := make([]string, len(domain.AnnotatedColumns))
	for i, c := range domain.AnnotatedColumns {
		defs[i] = d.quote(string(c)) + " " + d.columnType(c)
	}
	return "CREATE TABLE " + d.quote(table) + " (\n  " + strings.Join(defs, ",\n  ") + "\n)"
}

func (d Dialect) insertSQL(table string, n int) string {
	row := "(" + strings.TrimSuffix(strings.Repeat("?,", len(domain.AnnotatedColumns)), ",") + ")"
	values := make([]string, n)
	for i := range values {
		values[i] = row
	}
	return "INSERT INTO " + d.quote(table) + " (" + d.columnList() + ") VALUES " + strings.Join(values, ",")
}

func (d Dialect) dropSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.quote(table)
}

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

func (d Dialect) countSQL(table string) string {
	return "SELECT COUNT(*) FROM " + d.quote(table)
}

// Ties on review_count are broken by ProductId ascending; NULL ids form one
// group and sort first in both dialects.
func (d Dialect) topProductsSQL(table string) string {
	pid := d.quote(string(domain.ColProductID))
	return "SELECT " + pid + ", COUNT(*) AS review_count FROM " + d.quote(table) +
		" GROUP BY " + pid + " ORDER BY review_count DESC, " + pid + " ASC LIMIT ?"
}

func (d Dialect) scoreDistributionSQL(table string) string {
	score := d.quote(string(domain.ColScore))
	return "SELECT " + score + ", COUNT(*) FROM " + d.quote(table) +
		" WHERE " + score + " IS NOT NULL GROUP BY " + score + " ORDER BY " + score + " ASC"
}

func (d Dialect) selectAllSQL(table string) string {
	return "SELECT " + d.columnList() + " FROM " + d.quote(table) + " ORDER BY " + d.quote(string(domain.ColID))
}
