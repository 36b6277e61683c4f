package sqlstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"review_sentiment/internal/domain"
)

// Dialect captures the SQL differences between the supported stores.
type Dialect struct {
	Name   string
	Driver string // database/sql driver name

	quote        func(ident string) string
	types        map[domain.Column]string
	swap         func(d Dialect, table, staging string) []string
	missingTable func(err error) bool
}

var SQLite = Dialect{
	Name:   "sqlite",
	Driver: "sqlite",
	quote:  func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` },
	types: map[domain.Column]string{
		domain.ColID:             "INTEGER",
		domain.ColScore:          "INTEGER",
		domain.ColTime:           "INTEGER",
		domain.ColSentimentScore: "REAL",
	},
	// SQLite DDL is transactional: both statements commit with the inserts.
	swap: func(d Dialect, table, staging string) []string {
		return []string{
			"DROP TABLE IF EXISTS " + d.quote(table),
			"ALTER TABLE " + d.quote(staging) + " RENAME TO " + d.quote(table),
		}
	},
	missingTable: func(err error) bool {
		return err != nil && strings.Contains(err.Error(), "no such table")
	},
}

var MySQL = Dialect{
	Name:   "mysql",
	Driver: "mysql",
	quote:  func(s string) string { return "`" + strings.ReplaceAll(s, "`", "``") + "`" },
	types: map[domain.Column]string{
		domain.ColID:             "BIGINT",
		domain.ColProductID:      "VARCHAR(191) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin",
		domain.ColUserID:         "VARCHAR(191) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin",
		domain.ColScore:          "INT",
		domain.ColTime:           "BIGINT",
		domain.ColSentimentScore: "DOUBLE",
		domain.ColSentimentLabel: "VARCHAR(16)",
	},
	// MySQL DDL commits implicitly; RENAME TABLE swaps both names atomically
	// so readers see either the old table or the complete new one.
	swap: func(d Dialect, table, staging string) []string {
		old := table + "__old"
		return []string{
			"DROP TABLE IF EXISTS " + d.quote(old),
			"CREATE TABLE IF NOT EXISTS " + d.quote(table) + " LIKE " + d.quote(staging),
			"RENAME TABLE " + d.quote(table) + " TO " + d.quote(old) + ", " + d.quote(staging) + " TO " + d.quote(table),
			"DROP TABLE " + d.quote(old),
		}
	},
	missingTable: func(err error) bool {
		var me *mysql.MySQLError
		return errors.As(err, &me) && me.Number == 1146
	},
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case SQLite.Name:
		return SQLite, nil
	case MySQL.Name:
		return MySQL, nil
	}
	return Dialect{}, fmt.Errorf("unsupported store driver %q", name)
}

func (d Dialect) columnType(c domain.Column) string {
	if t, ok := d.types[c]; ok {
		return t
	}
	return "TEXT"
}
