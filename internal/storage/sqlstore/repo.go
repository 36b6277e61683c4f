// Package sqlstore persists annotated review tables through database/sql,
// with SQLite (default) and MySQL dialects.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"review_sentiment/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valEpoch(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.Unix()
}
func valLabel(p *domain.Label) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

type Repo struct {
	db    *sql.DB
	d     Dialect
	table string
}

func New(db *sql.DB, d Dialect, table string) *Repo {
	return &Repo{db: db, d: d, table: table}
}

// Open connects with the named dialect and pings the database.
func Open(ctx context.Context, driver, dsn, table string) (*Repo, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name, err)
	}
	if d.Name == SQLite.Name {
		// one writer; avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}
	return New(db, d, table), nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) Table() string { return r.table }

// ReplaceAll writes rows into a staging table and swaps it in for the target
// table. A failure before the swap leaves the previous contents untouched.
func (r *Repo) ReplaceAll(ctx context.Context, rows []domain.Review) error {
	staging := r.table + "__staging"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{r.d.dropSQL(staging), r.d.createTableSQL(staging)} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("prepare staging table: %w", err)
		}
	}

	for start := 0; start < len(rows); start += insertBatch {
		end := min(start+insertBatch, len(rows))
		batch := rows[start:end]
		args := make([]any, 0, len(batch)*len(domain.AnnotatedColumns))
		for _, rv := range batch {
			args = append(args,
				rv.ID,
				valStr(rv.ProductID),
				valStr(rv.UserID),
				valInt(rv.Score),
				valEpoch(rv.Time),
				valStr(rv.Summary),
				valStr(rv.Text),
				valStr(rv.CleanedText),
				valF64(rv.SentimentScore),
				valLabel(rv.SentimentLabel),
			)
		}
		if _, err := tx.ExecContext(ctx, r.d.insertSQL(staging, len(batch)), args...); err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", start, end-1, err)
		}
	}

	for _, stmt := range r.d.swap(r.d, r.table, staging) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("swap table: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Debug().Str("table", r.table).Int("rows", len(rows)).Msg("table replaced")
	return nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, r.d.countSQL(r.table)).Scan(&n); err != nil {
		return 0, r.wrap(err)
	}
	return n, nil
}

func (r *Repo) TopProducts(ctx context.Context, n int) ([]domain.ProductCount, error) {
	rows, err := r.db.QueryContext(ctx, r.d.topProductsSQL(r.table), n)
	if err != nil {
		return nil, r.wrap(err)
	}
	defer rows.Close()

	var out []domain.ProductCount
	for rows.Next() {
		var pid sql.NullString
		var pc domain.ProductCount
		if err := rows.Scan(&pid, &pc.Count); err != nil {
			return nil, err
		}
		if pid.Valid {
			s := pid.String
			pc.ProductID = &s
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

func (r *Repo) ScoreDistribution(ctx context.Context) ([]domain.ScoreCount, error) {
	rows, err := r.db.QueryContext(ctx, r.d.scoreDistributionSQL(r.table))
	if err != nil {
		return nil, r.wrap(err)
	}
	defer rows.Close()

	var out []domain.ScoreCount
	for rows.Next() {
		var sc domain.ScoreCount
		if err := rows.Scan(&sc.Score, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *Repo) LoadAll(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, r.d.selectAllSQL(r.table))
	if err != nil {
		return nil, r.wrap(err)
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var (
			productID, userID sql.NullString
			score, epoch      sql.NullInt64
			summary, text     sql.NullString
			cleaned, label    sql.NullString
			sentiment         sql.NullFloat64
		)
		if err := rows.Scan(
			&rv.ID,
			&productID,
			&userID,
			&score,
			&epoch,
			&summary,
			&text,
			&cleaned,
			&sentiment,
			&label,
		); err != nil {
			return nil, err
		}

		rv.ProductID = nullStr(productID)
		rv.UserID = nullStr(userID)
		if score.Valid {
			s := int(score.Int64)
			rv.Score = &s
		}
		if epoch.Valid {
			rv.Time = domain.TimeFromEpoch(epoch.Int64)
		}
		rv.Summary = nullStr(summary)
		rv.Text = nullStr(text)
		rv.CleanedText = nullStr(cleaned)
		if sentiment.Valid {
			f := sentiment.Float64
			rv.SentimentScore = &f
		}
		if label.Valid {
			l := domain.Label(label.String)
			rv.SentimentLabel = &l
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Load returns the persisted table; every annotated column is present.
func (r *Repo) Load(ctx context.Context) (domain.Table, error) {
	rows, err := r.LoadAll(ctx)
	if err != nil {
		return domain.Table{}, err
	}
	return domain.Table{Schema: domain.FullSchema(), Rows: rows}, nil
}

func (r *Repo) wrap(err error) error {
	if r.d.missingTable(err) {
		return fmt.Errorf("table %s: %w", r.table, domain.ErrNotFound)
	}
	return err
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
