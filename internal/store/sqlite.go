package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS raw_reviews (
	id          TEXT PRIMARY KEY,
	product_id  TEXT NOT NULL,
	source      TEXT NOT NULL,
	reviewer    TEXT NOT NULL DEFAULT 'Anonymous',
	rating      REAL,
	title       TEXT,
	text        TEXT NOT NULL,
	review_date TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(product_id, text)
);

CREATE TABLE IF NOT EXISTS processed_reviews (
	id          TEXT PRIMARY KEY,
	product_id  TEXT NOT NULL,
	source      TEXT NOT NULL,
	reviewer    TEXT NOT NULL DEFAULT 'Anonymous',
	rating      REAL,
	title       TEXT,
	text        TEXT NOT NULL,
	review_date TEXT,
	sentiment   TEXT NOT NULL,
	confidence  REAL NOT NULL,
	aspects     TEXT NOT NULL DEFAULT '[]',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(product_id, text)
);

CREATE TABLE IF NOT EXISTS product_titles (
	product_id TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS review_summaries (
	product_id   TEXT PRIMARY KEY,
	summary      TEXT NOT NULL,
	generated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS scrape_artifacts (
	id         TEXT PRIMARY KEY,
	product_id TEXT NOT NULL,
	source     TEXT NOT NULL,
	body       BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_raw_reviews_product ON raw_reviews(product_id);
CREATE INDEX IF NOT EXISTS idx_processed_reviews_product ON processed_reviews(product_id);
CREATE INDEX IF NOT EXISTS idx_scrape_artifacts_product ON scrape_artifacts(product_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListRawReviews(ctx context.Context, productID string) ([]model.RawReview, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, source, reviewer, rating, title, text, review_date
		 FROM raw_reviews WHERE product_id = ? ORDER BY created_at, id`,
		productID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list raw reviews %s", productID)
	}
	defer rows.Close()

	var out []model.RawReview
	for rows.Next() {
		var r model.RawReview
		var rating sql.NullFloat64
		var title, date sql.NullString
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Source, &r.Reviewer, &rating, &title, &r.Text, &date); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan raw review")
		}
		if rating.Valid {
			v := rating.Float64
			r.Rating = &v
		}
		r.Title = title.String
		r.Date = date.String
		r.Normalize(productID, r.Source)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate raw reviews")
}

func (s *SQLiteStore) InsertRawReviews(ctx context.Context, reviews []model.RawReview) (int, error) {
	inserted := 0
	for _, r := range reviews {
		id := r.ID
		if id == "" {
			id = uuid.New().String()
		}
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO raw_reviews (id, product_id, source, reviewer, rating, title, text, review_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(product_id, text) DO NOTHING`,
			id, r.ProductID, r.Source, r.Reviewer, ratingArg(r.Rating), r.Title, model.NormalizeText(r.Text), r.Date,
		)
		if err != nil {
			return inserted, eris.Wrap(err, "sqlite: insert raw review")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, eris.Wrap(err, "sqlite: rows affected")
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (s *SQLiteStore) ListProcessedReviews(ctx context.Context, productID string) ([]model.ProcessedReview, error) {
	return s.listProcessed(ctx, productID, 0, false)
}

func (s *SQLiteStore) ListRecentProcessedReviews(ctx context.Context, productID string, limit int) ([]model.ProcessedReview, error) {
	return s.listProcessed(ctx, productID, limit, true)
}

func (s *SQLiteStore) listProcessed(ctx context.Context, productID string, limit int, recentFirst bool) ([]model.ProcessedReview, error) {
	q := `SELECT id, product_id, source, reviewer, rating, title, text, review_date, sentiment, confidence, aspects
	      FROM processed_reviews WHERE product_id = ?`
	if recentFirst {
		q += ` ORDER BY created_at DESC, id DESC`
	} else {
		q += ` ORDER BY created_at, id`
	}
	args := []any{productID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list processed reviews %s", productID)
	}
	defer rows.Close()

	var out []model.ProcessedReview
	for rows.Next() {
		p, err := scanProcessed(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate processed reviews")
}

func scanProcessed(rows *sql.Rows) (model.ProcessedReview, error) {
	var p model.ProcessedReview
	var rating sql.NullFloat64
	var title, date sql.NullString
	var aspectsJSON string
	if err := rows.Scan(&p.ID, &p.ProductID, &p.Source, &p.Reviewer, &rating, &title, &p.Text, &date,
		&p.Sentiment, &p.Confidence, &aspectsJSON); err != nil {
		return p, eris.Wrap(err, "sqlite: scan processed review")
	}
	if rating.Valid {
		v := rating.Float64
		p.Rating = &v
	}
	p.Title = title.String
	p.Date = date.String
	if err := json.Unmarshal([]byte(aspectsJSON), &p.Aspects); err != nil {
		return p, eris.Wrap(err, "sqlite: decode aspects")
	}
	return p, nil
}

func (s *SQLiteStore) CountProcessedReviews(ctx context.Context, productID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM processed_reviews WHERE product_id = ?`, productID,
	).Scan(&n)
	return n, eris.Wrapf(err, "sqlite: count processed reviews %s", productID)
}

func (s *SQLiteStore) InsertProcessedReview(ctx context.Context, p model.ProcessedReview) (bool, error) {
	aspects := p.Aspects
	if aspects == nil {
		aspects = []model.Aspect{}
	}
	aspectsJSON, err := json.Marshal(aspects)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: encode aspects")
	}
	id := p.ID
	if id == "" {
		id = uuid.New().String()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO processed_reviews (id, product_id, source, reviewer, rating, title, text, review_date, sentiment, confidence, aspects)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(product_id, text) DO NOTHING`,
		id, p.ProductID, p.Source, p.Reviewer, ratingArg(p.Rating), p.Title,
		model.NormalizeText(p.Text), p.Date, string(p.Sentiment), p.Confidence, string(aspectsJSON),
	)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: insert processed review")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) GetProductTitle(ctx context.Context, productID string) (string, error) {
	var title string
	err := s.db.QueryRowContext(ctx,
		`SELECT title FROM product_titles WHERE product_id = ?`, productID,
	).Scan(&title)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return title, eris.Wrapf(err, "sqlite: get title %s", productID)
}

func (s *SQLiteStore) SetProductTitle(ctx context.Context, productID, title string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO product_titles (product_id, title, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(product_id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		productID, title, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: set title %s", productID)
}

func (s *SQLiteStore) GetSummary(ctx context.Context, productID string) (*model.SummaryDocument, error) {
	var doc model.SummaryDocument
	err := s.db.QueryRowContext(ctx,
		`SELECT product_id, summary, generated_at FROM review_summaries WHERE product_id = ?`,
		productID,
	).Scan(&doc.ProductID, &doc.Summary, &doc.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get summary %s", productID)
	}
	return &doc, nil
}

func (s *SQLiteStore) UpsertSummary(ctx context.Context, doc model.SummaryDocument) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO review_summaries (product_id, summary, generated_at) VALUES (?, ?, ?)
		 ON CONFLICT(product_id) DO UPDATE SET summary = excluded.summary, generated_at = excluded.generated_at`,
		doc.ProductID, doc.Summary, doc.GeneratedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert summary %s", doc.ProductID)
}

func (s *SQLiteStore) SaveScrapeArtifact(ctx context.Context, productID, source string, body []byte) error {
	// A scrape that failed before any page landed still leaves an artifact.
	if body == nil {
		body = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scrape_artifacts (id, product_id, source, body) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), productID, source, body,
	)
	return eris.Wrapf(err, "sqlite: save scrape artifact %s", productID)
}

func ratingArg(r *float64) any {
	if r == nil {
		return nil
	}
	return *r
}
