package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/reviewpulse/reviewpulse/internal/db"
	"github.com/reviewpulse/reviewpulse/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS raw_reviews (
	id          TEXT PRIMARY KEY,
	product_id  TEXT NOT NULL,
	source      TEXT NOT NULL,
	reviewer    TEXT NOT NULL DEFAULT 'Anonymous',
	rating      DOUBLE PRECISION,
	title       TEXT,
	text        TEXT NOT NULL,
	review_date TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(product_id, text)
);

CREATE TABLE IF NOT EXISTS processed_reviews (
	id          TEXT PRIMARY KEY,
	product_id  TEXT NOT NULL,
	source      TEXT NOT NULL,
	reviewer    TEXT NOT NULL DEFAULT 'Anonymous',
	rating      DOUBLE PRECISION,
	title       TEXT,
	text        TEXT NOT NULL,
	review_date TEXT,
	sentiment   TEXT NOT NULL,
	confidence  DOUBLE PRECISION NOT NULL,
	aspects     JSONB NOT NULL DEFAULT '[]',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(product_id, text)
);

CREATE TABLE IF NOT EXISTS product_titles (
	product_id TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS review_summaries (
	product_id   TEXT PRIMARY KEY,
	summary      TEXT NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS scrape_artifacts (
	id         TEXT PRIMARY KEY,
	product_id TEXT NOT NULL,
	source     TEXT NOT NULL,
	body       BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_raw_reviews_product ON raw_reviews(product_id);
CREATE INDEX IF NOT EXISTS idx_processed_reviews_product ON processed_reviews(product_id);
CREATE INDEX IF NOT EXISTS idx_scrape_artifacts_product ON scrape_artifacts(product_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListRawReviews(ctx context.Context, productID string) ([]model.RawReview, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, product_id, source, reviewer, rating, title, text, review_date
		 FROM raw_reviews WHERE product_id = $1 ORDER BY created_at, id`,
		productID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list raw reviews %s", productID)
	}
	defer rows.Close()

	var out []model.RawReview
	for rows.Next() {
		var r model.RawReview
		var rating *float64
		var title, date *string
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Source, &r.Reviewer, &rating, &title, &r.Text, &date); err != nil {
			return nil, eris.Wrap(err, "postgres: scan raw review")
		}
		r.Rating = rating
		if title != nil {
			r.Title = *title
		}
		if date != nil {
			r.Date = *date
		}
		r.Normalize(productID, r.Source)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate raw reviews")
}

var rawReviewColumns = []string{"id", "product_id", "source", "reviewer", "rating", "title", "text", "review_date"}

func (s *PostgresStore) InsertRawReviews(ctx context.Context, reviews []model.RawReview) (int, error) {
	rows := make([][]any, 0, len(reviews))
	for _, r := range reviews {
		id := r.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, []any{
			id, r.ProductID, r.Source, r.Reviewer, r.Rating, r.Title, model.NormalizeText(r.Text), r.Date,
		})
	}
	n, err := db.InsertIgnore(ctx, s.pool, "raw_reviews", rawReviewColumns,
		[]string{"product_id", "text"}, rows)
	return int(n), err
}

func (s *PostgresStore) ListProcessedReviews(ctx context.Context, productID string) ([]model.ProcessedReview, error) {
	return s.listProcessed(ctx, productID, 0, false)
}

func (s *PostgresStore) ListRecentProcessedReviews(ctx context.Context, productID string, limit int) ([]model.ProcessedReview, error) {
	return s.listProcessed(ctx, productID, limit, true)
}

func (s *PostgresStore) listProcessed(ctx context.Context, productID string, limit int, recentFirst bool) ([]model.ProcessedReview, error) {
	q := `SELECT id, product_id, source, reviewer, rating, title, text, review_date, sentiment, confidence, aspects
	      FROM processed_reviews WHERE product_id = $1`
	if recentFirst {
		q += ` ORDER BY created_at DESC, id DESC`
	} else {
		q += ` ORDER BY created_at, id`
	}
	args := []any{productID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list processed reviews %s", productID)
	}
	defer rows.Close()

	var out []model.ProcessedReview
	for rows.Next() {
		var p model.ProcessedReview
		var rating *float64
		var title, date *string
		var aspectsJSON []byte
		if err := rows.Scan(&p.ID, &p.ProductID, &p.Source, &p.Reviewer, &rating, &title, &p.Text, &date,
			&p.Sentiment, &p.Confidence, &aspectsJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan processed review")
		}
		p.Rating = rating
		if title != nil {
			p.Title = *title
		}
		if date != nil {
			p.Date = *date
		}
		if err := json.Unmarshal(aspectsJSON, &p.Aspects); err != nil {
			return nil, eris.Wrap(err, "postgres: decode aspects")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate processed reviews")
}

func (s *PostgresStore) CountProcessedReviews(ctx context.Context, productID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM processed_reviews WHERE product_id = $1`, productID,
	).Scan(&n)
	return n, eris.Wrapf(err, "postgres: count processed reviews %s", productID)
}

func (s *PostgresStore) InsertProcessedReview(ctx context.Context, p model.ProcessedReview) (bool, error) {
	aspects := p.Aspects
	if aspects == nil {
		aspects = []model.Aspect{}
	}
	aspectsJSON, err := json.Marshal(aspects)
	if err != nil {
		return false, eris.Wrap(err, "postgres: encode aspects")
	}
	id := p.ID
	if id == "" {
		id = uuid.New().String()
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO processed_reviews (id, product_id, source, reviewer, rating, title, text, review_date, sentiment, confidence, aspects)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (product_id, text) DO NOTHING`,
		id, p.ProductID, p.Source, p.Reviewer, p.Rating, p.Title,
		model.NormalizeText(p.Text), p.Date, string(p.Sentiment), p.Confidence, aspectsJSON,
	)
	if err != nil {
		return false, eris.Wrap(err, "postgres: insert processed review")
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) GetProductTitle(ctx context.Context, productID string) (string, error) {
	var title string
	err := s.pool.QueryRow(ctx,
		`SELECT title FROM product_titles WHERE product_id = $1`, productID,
	).Scan(&title)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return title, eris.Wrapf(err, "postgres: get title %s", productID)
}

func (s *PostgresStore) SetProductTitle(ctx context.Context, productID, title string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO product_titles (product_id, title, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (product_id) DO UPDATE SET title = EXCLUDED.title, updated_at = EXCLUDED.updated_at`,
		productID, title, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: set title %s", productID)
}

func (s *PostgresStore) GetSummary(ctx context.Context, productID string) (*model.SummaryDocument, error) {
	var doc model.SummaryDocument
	err := s.pool.QueryRow(ctx,
		`SELECT product_id, summary, generated_at FROM review_summaries WHERE product_id = $1`,
		productID,
	).Scan(&doc.ProductID, &doc.Summary, &doc.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get summary %s", productID)
	}
	return &doc, nil
}

func (s *PostgresStore) UpsertSummary(ctx context.Context, doc model.SummaryDocument) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO review_summaries (product_id, summary, generated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (product_id) DO UPDATE SET summary = EXCLUDED.summary, generated_at = EXCLUDED.generated_at`,
		doc.ProductID, doc.Summary, doc.GeneratedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert summary %s", doc.ProductID)
}

func (s *PostgresStore) SaveScrapeArtifact(ctx context.Context, productID, source string, body []byte) error {
	// A scrape that failed before any page landed still leaves an artifact.
	if body == nil {
		body = []byte{}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO scrape_artifacts (id, product_id, source, body) VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), productID, source, body,
	)
	return eris.Wrapf(err, "postgres: save scrape artifact %s", productID)
}
