package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpulse/reviewpulse/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_InsertRawReviews_OnConflictDoNothing(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO raw_reviews \(id, product_id, source, reviewer, rating, title, text, review_date\) VALUES .+ ON CONFLICT \(product_id, text\) DO NOTHING`).
		WithArgs(
			pgxmock.AnyArg(), "7654321", "bestbuy", "alice", pgxmock.AnyArg(), "", "Great quality", "",
			pgxmock.AnyArg(), "7654321", "bestbuy", "bob", pgxmock.AnyArg(), "", "Great quality", "",
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := s.InsertRawReviews(context.Background(), []model.RawReview{
		{ProductID: "7654321", Source: "bestbuy", Reviewer: "alice", Text: "Great quality"},
		{ProductID: "7654321", Source: "bestbuy", Reviewer: "bob", Text: "Great quality"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "duplicate text must not count as inserted")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertRawReviews_Empty(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	n, err := s.InsertRawReviews(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostgresStore_InsertProcessedReview_Skipped(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`(?s)INSERT INTO processed_reviews .+ ON CONFLICT \(product_id, text\) DO NOTHING`).
		WithArgs(
			pgxmock.AnyArg(), "7654321", "", "", pgxmock.AnyArg(), "", "already there", "",
			string(model.SentimentNeutral), 0.0, pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	written, err := s.InsertProcessedReview(context.Background(), model.ProcessedReview{
		ProductID: "7654321",
		Text:      "already there",
		Sentiment: model.SentimentNeutral,
	})
	require.NoError(t, err)
	assert.False(t, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetProductTitle_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT title FROM product_titles WHERE product_id = \$1`).
		WithArgs("42").
		WillReturnError(pgx.ErrNoRows)

	title, err := s.GetProductTitle(context.Background(), "42")
	require.NoError(t, err)
	assert.Empty(t, title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetSummary_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT product_id, summary, generated_at FROM review_summaries WHERE product_id = \$1`).
		WithArgs("42").
		WillReturnError(pgx.ErrNoRows)

	doc, err := s.GetSummary(context.Background(), "42")
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListProcessedReviews_DecodesAspects(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{
		"id", "product_id", "source", "reviewer", "rating", "title", "text", "review_date",
		"sentiment", "confidence", "aspects",
	}).AddRow(
		"p1", "7654321", "bestbuy", "alice", (*float64)(nil), (*string)(nil), "cheap and fast", (*string)(nil),
		model.SentimentPositive, 0.8, []byte(`["Price","Delivery"]`),
	)

	mock.ExpectQuery(`FROM processed_reviews WHERE product_id = \$1 ORDER BY created_at, id`).
		WithArgs("7654321").
		WillReturnRows(rows)

	got, err := s.ListProcessedReviews(context.Background(), "7654321")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []model.Aspect{model.AspectPrice, model.AspectDelivery}, got[0].Aspects)
	assert.NoError(t, mock.ExpectationsWereMet())
}
