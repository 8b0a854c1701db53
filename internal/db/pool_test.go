package db

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertIgnore_EmptyRows(t *testing.T) {
	n, err := InsertIgnore(context.Background(), nil, "raw_reviews", []string{"a"}, []string{"a"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertIgnore_RowWidthMismatch(t *testing.T) {
	_, err := InsertIgnore(context.Background(), nil, "raw_reviews",
		[]string{"a", "b"}, []string{"a"}, [][]any{{"only-one"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0")
}

func TestInsertIgnore_BuildsMultiRowStatement(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO raw_reviews \(product_id, text\) VALUES \(\$1, \$2\), \(\$3, \$4\) ON CONFLICT \(product_id, text\) DO NOTHING`).
		WithArgs("p1", "great", "p1", "bad").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := InsertIgnore(context.Background(), mock, "raw_reviews",
		[]string{"product_id", "text"}, []string{"product_id", "text"},
		[][]any{{"p1", "great"}, {"p1", "bad"}})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
