package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertSQL(t *testing.T) {
	got := InsertSQL("intake.submissions", []string{"id", "insured", "year_built"})
	assert.Equal(t, `INSERT INTO "intake"."submissions" ("id", "insured", "year_built") VALUES ($1, $2, $3)`, got)
}

func TestInsertRow_Commits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "submissions" ("id", "insured") VALUES ($1, $2)`)).
		WithArgs("abc", "Acme Ltd").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = InsertRow(context.Background(), mock, "submissions", []string{"id", "insured"}, []any{"abc", "Acme Ltd"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRow_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO").
		WithArgs("abc").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = InsertRow(context.Background(), mock, "submissions", []string{"id"}, []any{"abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: insert into submissions")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRow_BeginFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

	err = InsertRow(context.Background(), mock, "submissions", []string{"id"}, []any{"abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRow_Validation(t *testing.T) {
	err := InsertRow(context.Background(), nil, "submissions", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")

	err = InsertRow(context.Background(), nil, "submissions", []string{"id", "insured"}, []any{"abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 columns but 1 values")
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"intake.submissions", `"intake"."submissions"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"id", "name", "value"`, quoteAndJoin([]string{"id", "name", "value"}))
}

func TestNewPool_BadURL(t *testing.T) {
	_, err := NewPool(context.Background(), "://not-a-url", PoolConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse database url")
}
