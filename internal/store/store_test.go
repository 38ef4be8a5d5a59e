package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/quote-intake/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleSubmission(insured string, at time.Time) *model.Submission {
	rec := model.Record{
		model.FieldBroker:        "Marsh",
		model.FieldInsured:       insured,
		model.FieldAddress:       "1 Main St, Leeds",
		model.FieldBuildingType:  "Warehouse",
		model.FieldYearBuilt:     int64(1998),
		model.FieldArea:          1200.5,
		model.FieldSprinklers:    true,
		model.FieldBuildingValue: int64(2500000),
		model.FieldDeductible:    "see schedule",
	}
	return model.Finalize(rec, insured+".pdf", at)
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("InsertAndGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

		id, err := s.InsertSubmission(ctx, sampleSubmission("Acme Ltd", at))
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		got, err := s.GetSubmission(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "Acme Ltd.pdf", got.SourceFile)
		assert.True(t, at.Equal(got.SubmittedAt))

		v := got.Values
		assert.Equal(t, "Marsh", v[model.FieldBroker])
		assert.Equal(t, "Acme Ltd", v[model.FieldInsured])
		assert.Equal(t, int64(1998), v[model.FieldYearBuilt])
		assert.Equal(t, 1200.5, v[model.FieldArea])
		assert.Equal(t, true, v[model.FieldSprinklers])
		assert.Equal(t, int64(2500000), v[model.FieldBuildingValue])
		assert.Equal(t, "see schedule", v[model.FieldDeductible], "raw numeric text restored")
		assert.Nil(t, v[model.FieldConstruction])
		assert.Nil(t, v[model.FieldStories])

		for _, f := range model.Fields() {
			_, ok := v[f]
			assert.True(t, ok, "every column present: %s", f)
		}
	})

	t.Run("GetNotFound", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetSubmission(context.Background(), "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		for i, name := range []string{"Acme Ltd", "Bolt Inc", "Acme Holdings"} {
			_, err := s.InsertSubmission(ctx, sampleSubmission(name, base.Add(time.Duration(i)*time.Hour)))
			require.NoError(t, err)
		}

		subs, err := s.ListSubmissions(ctx, model.SubmissionFilter{})
		require.NoError(t, err)
		require.Len(t, subs, 3)
		assert.Equal(t, "Acme Holdings", subs[0].Values[model.FieldInsured])
		assert.Equal(t, "Acme Ltd", subs[2].Values[model.FieldInsured])

		subs, err = s.ListSubmissions(ctx, model.SubmissionFilter{Insured: "Acme"})
		require.NoError(t, err)
		assert.Len(t, subs, 2)

		subs, err = s.ListSubmissions(ctx, model.SubmissionFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "Bolt Inc", subs[0].Values[model.FieldInsured])
	})

	t.Run("InsertNil", func(t *testing.T) {
		s := newStore(t)
		_, err := s.InsertSubmission(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}

func TestColumns(t *testing.T) {
	cols := columns()
	assert.Equal(t, "id", cols[0])
	assert.Equal(t, "unparsed", cols[len(cols)-1])
	assert.Len(t, cols, len(model.Fields())+2)
}

func TestUnparsedJSON(t *testing.T) {
	sub := model.Finalize(model.Record{model.FieldInsured: "Acme"}, "a.pdf", time.Now())
	b, err := unparsedJSON(sub)
	require.NoError(t, err)
	assert.Nil(t, b)

	sub.Values[model.FieldStories] = "two"
	b, err = unparsedJSON(sub)
	require.NoError(t, err)
	assert.JSONEq(t, `{"stories":"two"}`, string(b))
}

func TestAssemble_IgnoresUnknownUnparsedKeys(t *testing.T) {
	values := model.Record{model.FieldStories: int64(3), model.FieldInsured: nil}
	sub, err := assemble("id-1", "a.pdf", time.Now(), values,
		[]byte(`{"stories":"two","insured":"x","bogus":"y"}`))
	require.NoError(t, err)
	assert.Equal(t, int64(3), sub.Values[model.FieldStories], "stored number wins")
	assert.Nil(t, sub.Values[model.FieldInsured], "text fields are never restored")
	_, ok := sub.Values[model.Field("bogus")]
	assert.False(t, ok)
	assert.Equal(t, "a.pdf", sub.Values[model.FieldSourceFile])
}

func TestAssemble_BadJSON(t *testing.T) {
	_, err := assemble("id-1", "a.pdf", time.Now(), model.Record{}, []byte(`{`))
	assert.Error(t, err)
}

func TestListLimit(t *testing.T) {
	assert.Equal(t, defaultListLimit, listLimit(model.SubmissionFilter{}))
	assert.Equal(t, 5, listLimit(model.SubmissionFilter{Limit: 5}))
}
