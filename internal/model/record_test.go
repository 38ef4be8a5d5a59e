package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields_CanonicalOrder(t *testing.T) {
	fields := Fields()
	require.Len(t, fields, 22)
	assert.Equal(t, FieldBroker, fields[0])
	assert.Equal(t, FieldSubmittedAt, fields[21])
	assert.Equal(t, []Field{FieldInsured, FieldAddress, FieldBuildingType}, EssentialFields())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindBool, KindOf(FieldSprinklers))
	assert.Equal(t, KindInteger, KindOf(FieldYearBuilt))
	assert.Equal(t, KindMoney, KindOf(FieldDeductible))
	assert.Equal(t, KindText, KindOf(FieldSecurity))
	assert.Equal(t, KindText, KindOf(Field("unknown")))
	assert.True(t, FieldArea.IsNumeric())
	assert.False(t, FieldInsured.IsNumeric())
	assert.False(t, Field("nope").Valid())
}

func TestRecord_HasIgnoresEmptyStrings(t *testing.T) {
	r := Record{
		FieldInsured:    "  ",
		FieldAddress:    "1 Main St",
		FieldSprinklers: false,
		FieldStories:    nil,
	}
	assert.False(t, r.Has(FieldInsured))
	assert.True(t, r.Has(FieldAddress))
	assert.True(t, r.Has(FieldSprinklers), "false is a populated boolean")
	assert.False(t, r.Has(FieldStories))
	assert.False(t, r.Has(FieldBroker))
	assert.Equal(t, 2, r.Populated())
}

func TestRecord_FillNeverOverwrites(t *testing.T) {
	r := Record{FieldInsured: "Acme Ltd"}

	assert.False(t, r.Fill(FieldInsured, "Other Co"))
	assert.Equal(t, "Acme Ltd", r[FieldInsured])

	assert.True(t, r.Fill(FieldAddress, "1 Main St"))
	assert.False(t, r.Fill(FieldBroker, ""))
	assert.False(t, r.Fill(FieldBroker, nil))

	r[FieldOccupancy] = ""
	assert.True(t, r.Fill(FieldOccupancy, "Storage"), "empty values may be replaced")
}

func TestRecord_KeysAndClone(t *testing.T) {
	r := Record{FieldStories: int64(2), FieldAddress: "x", FieldBroker: ""}
	assert.Equal(t, []Field{FieldAddress, FieldStories}, r.Keys())

	c := r.Clone()
	c[FieldAddress] = "y"
	assert.Equal(t, "x", r[FieldAddress])
}

func TestNumberValue(t *testing.T) {
	assert.Equal(t, int64(500000), NumberValue(500000))
	assert.Equal(t, 1250000.5, NumberValue(1250000.5))
}

func TestFinalize_FillsEveryColumn(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := Record{
		FieldInsured:       "Acme Ltd",
		FieldYearBuilt:     int64(2005),
		FieldBuildingValue: "five hundred",
		FieldBroker:        "",
	}

	sub := Finalize(rec, "Body_1.txt", at)
	require.Len(t, sub.Values, 22)
	assert.Equal(t, "Body_1.txt", sub.Values[FieldSourceFile])
	assert.Equal(t, at, sub.Values[FieldSubmittedAt])
	assert.Nil(t, sub.Values[FieldBroker])
	assert.Nil(t, sub.Values[FieldDeductible])
	assert.Equal(t, "Acme Ltd", sub.Values[FieldInsured])

	_, present := rec[FieldSourceFile]
	assert.False(t, present, "finalize must not mutate the extracted record")
}

func TestSubmission_RowAndUnparsed(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := Finalize(Record{
		FieldInsured:       "Acme Ltd",
		FieldBuildingValue: "five hundred",
		FieldDeductible:    int64(1000),
	}, "a.pdf", at)

	cols := Columns()
	row := sub.Row()
	require.Len(t, row, len(cols))

	idx := func(f Field) int {
		for i, c := range cols {
			if c == string(f) {
				return i
			}
		}
		t.Fatalf("column %s missing", f)
		return -1
	}
	assert.Equal(t, "Acme Ltd", row[idx(FieldInsured)])
	assert.Nil(t, row[idx(FieldBuildingValue)])
	assert.Equal(t, int64(1000), row[idx(FieldDeductible)])
	assert.Equal(t, "a.pdf", row[idx(FieldSourceFile)])
	assert.Equal(t, at, row[idx(FieldSubmittedAt)])

	assert.Equal(t, map[string]string{"building_value": "five hundred"}, sub.Unparsed())
}
