package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/quote-intake/internal/model"
)

func essentials() model.Record {
	return model.Record{
		model.FieldInsured:      "Acme Ltd",
		model.FieldAddress:      "1 Main St",
		model.FieldBuildingType: "Warehouse",
	}
}

func TestCheckCompleteness_Threshold(t *testing.T) {
	rec := essentials()
	rec[model.FieldConstruction] = "Steel"
	rec[model.FieldYearBuilt] = int64(2005)
	rec[model.FieldStories] = int64(2)

	v := CheckCompleteness(rec)
	assert.False(t, v.Accepted)
	assert.Equal(t, 6, v.FieldCount)
	assert.Empty(t, v.Missing)
	assert.Contains(t, v.Reason, "only 6 fields")

	rec[model.FieldOccupancy] = "Storage"
	v = CheckCompleteness(rec)
	assert.True(t, v.Accepted)
	assert.Equal(t, 7, v.FieldCount)
	assert.Empty(t, v.Reason)
}

func TestCheckCompleteness_MissingEssentialAlwaysRejects(t *testing.T) {
	full := model.Record{}
	for _, f := range model.Fields() {
		switch model.KindOf(f) {
		case model.KindBool:
			full[f] = true
		case model.KindInteger, model.KindMoney:
			full[f] = int64(1)
		default:
			full[f] = "x"
		}
	}

	for _, f := range model.EssentialFields() {
		t.Run(string(f), func(t *testing.T) {
			rec := full.Clone()
			delete(rec, f)
			v := CheckCompleteness(rec)
			assert.False(t, v.Accepted)
			assert.Equal(t, []model.Field{f}, v.Missing)
			assert.Equal(t, len(model.Fields())-1, v.FieldCount)
			assert.Contains(t, v.Reason, string(f))

			rec[f] = "   "
			assert.False(t, CheckCompleteness(rec).Accepted, "blank essential counts as missing")
		})
	}
}

func TestCheckCompleteness_EmptyRecord(t *testing.T) {
	v := CheckCompleteness(model.Record{})
	assert.False(t, v.Accepted)
	assert.Equal(t, model.EssentialFields(), v.Missing)
	assert.Equal(t, 0, v.FieldCount)
}

func TestCheckCompleteness_Deterministic(t *testing.T) {
	rec := essentials()
	rec[model.FieldBroker] = "Marsh"
	first := CheckCompleteness(rec)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CheckCompleteness(rec))
	}
}
