package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/quote-intake/internal/model"
)

func TestCoerce_Money(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{"decimal becomes float", "$1,250,000.50", 1250000.50},
		{"pound integer", "£750", int64(750)},
		{"euro with space", "€ 12,000", int64(12000)},
		{"plain", "500000", int64(500000)},
		{"unparseable kept raw", "five hundred", "five hundred"},
		{"two decimal points kept raw", "1.2.3", "1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coerce(model.FieldBuildingValue, tt.raw)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_Integer(t *testing.T) {
	got, ok := Coerce(model.FieldYearBuilt, "2005")
	assert.True(t, ok)
	assert.Equal(t, int64(2005), got)

	got, _ = Coerce(model.FieldArea, "500 sqm")
	assert.Equal(t, int64(500), got)

	got, _ = Coerce(model.FieldArea, "1,200.5 sq ft")
	assert.Equal(t, 1200.5, got)

	got, _ = Coerce(model.FieldStories, "two")
	assert.Equal(t, "two", got)
}

func TestCoerce_Sprinklers(t *testing.T) {
	for _, raw := range []string{"Yes", "Y", "true", "1", " YES "} {
		got, ok := Coerce(model.FieldSprinklers, raw)
		assert.True(t, ok, raw)
		assert.Equal(t, true, got, raw)
	}
	for _, raw := range []string{"No", "N", "false", "0", "partial"} {
		got, ok := Coerce(model.FieldSprinklers, raw)
		assert.True(t, ok, raw)
		assert.Equal(t, false, got, raw)
	}
}

func TestCoerce_EmptyAndMeta(t *testing.T) {
	_, ok := Coerce(model.FieldInsured, "   ")
	assert.False(t, ok)

	_, ok = Coerce(model.FieldSprinklers, "")
	assert.False(t, ok)

	_, ok = Coerce(model.FieldSourceFile, "a.pdf")
	assert.False(t, ok, "metadata is never extracted")

	got, ok := Coerce(model.FieldInsured, "  Acme Ltd ")
	assert.True(t, ok)
	assert.Equal(t, "Acme Ltd", got)
}

func TestCleanText(t *testing.T) {
	bound := DefaultLibrary.boundaryRe()

	assert.Equal(t, "Storage", cleanText("Storage Fire Hazards: none", bound, false))
	assert.Equal(t, "Steel frame", cleanText("Steel frame Coverage", nil, true))
	assert.Equal(t, "Steel frame Coverage", cleanText("Steel frame Coverage", nil, false))
	assert.Equal(t, "", cleanText("Address: 1 Main St", bound, true))
	assert.Equal(t, "Brick", cleanText("Brick - Deductible: 500", bound, false))
}
