package model

// Field is a canonical submission column name.
type Field string

// Canonical submission fields, in column order.
const (
	FieldBroker               Field = "broker"
	FieldInsured              Field = "insured"
	FieldAddress              Field = "address"
	FieldBuildingType         Field = "building_type"
	FieldConstruction         Field = "construction"
	FieldYearBuilt            Field = "year_built"
	FieldArea                 Field = "area"
	FieldStories              Field = "stories"
	FieldOccupancy            Field = "occupancy"
	FieldSprinklers           Field = "sprinklers"
	FieldAlarmSystem          Field = "alarm_system"
	FieldBuildingValue        Field = "building_value"
	FieldContentsValue        Field = "contents_value"
	FieldBusinessInterruption Field = "business_interruption"
	FieldDeductible           Field = "deductible"
	FieldFireHazards          Field = "fire_hazards"
	FieldNaturalDisasters     Field = "natural_disasters"
	FieldSecurity             Field = "security"
	FieldPropertyValuation    Field = "property_valuation"
	FieldAnnualRevenue        Field = "annual_revenue"
	FieldSourceFile           Field = "source_file"
	FieldSubmittedAt          Field = "submitted_at"
)

// Kind describes the value type a field holds once coerced.
type Kind int

const (
	KindText Kind = iota
	KindBool
	KindInteger
	KindMoney
	KindMeta
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindMoney:
		return "money"
	case KindMeta:
		return "meta"
	default:
		return "unknown"
	}
}

// FieldSpec describes one canonical field.
type FieldSpec struct {
	Field     Field
	Kind      Kind
	Essential bool
}

var fieldSpecs = []FieldSpec{
	{FieldBroker, KindText, false},
	{FieldInsured, KindText, true},
	{FieldAddress, KindText, true},
	{FieldBuildingType, KindText, true},
	{FieldConstruction, KindText, false},
	{FieldYearBuilt, KindInteger, false},
	{FieldArea, KindInteger, false},
	{FieldStories, KindInteger, false},
	{FieldOccupancy, KindText, false},
	{FieldSprinklers, KindBool, false},
	{FieldAlarmSystem, KindText, false},
	{FieldBuildingValue, KindMoney, false},
	{FieldContentsValue, KindMoney, false},
	{FieldBusinessInterruption, KindMoney, false},
	{FieldDeductible, KindMoney, false},
	{FieldFireHazards, KindText, false},
	{FieldNaturalDisasters, KindText, false},
	{FieldSecurity, KindText, false},
	{FieldPropertyValuation, KindMoney, false},
	{FieldAnnualRevenue, KindMoney, false},
	{FieldSourceFile, KindMeta, false},
	{FieldSubmittedAt, KindMeta, false},
}

var specByField = func() map[Field]FieldSpec {
	m := make(map[Field]FieldSpec, len(fieldSpecs))
	for _, s := range fieldSpecs {
		m[s.Field] = s
	}
	return m
}()

// Fields returns all canonical fields in column order.
func Fields() []Field {
	out := make([]Field, len(fieldSpecs))
	for i, s := range fieldSpecs {
		out[i] = s.Field
	}
	return out
}

// EssentialFields returns the fields whose absence always rejects a submission.
func EssentialFields() []Field {
	var out []Field
	for _, s := range fieldSpecs {
		if s.Essential {
			out = append(out, s.Field)
		}
	}
	return out
}

// Spec returns the FieldSpec for f and whether f is canonical.
func Spec(f Field) (FieldSpec, bool) {
	s, ok := specByField[f]
	return s, ok
}

// KindOf returns the value kind of f. Unknown fields are treated as text.
func KindOf(f Field) Kind {
	if s, ok := specByField[f]; ok {
		return s.Kind
	}
	return KindText
}

// Valid reports whether f is one of the canonical fields.
func (f Field) Valid() bool {
	_, ok := specByField[f]
	return ok
}

// IsNumeric reports whether f is stored in a numeric column.
func (f Field) IsNumeric() bool {
	k := KindOf(f)
	return k == KindInteger || k == KindMoney
}
