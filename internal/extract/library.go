package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/quote-intake/internal/model"
)

// LibraryVersion identifies the pattern set. It is logged with every
// extraction so stored submissions can be traced to the rules that produced
// them.
const LibraryVersion = "3"

// Section is a named block of bulleted fields in a submission.
type Section string

const (
	SectionNone       Section = ""
	SectionCoverage   Section = "coverage"
	SectionRisk       Section = "risk"
	SectionFinancials Section = "financials"
)

// Sections lists the recognized section headers in document order.
var Sections = []Section{SectionCoverage, SectionRisk, SectionFinancials}

// Header returns the label that opens the section, e.g. "Coverage".
func (s Section) Header() string {
	if s == SectionNone {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Rule maps a field to the labels that introduce it. Labels are used by every
// tier; Synonyms only where the active profile allows looser matching.
type Rule struct {
	Field    model.Field
	Section  Section
	Labels   []string
	Synonyms []string
}

// Library is the ordered set of field rules shared by all tiers.
type Library struct {
	Version string
	Direct  []Rule
	Bullets []Rule
}

// DefaultLibrary is the canonical rule set.
var DefaultLibrary = &Library{
	Version: LibraryVersion,
	Direct: []Rule{
		{Field: model.FieldBroker, Labels: []string{"Broker"}, Synonyms: []string{"Insurance Broker"}},
		{Field: model.FieldInsured, Labels: []string{"Insured"}, Synonyms: []string{"Client", "Company", "Name"}},
		{Field: model.FieldAddress, Labels: []string{"Address"}, Synonyms: []string{"Location", "Property Address"}},
		{Field: model.FieldBuildingType, Labels: []string{"Building Type"}, Synonyms: []string{"Property Type", "Type"}},
		{Field: model.FieldConstruction, Labels: []string{"Construction"}, Synonyms: []string{"Construction Type"}},
		{Field: model.FieldYearBuilt, Labels: []string{"Year Built"}, Synonyms: []string{"Year"}},
		{Field: model.FieldArea, Labels: []string{"Area"}, Synonyms: []string{"Square Footage", "Size", "Surface Area"}},
		{Field: model.FieldStories, Labels: []string{"Stories"}, Synonyms: []string{"Floors", "No. of Floors", "Number of Floors"}},
		{Field: model.FieldOccupancy, Labels: []string{"Occupancy"}},
		{Field: model.FieldSprinklers, Labels: []string{"Sprinklers"}, Synonyms: []string{"Sprinkler System", "Sprinklered"}},
		{Field: model.FieldAlarmSystem, Labels: []string{"Alarm System"}, Synonyms: []string{"Security System", "Alarm"}},
	},
	Bullets: []Rule{
		{Field: model.FieldBuildingValue, Section: SectionCoverage, Labels: []string{"Building Value"}},
		{Field: model.FieldContentsValue, Section: SectionCoverage, Labels: []string{"Contents Value"}},
		{Field: model.FieldBusinessInterruption, Section: SectionCoverage, Labels: []string{"Business Interruption"}, Synonyms: []string{"BI"}},
		{Field: model.FieldDeductible, Section: SectionCoverage, Labels: []string{"Deductible"}},
		{Field: model.FieldFireHazards, Section: SectionRisk, Labels: []string{"Fire Hazards"}},
		{Field: model.FieldNaturalDisasters, Section: SectionRisk, Labels: []string{"Natural Disasters"}},
		{Field: model.FieldSecurity, Section: SectionRisk, Labels: []string{"Security"}},
		{Field: model.FieldPropertyValuation, Section: SectionFinancials, Labels: []string{"Property Valuation"}},
		{Field: model.FieldAnnualRevenue, Section: SectionFinancials, Labels: []string{"Annual Revenue"}, Synonyms: []string{"Revenue", "Annual Turnover"}},
	},
}

// names returns the rule's labels, plus synonyms when loose is set.
func (r Rule) names(loose bool) []string {
	out := append([]string(nil), r.Labels...)
	if loose {
		out = append(out, r.Synonyms...)
	}
	return out
}

// labelAlternation builds a regex alternation for labels, longest first so
// "Building Type" wins over "Type". Spaces inside a label match sep.
func labelAlternation(labels []string, sep string) string {
	sorted := append([]string(nil), labels...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	parts := make([]string, len(sorted))
	for i, l := range sorted {
		parts[i] = strings.ReplaceAll(regexp.QuoteMeta(l), " ", sep)
	}
	return "(?:" + strings.Join(parts, "|") + ")"
}

// valuePattern returns the capture expression for a field's value.
func valuePattern(f model.Field) string {
	switch f {
	case model.FieldYearBuilt:
		return `(\d{4})`
	case model.FieldStories:
		return `(\d+)`
	case model.FieldArea:
		return `(\d[\d,.]*)`
	}
	switch model.KindOf(f) {
	case model.KindBool:
		return `(\w+)`
	case model.KindMoney:
		return `[$£€]?[ \t]*(\d[\d,]*(?:\.\d[\d,]*)*)`
	default:
		return `([^\n]+)`
	}
}

// boundaryRe matches a known label (optionally bulleted) inside a captured
// value. Go regexp has no lookahead, so over-captured text values are cut at
// the first boundary instead.
func (l *Library) boundaryRe() *regexp.Regexp {
	var labels []string
	for _, r := range l.Direct {
		labels = append(labels, r.Labels...)
	}
	for _, r := range l.Bullets {
		labels = append(labels, r.Labels...)
	}
	for _, s := range Sections {
		labels = append(labels, s.Header())
	}
	return regexp.MustCompile(`(?i)(?:^|\s)(?:[-•][ \t]*)?` + labelAlternation(labels, `\s+`) + `[ \t]*[:;]`)
}

// trailingLabelRe matches a section or field label absorbed at the end of a
// value by a greedy match.
var trailingLabelRe = regexp.MustCompile(`(?i)\s+(?:Building\s+Type|Construction|Coverage|Risk|Financials)[ \t]*:?$`)

// sectionHeaderRe matches a section header at the start of a line.
var sectionHeaderRe = func() *regexp.Regexp {
	headers := make([]string, len(Sections))
	for i, s := range Sections {
		headers[i] = s.Header()
	}
	return regexp.MustCompile(`(?im)^[ \t]*(` + strings.Join(headers, "|") + `)[ \t]*:`)
}()

// sectionOf returns the section named by a header match.
func sectionOf(header string) Section {
	return Section(strings.ToLower(header))
}
