package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/quote-intake/internal/model"
)

// entitySuffixes anchor company names when no label is reliable.
// TODO: load from config once brokers outside the UK/US are onboarded.
var entitySuffixes = []string{
	"Ltd", "Limited", "LLC", "Inc", "Incorporated", "Corp", "Corporation", "PLC", "LLP", "GmbH",
}

var (
	suffixAlt = `(?:` + strings.Join(entitySuffixes, "|") + `)`

	// insuredSuffixRe tolerates qualifiers between the label and the
	// delimiter, e.g. "Insured (legal entity):".
	insuredSuffixRe = regexp.MustCompile(
		`(?i)\b(?:Named\s+Insured|Insured|Client|Company\s+Name|Company|Applicant|Name)\b[^:;\n]{0,20}[:;][ \t]*` +
			`([^\n]*?\b` + suffixAlt + `\b\.?)`)

	// companyRe is the last-resort scan: a run of capitalized words ending in
	// an entity suffix.
	companyRe = regexp.MustCompile(`\b((?:[A-Z][\w&'.-]*[ \t]+){1,5}` + suffixAlt + `\b\.?)`)

	brokerLineRe = regexp.MustCompile(`(?i)^\s*(?:insurance\s+)?broker\b`)
)

// HeuristicTier is the loosest strategy. It recovers values from PDF text
// that the labelled tiers missed, mostly the insured company name.
type HeuristicTier struct {
	loose *DirectTier
}

// NewHeuristicTier builds the heuristic tier over lib.
func NewHeuristicTier(lib *Library) *HeuristicTier {
	return &HeuristicTier{
		loose: NewDirectTier("heuristic", lib, Profile{
			Synonyms:      true,
			LineAnchored:  true,
			Bounded:       true,
			StripTrailing: true,
		}),
	}
}

func (t *HeuristicTier) Name() string { return "heuristic" }

func (t *HeuristicTier) Extract(text string, current model.Record) model.Record {
	out := model.Record{}
	if !current.Has(model.FieldInsured) {
		if m := insuredSuffixRe.FindStringSubmatch(text); m != nil {
			out.Fill(model.FieldInsured, strings.TrimSpace(m[1]))
		}
	}

	for f, v := range t.loose.Extract(text, current) {
		out.Fill(f, v)
	}

	if !current.Has(model.FieldInsured) && !out.Has(model.FieldInsured) {
		if name, ok := scanCompany(text); ok {
			out.Fill(model.FieldInsured, name)
		}
	}
	return out
}

func scanCompany(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		if brokerLineRe.MatchString(line) {
			continue
		}
		if m := companyRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}
