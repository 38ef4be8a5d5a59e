package extract

import (
	"regexp"
	"strings"

	"github.com/sells-group/quote-intake/internal/model"
)

// Tier is one extraction strategy. Extract returns candidate values for
// fields not yet populated in current; it must not modify current.
type Tier interface {
	Name() string
	Extract(text string, current model.Record) model.Record
}

// Profile controls how loosely a tier matches.
type Profile struct {
	// Synonyms enables per-field label synonyms.
	Synonyms bool
	// LineAnchored requires a label to start its line.
	LineAnchored bool
	// Bounded cuts text values at the next known label.
	Bounded bool
	// StripTrailing removes a label absorbed at the end of a text value.
	StripTrailing bool
}

var (
	emailProfile = Profile{Synonyms: true, LineAnchored: true}
	pdfProfile   = Profile{Bounded: true, StripTrailing: true}
)

type compiledRule struct {
	field model.Field
	re    *regexp.Regexp
}

func (p Profile) boundary(lib *Library) *regexp.Regexp {
	if !p.Bounded {
		return nil
	}
	return lib.boundaryRe()
}

// finish coerces a captured value, applying text cleanup for text fields.
func finish(f model.Field, raw string, bound *regexp.Regexp, strip bool) (any, bool) {
	if model.KindOf(f) == model.KindText {
		raw = cleanText(raw, bound, strip)
	}
	return Coerce(f, raw)
}

// DirectTier matches "Label: value" anywhere in the text.
type DirectTier struct {
	name  string
	rules []compiledRule
	bound *regexp.Regexp
	strip bool
}

// NewDirectTier compiles the library's direct rules under profile p.
func NewDirectTier(name string, lib *Library, p Profile) *DirectTier {
	t := &DirectTier{name: name, bound: p.boundary(lib), strip: p.StripTrailing}
	for _, r := range lib.Direct {
		var expr string
		if p.LineAnchored {
			expr = `(?im)^[ \t]*` + labelAlternation(r.names(p.Synonyms), `[ \t]+`)
		} else {
			expr = `(?i)\b` + labelAlternation(r.names(p.Synonyms), `\s+`)
		}
		expr += `[ \t]*[:;][ \t]*` + valuePattern(r.Field)
		t.rules = append(t.rules, compiledRule{field: r.Field, re: regexp.MustCompile(expr)})
	}
	return t
}

func (t *DirectTier) Name() string { return t.name }

func (t *DirectTier) Extract(text string, current model.Record) model.Record {
	out := model.Record{}
	for _, r := range t.rules {
		if current.Has(r.field) {
			continue
		}
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := finish(r.field, m[1], t.bound, t.strip); ok {
			out.Fill(r.field, v)
		}
	}
	return out
}

// SectionedTier matches bulleted "- Label: value" lines inside the body of
// their section. A section body ends at the next section header.
type SectionedTier struct {
	name  string
	rules []sectionRule
	bound *regexp.Regexp
	strip bool
}

type sectionRule struct {
	compiledRule
	section Section
}

// NewSectionedTier compiles the library's bullet rules under profile p.
func NewSectionedTier(name string, lib *Library, p Profile) *SectionedTier {
	t := &SectionedTier{name: name, bound: p.boundary(lib), strip: p.StripTrailing}
	for _, r := range lib.Bullets {
		expr := `(?i)[-•][ \t]*` + labelAlternation(r.names(p.Synonyms), `[ \t]+`) +
			`[ \t]*[:;][ \t]*` + valuePattern(r.Field)
		t.rules = append(t.rules, sectionRule{
			compiledRule: compiledRule{field: r.Field, re: regexp.MustCompile(expr)},
			section:      r.Section,
		})
	}
	return t
}

func (t *SectionedTier) Name() string { return t.name }

func (t *SectionedTier) Extract(text string, current model.Record) model.Record {
	out := model.Record{}
	bodies := sectionBodies(text)
	if len(bodies) == 0 {
		return out
	}
	for _, r := range t.rules {
		if current.Has(r.field) {
			continue
		}
		for _, body := range bodies[r.section] {
			m := r.re.FindStringSubmatch(body)
			if m == nil {
				continue
			}
			if v, ok := finish(r.field, m[1], t.bound, t.strip); ok && out.Fill(r.field, v) {
				break
			}
		}
	}
	return out
}

// sectionBodies splits text into the spans that follow each section header.
func sectionBodies(text string) map[Section][]string {
	idx := sectionHeaderRe.FindAllStringSubmatchIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	bodies := make(map[Section][]string, len(Sections))
	for i, m := range idx {
		end := len(text)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		s := sectionOf(text[m[2]:m[3]])
		bodies[s] = append(bodies[s], text[m[1]:end])
	}
	return bodies
}

var (
	bulletLineRe = regexp.MustCompile(`^[-•]\s*([^:]+):\s*(.+)$`)
	keyLineRe    = regexp.MustCompile(`^([^:]+):\s*(.+)$`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// LineTier walks the text line by line, tracking the current section and
// mapping "key: value" lines through label dictionaries.
type LineTier struct {
	name     string
	global   map[string]model.Field
	sections map[Section]map[string]model.Field
	values   map[model.Field]*regexp.Regexp
	bound    *regexp.Regexp
	strip    bool
}

func dictKey(label string) string {
	return strings.ToLower(spaceRunRe.ReplaceAllString(strings.TrimSpace(label), " "))
}

// NewLineTier builds the fallback dictionaries from lib.
func NewLineTier(name string, lib *Library, p Profile) *LineTier {
	t := &LineTier{
		name:     name,
		global:   map[string]model.Field{},
		sections: map[Section]map[string]model.Field{},
		values:   map[model.Field]*regexp.Regexp{},
		bound:    p.boundary(lib),
		strip:    p.StripTrailing,
	}
	for _, r := range lib.Direct {
		for _, n := range r.names(p.Synonyms) {
			t.global[dictKey(n)] = r.Field
		}
		t.values[r.Field] = regexp.MustCompile(`(?i)^` + valuePattern(r.Field))
	}
	for _, r := range lib.Bullets {
		d := t.sections[r.Section]
		if d == nil {
			d = map[string]model.Field{}
			t.sections[r.Section] = d
		}
		for _, n := range r.names(p.Synonyms) {
			d[dictKey(n)] = r.Field
		}
		t.values[r.Field] = regexp.MustCompile(`(?i)^` + valuePattern(r.Field))
	}
	return t
}

func (t *LineTier) Name() string { return t.name }

func (t *LineTier) Extract(text string, current model.Record) model.Record {
	out := model.Record{}
	section := SectionNone
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if s, ok := headerLine(line); ok {
			section = s
			continue
		}

		var f model.Field
		var raw string
		if m := bulletLineRe.FindStringSubmatch(line); m != nil {
			f, raw = t.sections[section][dictKey(m[1])], m[2]
		} else if m := keyLineRe.FindStringSubmatch(line); m != nil {
			f, raw = t.global[dictKey(m[1])], m[2]
		}
		if f == "" || current.Has(f) || out.Has(f) {
			continue
		}
		if model.KindOf(f) != model.KindText {
			if vm := t.values[f].FindStringSubmatch(strings.TrimSpace(raw)); vm != nil {
				raw = vm[1]
			}
		}
		if v, ok := finish(f, raw, t.bound, t.strip); ok {
			out.Fill(f, v)
		}
	}
	return out
}

// headerLine reports the section a line opens, if any.
func headerLine(line string) (Section, bool) {
	lower := strings.ToLower(line)
	for _, s := range Sections {
		if strings.HasPrefix(lower, string(s)+":") {
			return s, true
		}
	}
	return SectionNone, false
}
