package extract

import (
	"go.uber.org/zap"

	"github.com/sells-group/quote-intake/internal/model"
)

// Fallback thresholds: the line tier runs only while fewer fields than this
// are populated.
const (
	DefaultEmailFallbackThreshold = 10
	DefaultPDFFallbackThreshold   = 15
)

// Options configures a pipeline.
type Options struct {
	// FallbackThreshold overrides the path default when positive.
	FallbackThreshold int
	// Heuristic runs last on the PDF path. Nil disables it.
	Heuristic Tier
	// Library overrides DefaultLibrary.
	Library *Library
}

type stage struct {
	tier Tier
	// below gates the stage on the populated count; zero always runs.
	below int
}

// Pipeline runs tiers in priority order over normalized text. Later tiers
// only fill fields that are still empty. A Pipeline holds no mutable state
// and is safe for concurrent use.
type Pipeline struct {
	name      string
	version   string
	normalize func(string) string
	stages    []stage
}

// Result is the outcome of one extraction.
type Result struct {
	Record model.Record `json:"record"`
	// Sources names the tier that set each field.
	Sources map[model.Field]string `json:"sources"`
	// Text is the normalized input.
	Text string `json:"-"`
}

// NewEmailPipeline returns the email-body pipeline: direct, sectioned and
// line fallback, all accepting label synonyms.
func NewEmailPipeline(opts Options) *Pipeline {
	lib := opts.library()
	threshold := opts.threshold(DefaultEmailFallbackThreshold)
	return &Pipeline{
		name:      "email",
		version:   lib.Version,
		normalize: NormalizeEmail,
		stages: []stage{
			{tier: NewDirectTier("direct", lib, emailProfile)},
			{tier: NewSectionedTier("sectioned", lib, emailProfile)},
			{tier: NewLineTier("fallback", lib, emailProfile), below: threshold},
		},
	}
}

// NewPDFPipeline returns the PDF pipeline: canonical labels bounded by the
// next label, then opts.Heuristic when set.
func NewPDFPipeline(opts Options) *Pipeline {
	lib := opts.library()
	threshold := opts.threshold(DefaultPDFFallbackThreshold)
	p := &Pipeline{
		name:      "pdf",
		version:   lib.Version,
		normalize: NormalizePDF,
		stages: []stage{
			{tier: NewDirectTier("direct", lib, pdfProfile)},
			{tier: NewSectionedTier("sectioned", lib, pdfProfile)},
			{tier: NewLineTier("fallback", lib, pdfProfile), below: threshold},
		},
	}
	if opts.Heuristic != nil {
		p.stages = append(p.stages, stage{tier: opts.Heuristic})
	}
	return p
}

func (o Options) library() *Library {
	if o.Library != nil {
		return o.Library
	}
	return DefaultLibrary
}

func (o Options) threshold(def int) int {
	if o.FallbackThreshold > 0 {
		return o.FallbackThreshold
	}
	return def
}

// Name returns the pipeline name ("email" or "pdf").
func (p *Pipeline) Name() string { return p.name }

// Tiers returns the tier names in execution order.
func (p *Pipeline) Tiers() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.tier.Name()
	}
	return names
}

// Run normalizes text and applies every tier. Empty text yields an empty
// record.
func (p *Pipeline) Run(text string) *Result {
	res := &Result{
		Record:  model.Record{},
		Sources: map[model.Field]string{},
		Text:    p.normalize(text),
	}
	if res.Text == "" {
		return res
	}

	log := zap.L().With(
		zap.String("pipeline", p.name),
		zap.String("library_version", p.version),
	)
	for _, s := range p.stages {
		if s.below > 0 && res.Record.Populated() >= s.below {
			log.Debug("extract: tier skipped",
				zap.String("tier", s.tier.Name()),
				zap.Int("populated", res.Record.Populated()),
			)
			continue
		}
		candidates := s.tier.Extract(res.Text, res.Record)
		added := 0
		for _, f := range model.Fields() {
			v, ok := candidates[f]
			if !ok {
				continue
			}
			if res.Record.Fill(f, v) {
				res.Sources[f] = s.tier.Name()
				added++
			}
		}
		log.Debug("extract: tier applied",
			zap.String("tier", s.tier.Name()),
			zap.Int("added", added),
		)
	}
	return res
}
