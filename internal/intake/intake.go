// Package intake implements the two document ingestion entry points. Each
// call fetches one document, extracts a record, gates it for completeness
// and hands accepted records to the store as a single insert.
package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/quote-intake/internal/blob"
	"github.com/sells-group/quote-intake/internal/config"
	"github.com/sells-group/quote-intake/internal/extract"
	"github.com/sells-group/quote-intake/internal/mail"
	"github.com/sells-group/quote-intake/internal/metrics"
	"github.com/sells-group/quote-intake/internal/model"
	"github.com/sells-group/quote-intake/internal/ocr"
	"github.com/sells-group/quote-intake/internal/store"
)

const (
	msgMissingBlob       = "Missing blob filename"
	msgMissingAttachment = "Missing attachment filename"
	msgEmailAccepted     = "Successfully processed submission from email body"
	msgPDFAccepted       = "Successfully processed submission from PDF attachment"
	msgEmailIncomplete   = "Insufficient data in email body"
	msgPDFIncomplete     = "Incomplete data in PDF attachment - could not extract all required fields"
)

// Options configures a Service.
type Options struct {
	MailContainer       string
	AttachmentContainer string
	Extract             config.ExtractConfig
	// Now stamps submitted_at. Defaults to time.Now.
	Now func() time.Time
}

// Service processes documents. It holds no per-document state and is safe
// for concurrent use.
type Service struct {
	source  blob.Source
	ocr     ocr.Extractor
	store   store.Store
	email   *extract.Pipeline
	pdf     *extract.Pipeline
	opts    Options
	metrics *metrics.Metrics
}

// New creates a Service. source and st may be nil for dry runs that never
// fetch or persist.
func New(source blob.Source, extractor ocr.Extractor, st store.Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	pdfOpts := extract.Options{FallbackThreshold: opts.Extract.PDFFallbackThreshold}
	if opts.Extract.Heuristics {
		pdfOpts.Heuristic = extract.NewHeuristicTier(extract.DefaultLibrary)
	}

	return &Service{
		source:  source,
		ocr:     extractor,
		store:   st,
		email:   extract.NewEmailPipeline(extract.Options{FallbackThreshold: opts.Extract.EmailFallbackThreshold}),
		pdf:     extract.NewPDFPipeline(pdfOpts),
		opts:    opts,
		metrics: metrics.New(),
	}
}

// ProcessEmailBody fetches the named email-body blob and ingests it.
func (s *Service) ProcessEmailBody(ctx context.Context, blobName string) *Outcome {
	if blobName == "" {
		return s.reject(PathEmail, "", msgMissingBlob)
	}
	return s.run(PathEmail, blobName, func(out *Outcome) error {
		raw, err := s.fetch(ctx, s.opts.MailContainer, blobName)
		if err != nil {
			return err
		}
		return s.ingestEmail(ctx, out, raw)
	})
}

// ProcessPDFAttachment fetches the named PDF attachment and ingests it.
func (s *Service) ProcessPDFAttachment(ctx context.Context, attachmentName string) *Outcome {
	if attachmentName == "" {
		return s.reject(PathPDF, "", msgMissingAttachment)
	}
	return s.run(PathPDF, attachmentName, func(out *Outcome) error {
		content, err := s.fetch(ctx, s.opts.AttachmentContainer, attachmentName)
		if err != nil {
			return err
		}
		return s.ingestPDF(ctx, out, content)
	})
}

// IngestEmail ingests an email body already in memory.
func (s *Service) IngestEmail(ctx context.Context, name string, raw []byte) *Outcome {
	if name == "" {
		return s.reject(PathEmail, "", msgMissingBlob)
	}
	return s.run(PathEmail, name, func(out *Outcome) error {
		return s.ingestEmail(ctx, out, raw)
	})
}

// IngestPDF ingests PDF content already in memory.
func (s *Service) IngestPDF(ctx context.Context, name string, content []byte) *Outcome {
	if name == "" {
		return s.reject(PathPDF, "", msgMissingAttachment)
	}
	return s.run(PathPDF, name, func(out *Outcome) error {
		return s.ingestPDF(ctx, out, content)
	})
}

// ExtractEmail runs extraction and the gate without persisting.
func (s *Service) ExtractEmail(name string, raw []byte) (*extract.Result, extract.Verdict) {
	msg := s.decode(name, raw)
	res := s.email.Run(msg.Body)
	return res, extract.CheckCompleteness(res.Record)
}

// ExtractPDF runs text extraction, field extraction and the gate without
// persisting.
func (s *Service) ExtractPDF(ctx context.Context, name string, content []byte) (*extract.Result, extract.Verdict) {
	res := s.pdf.Run(s.pdfText(ctx, name, content))
	return res, extract.CheckCompleteness(res.Record)
}

func (s *Service) ingestEmail(ctx context.Context, out *Outcome, raw []byte) error {
	msg := s.decode(out.Document, raw)
	out.Subject = msg.Subject
	zap.L().Info("intake: email received",
		zap.String("document", out.Document),
		zap.String("subject", msg.Subject),
		zap.Bool("mime", msg.MIME),
	)
	return s.finish(ctx, out, s.email.Run(msg.Body))
}

func (s *Service) ingestPDF(ctx context.Context, out *Outcome, content []byte) error {
	return s.finish(ctx, out, s.pdf.Run(s.pdfText(ctx, out.Document, content)))
}

// decode falls back to the raw bytes when MIME parsing fails.
func (s *Service) decode(name string, raw []byte) mail.Message {
	msg, err := mail.Decode(raw)
	if err != nil {
		zap.L().Warn("intake: decode failed, using raw body",
			zap.String("document", name),
			zap.String("stage", string(StageDecode)),
			zap.Error(err),
		)
		body := string(raw)
		return mail.Message{Subject: mail.Subject(body), Body: body}
	}
	return msg
}

// pdfText returns the document text. An unreadable PDF yields empty text,
// which the gate then rejects.
func (s *Service) pdfText(ctx context.Context, name string, content []byte) string {
	if s.ocr == nil {
		zap.L().Error("intake: no PDF text extractor configured", zap.String("document", name))
		return ""
	}
	text, err := s.ocr.ExtractText(ctx, content)
	if err != nil {
		zap.L().Warn("intake: PDF text extraction failed",
			zap.String("document", name),
			zap.String("stage", string(StageExtract)),
			zap.Error(err),
		)
		return ""
	}
	return text
}

func (s *Service) finish(ctx context.Context, out *Outcome, res *extract.Result) error {
	verdict := extract.CheckCompleteness(res.Record)
	out.setResult(res, verdict)

	s.metrics.FieldsExtracted.WithLabelValues(string(out.Path)).Observe(float64(verdict.FieldCount))
	for _, tier := range res.Sources {
		s.metrics.TierFields.WithLabelValues(string(out.Path), tier).Inc()
	}

	if !verdict.Accepted {
		return &StageError{Stage: StageGate, Document: out.Document, Err: eris.Wrap(ErrIncomplete, verdict.Reason)}
	}

	if s.store == nil {
		return &StageError{Stage: StagePersist, Document: out.Document, Err: eris.New("intake: no store configured")}
	}
	sub := model.Finalize(res.Record, out.Document, s.opts.Now())
	id, err := s.store.InsertSubmission(ctx, sub)
	if err != nil {
		return &StageError{Stage: StagePersist, Document: out.Document, Err: err}
	}
	out.SubmissionID = id
	return nil
}

func (s *Service) fetch(ctx context.Context, container, name string) ([]byte, error) {
	if s.source == nil {
		return nil, &StageError{Stage: StageFetch, Document: name, Err: eris.New("intake: no document source configured")}
	}
	data, err := s.source.Fetch(ctx, container, name)
	if err != nil {
		return nil, &StageError{Stage: StageFetch, Document: name, Err: err}
	}
	return data, nil
}

func (s *Service) reject(path Path, name, message string) *Outcome {
	out := &Outcome{Path: path, Document: name, Message: message, Err: ErrMissingDocument}
	out.Status = statusFor(out.Err)
	zap.L().Warn("intake: rejected request", zap.String("path", string(path)), zap.String("reason", message))
	s.metrics.DocumentsTotal.WithLabelValues(string(path), out.StatusLabel()).Inc()
	return out
}

// run executes fn for one document and converts its error, or a panic, into
// the outcome status and message.
func (s *Service) run(path Path, name string, fn func(out *Outcome) error) (out *Outcome) {
	start := time.Now()
	out = &Outcome{Path: path, Document: name}
	log := zap.L().With(zap.String("path", string(path)), zap.String("document", name))

	defer func() {
		if r := recover(); r != nil {
			out.Err = &StageError{Stage: StageExtract, Document: name, Err: eris.Errorf("panic: %v", r)}
			out.Record, out.Sources, out.SubmissionID = nil, nil, ""
		}
		out.Status = statusFor(out.Err)
		out.Message = message(path, out)

		switch {
		case out.Err == nil:
			log.Info("intake: submission stored",
				zap.String("submission_id", out.SubmissionID),
				zap.Int("fields", out.FieldCount),
			)
		case out.Incomplete():
			log.Warn("intake: submission rejected",
				zap.String("stage", string(StageGate)),
				zap.Int("fields", out.FieldCount),
				zap.Any("missing", out.Missing),
			)
		default:
			log.Error("intake: processing failed", zap.String("stage", stageOf(out.Err)), zap.Error(out.Err))
		}

		s.metrics.DocumentsTotal.WithLabelValues(string(path), out.StatusLabel()).Inc()
		s.metrics.Duration.WithLabelValues(string(path)).Observe(time.Since(start).Seconds())
	}()

	out.Err = fn(out)
	return out
}

func message(path Path, out *Outcome) string {
	switch {
	case out.Err == nil:
		if path == PathEmail {
			return msgEmailAccepted
		}
		return msgPDFAccepted
	case out.Incomplete():
		base := msgPDFIncomplete
		if path == PathEmail {
			base = msgEmailIncomplete
		}
		if out.Reason == "" {
			return base
		}
		return fmt.Sprintf("%s: %s", base, out.Reason)
	default:
		return fmt.Sprintf("Error: %v", out.Err)
	}
}

func stageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return string(se.Stage)
	}
	return "unknown"
}
