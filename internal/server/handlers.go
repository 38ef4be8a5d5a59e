package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/quote-intake/internal/intake"
	"github.com/sells-group/quote-intake/internal/model"
	"github.com/sells-group/quote-intake/internal/store"
)

const maxRequestBytes = 1 << 20

type emailRequest struct {
	BlobFilename string `json:"blob_filename"`
}

type pdfRequest struct {
	AttachmentFilename string `json:"attachment_filename"`
}

type outcomeResponse struct {
	Status       string        `json:"status"`
	Message      string        `json:"message"`
	SubmissionID string        `json:"submission_id,omitempty"`
	Missing      []model.Field `json:"missing,omitempty"`
	FieldCount   int           `json:"field_count"`
}

// decodeRequest reads an optional JSON body. The document name may also be
// given as a query parameter.
func decodeRequest(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func (s *Server) handleEmailBody(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.BlobFilename == "" {
		req.BlobFilename = r.URL.Query().Get("blob_filename")
	}
	writeOutcome(w, s.ingester.ProcessEmailBody(r.Context(), req.BlobFilename))
}

func (s *Server) handlePDFAttachment(w http.ResponseWriter, r *http.Request) {
	var req pdfRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AttachmentFilename == "" {
		req.AttachmentFilename = r.URL.Query().Get("attachment_filename")
	}
	writeOutcome(w, s.ingester.ProcessPDFAttachment(r.Context(), req.AttachmentFilename))
}

func writeOutcome(w http.ResponseWriter, out *intake.Outcome) {
	status := "error"
	switch {
	case out.Accepted():
		status = "accepted"
	case out.Status == http.StatusBadRequest:
		status = "rejected"
	}
	writeJSON(w, out.Status, outcomeResponse{
		Status:       status,
		Message:      out.Message,
		SubmissionID: out.SubmissionID,
		Missing:      out.Missing,
		FieldCount:   out.FieldCount,
	})
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.SubmissionFilter{Insured: q.Get("insured")}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid "+key)
			return
		}
		*dst = n
	}

	subs, err := s.store.ListSubmissions(r.Context(), filter)
	if err != nil {
		zap.L().Error("server: list submissions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sub, err := s.store.GetSubmission(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}
	if err != nil {
		zap.L().Error("server: get submission", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get submission")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
