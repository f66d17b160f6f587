package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arjun-mahar/recordsearch/internal/indexer"
	apperrors "github.com/arjun-mahar/recordsearch/pkg/errors"
	"github.com/arjun-mahar/recordsearch/pkg/kafka"
	"github.com/arjun-mahar/recordsearch/pkg/resilience"
)

const (
	maxExternalIDLength = 255
	maxAuthorLength     = 255
	maxTextLength       = 1048576
)

// IngestRequest is the JSON body accepted by POST /records. Text may be
// empty: such records are stored but skipped at index time.
type IngestRequest struct {
	ExternalID string `json:"external_id"`
	Author     string `json:"author"`
	Text       string `json:"text"`
}

// IngestResponse is returned after a record is accepted.
type IngestResponse struct {
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateIngestRequest checks field length constraints. An empty text
// field is valid; it becomes a skip during indexing, not an error.
func ValidateIngestRequest(req *IngestRequest) error {
	errs := make(map[string]string)
	id := strings.TrimSpace(req.ExternalID)
	if id == "" {
		errs["external_id"] = "external_id is required"
	} else if len(id) > maxExternalIDLength {
		errs["external_id"] = fmt.Sprintf("external_id must be at most %d characters", maxExternalIDLength)
	}
	if len(req.Author) > maxAuthorLength {
		errs["author"] = fmt.Sprintf("author must be at most %d characters", maxAuthorLength)
	}
	if len(req.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d characters", maxTextLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// Handler serves POST /records: validate, persist, and request a reindex.
type Handler struct {
	store    *Store
	producer *kafka.Producer
	logger   *slog.Logger
}

// NewHandler creates a Handler. producer may be nil; records are then
// stored without triggering a rebuild.
func NewHandler(store *Store, producer *kafka.Producer) *Handler {
	return &Handler{
		store:    store,
		producer: producer,
		logger:   slog.Default().With("component", "ingest-handler"),
	}
}

// Ingest handles POST /records.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid JSON body"))
		return
	}
	if err := ValidateIngestRequest(&req); err != nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, err.Error()))
		return
	}

	rec := indexer.Record{ExternalID: req.ExternalID, Author: req.Author, Text: req.Text}
	if err := h.store.Save(ctx, rec); err != nil {
		if errors.Is(err, apperrors.ErrRecordExists) {
			h.writeError(w, err)
			return
		}
		h.logger.Error("failed to store record", "external_id", req.ExternalID, "error", err)
		h.writeError(w, apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "failed to store record"))
		return
	}

	if h.producer != nil {
		event := indexer.ReindexEvent{Reason: "record ingested", RequestedAt: time.Now().UTC()}
		err := resilience.Retry(ctx, "publish-reindex", resilience.RetryConfig{}, func() error {
			return h.producer.Publish(ctx, kafka.Event{Key: req.ExternalID, Value: event})
		})
		if err != nil {
			// The record is stored; the next reindex picks it up.
			h.logger.Error("failed to publish reindex event", "external_id", req.ExternalID, "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(IngestResponse{ExternalID: req.ExternalID, Status: "accepted"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.HTTPStatusCode(err))
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
