package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kamrikalive/logg/internal/adapter/metrics"
	"github.com/kamrikalive/logg/internal/domain"
)

const (
	defaultHours = 1
	defaultLimit = 100
	// Stream reported when the payload does not name one.
	defaultStream = "stdout"
)

// LogReader is the use case the handler delegates to.
type LogReader interface {
	Read(ctx context.Context, resourceID string, since, until time.Time, pageSize int, pageToken string) (*domain.LogPage, error)
}

// LogsHandler serves GET /logs.
type LogsHandler struct {
	reader  LogReader
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewLogsHandler creates a new LogsHandler.
func NewLogsHandler(reader LogReader, logger *slog.Logger, m *metrics.Metrics) *LogsHandler {
	return &LogsHandler{
		reader:  reader,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

type logEntryResponse struct {
	Timestamp string         `json:"timestamp"`
	Level     int32          `json:"level"`
	Message   string         `json:"message"`
	JSON      map[string]any `json:"json"`
	Stream    string         `json:"stream"`
}

type logsResponse struct {
	Logs          []logEntryResponse `json:"logs"`
	Count         int                `json:"count"`
	NextPageToken *string            `json:"nextPageToken"`
}

// ServeHTTP validates query parameters, reads one page and reshapes it.
func (h *LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, verr := parseLogsParams(r)
	if verr != nil {
		h.count("invalid")
		writeValidationError(w, verr)
		return
	}

	window := domain.NewTimeWindow(h.now().UTC(), params.hours)

	page, err := h.reader.Read(r.Context(), params.containerID, window.Since, window.Until, params.limit, params.pageToken)
	if err != nil {
		h.count("error")
		h.logger.Error("failed to read logs", "error", err, "container_id", params.containerID)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := logsResponse{Logs: make([]logEntryResponse, 0, len(page.Entries))}
	for _, entry := range page.Entries {
		resp.Logs = append(resp.Logs, toEntryResponse(entry))
	}
	resp.Count = len(resp.Logs)
	if page.NextPageToken != "" {
		tok := page.NextPageToken
		resp.NextPageToken = &tok
	}

	h.count("ok")
	if h.metrics != nil {
		h.metrics.EntriesTotal.Add(float64(resp.Count))
	}
	respondWithJSON(w, h.logger, http.StatusOK, resp)
}

func (h *LogsHandler) count(status string) {
	if h.metrics != nil {
		h.metrics.RequestsTotal.WithLabelValues(status).Inc()
	}
}

func toEntryResponse(e domain.LogEntry) logEntryResponse {
	out := logEntryResponse{
		Timestamp: FormatTimestamp(e.Timestamp),
		Level:     e.Level,
		Message:   e.Message,
		JSON:      e.Payload,
		Stream:    defaultStream,
	}
	if out.JSON == nil {
		out.JSON = map[string]any{}
	}
	if out.Message == "" {
		if v, ok := e.Payload["message"]; ok {
			out.Message = payloadString(v)
		}
	}
	if v, ok := e.Payload["stream"]; ok && v != nil {
		out.Stream = payloadString(v)
	}
	return out
}

// payloadString renders a payload value as text; non-strings are JSON-encoded.
func payloadString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// FormatTimestamp renders t in UTC as ISO-8601 with a Z suffix at microsecond
// precision. Sub-microsecond digits are truncated and a zero fraction is omitted.
func FormatTimestamp(t time.Time) string {
	t = t.UTC().Truncate(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05") + "Z"
	}
	return t.Format("2006-01-02T15:04:05.000000") + "Z"
}

type logsParams struct {
	containerID string
	hours       int
	limit       int
	pageToken   string
}

type fieldError struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

type validationError struct {
	Detail []fieldError `json:"detail"`
}

func parseLogsParams(r *http.Request) (logsParams, *validationError) {
	q := r.URL.Query()
	p := logsParams{
		containerID: q.Get("container_id"),
		pageToken:   q.Get("page_token"),
	}
	var errs []fieldError

	// Only an absent key is missing; an empty value is passed through.
	if !q.Has("container_id") {
		errs = append(errs, fieldError{Loc: []string{"query", "container_id"}, Msg: "field required"})
	}

	var fe *fieldError
	if p.hours, fe = intParam(q.Get("hours"), "hours", defaultHours, domain.MinWindowHours, domain.MaxWindowHours); fe != nil {
		errs = append(errs, *fe)
	}
	if p.limit, fe = intParam(q.Get("limit"), "limit", defaultLimit, domain.MinPageSize, domain.MaxPageSize); fe != nil {
		errs = append(errs, *fe)
	}

	if len(errs) > 0 {
		return logsParams{}, &validationError{Detail: errs}
	}
	return p, nil
}

func intParam(raw, name string, def, lo, hi int) (int, *fieldError) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &fieldError{Loc: []string{"query", name}, Msg: "value is not a valid integer"}
	}
	if v < lo || v > hi {
		return 0, &fieldError{Loc: []string{"query", name}, Msg: fmt.Sprintf("ensure this value is between %d and %d", lo, hi)}
	}
	return v, nil
}

func writeValidationError(w http.ResponseWriter, verr *validationError) {
	b, _ := json.Marshal(verr)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	w.Write(b)
}
