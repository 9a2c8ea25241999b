package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/fortunes/fortunes-web/internal/apiclient"
	"github.com/fortunes/fortunes-web/internal/core"
	domain "github.com/fortunes/fortunes-web/internal/domain/analysis"
	apperrors "github.com/fortunes/fortunes-web/internal/errors"
)

const (
	analysesPath   = "/api/v1/analyses"
	defaultHistory = 50
)

// HistoryOptions bundles dependencies for NewHistory.
type HistoryOptions struct {
	API    API
	Limit  int
	Logger *slog.Logger
}

// History is the tab's copy of the user's analysis records. It is only ever
// replaced wholesale from the server so it cannot drift after mutations.
type History struct {
	api    API
	limit  int
	logger *slog.Logger

	mu      sync.RWMutex
	records []domain.Record
}

// NewHistory creates a History.
func NewHistory(opts HistoryOptions) *History {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultHistory
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &History{
		api:    opts.API,
		limit:  limit,
		logger: logger.With("component", "history"),
	}
}

// Records returns a copy of the last fetched list.
func (h *History) Records() []domain.Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]domain.Record(nil), h.records...)
}

// Refresh refetches the list from the server and replaces the local copy.
func (h *History) Refresh(ctx context.Context) ([]domain.Record, error) {
	resp, err := h.api.Fetch(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   analysesPath,
		Query:  url.Values{"limit": {strconv.Itoa(h.limit)}},
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apperrors.Failedf("list analyses: %s", resp.Status())
	}

	var records []domain.Record
	if err := resp.DecodeJSON(&records); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFailed, "list analyses")
	}

	h.mu.Lock()
	h.records = records
	h.mu.Unlock()
	return append([]domain.Record(nil), records...), nil
}

// Delete removes record id after confirm approves, then refetches the list.
// It reports whether a delete request was sent.
func (h *History) Delete(ctx context.Context, id int64, confirm core.ConfirmFunc) (bool, error) {
	if confirm == nil || !confirm(ctx, fmt.Sprintf("Delete analysis #%d?", id)) {
		return false, nil
	}

	resp, err := h.api.Fetch(ctx, apiclient.Delete(analysesPath+"/"+strconv.FormatInt(id, 10)))
	if err != nil {
		return true, err
	}
	if !resp.OK() {
		return true, apperrors.Failedf("delete analysis %d: %s", id, resp.Status())
	}

	var body struct {
		Status string `json:"status"`
	}
	_ = resp.DecodeJSON(&body)

	if _, rerr := h.Refresh(ctx); rerr != nil {
		h.logger.WarnContext(ctx, "history refresh after delete failed", "id", id, "error", rerr)
	}
	if body.Status == "not found" {
		return true, apperrors.NotFoundf("analysis %d not found", id)
	}
	return true, nil
}
