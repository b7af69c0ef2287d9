package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/leca/sauce-relay/internal/api"
	"github.com/leca/sauce-relay/internal/imageproc"
	"github.com/leca/sauce-relay/internal/model"
	"github.com/leca/sauce-relay/internal/sauce"
)

// PostSearch handles POST /api/v1/search -- relays an image (multipart file
// upload or allow-listed URL, exactly one of the two) to the upstream
// reverse-image-search API and returns its JSON response unchanged.
func (h *Handler) PostSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		api.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}

	params, err := parseSearchParams(r)
	if err != nil {
		api.BadRequest(w, err.Error())
		return
	}

	file, _, fileErr := r.FormFile("file")
	urlStr := r.FormValue("url")

	switch {
	case fileErr == nil && urlStr != "":
		file.Close()
		api.BadRequest(w, "file and url are mutually exclusive")
		return
	case fileErr != nil && urlStr == "":
		api.BadRequest(w, "missing required field: file or url")
		return
	}

	rec := &model.SearchRecord{
		ID:         uuid.New().String(),
		NumResults: params.NumResults,
		Dedupe:     int(params.Dedupe),
		CreatedAt:  time.Now().UTC(),
	}

	var data []byte
	if fileErr == nil {
		defer file.Close()
		data, err = io.ReadAll(io.LimitReader(file, h.Config.MaxImageBytes+1))
		if err != nil {
			api.BadRequest(w, "reading uploaded file: "+err.Error())
			return
		}
		if int64(len(data)) > h.Config.MaxImageBytes {
			api.TooLarge(w, fmt.Sprintf("uploaded image exceeds limit of %d bytes", h.Config.MaxImageBytes))
			return
		}
		rec.Source = model.SourceUpload
	} else {
		host, err := h.Sauce.ParseHostURL(urlStr)
		if err != nil {
			api.UnprocessableEntity(w, err.Error())
			return
		}
		rec.Source = model.SourceURL
		rec.SourceURL = host.String()

		buf, err := h.Sauce.Fetch(r.Context(), host)
		if err != nil {
			rec.Outcome = model.OutcomeSourceError
			rec.Detail = truncate(err.Error())
			h.record(rec, nil)
			writeSearchError(w, err)
			return
		}
		data = make([]byte, buf.Len())
		if _, err := io.ReadFull(buf, data); err != nil {
			api.Internal(w, "reading fetched image: "+err.Error())
			return
		}
	}
	rec.Bytes = int64(len(data))

	result, err := h.Sauce.Search(r.Context(), sauce.Query{
		File:   bytes.NewReader(data),
		Params: params,
	})
	if err != nil {
		rec.Outcome = model.OutcomeUpstreamError
		rec.Detail = truncate(err.Error())
		h.record(rec, nil)
		writeSearchError(w, err)
		return
	}

	rec.Outcome = model.OutcomeOK
	h.record(rec, data)

	w.Header().Set("X-Search-Id", rec.ID)
	api.WriteRawJSON(w, http.StatusOK, result)
}

// record persists the history entry and, when image bytes are available,
// renders and stores a thumbnail. Both are best-effort: the search response
// has already been decided and must not fail on bookkeeping.
func (h *Handler) record(rec *model.SearchRecord, image []byte) {
	if err := h.DB.CreateSearch(rec); err != nil {
		slog.Warn("failed to record search", "search_id", rec.ID, "error", err)
	}
	if len(image) == 0 {
		return
	}
	thumb, err := imageproc.Thumbnail(image, h.Config.ThumbnailMaxDim)
	if err != nil {
		slog.Debug("skipping thumbnail", "search_id", rec.ID, "error", err)
		return
	}
	if _, err := h.Store.Store(rec.ID, bytes.NewReader(thumb)); err != nil {
		slog.Warn("failed to store thumbnail", "search_id", rec.ID, "error", err)
	}
}

// writeSearchError maps adapter errors to HTTP responses: oversized sources
// to 413, other fetch failures to 422, upstream failures to 502.
func writeSearchError(w http.ResponseWriter, err error) {
	var ue *sauce.UpstreamError
	switch {
	case errors.Is(err, sauce.ErrSourceOversized):
		api.TooLarge(w, err.Error())
	case errors.Is(err, sauce.ErrSourceUnavailable):
		api.UnprocessableEntity(w, err.Error())
	case errors.As(err, &ue):
		api.BadGateway(w, ue.Error())
	default:
		api.Internal(w, err.Error())
	}
}

// parseSearchParams reads the optional tuning fields from the form.
func parseSearchParams(r *http.Request) (sauce.Params, error) {
	params := sauce.DefaultParams()

	if v := r.FormValue("numres"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return params, fmt.Errorf("invalid numres value %q", v)
		}
		params.NumResults = n
	}
	if v := r.FormValue("dedupe"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < int(sauce.DedupeDisabled) || n > int(sauce.DedupeAll) {
			return params, fmt.Errorf("invalid dedupe value %q", v)
		}
		params.Dedupe = sauce.Dedupe(n)
	}
	if v := r.FormValue("db"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return params, fmt.Errorf("invalid db value %q", v)
		}
		params.Database = &n
	}
	if v := r.FormValue("dbmask"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return params, fmt.Errorf("invalid dbmask value %q", v)
		}
		params.EnabledMask = &n
	}
	if v := r.FormValue("dbmaski"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return params, fmt.Errorf("invalid dbmaski value %q", v)
		}
		params.DisabledMask = &n
	}

	return params, nil
}

// truncate bounds stored error details; upstream bodies can be arbitrarily large.
func truncate(s string) string {
	const limit = 512
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
