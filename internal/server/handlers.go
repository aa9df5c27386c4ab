package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/ledger"
	"github.com/ppiankov/wastewise/internal/model"
	"github.com/ppiankov/wastewise/internal/pipeline"
)

// ClassifyResponse is returned by POST /classify
type ClassifyResponse struct {
	Verdict *model.Verdict             `json:"verdict"`
	Record  model.ClassificationRecord `json:"record"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, http.StatusRequestEntityTooLarge, "image is too large")
			return
		}
		respondError(w, http.StatusBadRequest, "send the photo as multipart form field \"image\"")
		return
	}

	img, err := s.readImage(r)
	if err != nil {
		respondErr(w, err)
		return
	}

	verdict, err := s.classifier.Classify(r.Context(), img)
	if err != nil {
		respondErr(w, err)
		return
	}

	session := strings.TrimSpace(r.FormValue("session"))
	if session == "" {
		session = uuid.NewString()
	}

	record := s.ledger.Record(verdict, model.RecordContext{
		Filename:  img.Filename,
		FileSize:  img.Size,
		SessionID: session,
	})

	respondJSON(w, http.StatusOK, ClassifyResponse{Verdict: verdict, Record: record})
}

func (s *Server) readImage(r *http.Request) (*pipeline.Image, error) {
	file, header, err := r.FormFile("image")
	if err == nil {
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(io.LimitReader(file, s.maxUpload+1))
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		if int64(len(data)) > s.maxUpload {
			return nil, common.NewUserError("image is too large, upload a smaller photo",
				fmt.Errorf("%w: upload exceeds %d bytes", common.ErrInvalidInput, s.maxUpload))
		}
		return pipeline.NewImage(filepath.Base(header.Filename), data)
	}

	if rawURL := strings.TrimSpace(r.FormValue("url")); rawURL != "" && s.fetcher != nil {
		return s.fetcher.FetchWithRetry(r.Context(), rawURL)
	}

	return nil, common.NewUserError("attach a photo in the \"image\" field",
		fmt.Errorf("%w: no image in request", common.ErrInvalidInput))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ledger.Stats()
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		respondErr(w, err)
		return
	}

	records, err := s.ledger.Find(q)
	if err != nil {
		respondErr(w, err)
		return
	}

	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}

func (s *Server) parseQuery(r *http.Request) (ledger.Query, error) {
	v := r.URL.Query()
	q := ledger.Query{Text: v.Get("q")}

	if raw := v.Get("category"); raw != "" {
		c, ok := model.ParseOutwardCategory(raw)
		if !ok {
			return q, common.NewUserError("category must be recyclable, organic, hazardous or general",
				fmt.Errorf("%w: unknown category %q", common.ErrInvalidInput, raw))
		}
		q.Category = c
	}

	if raw := v.Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return q, common.NewUserError("days must be a positive number",
				fmt.Errorf("%w: bad days %q", common.ErrInvalidInput, raw))
		}
		q.Since = s.now().Add(-time.Duration(days) * 24 * time.Hour)
	}

	var err error
	if q.Since, err = parseDate(v.Get("from"), q.Since, false); err != nil {
		return q, err
	}
	if q.Until, err = parseDate(v.Get("to"), q.Until, true); err != nil {
		return q, err
	}
	return q, nil
}

// parseDate accepts RFC 3339 or a plain date. A plain "to" date covers the whole day.
func parseDate(raw string, current time.Time, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return current, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return current, common.NewUserError("dates must look like 2026-01-31",
			fmt.Errorf("%w: bad date %q", common.ErrInvalidInput, raw))
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	record, err := s.ledger.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleClearRecords(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Clear(); err != nil {
		respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.ledger.Export()
	if err != nil {
		respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="wastewise-history.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 50<<20))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "export file is too large")
		return
	}

	n, err := s.ledger.Import(data)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"imported": n})
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("write response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr maps sentinel errors to status codes
func respondErr(w http.ResponseWriter, err error) {
	var statusErr *pipeline.StatusError
	switch {
	case errors.As(err, &statusErr):
		respondError(w, http.StatusBadGateway, fmt.Sprintf("image download failed: %s", statusErr.Error()))
	case errors.Is(err, common.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, common.UserMessage(err))
	case errors.Is(err, common.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
