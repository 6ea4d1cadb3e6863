package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shopfloor/internal/analytics"
	"shopfloor/internal/core"
	applog "shopfloor/internal/log"
	"shopfloor/internal/storage"
)

var errIndexOutOfRange = errors.New("index out of range")

// definitionResponse is one catalog entry plus the pass it came from.
type definitionResponse struct {
	PassID      string               `json:"passId"`
	GeneratedAt time.Time            `json:"generatedAt"`
	Index       int                  `json:"index"`
	Definition  analytics.Definition `json:"definition"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
			ServiceUnavailableError("not ready").Write(w, r)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := s.latestReport(r.Context(), wantsRefresh(r))
	if err != nil {
		s.passFailed(w, r, err)
		return
	}
	JSON(report).Header("X-Pass-ID", report.PassID).Write(w, r)
}

func (s *Server) handleDefinition(w http.ResponseWriter, r *http.Request) {
	idx, err := parseIndex(r.PathValue("index"), len(analytics.Catalog()))
	if errors.Is(err, errIndexOutOfRange) {
		NotFoundError("no such analytics definition").Write(w, r)
		return
	}
	if err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}

	report, err := s.latestReport(r.Context(), wantsRefresh(r))
	if err != nil {
		s.passFailed(w, r, err)
		return
	}
	JSON(definitionResponse{
		PassID:      report.PassID,
		GeneratedAt: report.GeneratedAt,
		Index:       idx,
		Definition:  report.Definitions[idx],
	}).Header("X-Pass-ID", report.PassID).Write(w, r)
}

func (s *Server) handleLatestArchived(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		NotFoundError("report archive is not configured").Write(w, r)
		return
	}
	report, err := s.archive.LatestReport(r.Context())
	if errors.Is(err, storage.ErrNotFound) {
		NotFoundError("no archived report").Write(w, r)
		return
	}
	if err != nil {
		s.structured.LogError(r.Context(), "Failed to read archived report", err, applog.ComponentStorage, applog.OpRead, nil)
		ErrorResponse(http.StatusInternalServerError, "failed to read archived report").Write(w, r)
		return
	}
	JSON(report).Header("X-Pass-ID", report.PassID).Write(w, r)
}

// handlePurgeCache drops every cached report so the next request runs a
// fresh pass. Ingest producers call it after writing new entries.
func (s *Server) handlePurgeCache(w http.ResponseWriter, r *http.Request) {
	n := s.reports.Size()
	s.reports.Purge()
	s.logger.InfoContext(r.Context(), "Report cache purged", "removed", n)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProjectSummary(w http.ResponseWriter, r *http.Request) {
	project := sanitizeInput(r.URL.Query().Get("project"))
	if project == "" {
		BadRequestError("project query parameter is required").Write(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.passTimeout)
	defer cancel()
	raws, err := s.fetcher.FetchTimeEntries(ctx)
	if err != nil {
		s.structured.LogError(r.Context(), "Failed to fetch time entries", err, applog.ComponentHTTP, applog.OpFetch,
			applog.NewFields().WithProject(project))
		BadGatewayError("failed to fetch time entries").Write(w, r)
		return
	}

	entries, _ := core.NormalizeAll(raws, s.opts.Location)
	summary := analytics.ProjectTimeSpent(entries, core.ProjectID(project))
	if summary.Entries == 0 {
		NotFoundError("no time entries for project").Write(w, r)
		return
	}
	JSON(summary).Write(w, r)
}

func (s *Server) passFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		// Client went away.
		return
	}
	s.structured.LogError(r.Context(), "Analytics pass failed", err, applog.ComponentAnalytics, applog.OpAggregate, nil)
	BadGatewayError("analytics pass failed").Write(w, r)
}
