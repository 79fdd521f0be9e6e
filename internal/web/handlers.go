package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/logging"
	"github.com/JonMunkholm/mrovalidate/internal/report"
	"github.com/JonMunkholm/mrovalidate/internal/store"
	"github.com/JonMunkholm/mrovalidate/internal/web/templates"
)

// TableResponse describes a registered table.
type TableResponse struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	File      string   `json:"file"`
	Order     int      `json:"order"`
	DependsOn []string `json:"dependsOn"`
	Columns   []string `json:"columns"`
}

// RunResponse summarizes a finished validation run.
type RunResponse struct {
	RunID      uuid.UUID           `json:"runId"`
	Outcome    string              `json:"outcome"`
	StartedAt  time.Time           `json:"startedAt"`
	DurationMS int64               `json:"durationMs"`
	Violations int                 `json:"violations"`
	Tables     []core.TableSummary `json:"tables"`
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := templates.DashboardData{
		Tables:    s.deps.Validator.Tables(),
		Last:      s.LastReport(),
		History:   s.deps.History != nil,
		Generated: time.Now(),
	}
	if err := templates.Dashboard(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tables": len(s.deps.Validator.Tables()),
	})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	defs := s.deps.Validator.Tables()
	out := make([]TableResponse, 0, len(defs))
	for _, def := range defs {
		cols := make([]string, 0, len(def.FieldSpecs))
		for _, spec := range def.FieldSpecs {
			cols = append(cols, string(spec.Name))
		}
		deps := def.DependsOn
		if deps == nil {
			deps = []string{}
		}
		out = append(out, TableResponse{
			Key:       def.Info.Key,
			Label:     def.Info.Label,
			File:      def.Info.File,
			Order:     def.Info.Order,
			DependsOn: deps,
			Columns:   cols,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleValidate runs validation over the configured sources. Only one run
// is allowed at a time. Form posts from the dashboard are redirected back.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	rep, err := s.runValidation(r.Context())
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, errRunInProgress) {
			status = http.StatusConflict
		}
		s.respondError(w, r, err, status)
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	writeJSON(w, http.StatusOK, RunResponse{
		RunID:      rep.RunID,
		Outcome:    rep.Outcome(),
		StartedAt:  rep.StartedAt,
		DurationMS: rep.Duration.Milliseconds(),
		Violations: rep.ViolationCount(),
		Tables:     rep.Tables,
	})
}

func (s *Server) runValidation(ctx context.Context) (*core.Report, error) {
	if !s.runMu.TryLock() {
		return nil, errRunInProgress
	}
	defer s.runMu.Unlock()

	if s.deps.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.RunTimeout)
		defer cancel()
	}

	rep, err := s.deps.Validator.Run(ctx, s.deps.Sources)
	if err != nil {
		if s.deps.Metrics != nil {
			s.deps.Metrics.ObserveFault(err)
		}
		return nil, err
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.Observe(rep)
	}
	s.SetLastReport(rep)

	if s.deps.History != nil {
		ctx = logging.WithRunID(ctx, rep.RunID.String())
		if err := s.deps.History.SaveRun(ctx, rep); err != nil {
			logging.FromContext(ctx).Warn("failed to save run history", "error", err)
		}
	}
	return rep, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	f, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", errBadFormat, err), http.StatusBadRequest)
		return
	}

	last := s.LastReport()
	if last == nil {
		s.respondError(w, r, errNoReport, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	if f == report.FormatTSV {
		w.Header().Set("Content-Disposition", `attachment; filename="mro-errors.tsv"`)
	}
	if err := report.Write(w, f, last); err != nil {
		logging.FromContext(r.Context()).Error("write report", "error", err)
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		s.respondError(w, r, errHistoryDisabled, http.StatusNotFound)
		return
	}

	runs, err := s.deps.History.ListRuns(r.Context(), parseIntParam(r, "limit", 50))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunViolations(w http.ResponseWriter, r *http.Request) {
	if s.deps.History == nil {
		s.respondError(w, r, errHistoryDisabled, http.StatusNotFound)
		return
	}

	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		s.respondError(w, r, errBadRunID, http.StatusBadRequest)
		return
	}

	vs, err := s.deps.History.Violations(r.Context(), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if vs == nil {
		vs = []core.Violation{}
	}
	writeJSON(w, http.StatusOK, vs)
}
