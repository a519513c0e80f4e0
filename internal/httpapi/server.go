// Package httpapi exposes the trip safety pipeline over HTTP: one
// endpoint to run an assessment and admin-gated endpoints to browse
// stored results and render reports.
package httpapi

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/advisory"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/emergency"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/history"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/report"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/risk"
	"github.com/chamidugunathunga1212-coder/Trip-Safety-Agentic-Ai/internal/sanitize"
)

// Assessor runs the risk pipeline over one trip description.
type Assessor interface {
	Assess(ctx context.Context, text string) risk.Assessment
}

// Advisor turns an assessment into traveler-facing advice.
type Advisor interface {
	Advise(ctx context.Context, assessment risk.Assessment) advisory.Result
}

// Planner builds a per-location emergency plan for an assessment.
type Planner interface {
	Plan(ctx context.Context, assessment risk.Assessment) emergency.Result
}

// Renderer prints report markdown to PDF bytes.
type Renderer interface {
	Render(ctx context.Context, markdown string) ([]byte, error)
}

// Envelope is the full response body for one assessment run. The same
// JSON is persisted to history so reports can be re-rendered later.
type Envelope struct {
	AssessmentID   string           `json:"assessment_id,omitempty"`
	RiskAssessment risk.Assessment  `json:"risk_assessment"`
	Advisory       advisory.Result  `json:"advisory"`
	Emergency      emergency.Result `json:"emergency"`
	ReportMarkdown string           `json:"report_markdown"`
}

type Server struct {
	assessor   Assessor
	advisor    Advisor
	planner    Planner
	store      *history.Store
	renderer   Renderer
	adminToken string
	maxInput   int
}

type Options struct {
	Assessor   Assessor
	Advisor    Advisor
	Planner    Planner
	Store      *history.Store
	Renderer   Renderer
	AdminToken string
	MaxInput   int
}

func NewServer(opts Options) http.Handler {
	if opts.MaxInput < 1 {
		opts.MaxInput = sanitize.DefaultMaxLen
	}
	s := &Server{
		assessor:   opts.Assessor,
		advisor:    opts.Advisor,
		planner:    opts.Planner,
		store:      opts.Store,
		renderer:   opts.Renderer,
		adminToken: opts.AdminToken,
		maxInput:   opts.MaxInput,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/assess", s.handleAssess)
	mux.HandleFunc("/v1/assessments", s.handleListAssessments)
	mux.HandleFunc("/v1/assessments/", s.handleAssessmentByID)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": message})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func parseInt(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return v
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.adminToken == "" {
		writeError(w, http.StatusForbidden, "history endpoints disabled: no admin token configured")
		return false
	}
	provided := strings.TrimSpace(r.Header.Get("X-Admin-Token"))
	if !hmac.Equal([]byte(provided), []byte(s.adminToken)) {
		writeError(w, http.StatusUnauthorized, "invalid admin token")
		return false
	}
	return true
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	text := sanitize.Normalize(req.Text, s.maxInput)
	if text == "" {
		writeError(w, http.StatusBadRequest, "nothing to assess")
		return
	}

	ctx := r.Context()
	assessment := s.assessor.Assess(ctx, text)
	adv := s.advisor.Advise(ctx, assessment)
	plan := s.planner.Plan(ctx, assessment)

	env := Envelope{
		RiskAssessment: assessment,
		Advisory:       adv,
		Emergency:      plan,
	}
	env.ReportMarkdown = report.BuildMarkdown(report.Input{
		Assessment: assessment,
		Advisory:   adv,
		Emergency:  plan,
	})

	if s.store != nil {
		payload, merr := json.Marshal(env)
		if merr != nil {
			log.Printf("trip-api marshal_envelope_failed err=%v", merr)
		} else {
			rec, serr := s.store.Save(history.Record{
				InputText: text,
				RiskScore: assessment.RiskScoreFinal,
				RiskLevel: string(assessment.RiskLevel),
				Locations: assessment.Locations,
				Payload:   payload,
			})
			if serr != nil {
				log.Printf("trip-api save_failed err=%v", serr)
			} else {
				env.AssessmentID = rec.ID
			}
		}
	}

	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	recs, err := s.store.List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Summaries only; payloads are fetched per ID.
	for i := range recs {
		recs[i].Payload = nil
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "assessments": recs})
}

func (s *Server) handleAssessmentByID(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/v1/assessments/")
	id, sub := rest, ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		id, sub = rest[:i], rest[i+1:]
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "assessment id required")
		return
	}

	rec, ok, err := s.store.Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}

	switch sub {
	case "":
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "assessment": rec})
	case "report":
		md, rerr := reportMarkdown(rec)
		if rerr != nil {
			writeError(w, http.StatusInternalServerError, rerr.Error())
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(md))
	case "report.pdf":
		if s.renderer == nil {
			writeError(w, http.StatusNotImplemented, "PDF rendering not configured")
			return
		}
		md, rerr := reportMarkdown(rec)
		if rerr != nil {
			writeError(w, http.StatusInternalServerError, rerr.Error())
			return
		}
		pdf, perr := s.renderer.Render(r.Context(), md)
		if perr != nil {
			writeError(w, http.StatusInternalServerError, "render pdf: "+perr.Error())
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+rec.ID+`.pdf"`)
		_, _ = w.Write(pdf)
	default:
		writeError(w, http.StatusNotFound, "unknown resource")
	}
}

func reportMarkdown(rec history.Record) (string, error) {
	var env Envelope
	if err := json.Unmarshal(rec.Payload, &env); err != nil {
		return "", err
	}
	return env.ReportMarkdown, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "trip-safety"})
}
