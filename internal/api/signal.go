package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/sigos-core/internal/eventlog"
	"github.com/nerrad567/sigos-core/internal/signal/arbiter"
	"github.com/nerrad567/sigos-core/internal/signal/rule"
)

// defaultTransitionLimit is used when ?limit is absent on /signal/transitions.
const defaultTransitionLimit = 50

// RuleView is the JSON form of a rule definition.
type RuleView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Indication string `json:"indication,omitempty"`
	Priority   int    `json:"priority"`
	Aspect     string `json:"aspect"`
}

// RequestView is the JSON form of a ledger entry.
type RequestView struct {
	ID         string   `json:"id"`
	Rule       RuleView `json:"rule"`
	Source     string   `json:"source"`
	AdmittedAt string   `json:"admitted_at"`
}

// ArbitrationRequest is the body of POST /signal/request and /signal/release.
type ArbitrationRequest struct {
	Rule   string `json:"rule"`
	Source string `json:"source,omitempty"`

	// All releases the rule for every source. Ignored on request.
	All bool `json:"all,omitempty"`
}

// ArbitrationResponse reports the outcome of a request or release.
type ArbitrationResponse struct {
	Result     string `json:"result"`
	ActiveRule string `json:"active_rule"`
	Source     string `json:"source"`
	Released   int    `json:"released,omitempty"`
}

func newRuleView(def *rule.Definition) RuleView {
	v := RuleView{
		ID:         def.ID,
		Name:       def.Name,
		Indication: def.Indication,
		Priority:   def.Priority,
	}
	if def.Aspect != nil {
		v.Aspect = def.Aspect.String()
	}
	return v
}

func newRequestView(e arbiter.Entry) RequestView {
	return RequestView{
		ID:         e.ID,
		Rule:       newRuleView(e.Rule),
		Source:     e.Source,
		AdmittedAt: e.AdmittedAt.UTC().Format(time.RFC3339Nano),
	}
}

// handleActive returns the displayed rule and the request holding it.
func (s *Server) handleActive(w http.ResponseWriter, _ *http.Request) {
	e, ok := s.arb.Active()
	if !ok {
		writeNotFound(w, "no active rule")
		return
	}
	writeJSON(w, http.StatusOK, newRequestView(e))
}

// handleRequests lists the ledger, lowest priority first.
func (s *Server) handleRequests(w http.ResponseWriter, _ *http.Request) {
	entries := s.arb.Requests()
	views := make([]RequestView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newRequestView(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"requests": views,
		"count":    len(views),
	})
}

// handleRules lists the supported rules in library order.
func (s *Server) handleRules(w http.ResponseWriter, _ *http.Request) {
	defs := s.arb.SupportedRules()
	views := make([]RuleView, 0, len(defs))
	for _, d := range defs {
		views = append(views, newRuleView(d))
	}

	rejections := make([]string, 0, len(s.catalog.Rejections()))
	for _, r := range s.catalog.Rejections() {
		rejections = append(rejections, r.String())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rule_set":   s.catalog.RuleSet(),
		"default":    s.arb.DefaultRule().ID,
		"rules":      views,
		"rejections": rejections,
	})
}

// handleLog returns the in-memory event log, oldest first.
func (s *Server) handleLog(w http.ResponseWriter, _ *http.Request) {
	entries := s.eventLog.Entries()
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
		"size":    s.eventLog.Size(),
	})
}

// handleLogEntry returns one entry counted from the newest (0 = newest).
func (s *Server) handleLogEntry(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeBadRequest(w, "index must be an integer")
		return
	}

	entry, err := s.eventLog.Entry(index)
	switch {
	case errors.Is(err, eventlog.ErrOutOfRange):
		writeNotFound(w, "log entry not found")
		return
	case err != nil:
		writeInternalError(w, "reading log entry failed")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleTransitions returns persisted rule transitions, newest first.
func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	limit := defaultTransitionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.transitions.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing transitions failed", "error", err)
		writeInternalError(w, "listing transitions failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transitions": records,
		"count":       len(records),
	})
}

// handleRequest asks the arbitrator to display a rule.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	req, source, ok := s.decodeArbitration(w, r)
	if !ok {
		return
	}

	result := s.arb.Request(r.Context(), req.Rule, source)
	if s.metrics != nil {
		s.metrics.ObserveRequest(result)
	}

	writeJSON(w, requestStatus(result), ArbitrationResponse{
		Result:     result.String(),
		ActiveRule: s.activeRuleID(),
		Source:     source,
	})
}

// handleRelease withdraws a request, or every request for a rule when all is set.
func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	req, source, ok := s.decodeArbitration(w, r)
	if !ok {
		return
	}

	var (
		result   arbiter.ReleaseResult
		released int
	)
	if req.All {
		released, result = s.arb.ReleaseAll(r.Context(), req.Rule, source)
	} else {
		result = s.arb.Release(r.Context(), req.Rule, source)
		if result == arbiter.ReleaseUnchanged || result == arbiter.ReleaseChanged {
			released = 1
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveRelease(result)
	}

	writeJSON(w, releaseStatus(result), ArbitrationResponse{
		Result:     result.String(),
		ActiveRule: s.activeRuleID(),
		Source:     source,
		Released:   released,
	})
}

// decodeArbitration parses the body and resolves the request source.
// It writes the error response itself and returns ok=false on failure.
func (s *Server) decodeArbitration(w http.ResponseWriter, r *http.Request) (ArbitrationRequest, string, bool) {
	var req ArbitrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return req, "", false
	}

	req.Rule = strings.TrimSpace(req.Rule)
	if req.Rule == "" {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "rule is required")
		return req, "", false
	}

	return req, s.requestSource(r, req.Source), true
}

// requestSource picks the ledger identity for r. A token subject always
// wins; otherwise the body's source, then the client IP.
func (s *Server) requestSource(r *http.Request, bodySource string) string {
	if source, ok := r.Context().Value(ctxKeySource).(string); ok && source != "" {
		return source
	}
	if src := strings.TrimSpace(bodySource); src != "" {
		return src
	}
	return clientIP(r)
}

func (s *Server) activeRuleID() string {
	if def := s.arb.ActiveRule(); def != nil {
		return def.ID
	}
	return ""
}

func requestStatus(r arbiter.RequestResult) int {
	switch r {
	case arbiter.RequestInvalid:
		return http.StatusNotFound
	case arbiter.RequestDuplicate:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

func releaseStatus(r arbiter.ReleaseResult) int {
	switch r {
	case arbiter.ReleaseInvalid:
		return http.StatusNotFound
	case arbiter.ReleaseNotFound:
		return http.StatusConflict
	case arbiter.ReleaseRefused:
		return http.StatusForbidden
	default:
		return http.StatusOK
	}
}

// clientIP returns the host part of the remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
