package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mercator-hq/saturn/pkg/policy/engine"
	"mercator-hq/saturn/pkg/telemetry/logging"
	"mercator-hq/saturn/pkg/throttle"
)

// enforceResponse is the wire shape of a screening decision.
type enforceResponse struct {
	TraceID  string           `json:"trace_id"`
	Decision *engine.Decision `json:"decision"`
}

// settlementRequest reports a settled transaction to the throttle.
type settlementRequest struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Amount      float64   `json:"amount"`
	DataGap     bool      `json:"data_gap"`
	SettledAt   time.Time `json:"settled_at"`
}

// statsResponse aggregates decision counters and rule set info.
type statsResponse struct {
	Decisions engine.StatsSnapshot `json:"decisions"`
	RuleSet   ruleSetInfo          `json:"rule_set"`
	Throttle  throttleInfo         `json:"throttle"`
}

type ruleSetInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	RuleCount int    `json:"rule_count"`
}

type throttleInfo struct {
	NodeCount int `json:"node_count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleEnforce screens one transaction and returns the decision with its
// full evaluation trace.
func (s *Server) handleEnforce(w http.ResponseWriter, r *http.Request) {
	// Unknown transaction fields are ignored, not rejected: screening is
	// field-driven and extra attributes simply never match a rule.
	var tx engine.Transaction
	if err := s.decodeBody(w, r, &tx, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validateTransaction(&tx); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	decision, err := s.engine.Evaluate(r.Context(), &tx)
	if err != nil {
		s.logger.Error("evaluation failed",
			"transaction_id", tx.ID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	s.logger.Info("transaction screened",
		"request_id", logging.GetRequestID(r.Context()),
		"transaction_id", tx.ID,
		"action", decision.Action,
		"rule_id", decision.RuleID,
	)

	writeJSON(w, http.StatusOK, enforceResponse{
		TraceID:  logging.GetRequestID(r.Context()),
		Decision: decision,
	})
}

// handleSettlement records a settled transaction with the throttle.
func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	if s.throttle == nil {
		writeError(w, http.StatusServiceUnavailable, "throttle not configured")
		return
	}

	var req settlementRequest
	if err := s.decodeBody(w, r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Origin == "" || req.Destination == "" {
		writeError(w, http.StatusUnprocessableEntity, "origin and destination are required")
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusUnprocessableEntity, "amount must be non-negative")
		return
	}

	s.throttle.Observe(r.Context(), throttle.Observation{
		Origin:      req.Origin,
		Destination: req.Destination,
		Amount:      req.Amount,
		DataGap:     req.DataGap,
		SettledAt:   req.SettledAt,
	})

	w.WriteHeader(http.StatusAccepted)
}

// handleStats returns decision counters and the active rule set's identity.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		Decisions: s.engine.Stats().Snapshot(),
	}

	if rs := s.engine.CurrentRules(); rs != nil {
		resp.RuleSet = ruleSetInfo{
			Name:      rs.Name,
			Version:   rs.Version,
			RuleCount: rs.Len(),
		}
	}
	if s.throttle != nil {
		resp.Throttle = throttleInfo{NodeCount: s.throttle.NodeCount()}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleHealthz is the liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody decodes a JSON request body with a size cap. Strict decoding
// rejects unknown fields; settlement reports use it to catch typoed keys.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, strict bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	if strict {
		decoder.DisallowUnknownFields()
	}

	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// validateTransaction rejects requests the engine cannot meaningfully screen.
// Missing optional fields are fine; they degrade predicates, not requests.
func validateTransaction(tx *engine.Transaction) error {
	if tx.ID == "" {
		return fmt.Errorf("transaction id is required")
	}
	if tx.Amount < 0 {
		return fmt.Errorf("amount must be non-negative")
	}
	if tx.Origin == "" {
		return fmt.Errorf("origin is required")
	}
	if tx.Destination == "" {
		return fmt.Errorf("destination is required")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
