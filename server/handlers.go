package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/etnz/riskfolio"
	"github.com/etnz/riskfolio/store"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":  "healthy",
		"service": "riskfolio",
	}
	// catalogs that cache the screener tell when they last reached it.
	if c, ok := s.funds.(interface{ Refreshed() time.Time }); ok {
		if t := c.Refreshed(); !t.IsZero() {
			health["fundsRefreshedAt"] = t.UTC()
		}
	}
	s.writeJSON(w, http.StatusOK, health)
}

// scoreResponse is the outcome of a scoring.
type scoreResponse struct {
	RiskScore riskfolio.RiskScore `json:"riskScore"`
	Tier      string              `json:"tier"`
	Breakdown riskfolio.Breakdown `json:"breakdown"`
}

func (s *Server) score(p riskfolio.Profile) scoreResponse {
	b := s.scorer.Breakdown(p)
	// a computed score is always within [1, 10]
	tier, _ := riskfolio.Bucket(b.Score)
	return scoreResponse{RiskScore: b.Score, Tier: tier.Name, Breakdown: b}
}

// handleRiskScore scores the profile in the body without storing anything.
func (s *Server) handleRiskScore(w http.ResponseWriter, r *http.Request) {
	var p riskfolio.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid profile")
		return
	}
	s.writeJSON(w, http.StatusOK, s.score(p))
}

type createUserRequest struct {
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Profile riskfolio.Profile `json:"profile"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "Invalid user")
		return
	}
	u, err := s.users.Create(r.Context(), req.Name, req.Email, req.Profile)
	if err != nil {
		s.serverError(w, err, "cannot create user")
		return
	}
	s.writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

// handleUpdateUser updates the profile fields present in the body.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch riskfolio.Profile
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid profile")
		return
	}
	u, err := s.users.UpdateProfile(r.Context(), chi.URLParam(r, "userID"), patch)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.serverError(w, err, "cannot update user")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "User profile updated successfully",
		"user":    u,
	})
}

// allocationResponse is the body of a successful allocation.
type allocationResponse struct {
	Success          bool                `json:"success"`
	RiskScore        riskfolio.RiskScore `json:"riskScore"`
	Tier             string              `json:"tier"`
	InvestmentAmount riskfolio.Money     `json:"investmentAmount"`
	Allocation       any                 `json:"allocation"`
}

// handleAllocation scores the user, records the score and splits the amount
// in the body across fund categories.
func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	scored, amount, alloc, ok := s.allocate(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, allocationResponse{
		Success:          true,
		RiskScore:        scored.RiskScore,
		Tier:             scored.Tier,
		InvestmentAmount: amount,
		Allocation:       alloc,
	})
}

// handleMutualFunds is handleAllocation with the funds to buy in each
// category.
func (s *Server) handleMutualFunds(w http.ResponseWriter, r *http.Request) {
	scored, amount, alloc, ok := s.allocate(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, allocationResponse{
		Success:          true,
		RiskScore:        scored.RiskScore,
		Tier:             scored.Tier,
		InvestmentAmount: amount,
		Allocation:       riskfolio.RecommendFunds(r.Context(), s.funds, alloc, s.log),
	})
}

// allocate runs the allocation of the current request. When it fails the
// response has been written and ok is false.
func (s *Server) allocate(w http.ResponseWriter, r *http.Request) (scored scoreResponse, amount riskfolio.Money, alloc riskfolio.Allocation, ok bool) {
	log := s.log.With().Str("handler", "allocate").Logger()

	u, ok := s.user(w, r)
	if !ok {
		return scored, amount, alloc, false
	}

	var req struct {
		Amount *riskfolio.Money `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount == nil || !req.Amount.IsPositive() {
		s.writeError(w, http.StatusBadRequest, "Invalid investment amount")
		return scored, amount, alloc, false
	}
	amount = *req.Amount

	scored = s.score(u.Profile)
	if err := s.users.SetRiskScore(r.Context(), u.ID, scored.RiskScore); err != nil {
		s.serverError(w, err, "cannot record risk score")
		return scored, amount, alloc, false
	}

	alloc = s.allocator.Allocate(r.Context(), scored.RiskScore, amount)
	if alloc.Failed() {
		log.Error().Err(alloc.Cause()).Str("user", u.ID).Msg("allocation failed")
		s.writeError(w, http.StatusInternalServerError, alloc.Error)
		return scored, amount, alloc, false
	}
	return scored, amount, alloc, true
}

// user loads the user of the request path, writing a 404 when unknown.
func (s *Server) user(w http.ResponseWriter, r *http.Request) (store.User, bool) {
	u, err := s.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "User not found")
		return u, false
	}
	if err != nil {
		s.serverError(w, err, "cannot read user")
		return u, false
	}
	return u, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// writeError writes the error body of the API: success false and a message.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

func (s *Server) serverError(w http.ResponseWriter, err error, msg string) {
	s.log.Error().Err(err).Msg(msg)
	s.writeError(w, http.StatusInternalServerError, "Server error")
}
