package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go-referral/internal/referral/domain"
	"go-referral/internal/referral/usecase"
	"go-referral/pkg/problemdetails"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

// ReferralEngine is the part of usecase.Engine the handlers use.
type ReferralEngine interface {
	IssueCode(ctx context.Context, ref domain.AccountRef) (string, error)
	TrackClick(ctx context.Context, code, clientIP string)
	RecordConversion(ctx context.Context, code, referredEmail string)
	Resolve(ctx context.Context, codeOrEmail string) (domain.AccountRef, error)
	Stats(ctx context.Context, code string) (*usecase.ReferralStats, error)
}

var _ ReferralEngine = (*usecase.Engine)(nil)

// Pinger reports database reachability for readiness probes.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler handles HTTP requests for referral operations
type Handler struct {
	engine     ReferralEngine
	landingURL string
	db         Pinger
	logger     *zap.Logger

	// landing clicks recorded after the redirect is sent
	inflight sync.WaitGroup
}

// NewHandler creates a new Handler
func NewHandler(engine ReferralEngine, landingURL string, db Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		engine:     engine,
		landingURL: landingURL,
		db:         db,
		logger:     logger,
	}
}

// IssueCodeRequest is the body of POST /api/v1/referrals/codes
type IssueCodeRequest struct {
	AccountKind string `json:"account_kind"`
	AccountID   string `json:"account_id"`
}

func (r IssueCodeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AccountKind, validation.Required,
			validation.In(string(domain.AccountKindProfile), string(domain.AccountKindNewsletter))),
		validation.Field(&r.AccountID, validation.Required, validation.Length(1, 128)),
	)
}

// CodeResponse is returned for an issued code
type CodeResponse struct {
	Code        string `json:"code"`
	AccountKind string `json:"account_kind"`
	AccountID   string `json:"account_id"`
	ShareURL    string `json:"share_url,omitempty"`
}

// ClickRequest is the body of POST /api/v1/referrals/clicks
type ClickRequest struct {
	Code string `json:"code"`
}

// ConversionRequest is the body of POST /api/v1/referrals/conversions
type ConversionRequest struct {
	Code  string `json:"code"`
	Email string `json:"email"`
}

// AccountResponse is the resolved owner of a code or email
type AccountResponse struct {
	AccountKind string `json:"account_kind"`
	AccountID   string `json:"account_id"`
	Email       string `json:"email,omitempty"`
}

// AcceptedResponse acknowledges a fire-and-forget operation
type AcceptedResponse struct {
	Status string `json:"status"`
}

var accepted = AcceptedResponse{Status: "accepted"}

// IssueCode handles POST /api/v1/referrals/codes
func (h *Handler) IssueCode(w http.ResponseWriter, r *http.Request) {
	var req IssueCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, problemdetails.New(
			http.StatusBadRequest,
			problemdetails.TypeInvalidRequest,
			"Invalid Request",
			"Request body must be valid JSON with 'account_kind' and 'account_id' fields",
		))
		return
	}
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	ref := domain.AccountRef{Kind: domain.AccountKind(req.AccountKind), ID: req.AccountID}
	code, err := h.engine.IssueCode(r.Context(), ref)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("referral code issued",
		zap.String("code", code),
		zap.String("account_kind", req.AccountKind),
		zap.String("account_id", req.AccountID),
		zap.String("caller", CallerFromContext(r.Context())),
	)

	writeJSON(w, http.StatusOK, CodeResponse{
		Code:        code,
		AccountKind: req.AccountKind,
		AccountID:   req.AccountID,
		ShareURL:    h.shareURL(code),
	})
}

// TrackClick handles POST /api/v1/referrals/clicks. It answers 202 whatever
// the engine decides.
func (h *Handler) TrackClick(w http.ResponseWriter, r *http.Request) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, problemdetails.New(
			http.StatusBadRequest,
			problemdetails.TypeInvalidRequest,
			"Invalid Request",
			"Request body must be valid JSON with a 'code' field",
		))
		return
	}

	h.engine.TrackClick(context.WithoutCancel(r.Context()), req.Code, clientIP(r))
	writeJSON(w, http.StatusAccepted, accepted)
}

// RecordConversion handles POST /api/v1/referrals/conversions
func (h *Handler) RecordConversion(w http.ResponseWriter, r *http.Request) {
	var req ConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, problemdetails.New(
			http.StatusBadRequest,
			problemdetails.TypeInvalidRequest,
			"Invalid Request",
			"Request body must be valid JSON with 'code' and 'email' fields",
		))
		return
	}

	h.engine.RecordConversion(context.WithoutCancel(r.Context()), req.Code, req.Email)
	writeJSON(w, http.StatusAccepted, accepted)
}

// Resolve handles GET /api/v1/referrals/resolve?q=
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if err := validation.Validate(q, validation.Required); err != nil {
		writeValidation(w, validation.Errors{"q": err})
		return
	}

	ref, err := h.engine.Resolve(r.Context(), q)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{
		AccountKind: string(ref.Kind),
		AccountID:   ref.ID,
		Email:       ref.Email,
	})
}

// Stats handles GET /api/v1/referrals/{code}/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Landing handles GET /r/{code}
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	// Extract request data BEFORE redirect (r may not be available in goroutine)
	ip := clientIP(r)

	target := h.shareURL(code)
	if target == "" {
		target = "/?ref=" + url.QueryEscape(code)
	}
	http.Redirect(w, r, target, http.StatusFound)

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		h.engine.TrackClick(context.WithoutCancel(r.Context()), code, ip)
	}()
}

// Drain waits for landing clicks still being recorded. Call it once the
// server has stopped accepting requests.
func (h *Handler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) shareURL(code string) string {
	if h.landingURL == "" {
		return ""
	}
	u, err := url.Parse(h.landingURL)
	if err != nil {
		h.logger.Warn("invalid landing url", zap.String("landing_url", h.landingURL), zap.Error(err))
		return ""
	}
	q := u.Query()
	q.Set("ref", code)
	u.RawQuery = q.Encode()
	return u.String()
}

// clientIP strips the port from RemoteAddr. RealIP runs earlier in the chain.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Healthz handles GET /healthz (liveness probe)
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz handles GET /readyz (readiness probe)
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Reason: "database unavailable: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}
