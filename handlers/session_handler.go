package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/upb/parking-console/credential"
	"github.com/upb/parking-console/internal/auth"
	"github.com/upb/parking-console/internal/routeguard"
	"github.com/upb/parking-console/middleware"
	"github.com/upb/parking-console/services"
	"github.com/upb/parking-console/utils"
	"go.uber.org/zap"
)

// BackendAPI is the part of the parking backend the session endpoints use
type BackendAPI interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.LoginResponse, error)
	Register(ctx context.Context, req services.RegisterRequest) error
}

// StoreOpener resolves the credential store of a request's browser session
type StoreOpener interface {
	Store(w http.ResponseWriter, r *http.Request) credential.Store
}

// SessionResponse is returned to JSON clients instead of a redirect
type SessionResponse struct {
	Redirect string `json:"redirect"`
	Role     string `json:"role,omitempty"`
	Username string `json:"username,omitempty"`
	Subject  string `json:"subject,omitempty"`
}

// SessionHandler handles sign-in, registration and sign-out for the console
type SessionHandler struct {
	backend BackendAPI
	stores  StoreOpener
	landing routeguard.Landing
	logger  *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(backend BackendAPI, stores StoreOpener, landing routeguard.Landing, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		backend: backend,
		stores:  stores,
		landing: landing,
		logger:  logger,
	}
}

// HandleLogin handles POST /session/login
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req services.LoginRequest
	if utils.IsJSONRequest(r) {
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			HandleValidationError(w, err, h.logger)
			return
		}
	} else {
		if err := utils.ParseForm(w, r); err != nil {
			HandleValidationError(w, err, h.logger)
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	resp, err := h.backend.Login(ctx, req)
	if err != nil {
		h.logger.Info("login rejected",
			zap.String("request_id", requestID),
			zap.String("username", req.Username),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	// The token must be usable by the gate before it is stored
	principal, err := auth.DecodeToken(resp.AccessToken)
	if err != nil {
		HandleServiceError(w, services.WrapError(services.ErrorTypeExternal, services.ErrBackendResponse.Message, err), h.logger)
		return
	}

	cred := credential.Credential{Token: resp.AccessToken, Role: resp.Role}
	if err := h.stores.Store(w, r).Set(ctx, cred); err != nil {
		HandleServiceError(w, services.WrapInternal("store credential", err), h.logger)
		return
	}

	username := principal.Username
	if username == "" {
		username = resp.Username
	}

	landing := h.landing.For(principal.Role)
	h.logger.Info("user signed in",
		zap.String("request_id", requestID),
		zap.String("subject", principal.Subject),
		zap.String("role", principal.Role.String()),
		zap.String("landing", landing))

	if utils.WantsJSON(r) {
		_ = utils.WriteOK(w, SessionResponse{
			Redirect: landing,
			Role:     principal.Role.String(),
			Username: username,
			Subject:  principal.Subject,
		})
		return
	}
	http.Redirect(w, r, landing, http.StatusSeeOther)
}

// HandleRegister handles POST /session/register
func (h *SessionHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.RegisterRequest
	if utils.IsJSONRequest(r) {
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			HandleValidationError(w, err, h.logger)
			return
		}
	} else {
		if err := utils.ParseForm(w, r); err != nil {
			HandleValidationError(w, err, h.logger)
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Email = r.PostForm.Get("email")
		req.Password = r.PostForm.Get("password")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	if err := h.backend.Register(ctx, req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("user registered",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.String("username", req.Username))

	if utils.WantsJSON(r) {
		_ = utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse{
			Data:    SessionResponse{Redirect: h.landing.Login},
			Message: "User registered successfully",
		})
		return
	}
	http.Redirect(w, r, h.landing.Login, http.StatusSeeOther)
}

// HandleLogout handles GET and POST /logout
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.stores.Store(w, r).Clear(ctx); err != nil {
		HandleServiceError(w, services.WrapInternal("clear credential", err), h.logger)
		return
	}

	h.logger.Debug("user signed out",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)))

	if utils.WantsJSON(r) {
		_ = utils.WriteOK(w, SessionResponse{Redirect: h.landing.Login})
		return
	}
	http.Redirect(w, r, h.landing.Login, http.StatusFound)
}

// HandleMe handles GET /session/me and reports who the stored credential names
func (h *SessionHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cred, err := h.stores.Store(w, r).Get(ctx)
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			h.logger.Warn("credential store read failed",
				zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
				zap.Error(err))
		}
		HandleServiceError(w, services.ErrUnauthorized, h.logger)
		return
	}

	principal, err := auth.DecodeToken(cred.Token)
	if err != nil {
		HandleServiceError(w, services.ErrInvalidToken, h.logger)
		return
	}

	_ = utils.WriteOK(w, SessionResponse{
		Redirect: h.landing.For(principal.Role),
		Role:     principal.Role.String(),
		Username: principal.Username,
		Subject:  principal.Subject,
	})
}
