package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"loan-desk/internal/api/handler/dto"
	mw "loan-desk/internal/api/middleware"
	"loan-desk/internal/config"
	"loan-desk/internal/pkg/apperrors"
)

type AuthHandler struct {
	cfg    config.AuthConfig
	now    func() time.Time
	logger *slog.Logger
}

func NewAuthHandler(cfg config.AuthConfig, l *slog.Logger) *AuthHandler {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &AuthHandler{
		cfg:    cfg,
		now:    time.Now,
		logger: l.With("component", "AuthHandler"),
	}
}

// GenerateBearerToken issues a signed token for a username, customer and role.
//
// @Summary Generate a JWT bearer token
// @Description Issues an HS256 token carrying the customerId and role claims. Mounted only when server.auth.issueTokens is true. Intended for development and tests.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "Token subject"
// @Success 200 {object} dto.TokenResponse "Token successfully generated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateBearerToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.Warn("Failed to decode token request", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := dto.Validate(req); err != nil {
		respondError(w, err)
		return
	}
	if req.Role == mw.RoleCustomer && req.CustomerID <= 0 {
		respondError(w, apperrors.NewValidationError("customerId", "customerId is required for the customer role"))
		return
	}

	issuedAt := h.now()
	token, err := mw.IssueToken(h.cfg.JWTSecret, h.cfg.TokenTTL, mw.Identity{
		Username:   req.Username,
		CustomerID: req.CustomerID,
		Role:       req.Role,
	}, issuedAt)
	if err != nil {
		h.logger.Error("Failed to sign token", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInternalServer, err))
		return
	}

	h.logger.Info("Issued bearer token", "username", req.Username, "role", req.Role)
	respondJSON(w, http.StatusOK, dto.TokenResponse{
		Token:     "Bearer " + token,
		ExpiresAt: issuedAt.Add(h.cfg.TokenTTL).UTC(),
	})
}
