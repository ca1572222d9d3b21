package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"unirecords/internal/auth"
	"unirecords/internal/gateway/util"
)

// validate is the shared request-DTO validator.
var validate = validator.New()

// AuthHandler serves login, logout, token validation, and password change.
type AuthHandler struct {
	Auth *auth.Service
}

// LoginRequest mirrors the JSON input for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest mirrors the JSON input for POST /auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := util.DecodeJSONBody(r, &req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	result, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}

// Logout handles POST /auth/logout. The token comes from the Authorization
// header; logout of an unknown token still succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := util.ExtractToken(r)
	if err != nil {
		util.WriteJSONError(w, http.StatusUnauthorized, "forbidden", "authorization token required")
		return
	}

	if err := h.Auth.Logout(r.Context(), token); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// Validate handles GET /auth/validate. Reaching this handler means the auth
// middleware already accepted the token.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r)
	if account == nil {
		util.WriteJSONError(w, http.StatusUnauthorized, "forbidden", "invalid token")
		return
	}

	util.WriteJSON(w, http.StatusOK, account)
}

// ChangePassword handles POST /auth/change-password for the authenticated
// account.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r)
	if account == nil {
		util.WriteJSONError(w, http.StatusUnauthorized, "forbidden", "invalid token")
		return
	}

	var req ChangePasswordRequest
	if err := util.DecodeJSONBody(r, &req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	if err := h.Auth.ChangePassword(r.Context(), account.ID, req.OldPassword, req.NewPassword); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}
