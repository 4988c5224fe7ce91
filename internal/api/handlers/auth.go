package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rafaeltorres/user-registry/internal/api/middleware"
	"github.com/rafaeltorres/user-registry/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         UserInfo  `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(w, err, "handlers.AuthHandler.Login")
		return
	}

	respondJSON(w, http.StatusOK, authResponse(result))
}

// Refresh takes the expired access token from the Authorization header and
// the refresh token from the body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := middleware.BearerToken(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		respondError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	result, err := h.authService.Refresh(r.Context(), accessToken, req.RefreshToken)
	if err != nil {
		respondServiceError(w, err, "handlers.AuthHandler.Refresh")
		return
	}

	respondJSON(w, http.StatusOK, authResponse(result))
}

// Me answers from the validated token claims, no store round trip.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	info := UserInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.ID = sub
	}
	if name, ok := claims["name"].(string); ok {
		info.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		info.Email = email
	}

	respondJSON(w, http.StatusOK, info)
}

func authResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.ExpiresAt,
		User: UserInfo{
			ID:    result.User.ID.String(),
			Name:  result.User.Name,
			Email: result.User.Email,
		},
	}
}
