package handler

import (
	"encoding/json"
	"net/http"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
	"clinic-booking/pkg/validator"

	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	credentialUsecase usecase.CredentialUsecase
	validator         *validator.CustomValidator
	log               *logrus.Logger
}

func NewAuthHandler(credentialUsecase usecase.CredentialUsecase, validator *validator.CustomValidator, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		credentialUsecase: credentialUsecase,
		validator:         validator,
		log:               log,
	}
}

// Register handles patient and administrator sign-up
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.credentialUsecase.Register(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusCreated, "User registered successfully", user)
}

// Login handles user login
// @Summary Login user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	tokens, err := h.credentialUsecase.Login(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Login successful", tokens)
}

// Logout revokes the calling access token and, if supplied, its refresh token
// @Summary Logout user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	tokenID, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	// Body is optional
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.credentialUsecase.Logout(r.Context(), userID, tokenID, req.RefreshToken); err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// RefreshToken exchanges a refresh token for a new pair
// @Summary Refresh access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	tokens, err := h.credentialUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Token refreshed successfully", tokens)
}

// GetCurrentUser returns the authenticated user's profile
// @Summary Get current user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	user, err := h.credentialUsecase.GetCurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.credentialUsecase.ChangePassword(r.Context(), userID, &req); err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Password changed, please login again", nil)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.credentialUsecase.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", user)
}

// RecoveryQuestions returns the stored security questions of an account
func (h *AuthHandler) RecoveryQuestions(w http.ResponseWriter, r *http.Request) {
	var req dto.RecoveryQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	questions, err := h.credentialUsecase.SecurityQuestions(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Security questions retrieved successfully", questions)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.credentialUsecase.ResetPassword(r.Context(), &req); err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Password reset successfully", nil)
}
