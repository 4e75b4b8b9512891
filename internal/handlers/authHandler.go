package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nvaruna/RagChatServer/internal/adapter/utils"
	"github.com/nvaruna/RagChatServer/internal/api"
	"github.com/nvaruna/RagChatServer/internal/auth"
	"github.com/nvaruna/RagChatServer/internal/domain/chatModel"
	"github.com/nvaruna/RagChatServer/pkg/logger_i"
)

type AuthHandler struct {
	users  chatModel.UserStore
	logger *logger_i.Logger
}

func NewAuthHandler(users chatModel.UserStore) *AuthHandler {
	return &AuthHandler{
		users:  users,
		logger: logger_i.NewLogger("Auth Handler"),
	}
}

// RegisterHandler godoc
// @Summary      Register a new user
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      api.RegisterRequest  true  "Email, full name and password"
// @Success      201      {object}  api.LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse "Email already registered"
// @Router       /api/auth/register [post]
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	var requestData api.RegisterRequest
	defer closeBody(r.Body, log)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil ||
		requestData.Email == "" || requestData.Password == "" || requestData.FullName == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "email, full_name and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(requestData.Email))
	_, exists, err := h.users.GetUserByEmail(r.Context(), email)
	if err != nil {
		log.Error("Error checking existing email", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	if exists {
		WriteErrorResponse(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := auth.HashPassword(requestData.Password)
	if err != nil {
		log.Error("Error hashing password", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	user := chatModel.User{
		Id:           utils.GetNewUUID(),
		Email:        email,
		FullName:     requestData.FullName,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		log.Error("Error saving user", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	token, err := auth.CreateAccessToken(user.Id)
	if err != nil {
		log.Error("Error signing token", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	log.Info("User registered", "userId", user.Id)
	writeJsonResponse(w, http.StatusCreated, api.LoginResponse{
		AccessToken: token,
		UserId:      user.Id,
		FullName:    user.FullName,
	})
}

// LoginHandler godoc
// @Summary      Log in with email and password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      api.LoginRequest  true  "Email and password"
// @Success      200      {object}  api.LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse "Invalid credentials"
// @Router       /api/auth/login [post]
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := h.logger.With("traceId", traceId(r.Context()))

	var requestData api.LoginRequest
	defer closeBody(r.Body, log)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil ||
		requestData.Email == "" || requestData.Password == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(requestData.Email))
	user, found, err := h.users.GetUserByEmail(r.Context(), email)
	if err != nil {
		log.Error("Error loading user", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if !found || !auth.VerifyPassword(user.PasswordHash, requestData.Password) {
		// same response either way, don't leak which emails exist
		WriteErrorResponse(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.CreateAccessToken(user.Id)
	if err != nil {
		log.Error("Error signing token", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Login failed")
		return
	}

	log.Info("User logged in", "userId", user.Id)
	writeJsonResponse(w, http.StatusOK, api.LoginResponse{
		AccessToken: token,
		UserId:      user.Id,
		FullName:    user.FullName,
	})
}

func closeBody(body io.ReadCloser, log *logger_i.Logger) {
	if err := body.Close(); err != nil {
		log.Error("Couldn't close the request reader :", "error", err)
	}
}
