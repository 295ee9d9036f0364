package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"choreboard/internal/models"
	"choreboard/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

type registerRequest struct {
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	JoinCode         string `json:"joinCode" validate:"omitempty,min=3"`
	CreateFamilyName string `json:"createFamilyName"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (handler *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var request registerRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := handler.validate.Struct(request); err != nil {
		writeValidationErrors(w, err)
		return
	}

	user, token, err := handler.authService.Register(r.Context(), services.RegisterInput{
		Name:             request.Name,
		Email:            request.Email,
		Password:         request.Password,
		JoinCode:         request.JoinCode,
		CreateFamilyName: request.CreateFamilyName,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "email already registered")
		case errors.Is(err, services.ErrInvalidJoinCode):
			writeError(w, http.StatusBadRequest, "invalid join code")
		default:
			slog.Error("registering user", "error", err)
			writeError(w, http.StatusInternalServerError, "server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (handler *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := handler.validate.Struct(request); err != nil {
		writeValidationErrors(w, err)
		return
	}

	user, token, err := handler.authService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "invalid credentials")
			return
		}
		slog.Error("logging in user", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
