package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"choreboard/internal/middleware"
	"choreboard/internal/models"
	"choreboard/internal/services"
)

type FamilyHandler struct {
	familyService *services.FamilyService
	validate      *validator.Validate
}

func NewFamilyHandler(familyService *services.FamilyService) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		validate:      validator.New(),
	}
}

type createFamilyRequest struct {
	Name string `json:"name" validate:"required"`
}

type joinFamilyRequest struct {
	JoinCode string `json:"joinCode" validate:"required,min=3"`
}

type familyResponse struct {
	models.Family
	Members []models.User `json:"members,omitempty"`
}

func (handler *FamilyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request createFamilyRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := handler.validate.Struct(request); err != nil {
		writeValidationErrors(w, err)
		return
	}

	caller := middleware.GetUser(r.Context())
	family, err := handler.familyService.Create(r.Context(), caller, request.Name)
	if err != nil {
		slog.Error("creating family", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]familyResponse{"family": {Family: family}})
}

func (handler *FamilyHandler) Join(w http.ResponseWriter, r *http.Request) {
	var request joinFamilyRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := handler.validate.Struct(request); err != nil {
		writeValidationErrors(w, err)
		return
	}

	caller := middleware.GetUser(r.Context())
	family, err := handler.familyService.Join(r.Context(), caller, request.JoinCode)
	if err != nil {
		if errors.Is(err, services.ErrFamilyNotFound) {
			writeError(w, http.StatusNotFound, "family not found")
			return
		}
		slog.Error("joining family", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"family":  familyResponse{Family: family},
		"message": "joined family",
	})
}

func (handler *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUser(r.Context())
	family, members, err := handler.familyService.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFamilyNotFound):
			writeError(w, http.StatusNotFound, "family not found")
		case errors.Is(err, services.ErrNotFamilyMember):
			writeError(w, http.StatusForbidden, "access denied")
		default:
			slog.Error("fetching family", "error", err)
			writeError(w, http.StatusInternalServerError, "server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]familyResponse{
		"family": {Family: family, Members: members},
	})
}
