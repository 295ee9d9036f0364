package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"choreboard/internal/middleware"
	"choreboard/internal/models"
	"choreboard/internal/repository"
	"choreboard/internal/services"
)

type ChoreHandler struct {
	choreService *services.ChoreService
	familyRepo   repository.FamilyRepository
	validate     *validator.Validate
}

func NewChoreHandler(choreService *services.ChoreService, familyRepo repository.FamilyRepository) *ChoreHandler {
	return &ChoreHandler{
		choreService: choreService,
		familyRepo:   familyRepo,
		validate:     validator.New(),
	}
}

type createChoreRequest struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description"`
	Frequency    string     `json:"frequency" validate:"omitempty,oneof=once daily weekly monthly"`
	DueDate      *time.Time `json:"dueDate"`
	AssignedToID *string    `json:"assignedToId"`
}

type assignChoreRequest struct {
	AssignedToID string `json:"assignedToId" validate:"required"`
}

func (handler *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request createChoreRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := handler.validate.Struct(request); err != nil {
		writeValidationErrors(w, err)
		return
	}

	caller := middleware.GetUser(r.Context())
	chore, err := handler.choreService.Create(r.Context(), caller, services.CreateChoreInput{
		Title:        request.Title,
		Description:  request.Description,
		Frequency:    models.Frequency(request.Frequency),
		DueDate:      request.DueDate,
		AssignedToID: request.AssignedToID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFamily):
			writeError(w, http.StatusBadRequest, "you must belong to a family to create chores")
		case errors.Is(err, services.ErrAssigneeNotInFamily):
			writeError(w, http.StatusBadRequest, "assigned user not found in your family")
		default:
			slog.Error("creating chore", "error", err)
			writeError(w, http.StatusInternalServerError, "server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]models.Chore{"chore": chore})
}

func (handler *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ChoreFilter{}
	if status := r.URL.Query().Get("status"); status != "" {
		s := models.ChoreStatus(status)
		filter.Status = &s
	}
	if assignedTo := r.URL.Query().Get("assignedToId"); assignedTo != "" {
		filter.AssignedToID = &assignedTo
	}

	caller := middleware.GetUser(r.Context())
	chores, err := handler.choreService.List(r.Context(), caller, filter)
	if err != nil {
		slog.Error("listing chores", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if chores == nil {
		chores = []models.ChoreWithAssignee{}
	}

	writeJSON(w, http.StatusOK, map[string][]models.ChoreWithAssignee{"chores": chores})
}

func (handler *ChoreHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUser(r.Context())
	chore, err := handler.choreService.MarkDone(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		handler.writeChoreError(w, err, "marking chore done")
		return
	}

	writeJSON(w, http.StatusOK, map[string]models.Chore{"chore": chore})
}

func (handler *ChoreHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var request assignChoreRequest
	if err := decodeJSON(r, &request); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := handler.validate.Struct(request); err != nil {
		writeValidationErrors(w, err)
		return
	}

	caller := middleware.GetUser(r.Context())
	chore, err := handler.choreService.Assign(r.Context(), caller, chi.URLParam(r, "id"), request.AssignedToID)
	if err != nil {
		handler.writeChoreError(w, err, "assigning chore")
		return
	}

	writeJSON(w, http.StatusOK, map[string]models.Chore{"chore": chore})
}

func (handler *ChoreHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUser(r.Context())
	result, err := handler.choreService.AutoAssign(r.Context(), caller)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFamily):
			writeError(w, http.StatusBadRequest, "you must belong to a family")
		case errors.Is(err, services.ErrNoMembers):
			writeError(w, http.StatusBadRequest, "no members in family")
		default:
			slog.Error("auto-assigning chores", "error", err)
			writeError(w, http.StatusInternalServerError, "server error")
		}
		return
	}

	if result.Assigned == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"message": "no unassigned chores"})
		return
	}

	writeJSON(w, http.StatusOK, map[string][]models.ChoreWithAssignee{"chores": result.Chores})
}

// Calendar serves the family's dated chores as an iCal feed.
func (handler *ChoreHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUser(r.Context())
	if caller.FamilyID == nil {
		writeError(w, http.StatusBadRequest, "you must belong to a family")
		return
	}

	family, err := handler.familyRepo.FindByID(r.Context(), *caller.FamilyID)
	if err != nil {
		slog.Error("finding family for calendar", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	chores, err := handler.choreService.List(r.Context(), caller, repository.ChoreFilter{})
	if err != nil {
		slog.Error("listing chores for calendar", "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=chores.ics")
	w.Write([]byte(services.BuildChoreCalendar(family, chores)))
}

func (handler *ChoreHandler) writeChoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, services.ErrChoreNotFound):
		writeError(w, http.StatusNotFound, "chore not found")
	case errors.Is(err, services.ErrChoreAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, services.ErrAssigneeNotInFamily):
		writeError(w, http.StatusBadRequest, "assignee not found in family")
	default:
		slog.Error(operation, "error", err)
		writeError(w, http.StatusInternalServerError, "server error")
	}
}
