package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"choreboard/internal/models"
	"choreboard/internal/repository"
)

var (
	ErrNoFamily            = errors.New("user does not belong to a family")
	ErrNoMembers           = errors.New("family has no members")
	ErrAssigneeNotInFamily = errors.New("assignee is not a member of the family")
	ErrChoreNotFound       = errors.New("chore not found")
	ErrChoreAccessDenied   = errors.New("chore belongs to a different family")
)

type ChoreService struct {
	choreRepo repository.ChoreRepository
	userRepo  repository.UserRepository
}

func NewChoreService(choreRepo repository.ChoreRepository, userRepo repository.UserRepository) *ChoreService {
	return &ChoreService{
		choreRepo: choreRepo,
		userRepo:  userRepo,
	}
}

type CreateChoreInput struct {
	Title        string
	Description  string
	Frequency    models.Frequency
	DueDate      *time.Time
	AssignedToID *string
}

func (service *ChoreService) Create(ctx context.Context, caller models.User, input CreateChoreInput) (models.Chore, error) {
	if caller.FamilyID == nil {
		return models.Chore{}, ErrNoFamily
	}

	if input.AssignedToID != nil {
		if err := service.checkAssignee(ctx, *caller.FamilyID, *input.AssignedToID); err != nil {
			return models.Chore{}, err
		}
	}

	chore, err := service.choreRepo.Create(ctx, models.Chore{
		Title:        input.Title,
		Description:  input.Description,
		Frequency:    input.Frequency,
		DueDate:      input.DueDate,
		FamilyID:     *caller.FamilyID,
		AssignedToID: input.AssignedToID,
	})
	if err != nil {
		return models.Chore{}, fmt.Errorf("creating chore: %w", err)
	}
	return chore, nil
}

// List returns the caller's family chores, newest first. An unaffiliated
// caller gets an empty list rather than an error.
func (service *ChoreService) List(ctx context.Context, caller models.User, filter repository.ChoreFilter) ([]models.ChoreWithAssignee, error) {
	if caller.FamilyID == nil {
		return []models.ChoreWithAssignee{}, nil
	}
	return service.choreRepo.FindByFamily(ctx, *caller.FamilyID, filter)
}

// MarkDone completes a chore. Re-marking an already-done chore is a no-op.
func (service *ChoreService) MarkDone(ctx context.Context, caller models.User, choreID string) (models.Chore, error) {
	chore, err := service.loadFamilyChore(ctx, caller, choreID)
	if err != nil {
		return models.Chore{}, err
	}

	if err := service.choreRepo.UpdateStatus(ctx, chore.ID, models.ChoreStatusDone); err != nil {
		return models.Chore{}, err
	}
	chore.Status = models.ChoreStatusDone
	return chore, nil
}

// Assign hands a chore to a family member and resets it to pending, even when
// the chore was already done: a new assignee starts over.
func (service *ChoreService) Assign(ctx context.Context, caller models.User, choreID, assigneeID string) (models.Chore, error) {
	chore, err := service.loadFamilyChore(ctx, caller, choreID)
	if err != nil {
		return models.Chore{}, err
	}

	if err := service.checkAssignee(ctx, chore.FamilyID, assigneeID); err != nil {
		return models.Chore{}, err
	}

	if err := service.choreRepo.Reassign(ctx, chore.ID, assigneeID); err != nil {
		return models.Chore{}, err
	}
	chore.AssignedToID = &assigneeID
	chore.Status = models.ChoreStatusPending
	return chore, nil
}

type AutoAssignResult struct {
	Assigned int
	Chores   []models.ChoreWithAssignee
}

// AutoAssign distributes every unassigned chore in the caller's family across
// its members round-robin. The family is always the caller's own; a family id
// is never accepted from the client. Member order and chore order are both
// stable, so re-running against an unchanged family assigns identically.
func (service *ChoreService) AutoAssign(ctx context.Context, caller models.User) (AutoAssignResult, error) {
	if caller.FamilyID == nil {
		return AutoAssignResult{}, ErrNoFamily
	}

	members, err := service.userRepo.FindByFamily(ctx, *caller.FamilyID)
	if err != nil {
		return AutoAssignResult{}, fmt.Errorf("listing members: %w", err)
	}
	if len(members) == 0 {
		return AutoAssignResult{}, ErrNoMembers
	}

	memberIDs := make([]string, len(members))
	for i, member := range members {
		memberIDs[i] = member.ID
	}

	assigned, err := service.choreRepo.AssignUnassigned(ctx, *caller.FamilyID, memberIDs)
	if err != nil {
		return AutoAssignResult{}, fmt.Errorf("assigning chores: %w", err)
	}
	if assigned == 0 {
		return AutoAssignResult{}, nil
	}

	chores, err := service.choreRepo.FindByFamily(ctx, *caller.FamilyID, repository.ChoreFilter{})
	if err != nil {
		return AutoAssignResult{}, fmt.Errorf("reloading chores: %w", err)
	}
	return AutoAssignResult{Assigned: assigned, Chores: chores}, nil
}

func (service *ChoreService) loadFamilyChore(ctx context.Context, caller models.User, choreID string) (models.Chore, error) {
	chore, err := service.choreRepo.FindByID(ctx, choreID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chore{}, ErrChoreNotFound
	}
	if err != nil {
		return models.Chore{}, fmt.Errorf("finding chore: %w", err)
	}

	if caller.FamilyID == nil || *caller.FamilyID != chore.FamilyID {
		return models.Chore{}, ErrChoreAccessDenied
	}
	return chore, nil
}

// checkAssignee re-validates family membership on every assignment, not just
// at chore creation.
func (service *ChoreService) checkAssignee(ctx context.Context, familyID, assigneeID string) error {
	assignee, err := service.userRepo.FindByID(ctx, assigneeID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAssigneeNotInFamily
	}
	if err != nil {
		return fmt.Errorf("finding assignee: %w", err)
	}
	if assignee.FamilyID == nil || *assignee.FamilyID != familyID {
		return ErrAssigneeNotInFamily
	}
	return nil
}
