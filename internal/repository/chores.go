package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"choreboard/internal/models"
)

type ChoreFilter struct {
	Status       *models.ChoreStatus
	AssignedToID *string
}

type ChoreRepository interface {
	Create(ctx context.Context, chore models.Chore) (models.Chore, error)
	FindByID(ctx context.Context, id string) (models.Chore, error)
	FindByFamily(ctx context.Context, familyID string, filter ChoreFilter) ([]models.ChoreWithAssignee, error)
	UpdateStatus(ctx context.Context, id string, status models.ChoreStatus) error
	Reassign(ctx context.Context, id string, assigneeID string) error
	AssignUnassigned(ctx context.Context, familyID string, memberIDs []string) (int, error)
}

type SQLiteChoreRepository struct {
	database *sql.DB
}

func NewChoreRepository(database *sql.DB) *SQLiteChoreRepository {
	return &SQLiteChoreRepository{database: database}
}

func (repository *SQLiteChoreRepository) Create(ctx context.Context, chore models.Chore) (models.Chore, error) {
	if chore.ID == "" {
		chore.ID = uuid.New().String()
	}
	now := time.Now()
	chore.CreatedAt = now
	chore.UpdatedAt = now
	if chore.Status == "" {
		chore.Status = models.ChoreStatusPending
	}
	if chore.Frequency == "" {
		chore.Frequency = models.FrequencyOnce
	}

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO chores (id, title, description, frequency, due_date, status, family_id, assigned_to_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chore.ID, chore.Title, chore.Description, chore.Frequency, chore.DueDate,
		chore.Status, chore.FamilyID, chore.AssignedToID, chore.CreatedAt, chore.UpdatedAt,
	)
	if err != nil {
		return models.Chore{}, fmt.Errorf("creating chore: %w", err)
	}
	return chore, nil
}

func (repository *SQLiteChoreRepository) FindByID(ctx context.Context, id string) (models.Chore, error) {
	var chore models.Chore
	err := repository.database.QueryRowContext(ctx,
		`SELECT id, title, description, frequency, due_date, status, family_id, assigned_to_id, created_at, updated_at
		FROM chores WHERE id = ?`, id,
	).Scan(
		&chore.ID, &chore.Title, &chore.Description, &chore.Frequency, &chore.DueDate,
		&chore.Status, &chore.FamilyID, &chore.AssignedToID, &chore.CreatedAt, &chore.UpdatedAt,
	)
	if err != nil {
		return models.Chore{}, fmt.Errorf("finding chore by id: %w", err)
	}
	return chore, nil
}

// FindByFamily lists a family's chores newest-first with the assignee joined in.
func (repository *SQLiteChoreRepository) FindByFamily(ctx context.Context, familyID string, filter ChoreFilter) ([]models.ChoreWithAssignee, error) {
	query := `SELECT c.id, c.title, c.description, c.frequency, c.due_date, c.status,
			c.family_id, c.assigned_to_id, c.created_at, c.updated_at,
			u.id, u.name, u.email
		FROM chores c
		LEFT JOIN users u ON u.id = c.assigned_to_id
		WHERE c.family_id = ?`
	args := []interface{}{familyID}

	if filter.Status != nil {
		query += " AND c.status = ?"
		args = append(args, *filter.Status)
	}
	if filter.AssignedToID != nil {
		query += " AND c.assigned_to_id = ?"
		args = append(args, *filter.AssignedToID)
	}

	query += " ORDER BY c.created_at DESC, c.id DESC"

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding family chores: %w", err)
	}
	defer rows.Close()

	var chores []models.ChoreWithAssignee
	for rows.Next() {
		var chore models.ChoreWithAssignee
		var assigneeID, assigneeName, assigneeEmail sql.NullString
		if err := rows.Scan(
			&chore.ID, &chore.Title, &chore.Description, &chore.Frequency, &chore.DueDate,
			&chore.Status, &chore.FamilyID, &chore.AssignedToID, &chore.CreatedAt, &chore.UpdatedAt,
			&assigneeID, &assigneeName, &assigneeEmail,
		); err != nil {
			return nil, fmt.Errorf("scanning chore: %w", err)
		}
		if assigneeID.Valid {
			chore.Assignee = &models.AssigneeSummary{
				ID:    assigneeID.String,
				Name:  assigneeName.String,
				Email: assigneeEmail.String,
			}
		}
		chores = append(chores, chore)
	}
	return chores, rows.Err()
}

// UpdateStatus is a single-statement write; concurrent callers get
// last-write-wins, which is the stated policy for per-chore mutations.
func (repository *SQLiteChoreRepository) UpdateStatus(ctx context.Context, id string, status models.ChoreStatus) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE chores SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("updating chore status: %w", err)
	}
	return nil
}

// Reassign sets a new assignee and resets the chore to pending: a new assignee
// starts the chore over.
func (repository *SQLiteChoreRepository) Reassign(ctx context.Context, id string, assigneeID string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE chores SET assigned_to_id = ?, status = ?, updated_at = ? WHERE id = ?",
		assigneeID, models.ChoreStatusPending, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("reassigning chore: %w", err)
	}
	return nil
}

// AssignUnassigned distributes every unassigned chore in the family across
// memberIDs round-robin: the i-th unassigned chore (creation order) goes to
// memberIDs[i mod N]. Runs in one transaction whose first statement writes the
// family row, so two concurrent runs for the same family serialize on the
// writer lock instead of both reading the same unassigned set. Statuses are
// left untouched; these chores had no prior assignee to reset.
func (repository *SQLiteChoreRepository) AssignUnassigned(ctx context.Context, familyID string, memberIDs []string) (int, error) {
	if len(memberIDs) == 0 {
		return 0, errors.New("no members to assign to")
	}

	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx,
		"UPDATE families SET updated_at = ? WHERE id = ?", time.Now(), familyID,
	); err != nil {
		return 0, fmt.Errorf("locking family row: %w", err)
	}

	rows, err := transaction.QueryContext(ctx,
		"SELECT id FROM chores WHERE family_id = ? AND assigned_to_id IS NULL ORDER BY created_at ASC, id ASC",
		familyID,
	)
	if err != nil {
		return 0, fmt.Errorf("finding unassigned chores: %w", err)
	}

	var choreIDs []string
	for rows.Next() {
		var choreID string
		if err := rows.Scan(&choreID); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning unassigned chore: %w", err)
		}
		choreIDs = append(choreIDs, choreID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("reading unassigned chores: %w", err)
	}
	rows.Close()

	if len(choreIDs) == 0 {
		return 0, nil
	}

	now := time.Now()
	for i, choreID := range choreIDs {
		assigneeID := memberIDs[i%len(memberIDs)]
		if _, err := transaction.ExecContext(ctx,
			"UPDATE chores SET assigned_to_id = ?, updated_at = ? WHERE id = ?",
			assigneeID, now, choreID,
		); err != nil {
			return 0, fmt.Errorf("assigning chore %s: %w", choreID, err)
		}
	}

	if err := transaction.Commit(); err != nil {
		return 0, fmt.Errorf("committing assignments: %w", err)
	}
	return len(choreIDs), nil
}
