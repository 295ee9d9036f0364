package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"choreboard/internal/models"
)

type FamilyRepository interface {
	Create(ctx context.Context, family models.Family) (models.Family, error)
	FindByID(ctx context.Context, id string) (models.Family, error)
	FindByJoinCode(ctx context.Context, joinCode string) (models.Family, error)
	Delete(ctx context.Context, id string) error
}

type SQLiteFamilyRepository struct {
	database *sql.DB
}

func NewFamilyRepository(database *sql.DB) *SQLiteFamilyRepository {
	return &SQLiteFamilyRepository{database: database}
}

func (repository *SQLiteFamilyRepository) Create(ctx context.Context, family models.Family) (models.Family, error) {
	if family.ID == "" {
		family.ID = uuid.New().String()
	}
	now := time.Now()
	family.CreatedAt = now
	family.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO families (id, name, join_code, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		family.ID, family.Name, family.JoinCode, family.CreatedAt, family.UpdatedAt,
	)
	if err != nil {
		return models.Family{}, fmt.Errorf("creating family: %w", err)
	}
	return family, nil
}

func (repository *SQLiteFamilyRepository) FindByID(ctx context.Context, id string) (models.Family, error) {
	var family models.Family
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, name, join_code, created_at, updated_at FROM families WHERE id = ?", id,
	).Scan(&family.ID, &family.Name, &family.JoinCode, &family.CreatedAt, &family.UpdatedAt)
	if err != nil {
		return models.Family{}, fmt.Errorf("finding family by id: %w", err)
	}
	return family, nil
}

func (repository *SQLiteFamilyRepository) FindByJoinCode(ctx context.Context, joinCode string) (models.Family, error) {
	var family models.Family
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, name, join_code, created_at, updated_at FROM families WHERE join_code = ?", joinCode,
	).Scan(&family.ID, &family.Name, &family.JoinCode, &family.CreatedAt, &family.UpdatedAt)
	if err != nil {
		return models.Family{}, fmt.Errorf("finding family by join code: %w", err)
	}
	return family, nil
}

// Delete removes the family; chores go with it and members fall back to
// unaffiliated via the schema's foreign keys.
func (repository *SQLiteFamilyRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM families WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting family: %w", err)
	}
	return nil
}

// IsJoinCodeConflict reports whether an insert failed on the join_code unique
// index, so callers can regenerate and retry.
func IsJoinCodeConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "families.join_code")
}
