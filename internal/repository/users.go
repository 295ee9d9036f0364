package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"choreboard/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user models.StoredUser) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (models.StoredUser, error)
	FindByFamily(ctx context.Context, familyID string) ([]models.User, error)
	SetFamily(ctx context.Context, userID string, familyID string, role models.Role) error
}

type SQLiteUserRepository struct {
	database *sql.DB
}

func NewUserRepository(database *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{database: database}
}

func (repository *SQLiteUserRepository) Create(ctx context.Context, user models.StoredUser) (models.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleMember
	}

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, family_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.FamilyID, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}
	return user.User, nil
}

func (repository *SQLiteUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, name, email, role, family_id, created_at, updated_at FROM users WHERE id = ?", id,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.FamilyID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("finding user by id: %w", err)
	}
	return user, nil
}

func (repository *SQLiteUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, name, email, role, family_id, created_at, updated_at FROM users WHERE email = ?", email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.FamilyID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("finding user by email: %w", err)
	}
	return user, nil
}

// FindByEmailWithPassword is the single lookup that exposes the password
// verifier. Only the login path may call it.
func (repository *SQLiteUserRepository) FindByEmailWithPassword(ctx context.Context, email string) (models.StoredUser, error) {
	var user models.StoredUser
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, role, family_id, created_at, updated_at FROM users WHERE email = ?", email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.FamilyID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.StoredUser{}, fmt.Errorf("finding user credentials: %w", err)
	}
	return user, nil
}

// FindByFamily returns members in creation order with id as tie-breaker. The
// auto-assign engine depends on this ordering staying stable between runs.
func (repository *SQLiteUserRepository) FindByFamily(ctx context.Context, familyID string) ([]models.User, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT id, name, email, role, family_id, created_at, updated_at FROM users WHERE family_id = ? ORDER BY created_at ASC, id ASC",
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding family members: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.FamilyID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning family member: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (repository *SQLiteUserRepository) SetFamily(ctx context.Context, userID string, familyID string, role models.Role) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE users SET family_id = ?, role = ?, updated_at = ? WHERE id = ?",
		familyID, role, time.Now(), userID,
	)
	if err != nil {
		return fmt.Errorf("updating user family: %w", err)
	}
	return nil
}
