package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"choreboard/internal/config"
	"choreboard/internal/models"
	"choreboard/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidJoinCode    = errors.New("invalid join code")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenUserNotFound  = errors.New("user not found")
)

type AuthService struct {
	userRepo      repository.UserRepository
	familyService *FamilyService
	config        config.Config
}

func NewAuthService(cfg config.Config, userRepo repository.UserRepository, familyService *FamilyService) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		familyService: familyService,
		config:        cfg,
	}
}

type RegisterInput struct {
	Name             string
	Email            string
	Password         string
	JoinCode         string
	CreateFamilyName string
}

// Register creates a user and, depending on the input, joins an existing
// family (role member), creates a new one (role admin), or leaves the user
// unaffiliated and self-administering.
func (service *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, string, error) {
	_, err := service.userRepo.FindByEmail(ctx, input.Email)
	if err == nil {
		return models.User{}, "", ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", fmt.Errorf("checking email: %w", err)
	}

	var familyID *string
	role := models.RoleAdmin

	switch {
	case input.JoinCode != "":
		family, err := service.familyService.familyRepo.FindByJoinCode(ctx, input.JoinCode)
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, "", ErrInvalidJoinCode
		}
		if err != nil {
			return models.User{}, "", fmt.Errorf("resolving join code: %w", err)
		}
		familyID = &family.ID
		role = models.RoleMember
	case input.CreateFamilyName != "":
		family, err := service.familyService.createWithUniqueCode(ctx, input.CreateFamilyName)
		if err != nil {
			return models.User{}, "", fmt.Errorf("creating family: %w", err)
		}
		familyID = &family.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, "", fmt.Errorf("hashing password: %w", err)
	}

	user, err := service.userRepo.Create(ctx, models.StoredUser{
		User: models.User{
			Name:     input.Name,
			Email:    input.Email,
			Role:     role,
			FamilyID: familyID,
		},
		PasswordHash: string(hash),
	})
	if err != nil {
		return models.User{}, "", fmt.Errorf("creating user: %w", err)
	}

	token, err := service.IssueToken(user.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// Login deliberately reports the same error for an unknown email and a wrong
// password.
func (service *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	stored, err := service.userRepo.FindByEmailWithPassword(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("looking up credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := service.IssueToken(stored.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return stored.User, token, nil
}

func (service *AuthService) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(service.config.TokenExpiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(service.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifyToken resolves a bearer token to the current public user projection.
func (service *AuthService) VerifyToken(ctx context.Context, tokenString string) (models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(service.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return models.User{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return models.User{}, ErrInvalidToken
	}

	user, err := service.userRepo.FindByID(ctx, claims.Subject)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrTokenUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("loading token user: %w", err)
	}
	return user, nil
}
