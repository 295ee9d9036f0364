package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"choreboard/internal/models"
	"choreboard/internal/repository"
)

var (
	ErrFamilyNotFound  = errors.New("family not found")
	ErrNotFamilyMember = errors.New("not a member of this family")
)

const joinCodeSuffixLength = 5

var joinCodeAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

type FamilyService struct {
	familyRepo repository.FamilyRepository
	userRepo   repository.UserRepository
}

func NewFamilyService(familyRepo repository.FamilyRepository, userRepo repository.UserRepository) *FamilyService {
	return &FamilyService{
		familyRepo: familyRepo,
		userRepo:   userRepo,
	}
}

// Create makes a new family and moves the caller into it as admin. A caller
// already in another family is silently re-affiliated; that matches the join
// flow and is the documented current behavior.
func (service *FamilyService) Create(ctx context.Context, caller models.User, name string) (models.Family, error) {
	family, err := service.createWithUniqueCode(ctx, name)
	if err != nil {
		return models.Family{}, err
	}

	if err := service.userRepo.SetFamily(ctx, caller.ID, family.ID, models.RoleAdmin); err != nil {
		return models.Family{}, fmt.Errorf("adding creator to family: %w", err)
	}
	return family, nil
}

// Join affiliates the caller with the family behind the join code, resetting
// their role to member.
func (service *FamilyService) Join(ctx context.Context, caller models.User, joinCode string) (models.Family, error) {
	family, err := service.familyRepo.FindByJoinCode(ctx, joinCode)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Family{}, ErrFamilyNotFound
	}
	if err != nil {
		return models.Family{}, fmt.Errorf("resolving join code: %w", err)
	}

	if err := service.userRepo.SetFamily(ctx, caller.ID, family.ID, models.RoleMember); err != nil {
		return models.Family{}, fmt.Errorf("joining family: %w", err)
	}
	return family, nil
}

// Get returns the family and its member list. Callers outside the family are
// rejected, authenticated or not.
func (service *FamilyService) Get(ctx context.Context, caller models.User, familyID string) (models.Family, []models.User, error) {
	family, err := service.familyRepo.FindByID(ctx, familyID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Family{}, nil, ErrFamilyNotFound
	}
	if err != nil {
		return models.Family{}, nil, fmt.Errorf("finding family: %w", err)
	}

	if caller.FamilyID == nil || *caller.FamilyID != family.ID {
		return models.Family{}, nil, ErrNotFamilyMember
	}

	members, err := service.userRepo.FindByFamily(ctx, family.ID)
	if err != nil {
		return models.Family{}, nil, fmt.Errorf("listing members: %w", err)
	}
	return family, members, nil
}

// createWithUniqueCode retries on join-code collisions; the unique index on
// families.join_code is the backstop.
func (service *FamilyService) createWithUniqueCode(ctx context.Context, name string) (models.Family, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateJoinCode(name)
		if err != nil {
			return models.Family{}, err
		}

		family, err := service.familyRepo.Create(ctx, models.Family{Name: name, JoinCode: code})
		if repository.IsJoinCodeConflict(err) {
			continue
		}
		if err != nil {
			return models.Family{}, err
		}
		return family, nil
	}
	return models.Family{}, errors.New("could not generate a unique join code")
}

// generateJoinCode builds a human-shareable code: slug of the family name plus
// a short random suffix, e.g. "the-smiths-x7k2p".
func generateJoinCode(name string) (string, error) {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "family"
	}

	suffix := make([]rune, joinCodeSuffixLength)
	for i := range suffix {
		index, err := rand.Int(rand.Reader, big.NewInt(int64(len(joinCodeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("generating join code suffix: %w", err)
		}
		suffix[i] = joinCodeAlphabet[index.Int64()]
	}

	return slug + "-" + string(suffix), nil
}
