package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/goppob/internal/domain"
)

// MembershipUseCase handles registration, login and profile management.
type MembershipUseCase struct {
	userRepo UserRepository
	idGen    IDGenerator
	tokens   TokenIssuer
	now      func() time.Time
}

// NewMembershipUseCase creates a new membership use case
func NewMembershipUseCase(userRepo UserRepository, idGen IDGenerator, tokens TokenIssuer) *MembershipUseCase {
	return &MembershipUseCase{
		userRepo: userRepo,
		idGen:    idGen,
		tokens:   tokens,
		now:      time.Now,
	}
}

// RegisterInput represents input for registering a member
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a new member with a zero balance.
func (uc *MembershipUseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(input.FirstName); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(input.LastName); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(input.Email)

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrEmailAlreadyRegistered
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	user := &domain.User{
		ID:           uc.idGen.Generate(),
		Email:        email,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Login verifies credentials and issues an access token.
func (uc *MembershipUseCase) Login(ctx context.Context, email, password string) (string, error) {
	if err := domain.ValidateEmail(email); err != nil {
		return "", err
	}

	user, err := uc.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if err := verifyPassword(user.PasswordHash, password); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	return uc.tokens.Generate(user)
}

// Profile returns the member without credentials.
func (uc *MembershipUseCase) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdateProfileInput represents input for updating a member's names
type UpdateProfileInput struct {
	UserID    string
	FirstName string
	LastName  string
}

// UpdateProfile changes the member's names.
func (uc *MembershipUseCase) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.User, error) {
	if err := domain.ValidateName(input.FirstName); err != nil {
		return nil, err
	}
	if err := domain.ValidateName(input.LastName); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.UpdateProfile(ctx, input.UserID,
		strings.TrimSpace(input.FirstName), strings.TrimSpace(input.LastName), uc.now().UTC())
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword verifies a password against a hash
func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
