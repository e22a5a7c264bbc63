package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/usecase"
	"github.com/iho/goppob/internal/usecase/mocks"
)

func TestMembershipUseCase_Register_Success(t *testing.T) {
	ctrl := gomock.NewController(t)

	userRepo := mocks.NewMockUserRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)
	tokens := mocks.NewMockTokenIssuer(ctrl)

	userRepo.EXPECT().GetByEmail(gomock.Any(), "user@nutech-integrasi.com").Return(nil, domain.ErrUserNotFound)
	idGen.EXPECT().Generate().Return("user-1")

	var stored *domain.User
	userRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, user *domain.User) error {
		copied := *user
		stored = &copied
		return nil
	})

	uc := usecase.NewMembershipUseCase(userRepo, idGen, tokens)

	user, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:     "  User@Nutech-Integrasi.com ",
		FirstName: "User",
		LastName:  "Nutech",
		Password:  "abcdef1234",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored == nil {
		t.Fatal("expected user to be stored")
	}
	if stored.Email != "user@nutech-integrasi.com" {
		t.Errorf("expected normalized email, got %q", stored.Email)
	}
	if stored.Balance != 0 {
		t.Errorf("expected zero opening balance, got %d", stored.Balance)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("abcdef1234")); err != nil {
		t.Errorf("expected stored bcrypt hash of password: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("expected returned user to hide password hash")
	}
	if user.ID != "user-1" {
		t.Errorf("expected ID user-1, got %s", user.ID)
	}
}

func TestMembershipUseCase_Register_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.RegisterInput
		wantErr error
	}{
		{
			name:    "invalid email",
			input:   usecase.RegisterInput{Email: "invalid-email", FirstName: "A", LastName: "B", Password: "abcdef1234"},
			wantErr: domain.ErrInvalidEmail,
		},
		{
			name:    "short password",
			input:   usecase.RegisterInput{Email: "a@b.com", FirstName: "A", LastName: "B", Password: "short"},
			wantErr: domain.ErrPasswordTooWeak,
		},
		{
			name:    "empty first name",
			input:   usecase.RegisterInput{Email: "a@b.com", FirstName: " ", LastName: "B", Password: "abcdef1234"},
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "empty last name",
			input:   usecase.RegisterInput{Email: "a@b.com", FirstName: "A", LastName: "", Password: "abcdef1234"},
			wantErr: domain.ErrInvalidName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uc := usecase.NewMembershipUseCase(mocks.NewMockUserRepository(ctrl), mocks.NewMockIDGenerator(ctrl), mocks.NewMockTokenIssuer(ctrl))

			_, err := uc.Register(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMembershipUseCase_Register_DuplicateEmail(t *testing.T) {
	ctrl := gomock.NewController(t)

	userRepo := mocks.NewMockUserRepository(ctrl)
	userRepo.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(&domain.User{ID: "existing"}, nil)

	uc := usecase.NewMembershipUseCase(userRepo, mocks.NewMockIDGenerator(ctrl), mocks.NewMockTokenIssuer(ctrl))

	_, err := uc.Register(context.Background(), usecase.RegisterInput{Email: "a@b.com", FirstName: "A", LastName: "B", Password: "abcdef1234"})
	if !errors.Is(err, domain.ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestMembershipUseCase_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("abcdef1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	member := &domain.User{ID: "user-1", Email: "a@b.com", PasswordHash: string(hashed)}

	t.Run("valid credentials", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userRepo := mocks.NewMockUserRepository(ctrl)
		tokens := mocks.NewMockTokenIssuer(ctrl)

		userRepo.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(member, nil)
		tokens.EXPECT().Generate(member).Return("signed-token", nil)

		uc := usecase.NewMembershipUseCase(userRepo, mocks.NewMockIDGenerator(ctrl), tokens)
		token, err := uc.Login(context.Background(), "A@B.com", "abcdef1234")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token != "signed-token" {
			t.Fatalf("expected signed-token, got %q", token)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userRepo := mocks.NewMockUserRepository(ctrl)
		userRepo.EXPECT().GetByEmail(gomock.Any(), "a@b.com").Return(member, nil)

		uc := usecase.NewMembershipUseCase(userRepo, mocks.NewMockIDGenerator(ctrl), mocks.NewMockTokenIssuer(ctrl))
		_, err := uc.Login(context.Background(), "a@b.com", "wrong-password")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userRepo := mocks.NewMockUserRepository(ctrl)
		userRepo.EXPECT().GetByEmail(gomock.Any(), "nobody@b.com").Return(nil, domain.ErrUserNotFound)

		uc := usecase.NewMembershipUseCase(userRepo, mocks.NewMockIDGenerator(ctrl), mocks.NewMockTokenIssuer(ctrl))
		_, err := uc.Login(context.Background(), "nobody@b.com", "abcdef1234")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestMembershipUseCase_Profile(t *testing.T) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	userRepo.EXPECT().GetByID(gomock.Any(), "user-1").Return(&domain.User{ID: "user-1", FirstName: "User", PasswordHash: "secret"}, nil)

	uc := usecase.NewMembershipUseCase(userRepo, mocks.NewMockIDGenerator(ctrl), mocks.NewMockTokenIssuer(ctrl))
	user, err := uc.Profile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.PasswordHash != "" {
		t.Fatal("expected profile to hide password hash")
	}
}

func TestMembershipUseCase_UpdateProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	userRepo.EXPECT().
		UpdateProfile(gomock.Any(), "user-1", "New", "Name", gomock.AssignableToTypeOf(time.Time{})).
		Return(&domain.User{ID: "user-1", FirstName: "New", LastName: "Name", PasswordHash: "secret"}, nil)

	uc := usecase.NewMembershipUseCase(userRepo, mocks.NewMockIDGenerator(ctrl), mocks.NewMockTokenIssuer(ctrl))

	user, err := uc.UpdateProfile(context.Background(), usecase.UpdateProfileInput{UserID: "user-1", FirstName: " New ", LastName: "Name"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.FirstName != "New" || user.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := uc.UpdateProfile(context.Background(), usecase.UpdateProfileInput{UserID: "user-1", LastName: "Name"}); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}
