package handler

import (
	"context"
	"net/http"

	"github.com/iho/goppob/internal/adapter/http/dto"
	"github.com/iho/goppob/internal/adapter/http/middleware"
	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/usecase"
)

// MembershipService defines the behavior needed by MembershipHandler.
type MembershipService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, input usecase.UpdateProfileInput) (*domain.User, error)
}

// MembershipHandler handles registration, login and profile requests.
type MembershipHandler struct {
	membershipUC MembershipService
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(membershipUC MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipUC: membershipUC}
}

// Register creates a member.
func (h *MembershipHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil || dto.Validate(&req) != nil {
		writeError(w, http.StatusBadRequest, statusMissingParameter, "Semua field wajib diisi (email, first_name, last_name, password)")
		return
	}

	if _, err := h.membershipUC.Register(r.Context(), req.ToUseCaseInput()); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeSuccess(w, "Registrasi berhasil silahkan login", nil)
}

// Login issues a token.
func (h *MembershipHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil || dto.Validate(&req) != nil {
		writeError(w, http.StatusBadRequest, statusMissingParameter, "Email dan password wajib diisi")
		return
	}
	if err := domain.ValidateEmail(req.Email); err != nil {
		writeDomainError(w, r, err)
		return
	}

	token, err := h.membershipUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeSuccess(w, "Login Sukses", dto.TokenResponse{Token: token})
}

// Profile returns the authenticated member.
func (h *MembershipHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	user, err := h.membershipUC.Profile(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeSuccess(w, "Sukses", dto.ProfileFromDomain(user))
}

// UpdateProfile changes the authenticated member's names.
func (h *MembershipHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil || dto.Validate(&req) != nil {
		writeError(w, http.StatusBadRequest, statusProfileNamesMissing, "First name dan last name wajib diisi")
		return
	}
	if req.NamesTooShort() {
		writeError(w, http.StatusBadRequest, statusProfileNamesTooShort, "First name dan last name minimal 2 karakter")
		return
	}

	user, err := h.membershipUC.UpdateProfile(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeSuccess(w, "Update Profil berhasil", dto.ProfileFromDomain(user))
}
