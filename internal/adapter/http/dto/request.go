package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/usecase"
)

// ErrMissingAmount is returned when a top-up request carries no amount.
var ErrMissingAmount = errors.New("top_up_amount is required")

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks v against its validate struct tags.
func Validate(v any) error {
	return validate.Struct(v)
}

// RegisterRequest represents a membership registration.
type RegisterRequest struct {
	Email     string `json:"email"      validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Password  string `json:"password"   validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Password:  r.Password,
	}
}

// LoginRequest represents a login attempt.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest represents a profile change.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
}

// MinNameLength is the shortest first or last name a profile update accepts.
const MinNameLength = 2

// NamesTooShort reports whether either name is shorter than MinNameLength.
func (r *UpdateProfileRequest) NamesTooShort() bool {
	return len([]rune(strings.TrimSpace(r.FirstName))) < MinNameLength ||
		len([]rune(strings.TrimSpace(r.LastName))) < MinNameLength
}

// ToUseCaseInput converts to use case input.
func (r *UpdateProfileRequest) ToUseCaseInput(userID string) usecase.UpdateProfileInput {
	return usecase.UpdateProfileInput{
		UserID:    userID,
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
	}
}

// TopUpRequest represents a balance top-up. The amount accepts JSON numbers
// and numeric strings.
type TopUpRequest struct {
	TopUpAmount *decimal.Decimal `json:"top_up_amount"`
}

// Amount returns the amount in minor units. It must be a positive integer.
func (r *TopUpRequest) Amount() (int64, error) {
	if r.TopUpAmount == nil {
		return 0, ErrMissingAmount
	}
	amount := *r.TopUpAmount
	if !amount.IsInteger() || !amount.IsPositive() {
		return 0, domain.ErrInvalidAmount
	}
	if amount.GreaterThan(decimal.NewFromInt(domain.MaxTopUpAmount)) {
		return 0, domain.ErrAmountTooLarge
	}
	return amount.IntPart(), nil
}

// PaymentRequest represents a payment for a catalog service.
type PaymentRequest struct {
	ServiceCode string `json:"service_code" validate:"required"`
}
