package dto

import (
	"time"

	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/usecase"
)

// Envelope wraps every API response.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// TokenResponse carries an access token.
type TokenResponse struct {
	Token string `json:"token"`
}

// BalanceResponse carries the current balance.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// ProfileResponse represents a member in API responses.
type ProfileResponse struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ProfileImage string `json:"profile_image"`
}

// ProfileFromDomain converts a domain user to response.
func ProfileFromDomain(u *domain.User) *ProfileResponse {
	return &ProfileResponse{
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ProfileImage: u.ProfileImage,
	}
}

// ServiceResponse represents a catalog service.
type ServiceResponse struct {
	ServiceCode   string `json:"service_code"`
	ServiceName   string `json:"service_name"`
	ServiceIcon   string `json:"service_icon"`
	ServiceTariff int64  `json:"service_tariff"`
}

// ServicesFromDomain converts domain services to responses.
func ServicesFromDomain(services []*domain.Service) []*ServiceResponse {
	result := make([]*ServiceResponse, len(services))
	for i, s := range services {
		result[i] = &ServiceResponse{
			ServiceCode:   s.Code,
			ServiceName:   s.Name,
			ServiceIcon:   s.Icon,
			ServiceTariff: s.Tariff,
		}
	}
	return result
}

// BannerResponse represents an informational banner.
type BannerResponse struct {
	BannerName  string `json:"banner_name"`
	BannerImage string `json:"banner_image"`
	Description string `json:"description"`
}

// BannersFromDomain converts domain banners to responses.
func BannersFromDomain(banners []*domain.Banner) []*BannerResponse {
	result := make([]*BannerResponse, len(banners))
	for i, b := range banners {
		result[i] = &BannerResponse{
			BannerName:  b.Name,
			BannerImage: b.Image,
			Description: b.Description,
		}
	}
	return result
}

// PaymentResponse represents a committed payment.
type PaymentResponse struct {
	InvoiceNumber   string    `json:"invoice_number"`
	ServiceCode     string    `json:"service_code"`
	ServiceName     string    `json:"service_name"`
	TransactionType string    `json:"transaction_type"`
	TotalAmount     int64     `json:"total_amount"`
	CreatedOn       time.Time `json:"created_on"`
}

// PaymentFromResult converts a payment result to response.
func PaymentFromResult(r *usecase.PaymentResult) *PaymentResponse {
	return &PaymentResponse{
		InvoiceNumber:   r.InvoiceNumber,
		ServiceCode:     r.ServiceCode,
		ServiceName:     r.ServiceName,
		TransactionType: string(r.TransactionType),
		TotalAmount:     r.TotalAmount,
		CreatedOn:       r.CreatedAt,
	}
}

// HistoryRecordResponse represents one history entry.
type HistoryRecordResponse struct {
	InvoiceNumber   string    `json:"invoice_number"`
	TransactionType string    `json:"transaction_type"`
	Description     string    `json:"description"`
	TotalAmount     int64     `json:"total_amount"`
	CreatedOn       time.Time `json:"created_on"`
}

// HistoryResponse is one page of history.
type HistoryResponse struct {
	Offset  int                      `json:"offset"`
	Limit   *int                     `json:"limit"`
	Records []*HistoryRecordResponse `json:"records"`
}

// HistoryFromDomain converts a page of entries to response.
func HistoryFromDomain(offset int, limit *int, entries []*domain.HistoryEntry) *HistoryResponse {
	records := make([]*HistoryRecordResponse, len(entries))
	for i, e := range entries {
		records[i] = &HistoryRecordResponse{
			InvoiceNumber:   e.InvoiceNumber,
			TransactionType: string(e.TransactionType),
			Description:     e.Description,
			TotalAmount:     e.TotalAmount,
			CreatedOn:       e.CreatedAt,
		}
	}
	return &HistoryResponse{Offset: offset, Limit: limit, Records: records}
}

// ConsistencyResponse reports a ledger consistency check.
type ConsistencyResponse struct {
	Consistent         bool     `json:"consistent"`
	AccountsChecked    int64    `json:"accounts_checked"`
	MismatchedAccounts []string `json:"mismatched_accounts"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	mismatched := r.MismatchedAccounts
	if mismatched == nil {
		mismatched = []string{}
	}
	return &ConsistencyResponse{
		Consistent:         r.Consistent(),
		AccountsChecked:    r.AccountsChecked,
		MismatchedAccounts: mismatched,
	}
}
