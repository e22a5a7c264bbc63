package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Banner struct {
	ID          int64              `json:"id"`
	BannerName  string             `json:"banner_name"`
	BannerImage string             `json:"banner_image"`
	Description string             `json:"description"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

type History struct {
	ID              int64              `json:"id"`
	InvoiceNumber   string             `json:"invoice_number"`
	UserID          string             `json:"user_id"`
	TransactionType string             `json:"transaction_type"`
	Description     string             `json:"description"`
	TotalAmount     int64              `json:"total_amount"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type Service struct {
	ServiceCode   string             `json:"service_code"`
	ServiceName   string             `json:"service_name"`
	ServiceIcon   string             `json:"service_icon"`
	ServiceTariff int64              `json:"service_tariff"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

type User struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	FirstName    string             `json:"first_name"`
	LastName     string             `json:"last_name"`
	ProfileImage string             `json:"profile_image"`
	PasswordHash string             `json:"password_hash"`
	Balance      int64              `json:"balance"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}
