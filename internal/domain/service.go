package domain

import "time"

// Service is a payable catalog item. Tariff is debited from the balance on payment.
type Service struct {
	Code      string
	Name      string
	Icon      string
	Tariff    int64
	CreatedAt time.Time
}

// Banner is an informational listing shown to members.
type Banner struct {
	ID          int64
	Name        string
	Image       string
	Description string
	CreatedAt   time.Time
}
