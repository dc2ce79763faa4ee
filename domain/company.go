package domain

import "time"

// Company is a client organisation that signs advertising contracts.
type Company struct {
	ID            int64     `json:"id"`
	CompanyNumber string    `json:"company_number"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
