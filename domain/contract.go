package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Contract is an advertising agreement between a company and a product over a date interval.
type Contract struct {
	ID             int64           `json:"id"`
	ContractNumber string          `json:"contract_number"`
	CompanyID      int64           `json:"company_id"`
	ProductID      int64           `json:"product_id"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	Amount         decimal.Decimal `json:"amount"`
	Status         ContractStatus  `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ContractTerms is the part of a contract request the business rules look at.
type ContractTerms struct {
	CompanyID int64
	ProductID int64
	StartDate time.Time
	EndDate   time.Time
	Amount    decimal.Decimal
}

// ContractView is a contract together with the company and product it references.
type ContractView struct {
	Contract
	Company Company `json:"company"`
	Product Product `json:"product"`
}

// Terms returns the rule-relevant fields of the contract.
func (c *Contract) Terms() ContractTerms {
	return ContractTerms{
		CompanyID: c.CompanyID,
		ProductID: c.ProductID,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,
		Amount:    c.Amount,
	}
}

// RecomputeStatus applies the date-driven state machine for the given day and
// reports whether the status changed.
func (c *Contract) RecomputeStatus(today time.Time) bool {
	if c == nil {
		return false
	}
	next := DeriveStatus(c.Status, c.StartDate, c.EndDate, today)
	if next == c.Status {
		return false
	}
	c.Status = next
	return true
}

// Cancel moves the contract to CANCELLED. Completed contracts cannot be cancelled.
func (c *Contract) Cancel() error {
	if c.Status == StatusCompleted {
		return ErrCannotCancel
	}
	c.Status = StatusCancelled
	return nil
}

// Touch stamps the update time and fills the creation time on first save.
func (c *Contract) Touch(now time.Time) {
	if c == nil {
		return
	}
	c.UpdatedAt = now
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
}

// FormatContractNumber renders CNT-<YYYYMMDD>-<sequence>, the sequence zero-padded to 4 digits.
func FormatContractNumber(createdOn time.Time, sequence int64) string {
	return fmt.Sprintf("CNT-%s-%04d", createdOn.Format("20060102"), sequence)
}

// Fingerprint identifies a set of terms for duplicate detection. Equal amounts with
// different scales ("50000" and "50000.00") share a fingerprint.
func (t ContractTerms) Fingerprint() string {
	return fmt.Sprintf("%d|%d|%s|%s|%s",
		t.CompanyID,
		t.ProductID,
		FormatDate(t.StartDate),
		FormatDate(t.EndDate),
		t.Amount.String(),
	)
}
