package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MinContractDays is the shortest allowed run: end_date must be at least start_date + 28 days.
const MinContractDays = 28

var (
	MinAmount = decimal.NewFromInt(10_000)
	MaxAmount = decimal.NewFromInt(1_000_000)
)

// ValidateTerms checks a proposed contract against the contract policy.
// Checks run start date, end date, amount; the first violation is returned.
func ValidateTerms(terms ContractTerms, today time.Time) error {
	if err := validateStartDate(terms.StartDate, today); err != nil {
		return err
	}
	if err := validateEndDate(terms.StartDate, terms.EndDate); err != nil {
		return err
	}
	return validateAmount(terms.Amount)
}

func validateStartDate(start, today time.Time) error {
	if DateOf(start).Before(DateOf(today)) {
		return NewError(ErrCodeInvalidStartDate, "contract start date must be today or later")
	}
	return nil
}

func validateEndDate(start, end time.Time) error {
	minEnd := AddDays(start, MinContractDays)
	if DateOf(end).Before(minEnd) {
		return NewError(ErrCodeInvalidEndDate,
			fmt.Sprintf("contract end date must be at least %d days after the start date", MinContractDays))
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThan(MinAmount) {
		return NewError(ErrCodeInvalidAmount, "contract amount must be at least 10,000")
	}
	if amount.GreaterThan(MaxAmount) {
		return NewError(ErrCodeInvalidAmount, "contract amount must be at most 1,000,000")
	}
	return nil
}
