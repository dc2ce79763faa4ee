package transport

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastygo/adcontract/domain"
)

// ContractRequest is the body of POST /api/v1/contracts.
// Amount accepts a JSON number or a numeric string.
type ContractRequest struct {
	CompanyID *int64          `json:"company_id"`
	ProductID *int64          `json:"product_id"`
	StartDate *string         `json:"start_date"`
	EndDate   *string         `json:"end_date"`
	Amount    json.RawMessage `json:"amount"`
}

// DecodeContractRequest parses body and checks that every field is present and well formed.
// Business rules (date window, amount range) are left to the domain.
func DecodeContractRequest(body []byte) (domain.ContractTerms, error) {
	var req ContractRequest
	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.ContractTerms{}, domain.NewValidationError(map[string]string{
				typeErr.Field: "has the wrong type",
			})
		}
		return domain.ContractTerms{}, domain.NewValidationError(map[string]string{
			"body": "malformed JSON",
		})
	}
	return req.Terms()
}

// Terms converts the request, collecting one message per missing or malformed field.
func (r ContractRequest) Terms() (domain.ContractTerms, error) {
	details := map[string]string{}
	var terms domain.ContractTerms

	if r.CompanyID == nil {
		details["company_id"] = "is required"
	} else {
		terms.CompanyID = *r.CompanyID
	}
	if r.ProductID == nil {
		details["product_id"] = "is required"
	} else {
		terms.ProductID = *r.ProductID
	}
	terms.StartDate = requiredDate(r.StartDate, "start_date", details)
	terms.EndDate = requiredDate(r.EndDate, "end_date", details)
	terms.Amount = requiredAmount(r.Amount, details)

	if len(details) > 0 {
		return domain.ContractTerms{}, domain.NewValidationError(details)
	}
	return terms, nil
}

// maxAmountScale matches the NUMERIC(12,2) column.
const maxAmountScale = 2

func requiredAmount(raw json.RawMessage, details map[string]string) decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		details["amount"] = "is required"
		return decimal.Zero
	}
	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(raw); err != nil {
		details["amount"] = "must be a decimal number"
		return decimal.Zero
	}
	if amount.Exponent() < -maxAmountScale && !amount.Equal(amount.Truncate(maxAmountScale)) {
		details["amount"] = "must have at most 2 decimal places"
		return decimal.Zero
	}
	return amount
}

func requiredDate(value *string, field string, details map[string]string) time.Time {
	if value == nil || strings.TrimSpace(*value) == "" {
		details[field] = "is required"
		return time.Time{}
	}
	d, err := domain.ParseDate(strings.TrimSpace(*value))
	if err != nil {
		details[field] = "must be a date in YYYY-MM-DD format"
		return time.Time{}
	}
	return d
}

// ContractListQuery holds the parsed query string of GET /api/v1/contracts.
type ContractListQuery struct {
	CompanyName string
	Statuses    []domain.ContractStatus
	From        *time.Time
	To          *time.Time
	Page        int
	Size        int
}

// QueryArgs is the read side of fasthttp.Args.
type QueryArgs interface {
	Peek(key string) []byte
}

// ParseContractListQuery reads company_name, statuses, start_date, end_date, page and size.
// Any malformed value fails the whole query.
func ParseContractListQuery(args QueryArgs) (ContractListQuery, error) {
	details := map[string]string{}
	q := ContractListQuery{
		CompanyName: strings.TrimSpace(string(args.Peek("company_name"))),
	}

	statuses, err := ParseStatuses(string(args.Peek("statuses")))
	if err != nil {
		details["statuses"] = err.Error()
	}
	q.Statuses = statuses

	q.From = optionalDate(string(args.Peek("start_date")), "start_date", details)
	q.To = optionalDate(string(args.Peek("end_date")), "end_date", details)
	q.Page = optionalInt(string(args.Peek("page")), "page", details)
	q.Size = optionalInt(string(args.Peek("size")), "size", details)

	if len(details) > 0 {
		return ContractListQuery{}, domain.NewValidationError(details)
	}
	return q, nil
}

// ParseStatuses splits a comma-separated list of exact status names.
func ParseStatuses(raw string) ([]domain.ContractStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	tokens := strings.Split(raw, ",")
	out := make([]domain.ContractStatus, 0, len(tokens))
	for _, token := range tokens {
		status, err := domain.ParseContractStatus(strings.TrimSpace(token))
		if err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, nil
}

func optionalDate(raw, field string, details map[string]string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		details[field] = "must be a date in YYYY-MM-DD format"
		return nil
	}
	return &d
}

func optionalInt(raw, field string, details map[string]string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		details[field] = "must be an integer"
		return 0
	}
	return v
}

// ParseID reads a positive numeric path parameter.
func ParseID(value interface{}) (int64, error) {
	raw, _ := value.(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(map[string]string{"id": "must be a positive integer"})
	}
	return id, nil
}
