package transport

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastygo/adcontract/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ErrorBody is the error member of an error envelope.
type ErrorBody struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ErrorMeta is the meta member of an error envelope.
type ErrorMeta struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

type CompanyResponse struct {
	ID            int64  `json:"id"`
	CompanyNumber string `json:"company_number"`
	Name          string `json:"name"`
	Type          string `json:"type"`
}

type ProductResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ContractResponse struct {
	ID                int64           `json:"id"`
	ContractNumber    string          `json:"contract_number"`
	Company           CompanyResponse `json:"company"`
	Product           ProductResponse `json:"product"`
	StartDate         string          `json:"start_date"`
	EndDate           string          `json:"end_date"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
	StatusDescription string          `json:"status_description"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	HasNext       bool  `json:"has_next"`
	HasPrevious   bool  `json:"has_previous"`
}

func NewCompanyResponse(c domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:            c.ID,
		CompanyNumber: c.CompanyNumber,
		Name:          c.Name,
		Type:          c.Type,
	}
}

func NewCompanyResponses(list []domain.Company) []CompanyResponse {
	out := make([]CompanyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, NewCompanyResponse(c))
	}
	return out
}

func NewProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
	}
}

func NewProductResponses(list []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, NewProductResponse(p))
	}
	return out
}

func NewContractResponse(v domain.ContractView) ContractResponse {
	return ContractResponse{
		ID:                v.ID,
		ContractNumber:    v.ContractNumber,
		Company:           NewCompanyResponse(v.Company),
		Product:           NewProductResponse(v.Product),
		StartDate:         domain.FormatDate(v.StartDate),
		EndDate:           domain.FormatDate(v.EndDate),
		Amount:            v.Amount,
		Status:            string(v.Status),
		StatusDescription: v.Status.Description(),
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

func NewContractPage(p *domain.Page[domain.ContractView]) PageResponse[ContractResponse] {
	content := make([]ContractResponse, 0, len(p.Content))
	for _, v := range p.Content {
		content = append(content, NewContractResponse(v))
	}
	return PageResponse[ContractResponse]{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		HasNext:       p.HasNext,
		HasPrevious:   p.HasPrevious,
	}
}
