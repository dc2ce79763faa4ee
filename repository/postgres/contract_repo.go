package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/repository"
)

const contractNumberConstraint = "contracts_contract_number_key"

const contractViewColumns = `
	c.id, c.contract_number, c.company_id, c.product_id, c.start_date, c.end_date,
	c.amount::text, c.status, c.created_at, c.updated_at,
	co.id, co.company_number, co.name, co.type, co.created_at, co.updated_at,
	p.id, p.name, p.description, p.created_at, p.updated_at
`

const contractViewFrom = `
	FROM contracts c
	JOIN companies co ON co.id = c.company_id
	JOIN products p ON p.id = c.product_id
`

// derivedStatus mirrors domain.DeriveStatus; $1 is the calendar day.
const derivedStatus = `
	CASE
		WHEN c.status IN ('CANCELLED', 'COMPLETED') THEN c.status
		WHEN c.start_date > $1::date THEN 'PENDING'
		WHEN c.end_date < $1::date THEN 'COMPLETED'
		ELSE 'IN_PROGRESS'
	END
`

const contractFilterWhere = `
	WHERE ($2::text = '' OR co.name LIKE '%' || $2::text || '%' ESCAPE '\')
	  AND ($3::date IS NULL OR c.end_date >= $3::date)
	  AND ($4::date IS NULL OR c.start_date <= $4::date)
	  AND (cardinality($5::text[]) = 0 OR (` + derivedStatus + `) = ANY($5::text[]))
`

type contractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository returns a Postgres-backed implementation of ContractRepository.
func NewContractRepository(pool *pgxpool.Pool) repository.ContractRepository {
	return &contractRepository{pool: pool}
}

func (r *contractRepository) GetByID(ctx context.Context, id int64) (*domain.ContractView, error) {
	query := `SELECT ` + contractViewColumns + contractViewFrom + ` WHERE c.id = $1`
	return scanContractView(r.pool.QueryRow(ctx, query, id))
}

func (r *contractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	if contract == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO contracts (contract_number, company_id, product_id, start_date, end_date, amount, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9)
	RETURNING id
	`

	if err := r.pool.QueryRow(ctx, query,
		contract.ContractNumber,
		contract.CompanyID,
		contract.ProductID,
		contract.StartDate,
		contract.EndDate,
		contract.Amount.String(),
		string(contract.Status),
		contract.CreatedAt,
		contract.UpdatedAt,
	).Scan(&contract.ID); err != nil {
		if isUniqueViolation(err, contractNumberConstraint) {
			return domain.ErrContractNumberTaken
		}
		return err
	}
	return nil
}

func (r *contractRepository) UpdateStatus(ctx context.Context, id int64, status domain.ContractStatus, updatedAt time.Time) error {
	const query = `UPDATE contracts SET status = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, string(status), updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContractNotFound
	}
	return nil
}

func (r *contractRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contracts`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *contractRepository) CountRecent(ctx context.Context, filter repository.RecentFilter) (int64, error) {
	const query = `
	SELECT COUNT(*)
	FROM contracts
	WHERE company_id = $1
	  AND product_id = $2
	  AND start_date = $3
	  AND end_date = $4
	  AND amount = $5::numeric
	  AND created_at > $6
	`
	var n int64
	if err := r.pool.QueryRow(ctx, query,
		filter.CompanyID,
		filter.ProductID,
		filter.StartDate,
		filter.EndDate,
		filter.Amount.String(),
		filter.Since,
	).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *contractRepository) Find(ctx context.Context, filter repository.ContractFilter) ([]domain.ContractView, int64, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses = append(statuses, string(s))
	}
	args := []interface{}{
		filter.Today,
		escapeLike(filter.CompanyName),
		filter.From,
		filter.To,
		statuses,
	}

	var total int64
	countQuery := `SELECT COUNT(*)` + contractViewFrom + contractFilterWhere
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}

	listQuery := `SELECT ` + contractViewColumns + contractViewFrom + contractFilterWhere + `
	ORDER BY c.start_date DESC, c.end_date DESC, c.id DESC
	LIMIT $6 OFFSET $7
	`
	rows, err := r.pool.Query(ctx, listQuery, append(args, clampLimit(filter.Limit), filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	views := make([]domain.ContractView, 0)
	for rows.Next() {
		view, err := scanContractView(rows)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	return views, total, rows.Err()
}

func (r *contractRepository) ListStale(ctx context.Context, today time.Time, limit int) ([]domain.Contract, error) {
	query := `
	SELECT c.id, c.contract_number, c.company_id, c.product_id, c.start_date, c.end_date,
		c.amount::text, c.status, c.created_at, c.updated_at
	FROM contracts c
	WHERE c.status NOT IN ('CANCELLED', 'COMPLETED')
	  AND c.status <> (` + derivedStatus + `)
	ORDER BY c.id
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, today, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contracts := make([]domain.Contract, 0)
	for rows.Next() {
		var c domain.Contract
		if err := scanContractInto(rows, &c); err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func scanContractInto(row scanner, c *domain.Contract) error {
	var (
		amount string
		status string
	)
	if err := row.Scan(
		&c.ID,
		&c.ContractNumber,
		&c.CompanyID,
		&c.ProductID,
		&c.StartDate,
		&c.EndDate,
		&amount,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return err
	}
	return decodeContract(c, amount, status)
}

func scanContractView(row scanner) (*domain.ContractView, error) {
	var (
		view   domain.ContractView
		amount string
		status string
	)
	c := &view.Contract
	if err := row.Scan(
		&c.ID,
		&c.ContractNumber,
		&c.CompanyID,
		&c.ProductID,
		&c.StartDate,
		&c.EndDate,
		&amount,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
		&view.Company.ID,
		&view.Company.CompanyNumber,
		&view.Company.Name,
		&view.Company.Type,
		&view.Company.CreatedAt,
		&view.Company.UpdatedAt,
		&view.Product.ID,
		&view.Product.Name,
		&view.Product.Description,
		&view.Product.CreatedAt,
		&view.Product.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}
	if err := decodeContract(c, amount, status); err != nil {
		return nil, err
	}
	return &view, nil
}

func decodeContract(c *domain.Contract, amount, status string) error {
	parsed, err := parseAmount(amount)
	if err != nil {
		return fmt.Errorf("contract %d amount: %w", c.ID, err)
	}
	c.Amount = parsed
	c.Status, err = domain.ParseContractStatus(status)
	if err != nil {
		return fmt.Errorf("contract %d: %w", c.ID, err)
	}
	c.StartDate = domain.DateOf(c.StartDate)
	c.EndDate = domain.DateOf(c.EndDate)
	return nil
}
