package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/adcontract/domain"
	"github.com/fastygo/adcontract/repository"
)

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository returns a Postgres-backed implementation of CompanyRepository.
func NewCompanyRepository(pool *pgxpool.Pool) repository.CompanyRepository {
	return &companyRepository{pool: pool}
}

func (r *companyRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	const query = `
	SELECT id, company_number, name, type, created_at, updated_at
	FROM companies
	WHERE id = $1
	`
	return scanCompany(r.pool.QueryRow(ctx, query, id))
}

func (r *companyRepository) List(ctx context.Context) ([]domain.Company, error) {
	const query = `
	SELECT id, company_number, name, type, created_at, updated_at
	FROM companies
	ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectCompanies(rows)
}

func (r *companyRepository) FindByNameContaining(ctx context.Context, substring string, limit int) ([]domain.Company, error) {
	const query = `
	SELECT id, company_number, name, type, created_at, updated_at
	FROM companies
	WHERE name LIKE '%' || $1 || '%' ESCAPE '\'
	ORDER BY id
	LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, escapeLike(substring), clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return collectCompanies(rows)
}

func collectCompanies(rows pgx.Rows) ([]domain.Company, error) {
	defer rows.Close()

	companies := make([]domain.Company, 0)
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *company)
	}
	return companies, rows.Err()
}

func scanCompany(row scanner) (*domain.Company, error) {
	var company domain.Company
	if err := row.Scan(
		&company.ID,
		&company.CompanyNumber,
		&company.Name,
		&company.Type,
		&company.CreatedAt,
		&company.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return &company, nil
}
