package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Company is the organisation a survey is run on behalf of. Sector,
// products and details are optional context threaded into interview
// sessions and analysis prompts.
type Company struct {
	UUID      uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	Sector    string    `json:"sector,omitempty"`
	Products  string    `json:"products,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Store) CreateCompany(ctx context.Context, c *Company) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO companies (uuid, name, sector, products, details, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING created_at`,
		c.UUID, c.Name, c.Sector, c.Products, c.Details,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (s *Store) CompanyByUUID(ctx context.Context, companyUUID uuid.UUID) (*Company, error) {
	var c Company
	err := s.pool.QueryRow(ctx, `
		SELECT uuid, name, sector, products, details, created_at
		FROM companies WHERE uuid = $1`,
		companyUUID,
	).Scan(&c.UUID, &c.Name, &c.Sector, &c.Products, &c.Details, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select company: %w", err)
	}
	return &c, nil
}

// ListCompanies returns a page of companies ordered by creation time.
func (s *Store) ListCompanies(ctx context.Context, limit, offset int) ([]Company, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT uuid, name, sector, products, details, created_at
		FROM companies ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("select companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.UUID, &c.Name, &c.Sector, &c.Products, &c.Details, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *Store) UpdateCompany(ctx context.Context, c *Company) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE companies SET name = $1, sector = $2, products = $3, details = $4
		WHERE uuid = $5`,
		c.Name, c.Sector, c.Products, c.Details, c.UUID,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCompany removes a company; surveys, customers and messages
// cascade at the schema level.
func (s *Store) DeleteCompany(ctx context.Context, companyUUID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM companies WHERE uuid = $1`, companyUUID)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
