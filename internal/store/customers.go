package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Customer survey lifecycle states.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Fragment is one completed block of a customer's structured interview
// answers. The payload shape is owned by the interviewer service — it is
// preserved and forwarded, never interpreted here.
type Fragment struct {
	BlockID     string          `json:"block_id"`
	Data        json.RawMessage `json:"data"`
	CompletedAt *time.Time      `json:"completed_at"`
}

type Customer struct {
	UUID       uuid.UUID  `json:"uuid"`
	SurveyUUID uuid.UUID  `json:"survey_uuid"`
	Name       string     `json:"name"`
	Age        int        `json:"age"`
	Gender     string     `json:"gender"`
	SessionID  string     `json:"session_id,omitempty"`
	Status     string     `json:"survey_status"`
	Fragments  []Fragment `json:"metadata"`
	CreatedAt  time.Time  `json:"created_at"`
}

const customerColumns = `uuid, survey_uuid, name, age, gender, session_id, survey_status, metadata, created_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var (
		c    Customer
		meta []byte
	)
	err := row.Scan(&c.UUID, &c.SurveyUUID, &c.Name, &c.Age, &c.Gender, &c.SessionID, &c.Status, &meta, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &c.Fragments); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *Customer) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO customers (uuid, survey_uuid, name, age, gender, session_id, survey_status, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '[]'::jsonb, now())
		RETURNING created_at`,
		c.UUID, c.SurveyUUID, c.Name, c.Age, c.Gender, c.SessionID, c.Status,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// CustomerByUUID looks a customer up regardless of survey. Used for the
// registration duplicate check, where UUIDs are globally unique.
func (s *Store) CustomerByUUID(ctx context.Context, customerUUID uuid.UUID) (*Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE uuid = $1`, customerUUID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select customer: %w", err)
	}
	return c, nil
}

// SurveyCustomer looks a customer up scoped to a survey.
func (s *Store) SurveyCustomer(ctx context.Context, surveyUUID, customerUUID uuid.UUID) (*Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE uuid = $1 AND survey_uuid = $2`,
		customerUUID, surveyUUID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select customer: %w", err)
	}
	return c, nil
}

func (s *Store) CustomersBySurvey(ctx context.Context, surveyUUID uuid.UUID) ([]Customer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE survey_uuid = $1 ORDER BY created_at DESC`,
		surveyUUID)
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

// AppendFragment appends a completed block to the customer's fragment
// sequence. The sequence is append-only; fragments are never reordered
// or removed.
func (s *Store) AppendFragment(ctx context.Context, customerUUID uuid.UUID, f Fragment) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode fragment: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE customers SET metadata = metadata || $1::jsonb WHERE uuid = $2`,
		payload, customerUUID,
	)
	if err != nil {
		return fmt.Errorf("append fragment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetCustomerStatus(ctx context.Context, customerUUID uuid.UUID, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE customers SET survey_status = $1 WHERE uuid = $2`, status, customerUUID)
	if err != nil {
		return fmt.Errorf("update customer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCustomer removes a customer; chat messages cascade.
func (s *Store) DeleteCustomer(ctx context.Context, customerUUID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM customers WHERE uuid = $1`, customerUUID)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
