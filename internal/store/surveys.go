package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	SurveyActive = "active"
	SurveyClosed = "closed"
)

type Survey struct {
	UUID        uuid.UUID `json:"uuid"`
	CompanyUUID uuid.UUID `json:"company_uuid"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// SurveyStats are the aggregate counters surfaced on the stats endpoint.
type SurveyStats struct {
	TotalCustomers int    `json:"total_customers"`
	TotalMessages  int    `json:"total_messages"`
	Status         string `json:"status"`
}

func (s *Store) CreateSurvey(ctx context.Context, sv *Survey) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO surveys (uuid, company_uuid, title, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING created_at`,
		sv.UUID, sv.CompanyUUID, sv.Title, sv.Description, sv.Status,
	).Scan(&sv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert survey: %w", err)
	}
	return nil
}

func (s *Store) SurveyByUUID(ctx context.Context, surveyUUID uuid.UUID) (*Survey, error) {
	var sv Survey
	err := s.pool.QueryRow(ctx, `
		SELECT uuid, company_uuid, title, description, status, created_at
		FROM surveys WHERE uuid = $1`,
		surveyUUID,
	).Scan(&sv.UUID, &sv.CompanyUUID, &sv.Title, &sv.Description, &sv.Status, &sv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select survey: %w", err)
	}
	return &sv, nil
}

func (s *Store) SurveysByCompany(ctx context.Context, companyUUID uuid.UUID) ([]Survey, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT uuid, company_uuid, title, description, status, created_at
		FROM surveys WHERE company_uuid = $1 ORDER BY created_at DESC`,
		companyUUID,
	)
	if err != nil {
		return nil, fmt.Errorf("select surveys: %w", err)
	}
	defer rows.Close()

	var surveys []Survey
	for rows.Next() {
		var sv Survey
		if err := rows.Scan(&sv.UUID, &sv.CompanyUUID, &sv.Title, &sv.Description, &sv.Status, &sv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		surveys = append(surveys, sv)
	}
	return surveys, rows.Err()
}

func (s *Store) UpdateSurvey(ctx context.Context, sv *Survey) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE surveys SET title = $1, description = $2, status = $3
		WHERE uuid = $4`,
		sv.Title, sv.Description, sv.Status, sv.UUID,
	)
	if err != nil {
		return fmt.Errorf("update survey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSurvey(ctx context.Context, surveyUUID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM surveys WHERE uuid = $1`, surveyUUID)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) StatsBySurvey(ctx context.Context, surveyUUID uuid.UUID) (*SurveyStats, error) {
	var st SurveyStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM customers WHERE survey_uuid = s.uuid),
			(SELECT count(*) FROM chat_messages WHERE survey_uuid = s.uuid),
			s.status
		FROM surveys s WHERE s.uuid = $1`,
		surveyUUID,
	).Scan(&st.TotalCustomers, &st.TotalMessages, &st.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select survey stats: %w", err)
	}
	return &st, nil
}
