package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message senders.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

type ChatMessage struct {
	ID           uuid.UUID `json:"id"`
	CustomerUUID uuid.UUID `json:"customer_uuid"`
	SurveyUUID   uuid.UUID `json:"survey_uuid"`
	Sender       string    `json:"sender"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Store) InsertMessage(ctx context.Context, m *ChatMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (id, customer_uuid, survey_uuid, sender, message, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING created_at`,
		m.ID, m.CustomerUUID, m.SurveyUUID, m.Sender, m.Message,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// MessagesByCustomer returns the customer's full chat history, oldest first.
func (s *Store) MessagesByCustomer(ctx context.Context, customerUUID uuid.UUID) ([]ChatMessage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, customer_uuid, survey_uuid, sender, message, created_at
		FROM chat_messages WHERE customer_uuid = $1 ORDER BY created_at ASC`,
		customerUUID,
	)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.CustomerUUID, &m.SurveyUUID, &m.Sender, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
