package chat

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// PGStore keeps the chat snapshot in a single Postgres row, upserted on
// every mutation. Selected over FileStore when a DATABASE_URL is
// configured.
type PGStore struct {
	DB *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) Save(messages []Message) error {
	if messages == nil {
		messages = []Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal chat history: %w", err)
	}

	_, err = s.DB.Exec(`INSERT INTO chat_history (id, messages, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET messages = $1, updated_at = NOW()`, data)
	if err != nil {
		return fmt.Errorf("save chat history: %w", err)
	}
	return nil
}

func (s *PGStore) Load() ([]Message, error) {
	var data []byte
	err := s.DB.QueryRow("SELECT messages FROM chat_history WHERE id = 1").Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parse chat history: %w", err)
	}
	return messages, nil
}
