package chat

import (
	"encoding/json"
	"fmt"
	"os"
)

// FileStore keeps the chat snapshot as one indented JSON array on disk.
// Writes go to a temp file first and are renamed into place, so the
// snapshot is either the old history or the new one, never a torn write.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Save(messages []Message) error {
	if messages == nil {
		messages = []Message{}
	}
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chat history: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write chat history: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("replace chat history: %w", err)
	}
	return nil
}

func (s *FileStore) Load() ([]Message, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("parse chat history: %w", err)
	}
	return messages, nil
}
