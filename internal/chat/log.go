package chat

import (
	"sync"
	"time"

	"coedit/pkg/logger"
)

// Message is one chat entry, immutable once created, ordered by append.
type Message struct {
	Text      string `json:"text"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
}

// SnapshotStore persists the whole history as one snapshot, overwritten
// atomically on every mutation.
type SnapshotStore interface {
	Save(messages []Message) error
	Load() ([]Message, error)
}

// Log is the append-only chat history with write-through persistence.
type Log struct {
	mu       sync.Mutex
	store    SnapshotStore
	messages []Message
}

// NewLog loads the last persisted snapshot. A read or parse failure
// starts the log empty; history loss is acceptable, a crash is not.
func NewLog(store SnapshotStore) *Log {
	messages, err := store.Load()
	if err != nil {
		logger.Sugar.Errorf("Failed to load chat history, starting empty: %v", err)
		messages = nil
	} else if messages != nil {
		logger.Sugar.Infof("Loaded chat history, %d messages", len(messages))
	}
	return &Log{store: store, messages: messages}
}

// Append adds a message and persists the full history before returning.
// On a persist failure the message stays in memory and is returned along
// with the error, so the caller can still broadcast it; the snapshot
// catches up on the next successful persist.
func (l *Log) Append(text, user string) (Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := Message{
		Text:      text,
		User:      user,
		Timestamp: time.Now().Format("15:04:05"),
	}
	l.messages = append(l.messages, msg)
	return msg, l.store.Save(l.messages)
}

// Clear empties the history and persists the empty snapshot.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = nil
	return l.store.Save(nil)
}

// History returns a copy of the current message sequence.
func (l *Log) History() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}
