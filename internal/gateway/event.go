package gateway

import (
	"encoding/json"

	"coedit/internal/chat"
	"coedit/internal/document"
	"coedit/pkg/logger"
)

// Protocol event types, inbound and outbound.
const (
	JoinType            = "join"             // client starts viewing a document
	EditType            = "edit"             // range replacement against a base version
	UploadType          = "upload"           // new document
	ChatSendType        = "chat-send"        // chat message from a client
	DocumentUpdatedType = "document-updated" // accepted edit, to viewers except origin
	CorrectionType      = "correction"       // full resync, to origin only
	DocumentAddedType   = "document-added"   // new document notice, to everyone
	ChatMessageType     = "chat-message"     // chat broadcast, to everyone
	ChatClearedType     = "chat-cleared"     // history wiped, to everyone
	ChatHistoryType     = "chat-history"     // full history, to a new connection
)

// Event is the wire envelope for every protocol message.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinPayload struct {
	DocID int64 `json:"documentId"`
}

type EditPayload struct {
	DocID       int64          `json:"documentId"`
	BaseVersion uint64         `json:"baseVersion"`
	Range       document.Range `json:"range"`
	Text        string         `json:"text"`
}

type UploadPayload struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Owner    string `json:"owner"`
	Language string `json:"language"`
}

type ChatSendPayload struct {
	Text string `json:"text"`
	User string `json:"user"`
}

type DocumentUpdatedPayload struct {
	DocID   int64                `json:"documentId"`
	Op      document.SequencedOp `json:"op"`
	Version uint64               `json:"version"`
}

type CorrectionPayload struct {
	DocID   int64  `json:"documentId"`
	Content string `json:"content"`
	Version uint64 `json:"version"`
}

type DocumentAddedPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

type ChatHistoryPayload struct {
	Messages []chat.Message `json:"messages"`
}

// newEvent wraps a payload. Marshalling our own payload types cannot
// fail in practice; a failure is logged and yields an empty payload.
func newEvent(eventType string, payload any) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s payload: %v", eventType, err)
		return Event{Type: eventType}
	}
	return Event{Type: eventType, Payload: data}
}
