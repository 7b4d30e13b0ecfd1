package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"coedit/internal/chat"
	"coedit/internal/document"
	"coedit/internal/session"
	"coedit/pkg/logger"
)

// SystemUser authors the notice appended after a chat clear.
const SystemUser = "System"

// Transport is the outbound capability the gateway drives. The real
// implementation is the websocket hub; tests inject a fake.
type Transport interface {
	// Send delivers an event to one connection. Fire-and-forget: a
	// disconnected or lagging client simply misses it.
	Send(connID string, event Event)
	// Broadcast delivers an event to every live connection.
	Broadcast(event Event)
}

// Conn identifies an inbound connection. User is the authenticated
// username, or empty when the deployment runs without identity tokens
// and client-sent names are trusted.
type Conn struct {
	ID   string
	User string
}

// Gateway is the boundary between the transport and the sync engine. It
// drives one connection state machine per client: Connected, then
// Viewing (re-entrant on document switch), then Disconnected.
type Gateway struct {
	store     *document.Store
	sequencer *document.Sequencer
	sessions  *session.Registry
	chat      *chat.Log
	transport Transport
	clearCmd  string
}

func New(store *document.Store, sequencer *document.Sequencer, sessions *session.Registry,
	chatLog *chat.Log, transport Transport, clearCmd string) *Gateway {
	return &Gateway{
		store:     store,
		sequencer: sequencer,
		sessions:  sessions,
		chat:      chatLog,
		transport: transport,
		clearCmd:  clearCmd,
	}
}

// HandleConnect pushes the full chat history to the new connection in a
// single bulk send.
func (g *Gateway) HandleConnect(conn Conn) {
	g.transport.Send(conn.ID, newEvent(ChatHistoryType, ChatHistoryPayload{Messages: g.chat.History()}))
}

// HandleDisconnect drops the connection's document membership. Terminal:
// a reconnecting client re-announces what it is viewing.
func (g *Gateway) HandleDisconnect(conn Conn) {
	g.sessions.Leave(conn.ID)
}

// HandleEvent dispatches one inbound protocol event. Malformed or
// unknown events are logged and dropped; no inbound event is ever fatal
// to the connection or the service.
func (g *Gateway) HandleEvent(conn Conn, event Event) {
	switch event.Type {
	case JoinType:
		g.handleJoin(conn, event.Payload)
	case EditType:
		g.handleEdit(conn, event.Payload)
	case UploadType:
		g.handleUpload(conn, event.Payload)
	case ChatSendType:
		g.handleChatSend(conn, event.Payload)
	default:
		logger.Sugar.Warnf("Dropping unknown event type %q from %s", event.Type, conn.ID)
	}
}

func (g *Gateway) handleJoin(conn Conn, payload json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		logger.Sugar.Errorf("Malformed join from %s: %v", conn.ID, err)
		return
	}
	if _, err := g.store.Get(p.DocID); err != nil {
		logger.Sugar.Warnf("Join from %s for unknown doc %d", conn.ID, p.DocID)
		return
	}
	g.sessions.Join(conn.ID, p.DocID)
}

func (g *Gateway) handleEdit(conn Conn, payload json.RawMessage) {
	var p EditPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		logger.Sugar.Errorf("Malformed edit from %s: %v", conn.ID, err)
		return
	}

	sop, err := g.sequencer.Submit(document.EditOperation{
		DocID:       p.DocID,
		BaseVersion: p.BaseVersion,
		Range:       p.Range,
		Text:        p.Text,
		Origin:      conn.ID,
	})

	var rejected document.Rejected
	switch {
	case err == nil:
		update := newEvent(DocumentUpdatedType, DocumentUpdatedPayload{
			DocID:   p.DocID,
			Op:      sop,
			Version: sop.Version,
		})
		for _, member := range g.sessions.MembersOf(p.DocID, conn.ID) {
			g.transport.Send(member, update)
		}
	case errors.As(err, &rejected):
		// Resync the origin wholesale; everyone else saw nothing.
		doc, getErr := g.store.Get(p.DocID)
		if getErr != nil {
			logger.Sugar.Errorf("Doc %d vanished during resync for %s", p.DocID, conn.ID)
			return
		}
		g.transport.Send(conn.ID, newEvent(CorrectionType, CorrectionPayload{
			DocID:   p.DocID,
			Content: doc.Content,
			Version: doc.Version,
		}))
	default:
		logger.Sugar.Warnf("Edit from %s dropped: %v", conn.ID, err)
	}
}

func (g *Gateway) handleUpload(conn Conn, payload json.RawMessage) {
	var p UploadPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		logger.Sugar.Errorf("Malformed upload from %s: %v", conn.ID, err)
		return
	}
	owner := p.Owner
	if conn.User != "" {
		owner = conn.User
	}

	id := g.store.Create(p.Name, p.Content, owner, p.Language)
	logger.Sugar.Infof("Document %d (%s) uploaded by %s", id, p.Name, owner)

	// Everyone learns about new documents, viewing or not.
	g.transport.Broadcast(newEvent(DocumentAddedType, DocumentAddedPayload{
		ID:    id,
		Name:  p.Name,
		Owner: owner,
	}))
}

func (g *Gateway) handleChatSend(conn Conn, payload json.RawMessage) {
	var p ChatSendPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		logger.Sugar.Errorf("Malformed chat-send from %s: %v", conn.ID, err)
		return
	}

	text := strings.TrimSpace(p.Text)
	if text == "" {
		return
	}
	user := p.User
	if conn.User != "" {
		user = conn.User
	}
	if user == "" {
		user = "Anonymous"
	}

	if text == g.clearCmd {
		if err := g.chat.Clear(); err != nil {
			logger.Sugar.Errorf("Failed to persist chat clear: %v", err)
		}
		g.transport.Broadcast(Event{Type: ChatClearedType})

		notice, err := g.chat.Append(fmt.Sprintf("Chat history cleared by %s.", user), SystemUser)
		if err != nil {
			logger.Sugar.Errorf("Failed to persist clear notice: %v", err)
		}
		g.transport.Broadcast(newEvent(ChatMessageType, notice))
		return
	}

	msg, err := g.chat.Append(text, user)
	if err != nil {
		// In-memory history and the broadcast still go out; the
		// snapshot catches up on the next successful persist.
		logger.Sugar.Errorf("Failed to persist chat message: %v", err)
	}
	g.transport.Broadcast(newEvent(ChatMessageType, msg))
}
