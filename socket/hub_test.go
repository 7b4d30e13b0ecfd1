package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"coedit/internal/chat"
	"coedit/internal/document"
	"coedit/internal/gateway"
	"coedit/internal/session"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to read events from a WebSocket connection with a timeout.
func readEvent(t *testing.T, conn *websocket.Conn) gateway.Event {
	t.Helper()
	var event gateway.Event
	// Set a deadline to avoid tests hanging forever.
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	err = json.Unmarshal(p, &event)
	require.NoError(t, err, "Failed to unmarshal event JSON")
	return event
}

func writeEvent(t *testing.T, conn *websocket.Conn, eventType string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(gateway.Event{Type: eventType, Payload: data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

func TestHubIntegration(t *testing.T) {
	// 1. Assemble the engine with a file-backed chat log.
	store := document.NewStore()
	sequencer := document.NewSequencer(store)
	sessions := session.NewRegistry()
	chatLog := chat.NewLog(chat.NewFileStore(filepath.Join(t.TempDir(), "chat.json")))

	hub := NewHub()
	gw := gateway.New(store, sequencer, sessions, chatLog, hub, "/clearchat")
	hub.Bind(gw)
	go hub.Run()

	docID := store.Create("main.go", "ab", "alice", "go")

	// 2. Setup test HTTP server.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, r.URL.Query().Get("user"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	// 3. Client 1 connects and immediately receives the chat history.
	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user=alice", nil)
	require.NoError(t, err, "Client 1 failed to connect")
	defer conn1.Close()

	historyEvent := readEvent(t, conn1)
	assert.Equal(t, gateway.ChatHistoryType, historyEvent.Type)
	var history gateway.ChatHistoryPayload
	require.NoError(t, json.Unmarshal(historyEvent.Payload, &history))
	assert.Empty(t, history.Messages)

	// 4. Client 2 connects.
	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user=bob", nil)
	require.NoError(t, err, "Client 2 failed to connect")
	defer conn2.Close()
	_ = readEvent(t, conn2) // its own chat-history

	// 5. Both view the same document.
	writeEvent(t, conn1, gateway.JoinType, gateway.JoinPayload{DocID: docID})
	writeEvent(t, conn2, gateway.JoinType, gateway.JoinPayload{DocID: docID})

	// Joins produce no reply; give the server a moment to process them
	// before the edit below so the membership is in place.
	time.Sleep(100 * time.Millisecond)

	// 6. Client 1 edits; client 2 receives the sequenced broadcast.
	writeEvent(t, conn1, gateway.EditType, gateway.EditPayload{
		DocID:       docID,
		BaseVersion: 0,
		Range: document.Range{
			From: document.Position{Line: 0, Ch: 0},
			To:   document.Position{Line: 0, Ch: 1},
		},
		Text: "X",
	})

	updateEvent := readEvent(t, conn2)
	assert.Equal(t, gateway.DocumentUpdatedType, updateEvent.Type)
	var update gateway.DocumentUpdatedPayload
	require.NoError(t, json.Unmarshal(updateEvent.Payload, &update))
	assert.Equal(t, docID, update.DocID)
	assert.Equal(t, uint64(1), update.Version)
	assert.Equal(t, "X", update.Op.Text)

	// The store converged to the edited content.
	doc, err := store.Get(docID)
	require.NoError(t, err)
	assert.Equal(t, "Xb", doc.Content)
	assert.Equal(t, uint64(1), doc.Version)

	// 7. Chat goes to everyone, sender included. Per-connection delivery
	// is ordered, so the chat message being client 1's next event also
	// proves it never received its own edit back.
	writeEvent(t, conn2, gateway.ChatSendType, gateway.ChatSendPayload{Text: "hi", User: "bob"})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		chatEvent := readEvent(t, conn)
		assert.Equal(t, gateway.ChatMessageType, chatEvent.Type)
		var msg chat.Message
		require.NoError(t, json.Unmarshal(chatEvent.Payload, &msg))
		assert.Equal(t, "hi", msg.Text)
		assert.Equal(t, "bob", msg.User)
	}
}

func TestHubUploadReachesAllConnections(t *testing.T) {
	store := document.NewStore()
	chatLog := chat.NewLog(chat.NewFileStore(filepath.Join(t.TempDir(), "chat.json")))

	hub := NewHub()
	gw := gateway.New(store, document.NewSequencer(store), session.NewRegistry(), chatLog, hub, "/clearchat")
	hub.Bind(gw)
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, r.URL.Query().Get("user"))
	}))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user=alice", nil)
	require.NoError(t, err)
	defer conn1.Close()
	_ = readEvent(t, conn1)

	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user=bob", nil)
	require.NoError(t, err)
	defer conn2.Close()
	_ = readEvent(t, conn2)

	// Nobody is viewing anything, yet both hear about the new document.
	writeEvent(t, conn1, gateway.UploadType, gateway.UploadPayload{
		Name:     "util.go",
		Content:  "package util",
		Language: "go",
	})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		event := readEvent(t, conn)
		assert.Equal(t, gateway.DocumentAddedType, event.Type)
		var added gateway.DocumentAddedPayload
		require.NoError(t, json.Unmarshal(event.Payload, &added))
		assert.Equal(t, "util.go", added.Name)
		assert.Equal(t, "alice", added.Owner, "owner is the authenticated user")
	}
}
