package router

import (
	"net/http"

	"coedit/handler"
	"coedit/internal/document"
	"coedit/middleware"
	"coedit/socket"

	"github.com/gorilla/mux"
)

func Setup(store *document.Store, hub *socket.Hub, jwtSecret string) http.Handler {
	r := mux.NewRouter()

	// WebSocket
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, _ := r.Context().Value(middleware.UserKey).(string)
		socket.ServeWs(hub, w, r, username)
	})
	r.Handle("/ws", middleware.Identity(jwtSecret, wsHandler))

	// Read-side REST API
	fileHandler := handler.NewFileHandler(store)
	r.HandleFunc("/api/files", fileHandler.ListFiles).Methods(http.MethodGet)
	r.HandleFunc("/api/files/{id}", fileHandler.GetFile).Methods(http.MethodGet)

	return middleware.CORSMiddleware(r)
}
