package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/softclay/ana-bridge/internal/biz/repo"
	"github.com/softclay/ana-bridge/internal/infra/gateway"
)

// StatusProvider reports the supervised connection status
type StatusProvider interface {
	Snapshot() gateway.Status
}

// Server provides the health/liveness and pairing HTTP surface
type Server struct {
	status     StatusProvider
	memoryRepo repo.MemoryRepo
	server     *http.Server
	port       int
}

// NewServer creates a new API server
func NewServer(status StatusProvider, memoryRepo repo.MemoryRepo, port int) *Server {
	return &Server{
		status:     status,
		memoryRepo: memoryRepo,
		port:       port,
	}
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/chats", s.handleChats)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the HTTP server
func (s *Server) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctx)
	}
}

// handleStatus serves the pull-based liveness query
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.status.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"connected": st.Connected(),
		"uptime":    st.Uptime().Seconds(),
	})
}

// handleRoot serves the pairing page: the current QR while awaiting
// pairing, a placeholder while the artifact is pending, a banner once
// connected
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	st := s.status.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if st.Connected() {
		fmt.Fprint(w, `<h2 style="text-align:center">💙 Ana Connected</h2>`)
		return
	}

	if st.QR == "" {
		fmt.Fprint(w, `<h3 style="text-align:center">⌛ Generating QR…</h3>
<script>setTimeout(()=>location.reload(),3000)</script>`)
		return
	}

	png, err := qrcode.Encode(st.QR, qrcode.Medium, 280)
	if err != nil {
		http.Error(w, "qr encode failed", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, `<html>
<body style="display:flex;align-items:center;justify-content:center;height:100vh">
<img src="data:image/png;base64,%s" width="280"/>
<script>setTimeout(()=>location.reload(),20000)</script>
</body>
</html>`, base64.StdEncoding.EncodeToString(png))
}

// handleChats lists sender memories for debugging
func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	memories, err := s.memoryRepo.ListAll(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type chatView struct {
		SenderID    string    `json:"sender_id"`
		Jealousy    int       `json:"jealousy"`
		HistoryLen  int       `json:"history_len"`
		LastUpdated time.Time `json:"last_updated"`
	}

	views := make([]chatView, 0, len(memories))
	for _, m := range memories {
		views = append(views, chatView{
			SenderID:    m.SenderID,
			Jealousy:    m.Jealousy,
			HistoryLen:  len(m.History),
			LastUpdated: m.UpdatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}
