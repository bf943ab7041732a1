package greeting

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// DefaultMessage is served when no message is configured.
const DefaultMessage = "Hello from backend"

// Message is the sole business payload of the service.
type Message struct {
	Message string `json:"message"`
}

// Service is one greeting-service replica. The message is fixed at startup
// and constant for the lifetime of the process; requests have no side
// effects on each other.
type Service struct {
	message  string
	logger   *slog.Logger
	draining atomic.Bool
}

// NewService creates a replica serving the given message, falling back to
// DefaultMessage when it is empty.
func NewService(message string, logger *slog.Logger) *Service {
	if message == "" {
		message = DefaultMessage
	}

	return &Service{
		message: message,
		logger:  logger,
	}
}

// Routes returns the replica's HTTP mux: the message endpoint, the health
// endpoint probed by the monitor, and admin toggles for failover drills.
func (s *Service) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/message", s.handleMessage)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /admin/drain", s.handleDrain)
	mux.HandleFunc("POST /admin/restore", s.handleRestore)

	return mux
}

func (s *Service) handleMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Message{Message: s.message})
}

// handleHealth reports 200 while the replica is able to serve traffic and
// 503 while draining. The monitor only looks at the status code.
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.draining.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "draining"})
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Service) handleDrain(w http.ResponseWriter, r *http.Request) {
	s.draining.Store(true)
	s.logger.Warn("Replica draining, health endpoint now failing")
	w.WriteHeader(http.StatusAccepted)
}

func (s *Service) handleRestore(w http.ResponseWriter, r *http.Request) {
	s.draining.Store(false)
	s.logger.Info("Replica restored, health endpoint passing")
	w.WriteHeader(http.StatusAccepted)
}
