package ticket

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const maxRequestBodyBytes = 1 << 20

// Server exposes a Store over HTTP:
//
//	GET  /tickets/{id}  -> {"id","status"} or {"error":"not found"}
//	POST /tickets/{id}  -> upsert with status from the query or JSON body
//
// A missing ticket answers 200 with the error body unless WithNotFoundStatus
// says otherwise.
type Server struct {
	store          Store
	notifier       Notifier
	notFoundStatus int
	mux            *http.ServeMux
}

type ServerOption func(*Server)

func WithNotifier(n Notifier) ServerOption {
	return func(s *Server) { s.notifier = n }
}

func WithNotFoundStatus(code int) ServerOption {
	return func(s *Server) {
		if code >= 100 && code <= 599 {
			s.notFoundStatus = code
		}
	}
}

func NewServer(store Store, opts ...ServerOption) *Server {
	s := &Server{store: store, notFoundStatus: http.StatusOK, mux: http.NewServeMux()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.mux.HandleFunc("GET /tickets/{id}", s.handleGet)
	s.mux.HandleFunc("POST /tickets/{id}", s.handleUpdate)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrTicketNotFound) {
		writeJSON(w, s.notFoundStatus, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("ticket_id", r.PathValue("id")).Msg("load ticket failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	status, err := statusFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	t, err := s.store.Upsert(r.Context(), Ticket{ID: r.PathValue("id"), Status: status})
	if errors.Is(err, ErrInvalidTicket) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("ticket_id", r.PathValue("id")).Msg("store ticket failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	log.Info().Str("ticket_id", t.ID).Str("status", t.Status).Msg("ticket updated")
	if s.notifier != nil {
		s.notifier.StatusChanged(r.Context(), t)
	}
	writeJSON(w, http.StatusOK, t)
}

func statusFromRequest(r *http.Request) (string, error) {
	if q := strings.TrimSpace(r.URL.Query().Get("status")); q != "" {
		return q, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return "", errors.New("status is required")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", errors.New("body must be a JSON object")
	}
	if strings.TrimSpace(body.Status) == "" {
		return "", errors.New("status is required")
	}
	return strings.TrimSpace(body.Status), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
