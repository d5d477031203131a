// Package service exposes the session manager over HTTP.
package service

import (
	"encoding/json"
	"mime"
	"net/http"
	"sync"

	"github.com/mosaicnetworks/reflector/src/common"
	"github.com/mosaicnetworks/reflector/src/relay"
	"github.com/mosaicnetworks/reflector/src/session"
	"github.com/sirupsen/logrus"
)

// Options restrict what HTTP clients can do.
type Options struct {
	// EmulatorPath and EmulatorArgs are applied to every session started over
	// HTTP.
	EmulatorPath string
	EmulatorArgs []string

	// AllowedOrigins are the browser origins allowed to send commands.
	AllowedOrigins []string
}

// Service ...
type Service struct {
	sync.Mutex

	bindAddress string
	manager     *session.Manager
	options     Options
	origins     map[string]bool
	mux         *http.ServeMux
	logger      *logrus.Entry
}

// NewService ...
func NewService(bindAddress string, manager *session.Manager, options Options, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		manager:     manager,
		options:     options,
		origins:     make(map[string]bool),
		mux:         http.NewServeMux(),
		logger:      logger,
	}

	for _, o := range options.AllowedOrigins {
		service.origins[o] = true
	}

	service.registerHandlers()

	return &service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering API handlers")
	s.mux.HandleFunc("/session", s.makeHandler(s.GetSession))
	s.mux.HandleFunc("/session/start", s.makeCommandHandler(s.StartSession))
	s.mux.HandleFunc("/session/stop", s.makeCommandHandler(s.StopSession))
	s.mux.HandleFunc("/session/kill", s.makeCommandHandler(s.KillProcess))
	s.mux.HandleFunc("/history", s.makeHandler(s.GetHistory))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// makeCommandHandler wraps the routes that change state. They only accept
// POST requests with a JSON content type, which browsers cannot send
// cross-origin without a preflight, and only from allowed origins.
func (s *Service) makeCommandHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}

		if origin := r.Header.Get("Origin"); origin != "" {
			if !s.origins[origin] {
				s.logger.WithField("origin", origin).Warn("Refusing command from origin")
				http.Error(w, "origin not allowed", http.StatusForbidden)
				return
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			http.Error(w, "application/json required", http.StatusUnsupportedMediaType)
			return
		}

		fn(w, r)
	}
}

// Handler returns the HTTP handler of the API.
func (s *Service) Handler() http.Handler {
	return s.mux
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving API")

	err := http.ListenAndServe(s.bindAddress, s.mux)
	if err != nil {
		s.logger.Error(err)
	}
}

// SessionResponse is returned by GET /session.
type SessionResponse struct {
	Active bool          `json:"active"`
	Status *relay.Status `json:"status,omitempty"`
}

// GetSession ...
func (s *Service) GetSession(w http.ResponseWriter, r *http.Request) {
	res := SessionResponse{}

	if status, ok := s.manager.Status(); ok {
		res.Active = true
		res.Status = &status
	}

	writeJSON(w, res)
}

// StartSession ...
func (s *Service) StartSession(w http.ResponseWriter, r *http.Request) {
	var params relay.Params
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		s.logger.WithError(err).Error("Decoding session parameters")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params.EmulatorPath = s.options.EmulatorPath
	params.EmulatorArgs = s.options.EmulatorArgs

	d, err := s.manager.Start(&params)
	if err != nil {
		s.logger.WithError(err).Error("Starting session")
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	writeJSON(w, d)
}

// StopSession ...
func (s *Service) StopSession(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Stop(); err != nil {
		s.logger.WithError(err).Error("Stopping session")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// KillProcess ...
func (s *Service) KillProcess(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.KillProcessOnly(); err != nil {
		s.logger.WithError(err).Error("Killing emulator")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetHistory ...
func (s *Service) GetHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.manager.History()
	if err != nil {
		s.logger.WithError(err).Error("Reading history")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, records)
}

func errorStatus(err error) int {
	if common.IsSessionErr(err, common.InvalidParams) || common.IsSessionErr(err, common.NoParams) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(v)
}
