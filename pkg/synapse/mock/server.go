// Package mock is an in-memory stand-in for the Synapse repository and
// authentication services. Server is an http.Handler, so it can back an
// httptest.Server, the sandbox binary, or a Client directly through
// RoundTripper.
package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/devseed"
	"github.com/Sage-Bionetworks/synapse_sdk_go/internal/synapseapi"
)

const (
	// DefaultRepoPrefix is the path prefix of the repository service.
	DefaultRepoPrefix = "/repo/v1"
	// DefaultAuthPrefix is the path prefix of the authentication service.
	DefaultAuthPrefix = "/auth/v1"
	// DefaultDaemonPolls is how many status polls report STARTED.
	DefaultDaemonPolls = 2

	profileRequestHeader  = "profile_request"
	profileResponseHeader = "profile_response_object"
	sessionTokenHeader    = "sessionToken"
)

// Option configures a Server.
type Option func(*Server)

// WithRepoPrefix overrides the repository path prefix.
func WithRepoPrefix(prefix string) Option {
	return func(s *Server) {
		s.repoPrefix = strings.TrimRight(prefix, "/")
	}
}

// WithAuthPrefix overrides the authentication path prefix.
func WithAuthPrefix(prefix string) Option {
	return func(s *Server) {
		s.authPrefix = strings.TrimRight(prefix, "/")
	}
}

// WithUser registers credentials accepted by the session resource.
func WithUser(email, password string) Option {
	return func(s *Server) {
		s.addUser(email, password)
	}
}

// WithDaemonPolls sets how many status polls a daemon answers with STARTED.
func WithDaemonPolls(n int) Option {
	return func(s *Server) {
		if n >= 0 {
			s.daemonPolls = n
		}
	}
}

// WithLogger traces handled requests to logger.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server serves both services from memory.
type Server struct {
	mu sync.Mutex

	repoPrefix  string
	authPrefix  string
	daemonPolls int
	logger      hclog.Logger

	users    map[string]*account
	sessions map[string]string
	kinds    map[string]map[string]*record
	nextID   int
	daemons  map[string]*daemon
	now      func() time.Time
}

type account struct {
	email       string
	password    string
	displayName string
}

// New constructs a Server with one user, admin/admin, and the two built-in
// groups.
func New(opts ...Option) *Server {
	s := &Server{
		repoPrefix:  DefaultRepoPrefix,
		authPrefix:  DefaultAuthPrefix,
		daemonPolls: DefaultDaemonPolls,
		logger:      hclog.NewNullLogger(),
		users:       make(map[string]*account),
		sessions:    make(map[string]string),
		kinds:       make(map[string]map[string]*record),
		daemons:     make(map[string]*daemon),
		now:         time.Now,
	}
	for _, kind := range knownKinds {
		s.kinds[kind] = make(map[string]*record)
	}
	s.addGroup("PUBLIC")
	s.addGroup("AUTHENTICATED_USERS")
	s.addUser("admin", "admin")
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed applies a seed file: users first, then entities in file order.
func (s *Server) Seed(seed *devseed.Seed) error {
	if seed == nil {
		return nil
	}
	if err := seed.Validate(); err != nil {
		return fmt.Errorf("mock: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range seed.Users {
		if u.Group {
			s.addGroupLocked(u.Email)
			continue
		}
		s.addUserLocked(u.Email, u.Password)
	}
	for i, e := range seed.Entities {
		if _, ok := s.kinds[e.Kind]; !ok {
			return fmt.Errorf("mock: seed entity %d: unknown kind %q", i, e.Kind)
		}
		rec, err := s.createLocked(e.Kind, e.ID, e.Fields, "seed")
		if err != nil {
			return fmt.Errorf("mock: seed entity %d: %w", i, err)
		}
		for bag, values := range e.Annotations {
			target, _ := rec.annotations[bag].(map[string]any)
			if target == nil {
				target = make(map[string]any)
			}
			if m, ok := values.(map[string]any); ok {
				for k, v := range m {
					target[k] = v
				}
			}
			rec.annotations[bag] = target
		}
	}
	return nil
}

// RepoPrefix returns the repository path prefix.
func (s *Server) RepoPrefix() string { return s.repoPrefix }

// AuthPrefix returns the authentication path prefix.
func (s *Server) AuthPrefix() string { return s.authPrefix }

// RoundTripper serves requests in-process without opening a socket.
func (s *Server) RoundTripper() http.RoundTripper {
	return roundTripper{handler: s}
}

type roundTripper struct {
	handler http.Handler
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		defer req.Body.Close()
	}
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	rec := httptest.NewRecorder()
	rt.handler.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// ServeHTTP routes a request to the repository or authentication service.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("handling request", "method", r.Method, "path", r.URL.Path)

	if r.Header.Get(profileRequestHeader) != "" {
		payload, err := synapseapi.EncodeProfile(map[string]any{
			"method":    r.Method,
			"uri":       r.URL.RequestURI(),
			"requestId": uuid.NewString(),
		})
		if err == nil {
			w.Header().Set(profileResponseHeader, payload)
		}
	}

	path := r.URL.Path
	switch {
	case hasPrefix(path, s.authPrefix):
		s.serveAuth(w, r, segments(strings.TrimPrefix(path, s.authPrefix)))
	case hasPrefix(path, s.repoPrefix):
		s.serveRepo(w, r, segments(strings.TrimPrefix(path, s.repoPrefix)))
	default:
		writeError(w, http.StatusNotFound, "no service at "+path)
	}
}

func (s *Server) serveAuth(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 1 && parts[0] == "session" && r.Method == http.MethodPost:
		s.handleLogin(w, r)
	case len(parts) == 1 && parts[0] == "session" && r.Method == http.MethodDelete:
		s.handleLogout(w, r)
	case len(parts) == 1 && parts[0] == "user" && r.Method == http.MethodPost:
		s.handleCreateUser(w, r)
	case len(parts) == 1 && parts[0] == "user" && r.Method == http.MethodGet:
		s.handleGetUser(w, r)
	case len(parts) == 1 && parts[0] == "user" && r.Method == http.MethodPut:
		s.handlePutUser(w, r)
	default:
		writeError(w, http.StatusNotFound, "unknown authentication resource")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r.Body, &creds); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.users[creds.Email]
	if !ok || acct.password != creds.Password {
		writeError(w, http.StatusBadRequest, "unable to authenticate")
		return
	}
	token := uuid.NewString()
	s.sessions[token] = acct.email
	writeJSON(w, http.StatusCreated, map[string]any{"sessionToken": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, r.Header.Get(sessionTokenHeader))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := decodeBody(r.Body, &body); err != nil || body.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[body.Email]; exists {
		writeError(w, http.StatusConflict, "user exists")
		return
	}
	s.addUserLocked(body.Email, body.Password)
	s.users[body.Email].displayName = body.DisplayName
	writeJSON(w, http.StatusCreated, map[string]any{"email": body.Email, "displayName": body.DisplayName})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.sessionAccountLocked(r)
	if acct == nil {
		writeError(w, http.StatusForbidden, "a valid session token is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"email": acct.email, "displayName": acct.displayName})
}

func (s *Server) handlePutUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DisplayName string `json:"displayName"`
	}
	if err := decodeBody(r.Body, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.sessionAccountLocked(r)
	if acct == nil {
		writeError(w, http.StatusForbidden, "a valid session token is required")
		return
	}
	acct.displayName = body.DisplayName
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionAccountLocked(r *http.Request) *account {
	email, ok := s.sessions[r.Header.Get(sessionTokenHeader)]
	if !ok {
		return nil
	}
	return s.users[email]
}

func (s *Server) addUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUserLocked(email, password)
}

func (s *Server) addUserLocked(email, password string) {
	if email == "" {
		return
	}
	if _, exists := s.users[email]; !exists {
		_, _ = s.createLocked("user", "", map[string]any{"name": email}, email)
	}
	s.users[email] = &account{email: email, password: password, displayName: email}
}

func (s *Server) addGroup(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addGroupLocked(name)
}

func (s *Server) addGroupLocked(name string) {
	for _, rec := range s.kinds["userGroup"] {
		if rec.fields["name"] == name {
			return
		}
	}
	_, _ = s.createLocked("userGroup", "", map[string]any{"name": name, "individual": false}, "")
}

func hasPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func decodeBody(body io.Reader, out any) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := synapseapi.DecodeResult(data, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	data, _ := json.Marshal(map[string]string{"reason": reason})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
