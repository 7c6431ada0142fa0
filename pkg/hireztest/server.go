// Package hireztest provides an in-process fake of the Hi-Rez API for
// testing clients without touching the real service. The server validates
// request signatures, issues session ids, tracks their expiry, and serves
// canned per-method responses.
package hireztest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/alexbotov/hirez/pkg/hirez"
)

// Responses the real API uses for the interesting cases.
const (
	retApproved         = "Approved"
	retInvalidSignature = "Exception while validating developer access."
	retInvalidSession   = "Invalid session id."
)

// Server is a fake Hi-Rez API backed by httptest.
type Server struct {
	DevID   string
	AuthKey string

	httpServer *httptest.Server

	mu           sync.Mutex
	sessionTTL   time.Duration
	sessions     map[string]time.Time
	responses    map[string]string
	created      int
	failCreation bool
	calls        []string
}

// methodEcho is the default response body for methods without a canned
// response: the server echoes what it understood from the request path.
type methodEcho struct {
	RetMsg *string  `json:"ret_msg"`
	Method string   `json:"method"`
	Args   []string `json:"args"`
}

// NewServer starts a fake API accepting requests signed with the given
// credentials. Callers must Close it when done.
func NewServer(devID, authKey string) *Server {
	s := &Server{
		DevID:      devID,
		AuthKey:    authKey,
		sessionTTL: 15 * time.Minute,
		sessions:   make(map[string]time.Time),
		responses:  make(map[string]string),
	}

	r := mux.NewRouter()
	r.HandleFunc("/pingjson", s.handlePing).Methods(http.MethodGet)
	r.HandleFunc("/createsessionjson/{devId}/{signature}/{timestamp}", s.handleCreateSession).Methods(http.MethodGet)
	// Method calls carry a variable number of trailing argument segments,
	// so they are dispatched by hand.
	r.PathPrefix("/").HandlerFunc(s.handleMethod)

	s.httpServer = httptest.NewServer(r)
	return s
}

// URL returns the server's base URL, suitable for ClientConfig.BaseURL.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// SetSessionTTL changes how long issued sessions stay valid. Affects
// sessions issued after the call.
func (s *Server) SetSessionTTL(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionTTL = d
}

// SetResponse installs a canned JSON body for a method.
func (s *Server) SetResponse(method, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[method] = body
}

// FailCreations makes createsession respond without a session id, the way
// the real API answers when developer access cannot be validated.
func (s *Server) FailCreations(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCreation = fail
}

// ExpireSessions force-expires every issued session, so the next signed
// call is answered with the invalid-session message.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.sessions {
		s.sessions[id] = time.Now().Add(-time.Second)
	}
}

// CreatedSessions returns how many createsession calls were served
// successfully.
func (s *Server) CreatedSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

// Calls returns the method names served so far, in order, excluding ping
// and createsession.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, "Ping successful. Build 1.0. Fake server up and running.")
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	expected := hirez.Signature(s.DevID, "createsession", s.AuthKey, vars["timestamp"])
	if vars["devId"] != s.DevID || vars["signature"] != expected {
		writeJSON(w, map[string]string{"ret_msg": retInvalidSignature, "session_id": ""})
		return
	}

	s.mu.Lock()
	if s.failCreation {
		s.mu.Unlock()
		writeJSON(w, map[string]string{"ret_msg": retInvalidSignature, "session_id": ""})
		return
	}
	id := uuid.NewString()
	s.sessions[id] = time.Now().Add(s.sessionTTL)
	s.created++
	s.mu.Unlock()

	writeJSON(w, map[string]string{
		"ret_msg":    retApproved,
		"session_id": id,
		"timestamp":  vars["timestamp"],
	})
}

func (s *Server) handleMethod(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 5 || !strings.HasSuffix(parts[0], "json") {
		http.NotFound(w, r)
		return
	}
	method := strings.TrimSuffix(parts[0], "json")
	devID, sig, sessionID, ts := parts[1], parts[2], parts[3], parts[4]
	args := parts[5:]

	if devID != s.DevID || sig != hirez.Signature(s.DevID, method, s.AuthKey, ts) {
		msg := retInvalidSignature
		writeJSON(w, methodEcho{RetMsg: &msg, Method: method})
		return
	}

	s.mu.Lock()
	expiry, ok := s.sessions[sessionID]
	if !ok || time.Now().After(expiry) {
		s.mu.Unlock()
		msg := retInvalidSession
		writeJSON(w, methodEcho{RetMsg: &msg, Method: method})
		return
	}
	s.calls = append(s.calls, method)
	canned, hasCanned := s.responses[method]
	s.mu.Unlock()

	if hasCanned {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(canned))
		return
	}
	writeJSON(w, methodEcho{Method: method, Args: args})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
