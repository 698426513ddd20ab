// Package apitest runs an in-memory fake of the remote API for tests.
//
// The fake speaks the same wire format as the real service: Basic
// authentication, the {id,status,data} response envelope and the
// {id,code,status,message,path} error body. Tests register the routes they
// need with Reply/Handle and inspect what the client sent with Requests.
// UploadSession adds the session endpoints together with pre-signed PUT
// targets that record the uploaded bytes.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/apillon/apillon-go"
)

// Default credentials accepted by a new Server.
const (
	Key    = "test-key"
	Secret = "test-secret"
)

// Request is a request received by the fake.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Header http.Header
}

// Decode unmarshals the request body into v.
func (r Request) Decode(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode %s %s body: %v", r.Method, r.Path, err)
	}
}

// Server is the fake API.
type Server struct {
	*httptest.Server

	t      testing.TB
	router chi.Router
	api    chi.Router

	mu       sync.Mutex
	requests []Request
	events   []string
	sessions map[string]*Session
}

// New starts a fake API that accepts Key/Secret and stops it on cleanup.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		t:        t,
		sessions: make(map[string]*Session),
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Put("/_upload/{session}/{file}", s.handlePut)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, 40400000, "Not found")
	})

	s.router = r
	s.api = r.With(BasicAuth(NewCredentials(map[string]string{Key: Secret})))
	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Client returns a client configured for the fake.
func (s *Server) Client(opts ...apillon.Option) *apillon.Client {
	s.t.Helper()
	c, err := apillon.New(&apillon.Config{
		APIURL:    s.URL,
		APIKey:    Key,
		APISecret: Secret,
	}, opts...)
	if err != nil {
		s.t.Fatalf("create client: %v", err)
	}
	return c
}

// Handle registers an authenticated route.
func (s *Server) Handle(method, pattern string, h http.HandlerFunc) {
	s.api.Method(method, pattern, h)
}

// Reply registers a route answering with data in the envelope.
func (s *Server) Reply(method, pattern string, data any) {
	s.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteData(w, http.StatusOK, data)
	})
}

// ReplyRaw registers a route answering with a raw JSON data payload.
func (s *Server) ReplyRaw(method, pattern, data string) {
	s.Reply(method, pattern, json.RawMessage(data))
}

// ReplyError registers a route answering with an error body.
func (s *Server) ReplyError(method, pattern string, status, code int, message string) {
	s.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, status, code, message)
	})
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo returns the requests matching method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Last returns the most recent request matching method and path.
func (s *Server) Last(method, path string) Request {
	s.t.Helper()
	reqs := s.RequestsTo(method, path)
	if len(reqs) == 0 {
		s.t.Fatalf("no %s %s request received", method, path)
	}
	return reqs[len(reqs)-1]
}

// Events returns the ordered upload events: "put:<key>" and "end:<session>".
func (s *Server) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *Server) event(e string) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
			Header: r.Header.Clone(),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}
