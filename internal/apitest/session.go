package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"path"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Target is one upload target returned by the session endpoint.
type Target struct {
	FileName    string `json:"fileName"`
	Path        string `json:"path,omitempty"`
	URL         string `json:"url"`
	FileUUID    string `json:"fileUuid"`
	ContentType string `json:"contentType,omitempty"`
}

// SessionFile is one file announced by the client when opening a session.
type SessionFile struct {
	FileName    string `json:"fileName"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
}

// Session scripts the upload endpoints of one bucket or website.
type Session struct {
	UUID string
	// EndResult is the data returned when the session is ended. Defaults to true.
	EndResult any
	// Targets rewrites the targets before they are returned. By default they
	// come back in reverse request order.
	Targets func([]Target) []Target
	// PutDelay holds every PUT for the given duration.
	PutDelay time.Duration

	mu          sync.Mutex
	requested   []SessionFile
	keys        map[string]string
	uploaded    map[string][]byte
	failures    map[string]int
	ended       int
	inFlight    int
	maxInFlight int
}

// UploadSession registers POST {prefix}/upload and POST {prefix}/upload/{session}/end.
func (s *Server) UploadSession(prefix string) *Session {
	sess := &Session{
		UUID:      uuid.NewString(),
		EndResult: true,
		keys:      make(map[string]string),
		uploaded:  make(map[string][]byte),
		failures:  make(map[string]int),
	}

	s.mu.Lock()
	s.sessions[sess.UUID] = sess
	s.mu.Unlock()

	s.Handle(http.MethodPost, prefix+"/upload", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Files []SessionFile `json:"files"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, http.StatusUnprocessableEntity, 42200000, "invalid body")
			return
		}

		sess.mu.Lock()
		sess.requested = append(sess.requested, req.Files...)
		targets := make([]Target, 0, len(req.Files))
		for i := len(req.Files) - 1; i >= 0; i-- {
			f := req.Files[i]
			fileUUID := uuid.NewString()
			sess.keys[fileUUID] = key(f.Path, f.FileName)
			targets = append(targets, Target{
				FileName:    f.FileName,
				Path:        f.Path,
				URL:         s.URL + "/_upload/" + sess.UUID + "/" + fileUUID,
				FileUUID:    fileUUID,
				ContentType: f.ContentType,
			})
		}
		hook := sess.Targets
		sess.mu.Unlock()

		if hook != nil {
			targets = hook(targets)
		}
		WriteData(w, http.StatusCreated, map[string]any{
			"sessionUuid": sess.UUID,
			"files":       targets,
		})
	})

	s.Handle(http.MethodPost, prefix+"/upload/{session}/end", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "session") != sess.UUID {
			WriteError(w, r, http.StatusNotFound, 40400001, "session not found")
			return
		}
		s.event("end:" + sess.UUID)

		sess.mu.Lock()
		sess.ended++
		result := sess.EndResult
		sess.mu.Unlock()

		WriteData(w, http.StatusOK, result)
	})

	return sess
}

// Fail makes the PUT for the file at key answer with status.
func (sess *Session) Fail(key string, status int) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.failures[key] = status
}

// Requested returns the files announced when the session was opened.
func (sess *Session) Requested() []SessionFile {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return append([]SessionFile(nil), sess.requested...)
}

// Uploaded returns the bytes received per file key.
func (sess *Session) Uploaded() map[string][]byte {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make(map[string][]byte, len(sess.uploaded))
	for k, v := range sess.uploaded {
		out[k] = v
	}
	return out
}

// EndCalls returns how many times the session end endpoint was called.
func (sess *Session) EndCalls() int {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.ended
}

// MaxInFlight returns the highest number of concurrent PUTs observed.
func (sess *Session) MaxInFlight() int {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.maxInFlight
}

// FileUUID returns the file uuid issued for key, if any.
func (sess *Session) FileUUID(k string) string {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for id, v := range sess.keys {
		if v == k {
			return id
		}
	}
	return ""
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sess, ok := s.sessions[chi.URLParam(r, "session")]
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	sess.mu.Lock()
	k, ok := sess.keys[chi.URLParam(r, "file")]
	status := sess.failures[k]
	sess.inFlight++
	sess.maxInFlight = max(sess.maxInFlight, sess.inFlight)
	delay := sess.PutDelay
	sess.mu.Unlock()

	defer func() {
		sess.mu.Lock()
		sess.inFlight--
		sess.mu.Unlock()
	}()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("<Error><Code>AccessDenied</Code></Error>"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	sess.mu.Lock()
	sess.uploaded[k] = body
	sess.mu.Unlock()
	s.event("put:" + k)

	w.WriteHeader(http.StatusOK)
}

func key(dir, name string) string {
	if dir == "" {
		return name
	}
	return path.Join(dir, name)
}
