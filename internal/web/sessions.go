package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/philipparndt/gomesh/internal/controller"
	"github.com/philipparndt/gomesh/internal/metrics"
	"github.com/philipparndt/gomesh/pkg/viewer"
)

const (
	cookieName = "gomesh"
	sessionKey = "id"
)

// Session is the state of one browser. mu serializes every controller call.
type Session struct {
	ID string

	mu       sync.Mutex
	ctrl     *controller.Controller
	view     *viewer.View
	version  int
	lastSeen time.Time
	notify   *notifier
}

// Lock acquires the session
func (s *Session) Lock() {
	s.mu.Lock()
	s.lastSeen = time.Now()
}

// Unlock releases the session
func (s *Session) Unlock() {
	s.mu.Unlock()
}

// touch bumps the frame version so browsers fetch a new image
func (s *Session) touch() int {
	s.version++
	return s.version
}

// registry maps cookie session ids to sessions
type registry struct {
	mu       sync.Mutex
	cookies  sessions.Store
	sessions map[string]*Session
	create   func(id string) *Session
	metrics  *metrics.Metrics
}

func newRegistry(cookies sessions.Store, m *metrics.Metrics, create func(id string) *Session) *registry {
	return &registry{
		cookies:  cookies,
		sessions: make(map[string]*Session),
		create:   create,
		metrics:  m,
	}
}

// get returns the session of the request, creating it and setting the
// cookie on first contact. It must run before anything is written to w.
// New sessions are built outside r.mu since create may load a geometry.
func (r *registry) get(w http.ResponseWriter, req *http.Request) (*Session, error) {
	cookie, _ := r.cookies.Get(req, cookieName)
	id, _ := cookie.Values[sessionKey].(string)

	r.mu.Lock()
	sess, ok := r.sessions[id]
	r.mu.Unlock()
	if ok && id != "" {
		return sess, nil
	}

	id = uuid.NewString()
	cookie.Values[sessionKey] = id
	if err := cookie.Save(req, w); err != nil {
		return nil, err
	}
	sess = r.create(id)
	sess.lastSeen = time.Now()

	r.mu.Lock()
	r.sessions[id] = sess
	r.metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()
	return sess, nil
}

// each calls fn for every session
func (r *registry) each(fn func(*Session)) {
	r.mu.Lock()
	list := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		list = append(list, sess)
	}
	r.mu.Unlock()

	for _, sess := range list {
		fn(sess)
	}
}

// sweep drops sessions idle for longer than maxIdle and returns how many
// were removed. Busy sessions are kept.
func (r *registry) sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	var expired []*Session

	r.mu.Lock()
	for id, sess := range r.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastSeen.Before(cutoff) && !sess.ctrl.Busy() {
			delete(r.sessions, id)
			expired = append(expired, sess)
		}
		sess.mu.Unlock()
	}
	r.metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	for _, sess := range expired {
		sess.Lock()
		sess.ctrl.Close()
		sess.Unlock()
	}
	return len(expired)
}

// closeAll releases the files of every session
func (r *registry) closeAll() {
	r.each(func(sess *Session) {
		sess.Lock()
		sess.ctrl.Close()
		sess.Unlock()
	})
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
