package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/km-arc/go-gems/framework/container"
)

type session struct {
	id        string
	container *container.Container
	lastSeen  atomic.Time
}

func (s *session) touch(now time.Time) { s.lastSeen.Store(now) }

func (s *session) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.lastSeen.Load()) > ttl
}

func (s *session) dispose() error { return s.container.Dispose() }

// session returns the live session named by r's cookie, or starts a new one
// and sets the cookie on w.
func (l *Listener) session(w http.ResponseWriter, r *http.Request) *session {
	now := time.Now()
	var stale *session

	l.mu.Lock()
	if ck, err := r.Cookie(l.cookie); err == nil {
		if s, ok := l.sessions[ck.Value]; ok {
			if !s.expired(now, l.ttl) {
				l.mu.Unlock()
				return s
			}
			delete(l.sessions, ck.Value)
			stale = s
		}
	}
	s := l.newSession(now)
	l.sessions[s.id] = s
	l.mu.Unlock()

	if stale != nil {
		l.disposeSession(stale, "expired")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     l.cookie,
		Value:    s.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	l.log.WithField("session", s.id).Debug("session started")
	return s
}

func (l *Listener) newSession(now time.Time) *session {
	s := &session{id: uuid.NewString(), container: l.app.NewChild()}
	s.touch(now)
	s.container.Instance(SessionIDKey, s.id)
	for _, fn := range l.sessionScope {
		fn(s.container)
	}
	return s
}

func (l *Listener) disposeSession(s *session, reason string) {
	log := l.log.WithField("session", s.id)
	if err := s.dispose(); err != nil {
		log.WithError(err).Error("disposing session container")
		return
	}
	log.Debugf("session %s", reason)
}

// Sessions returns the number of live sessions.
func (l *Listener) Sessions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sessions)
}

// SessionContainer returns the container of session id.
func (l *Listener) SessionContainer(id string) (*container.Container, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sessions[id]
	if !ok {
		return nil, false
	}
	return s.container, true
}

// Invalidate ends session id and disposes its container. It reports whether
// the session existed.
func (l *Listener) Invalidate(id string) bool {
	l.mu.Lock()
	s, ok := l.sessions[id]
	delete(l.sessions, id)
	l.mu.Unlock()

	if ok {
		l.disposeSession(s, "invalidated")
	}
	return ok
}

// Sweep disposes the sessions idle for longer than the TTL at now and
// returns how many were removed.
func (l *Listener) Sweep(now time.Time) int {
	var expired []*session
	l.mu.Lock()
	for id, s := range l.sessions {
		if s.expired(now, l.ttl) {
			expired = append(expired, s)
			delete(l.sessions, id)
		}
	}
	l.mu.Unlock()

	for _, s := range expired {
		l.disposeSession(s, "expired")
	}
	return len(expired)
}

// Run sweeps expired sessions every half TTL until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	ticker := time.NewTicker(max(l.ttl/2, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if n := l.Sweep(now); n > 0 {
				l.log.WithField("count", n).Info("expired sessions swept")
			}
		}
	}
}
