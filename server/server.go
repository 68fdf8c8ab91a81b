// Package server exposes editing sessions, episodes, blobs and identity
// sync over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"podcast_studio/episode"
	"podcast_studio/storage"
	"podcast_studio/studio"
)

// BlobOpener serves locally stored objects. Remote stores leave it nil.
type BlobOpener interface {
	Open(ctx context.Context, h storage.Handle) (*storage.Object, error)
}

// Options tune the HTTP layer. SessionTTL drops editing sessions idle for
// longer than that; zero means 24h.
type Options struct {
	RequestTimeout    time.Duration
	GeneratePerMinute int
	Burst             int
	SessionTTL        time.Duration
	WebhookSecret     string
	Logger            *slog.Logger
}

type Server struct {
	deps     studio.Deps
	episodes *episode.Store
	blobs    BlobOpener
	opts     Options
	logger   *slog.Logger
	store    *sessionStore
}

type sessionEntry struct {
	sess     *studio.Session
	limiter  *rate.Limiter
	lastSeen time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

func newStore(perMinute, burst int, ttl time.Duration) *sessionStore {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &sessionStore{
		sessions: make(map[string]*sessionEntry),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

// set registers sess and drops every session idle past the TTL.
func (s *sessionStore) set(sess *studio.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
		}
	}
	seen := sess.CreatedAt
	if seen.IsZero() {
		seen = now
	}
	s.sessions[sess.ID] = &sessionEntry{sess: sess, limiter: rate.NewLimiter(s.limit, s.burst), lastSeen: seen}
}

// get returns the session only to its owner and counts as activity.
// Expired sessions are gone.
func (s *sessionStore) get(id, owner string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || e.sess.Owner != owner {
		return nil, false
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e, true
}

func (s *sessionStore) expired(e *sessionEntry, now time.Time) bool {
	return now.Sub(e.lastSeen) > s.ttl
}

func (s *sessionStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// New wires the server. blobs may be nil when assets live in a remote store.
func New(deps studio.Deps, episodes *episode.Store, blobs BlobOpener, opts Options) (*Server, error) {
	if deps.Gate == nil || deps.Generator == nil || deps.Enhancer == nil || deps.Store == nil {
		return nil, errors.New("studio dependencies required")
	}
	if episodes == nil {
		return nil, errors.New("episode store required")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deps.Logger = logger
	return &Server{
		deps:     deps,
		episodes: episodes,
		blobs:    blobs,
		opts:     opts,
		logger:   logger.With("component", "server"),
		store:    newStore(opts.GeneratePerMinute, opts.Burst, opts.SessionTTL),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", s.authed(s.handleSessionCreate))
	mux.HandleFunc("GET /api/sessions/{id}", s.withSession(s.handleSessionGet))
	mux.HandleFunc("PUT /api/sessions/{id}/prompts/{modality}", s.withSession(s.handlePrompt))
	mux.HandleFunc("PUT /api/sessions/{id}/voice", s.withSession(s.handleVoice))
	mux.HandleFunc("PUT /api/sessions/{id}/metadata", s.withSession(s.handleMetadata))
	mux.HandleFunc("POST /api/sessions/{id}/enhance/{modality}", s.withSession(s.handleEnhance))
	mux.HandleFunc("POST /api/sessions/{id}/generate/{modality}", s.withSession(s.handleGenerate))
	mux.HandleFunc("POST /api/sessions/{id}/duration", s.withSession(s.handleDuration))
	mux.HandleFunc("POST /api/sessions/{id}/commit", s.withSession(s.handleCommit))
	mux.HandleFunc("GET /api/episodes", s.handleEpisodeList)
	mux.HandleFunc("GET /api/episodes/{id}", s.handleEpisodeGet)
	mux.HandleFunc("GET /blobs/{handle}", s.handleBlob)
	mux.HandleFunc("POST /api/identity/webhook", s.handleIdentityWebhook)
	return s.logMiddleware(mux)
}

// --- Auth ---

type subjectKey struct{}

// subjectFrom reads the identity subject set by the upstream gateway.
func subjectFrom(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := subjectFrom(r)
		if sub == "" {
			writeError(w, &studio.Error{Kind: studio.KindAuth, Code: studio.CodeUnauthenticated, Message: "Please sign in."})
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), subjectKey{}, sub)))
	}
}

func subject(ctx context.Context) string {
	v, _ := ctx.Value(subjectKey{}).(string)
	return v
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, e *sessionEntry)

// withSession resolves {id} for the authenticated owner. Sessions owned by
// someone else are reported as missing.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request) {
		e, ok := s.store.get(r.PathValue("id"), subject(r.Context()))
		if !ok {
			writeStatusError(w, http.StatusNotFound, "NotFound", "Session not found.")
			return
		}
		next(w, r, e)
	})
}

// --- Helpers ---

func newSessionID() string {
	return uuid.NewString()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeStatusError(w, http.StatusBadRequest, "BadRequest", "Request body is not valid JSON.")
		return false
	}
	return true
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		s.logger.Info("http request",
			"method", r.Method,
			"path", path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
