package server

import (
	"context"
	"net/http"

	"podcast_studio/generator"
	"podcast_studio/studio"
)

type promptReq struct {
	Text string `json:"text"`
}

type voiceReq struct {
	Voice string `json:"voice"`
}

type enhanceReq struct {
	Action string `json:"action"`
	Text   string `json:"text"`
}

type durationReq struct {
	Seconds float64 `json:"seconds"`
}

type commitResp struct {
	EpisodeID string `json:"episode_id"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	id := newSessionID()
	sess, err := studio.NewSession(id, subject(r.Context()), s.deps)
	if err != nil {
		s.logger.Error("create session", "error", err)
		writeError(w, err)
		return
	}
	s.store.set(sess)
	s.logger.Info("session created", "session", id)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleSessionGet(w http.ResponseWriter, _ *http.Request, e *sessionEntry) {
	writeJSON(w, http.StatusOK, e.sess.Snapshot())
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request, e *sessionEntry) {
	m, ok := modalityParam(w, r)
	if !ok {
		return
	}
	var req promptReq
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, e, e.sess.SetPrompt(m, req.Text))
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request, e *sessionEntry) {
	var req voiceReq
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, e, e.sess.SelectVoice(req.Voice))
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request, e *sessionEntry) {
	var req studio.Metadata
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, e, e.sess.SetMetadata(req))
}

// handleEnhance drives the enhancement machine. "enhance" calls the
// service; every other action is a review decision.
func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request, e *sessionEntry) {
	m, ok := modalityParam(w, r)
	if !ok {
		return
	}
	var req enhanceReq
	if !decodeJSON(w, r, &req) {
		return
	}
	machine, err := e.sess.Enhancement(m)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Action == "enhance" {
		if !s.allow(w, e) {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
		defer cancel()
		s.respond(w, e, machine.Enhance(ctx))
		return
	}
	s.respond(w, e, machine.Dispatch(studio.ReviewAction(req.Action), req.Text))
}

// handleGenerate runs one generate -> upload -> resolve cycle synchronously.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, e *sessionEntry) {
	m, ok := modalityParam(w, r)
	if !ok {
		return
	}
	if !s.allow(w, e) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()
	_, err := e.sess.Generate(ctx, m)
	s.respond(w, e, err)
}

func (s *Server) handleDuration(w http.ResponseWriter, r *http.Request, e *sessionEntry) {
	var req durationReq
	if !decodeJSON(w, r, &req) {
		return
	}
	s.respond(w, e, e.sess.ReportDuration(req.Seconds))
}

// handleCommit publishes the episode and drops the session on success.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request, e *sessionEntry) {
	id, err := e.sess.Commit(r.Context(), subject(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	s.store.remove(e.sess.ID)
	s.logger.Info("session committed", "session", e.sess.ID, "episode_id", id)
	writeJSON(w, http.StatusCreated, commitResp{EpisodeID: id})
}

// respond writes the error, or the fresh snapshot when err is nil.
func (s *Server) respond(w http.ResponseWriter, e *sessionEntry, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.sess.Snapshot())
}

func (s *Server) allow(w http.ResponseWriter, e *sessionEntry) bool {
	if e.limiter.Allow() {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeStatusError(w, http.StatusTooManyRequests, "RateLimited", "Too many requests. Please wait a moment.")
	return false
}

func modalityParam(w http.ResponseWriter, r *http.Request) (generator.Modality, bool) {
	m, err := generator.ParseModality(r.PathValue("modality"))
	if err != nil {
		writeStatusError(w, http.StatusNotFound, "NotFound", "Unknown asset type.")
		return "", false
	}
	return m, true
}
