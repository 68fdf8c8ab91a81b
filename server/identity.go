package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"podcast_studio/episode"
)

type identityEvent struct {
	Type string       `json:"type"`
	Data identityUser `json:"data"`
}

type identityUser struct {
	ID             string          `json:"id"`
	FirstName      *string         `json:"first_name"`
	ImageURL       string          `json:"image_url"`
	EmailAddresses []identityEmail `json:"email_addresses"`
}

type identityEmail struct {
	EmailAddress string `json:"email_address"`
}

func (u identityUser) primaryEmail() string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	return strings.TrimSpace(u.EmailAddresses[0].EmailAddress)
}

// email falls back to a synthetic address; providers may send the first
// webhook before an address is attached.
func (u identityUser) email() string {
	if e := u.primaryEmail(); e != "" {
		return e
	}
	return u.ID + "@identity.user"
}

// displayName prefers the first name, then the email local part.
func (u identityUser) displayName() string {
	if u.FirstName != nil && strings.TrimSpace(*u.FirstName) != "" {
		return strings.TrimSpace(*u.FirstName)
	}
	if local, _, ok := strings.Cut(u.primaryEmail(), "@"); ok && local != "" {
		return local
	}
	return "Unknown"
}

// handleIdentityWebhook keeps the user table in sync with the identity
// provider.
func (s *Server) handleIdentityWebhook(w http.ResponseWriter, r *http.Request) {
	if s.opts.WebhookSecret == "" {
		s.logger.Error("identity webhook secret is not configured")
		writeStatusError(w, http.StatusServiceUnavailable, "MissingWebhookSecret", "Identity sync is not configured.")
		return
	}
	got := r.Header.Get("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.WebhookSecret)) != 1 {
		writeStatusError(w, http.StatusUnauthorized, "InvalidSignature", "Invalid webhook secret.")
		return
	}
	var ev identityEvent
	if !decodeJSON(w, r, &ev) {
		return
	}
	if strings.TrimSpace(ev.Data.ID) == "" {
		writeStatusError(w, http.StatusBadRequest, "BadRequest", "Event has no user id.")
		return
	}

	if err := s.applyIdentityEvent(r, ev); err != nil {
		if errors.Is(err, episode.ErrNotFound) {
			s.logger.Info("identity webhook: user already gone", "subject", ev.Data.ID)
			w.WriteHeader(http.StatusOK)
			return
		}
		s.logger.Error("identity webhook", "type", ev.Type, "subject", ev.Data.ID, "error", err)
		writeStatusError(w, http.StatusInternalServerError, "Internal", "Failed to sync user.")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) applyIdentityEvent(r *http.Request, ev identityEvent) error {
	ctx := r.Context()
	u := ev.Data
	switch ev.Type {
	case "user.created":
		s.logger.Info("identity webhook: user.created", "subject", u.ID)
		_, err := s.episodes.UpsertUser(ctx, episode.User{
			Subject:  u.ID,
			Name:     u.displayName(),
			Email:    u.email(),
			ImageURL: u.ImageURL,
		})
		return err
	case "user.updated":
		s.logger.Info("identity webhook: user.updated", "subject", u.ID)
		existing, err := s.episodes.UserBySubject(ctx, u.ID)
		if err != nil {
			return err
		}
		// Updates keep the stored name; an unknown user is created with
		// the usual fallback.
		name := ""
		if existing == nil {
			name = u.displayName()
		}
		_, err = s.episodes.UpsertUser(ctx, episode.User{
			Subject:  u.ID,
			Name:     name,
			Email:    u.email(),
			ImageURL: u.ImageURL,
		})
		return err
	case "user.deleted":
		s.logger.Info("identity webhook: user.deleted", "subject", u.ID)
		return s.episodes.DeleteUser(ctx, u.ID)
	default:
		s.logger.Info("identity webhook: unhandled event type", "type", ev.Type)
		return nil
	}
}
