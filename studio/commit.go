package studio

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"podcast_studio/episode"
	"podcast_studio/generator"
)

const (
	minTitleLength       = 2
	minDescriptionLength = 2
)

// Metadata is the user-entered episode text.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Prompts are the raw prompt texts kept for provenance.
type Prompts struct {
	Voice string `json:"voice_prompt"`
	Image string `json:"image_prompt"`
}

// CommitRequest gathers everything the gate checks.
type CommitRequest struct {
	Metadata Metadata
	Audio    *ResolvedAsset
	Image    *ResolvedAsset
	Voice    string
	Prompts  Prompts
	Subject  string
}

// UserDirectory looks users up by identity subject. A nil user with a nil
// error means the subject is unknown.
type UserDirectory interface {
	UserBySubject(ctx context.Context, subject string) (*episode.User, error)
}

// EpisodeWriter inserts an episode in a single write and returns its id.
type EpisodeWriter interface {
	Insert(ctx context.Context, e episode.Episode) (string, error)
}

// CommitGate refuses to persist an episode until both assets are resolved
// and the metadata, voice and caller are valid.
type CommitGate struct {
	users    UserDirectory
	episodes EpisodeWriter
	logger   *slog.Logger
}

// NewCommitGate wires the gate to its stores.
func NewCommitGate(users UserDirectory, episodes EpisodeWriter, logger *slog.Logger) (*CommitGate, error) {
	if users == nil || episodes == nil {
		return nil, errors.New("commit gate requires user directory and episode writer")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommitGate{users: users, episodes: episodes, logger: logger.With("component", "commit")}, nil
}

// Commit checks, in order, assets, metadata, voice and caller, stopping at
// the first failure. When all pass it writes the episode once.
func (g *CommitGate) Commit(ctx context.Context, req CommitRequest) (string, error) {
	if req.Audio == nil || req.Image == nil || req.Audio.URL == "" || req.Image.URL == "" {
		return "", newError(KindValidation, CodeIncompleteAssets, "Please generate audio and thumbnail.", nil)
	}

	if fields := validateMetadata(req.Metadata); len(fields) > 0 {
		e := newError(KindValidation, CodeValidationFailed, "Please fix the highlighted fields.", nil)
		e.Fields = fields
		return "", e
	}

	voice, err := generator.ParseVoice(req.Voice)
	if err != nil {
		return "", newError(KindValidation, CodeNoVoiceSelected, "Please select a voice.", err)
	}

	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return "", newError(KindAuth, CodeUnauthenticated, "Please sign in to publish.", nil)
	}
	user, err := g.users.UserBySubject(ctx, subject)
	if err != nil {
		return "", newError(KindUpstream, CodePersistFailed, "Could not load your profile. Please try again.", err)
	}
	if user == nil {
		return "", newError(KindAuth, CodeUnknownUser, "Your account could not be found. Please sign in again.", nil)
	}

	id, err := g.episodes.Insert(ctx, episode.Episode{
		UserID:        user.ID,
		Author:        user.Name,
		AuthorID:      user.Subject,
		AuthorImage:   user.ImageURL,
		Title:         strings.TrimSpace(req.Metadata.Title),
		Description:   strings.TrimSpace(req.Metadata.Description),
		AudioURL:      req.Audio.URL,
		AudioHandle:   string(req.Audio.Handle),
		AudioDuration: req.Audio.DurationSeconds,
		ImageURL:      req.Image.URL,
		ImageHandle:   string(req.Image.Handle),
		VoicePrompt:   req.Prompts.Voice,
		ImagePrompt:   req.Prompts.Image,
		VoiceType:     string(voice),
		Views:         0,
	})
	if err != nil {
		return "", newError(KindUpstream, CodePersistFailed, "Failed to publish the episode. Please try again.", err)
	}
	g.logger.Info("episode committed", "episode_id", id, "user_id", user.ID)
	return id, nil
}

func validateMetadata(m Metadata) map[string]string {
	fields := map[string]string{}
	if utf8.RuneCountInString(strings.TrimSpace(m.Title)) < minTitleLength {
		fields["title"] = "Podcast title must be at least 2 characters."
	}
	if utf8.RuneCountInString(strings.TrimSpace(m.Description)) < minDescriptionLength {
		fields["description"] = "Podcast description must be at least 2 characters."
	}
	return fields
}
