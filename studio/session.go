package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"podcast_studio/generator"
	"podcast_studio/storage"
)

// Prompt is a mutable prompt field safe for concurrent use.
type Prompt struct {
	mu   sync.Mutex
	text string
}

func (p *Prompt) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

func (p *Prompt) SetText(text string) {
	p.mu.Lock()
	p.text = text
	p.mu.Unlock()
}

// Deps are the collaborators shared by all sessions.
type Deps struct {
	Generator Generator
	Enhancer  Enhancer
	Store     storage.ObjectStore
	Gate      *CommitGate
	Probe     DurationProbe
	Logger    *slog.Logger
}

func (d Deps) validate() error {
	var errs []error
	if d.Generator == nil {
		errs = append(errs, errors.New("generator is required"))
	}
	if d.Enhancer == nil {
		errs = append(errs, errors.New("enhancer is required"))
	}
	if d.Store == nil {
		errs = append(errs, errors.New("object store is required"))
	}
	if d.Gate == nil {
		errs = append(errs, errors.New("commit gate is required"))
	}
	return errors.Join(errs...)
}

// Session is one user's in-progress episode. It is the single owner of the
// prompts, enhancement machines and orchestrators; surfaces read it through
// Snapshot and change it only through these methods.
type Session struct {
	ID        string
	Owner     string
	CreatedAt time.Time

	gate   *CommitGate
	logger *slog.Logger

	audioPrompt Prompt
	imagePrompt Prompt

	audio         *Orchestrator
	image         *Orchestrator
	audioEnhancer *EnhancementMachine
	imageEnhancer *EnhancementMachine

	mu         sync.Mutex
	metadata   Metadata
	voice      generator.Voice
	committing bool
	committed  bool
	episodeID  string
}

// SessionSnapshot is a read-only view of the whole session.
type SessionSnapshot struct {
	ID          string             `json:"id"`
	Metadata    Metadata           `json:"metadata"`
	Voice       string             `json:"voice"`
	Prompts     Prompts            `json:"prompts"`
	Audio       AssetSnapshot      `json:"audio"`
	Image       AssetSnapshot      `json:"image"`
	Enhancement map[string]Enhance `json:"enhancement"`
	CanCommit   bool               `json:"can_commit"`
	Committed   bool               `json:"committed"`
	EpisodeID   string             `json:"episode_id,omitempty"`
}

// Enhance pairs an enhancement session with its review view.
type Enhance struct {
	Session EnhancementSession `json:"session"`
	Review  ReviewView         `json:"review"`
}

// NewSession builds an empty editing session for owner.
func NewSession(id, owner string, deps Deps) (*Session, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", id)

	s := &Session{
		ID:        id,
		Owner:     owner,
		CreatedAt: time.Now(),
		gate:      deps.Gate,
		logger:    logger,
	}
	audioOpts := []OrchestratorOption{WithLogger(logger)}
	if deps.Probe != nil {
		audioOpts = append(audioOpts, WithDurationProbe(deps.Probe))
	}
	s.audio = NewOrchestrator(generator.ModalityAudio, deps.Generator, deps.Store, audioOpts...)
	s.image = NewOrchestrator(generator.ModalityImage, deps.Generator, deps.Store, WithLogger(logger))
	s.audioEnhancer = NewEnhancementMachine(generator.ModalityAudio, deps.Enhancer, &s.audioPrompt, logger)
	s.imageEnhancer = NewEnhancementMachine(generator.ModalityImage, deps.Enhancer, &s.imagePrompt, logger)
	return s, nil
}

// SetPrompt replaces the prompt text for modality.
func (s *Session) SetPrompt(m generator.Modality, text string) error {
	if err := s.open(); err != nil {
		return err
	}
	p, err := s.prompt(m)
	if err != nil {
		return err
	}
	p.SetText(text)
	return nil
}

// PromptText returns the prompt text for modality.
func (s *Session) PromptText(m generator.Modality) string {
	p, err := s.prompt(m)
	if err != nil {
		return ""
	}
	return p.Text()
}

// SelectVoice sets the narration voice.
func (s *Session) SelectVoice(voice string) error {
	v, err := generator.ParseVoice(voice)
	if err != nil {
		return newError(KindValidation, CodeInvalidVoice, "Please select one of the available voices.", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return err
	}
	s.voice = v
	return nil
}

// SetMetadata stores the title and description.
func (s *Session) SetMetadata(m Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.openLocked(); err != nil {
		return err
	}
	s.metadata = m
	return nil
}

// Generate runs the orchestrator for modality with the current prompt.
func (s *Session) Generate(ctx context.Context, m generator.Modality) (*ResolvedAsset, error) {
	if err := s.open(); err != nil {
		return nil, err
	}
	o, err := s.Orchestrator(m)
	if err != nil {
		return nil, err
	}
	p, _ := s.prompt(m)
	voice := ""
	if m == generator.ModalityAudio {
		s.mu.Lock()
		voice = string(s.voice)
		s.mu.Unlock()
	}
	return o.Run(ctx, p.Text(), voice)
}

// ReportDuration records the decoded duration of the generated audio.
func (s *Session) ReportDuration(seconds float64) error {
	return s.audio.ReportDuration(seconds)
}

// Orchestrator returns the orchestrator for modality.
func (s *Session) Orchestrator(m generator.Modality) (*Orchestrator, error) {
	switch m {
	case generator.ModalityAudio:
		return s.audio, nil
	case generator.ModalityImage:
		return s.image, nil
	default:
		return nil, newError(KindValidation, CodeInvalidPrompt, fmt.Sprintf("Unknown asset type %q.", m), nil)
	}
}

// Enhancement returns the enhancement machine bound to modality's prompt.
func (s *Session) Enhancement(m generator.Modality) (*EnhancementMachine, error) {
	switch m {
	case generator.ModalityAudio:
		return s.audioEnhancer, nil
	case generator.ModalityImage:
		return s.imageEnhancer, nil
	default:
		return nil, newError(KindValidation, CodeInvalidPrompt, fmt.Sprintf("Unknown prompt type %q.", m), nil)
	}
}

// Commit publishes the episode through the gate using whatever resolved
// assets exist right now. After a successful commit the session is closed
// and its editing state cleared.
func (s *Session) Commit(ctx context.Context, subject string) (string, error) {
	s.mu.Lock()
	if err := s.openLocked(); err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.committing = true
	req := CommitRequest{
		Metadata: s.metadata,
		Voice:    string(s.voice),
		Subject:  subject,
	}
	s.mu.Unlock()

	req.Audio = s.audio.Resolved()
	req.Image = s.image.Resolved()
	req.Prompts = Prompts{Voice: s.audioPrompt.Text(), Image: s.imagePrompt.Text()}

	id, err := s.gate.Commit(ctx, req)
	if err != nil {
		s.mu.Lock()
		s.committing = false
		s.mu.Unlock()
		s.logger.Info("commit refused", "code", CodeOf(err), "kind", KindOf(err))
		return "", err
	}

	s.mu.Lock()
	s.committing = false
	s.committed = true
	s.episodeID = id
	s.metadata = Metadata{}
	s.voice = ""
	s.mu.Unlock()
	s.audioPrompt.SetText("")
	s.imagePrompt.SetText("")
	_ = s.audio.Reset()
	_ = s.image.Reset()
	return id, nil
}

// Snapshot returns a consistent-enough copy for display.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	snap := SessionSnapshot{
		ID:        s.ID,
		Metadata:  s.metadata,
		Voice:     string(s.voice),
		Committed: s.committed,
		EpisodeID: s.episodeID,
	}
	committing := s.committing
	s.mu.Unlock()

	snap.Prompts = Prompts{Voice: s.audioPrompt.Text(), Image: s.imagePrompt.Text()}
	snap.Audio = s.audio.Snapshot()
	snap.Image = s.image.Snapshot()
	snap.Enhancement = map[string]Enhance{
		string(generator.ModalityAudio): {Session: s.audioEnhancer.Session(), Review: s.audioEnhancer.Review()},
		string(generator.ModalityImage): {Session: s.imageEnhancer.Session(), Review: s.imageEnhancer.Review()},
	}
	snap.CanCommit = !snap.Committed && !committing &&
		snap.Audio.State == AssetReady && snap.Image.State == AssetReady &&
		len(validateMetadata(snap.Metadata)) == 0 && strings.TrimSpace(snap.Voice) != ""
	return snap
}

func (s *Session) open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

// openLocked refuses changes once the session is published or while a
// commit is writing. Callers hold s.mu.
func (s *Session) openLocked() error {
	if s.committed {
		return stateError(CodeSessionClosed, "This episode has already been published.")
	}
	if s.committing {
		return stateError(CodeBusy, "The episode is being published.")
	}
	return nil
}

func (s *Session) prompt(m generator.Modality) (*Prompt, error) {
	switch m {
	case generator.ModalityAudio:
		return &s.audioPrompt, nil
	case generator.ModalityImage:
		return &s.imagePrompt, nil
	default:
		return nil, newError(KindValidation, CodeInvalidPrompt, fmt.Sprintf("Unknown prompt type %q.", m), nil)
	}
}
