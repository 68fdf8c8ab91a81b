package studio

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"podcast_studio/generator"
)

// EnhanceState is the position of a prompt field's enhancement session.
type EnhanceState string

const (
	EnhanceIdle      EnhanceState = "idle"
	EnhanceLoading   EnhanceState = "loading"
	EnhanceReviewing EnhanceState = "reviewing"
	EnhanceEditing   EnhanceState = "editing"
)

// Enhancer rewrites prompt text. Implemented by *generator.Agent.
type Enhancer interface {
	Enhance(ctx context.Context, text string, modality generator.Modality) (string, error)
}

// PromptField is the text an enhancement session reads from and writes to.
type PromptField interface {
	Text() string
	SetText(text string)
}

// EnhancementSession is a read-only copy of the machine's data.
type EnhancementSession struct {
	State        EnhanceState `json:"state"`
	OriginalText string       `json:"original_text"`
	EnhancedText string       `json:"enhanced_text"`
	DraftText    string       `json:"draft_text,omitempty"`
}

// EnhancementMachine governs AI-assisted rewriting of one prompt field.
// It never ends: every decision returns it to Idle for the next round.
// Calls that the current state does not allow fail with KindState and
// change nothing.
type EnhancementMachine struct {
	modality generator.Modality
	svc      Enhancer
	field    PromptField
	logger   *slog.Logger

	mu       sync.Mutex
	state    EnhanceState
	original string
	enhanced string
	draft    string
}

// NewEnhancementMachine binds a machine to field.
func NewEnhancementMachine(modality generator.Modality, svc Enhancer, field PromptField, logger *slog.Logger) *EnhancementMachine {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnhancementMachine{
		modality: modality,
		svc:      svc,
		field:    field,
		logger:   logger.With("modality", string(modality), "component", "enhancer"),
		state:    EnhanceIdle,
	}
}

// Enhance snapshots the field and requests an improved version. It blocks
// until the request finishes; State reports Loading meanwhile.
func (m *EnhancementMachine) Enhance(ctx context.Context) error {
	m.mu.Lock()
	if m.state != EnhanceIdle {
		state := m.state
		m.mu.Unlock()
		return m.illegal("enhance", state)
	}
	text := m.field.Text()
	if strings.TrimSpace(text) == "" {
		m.mu.Unlock()
		return newError(KindValidation, CodeEmptyInput, "Please enter a prompt first.", nil)
	}
	m.original = text
	m.enhanced = ""
	m.draft = ""
	m.state = EnhanceLoading
	m.mu.Unlock()
	m.logger.Info("enhancement requested", "state", EnhanceLoading)

	result, err := m.svc.Enhance(ctx, text, m.modality)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.resetLocked()
		m.logger.Warn("enhancement failed", "state", EnhanceIdle, "error", err)
		return fromGeneration(CodeEnhanceFailed, "Failed to enhance prompt. Please try again.", err)
	}
	m.enhanced = result
	m.state = EnhanceReviewing
	m.logger.Info("enhancement ready for review", "state", EnhanceReviewing)
	return nil
}

// Accept writes the enhanced text into the field.
func (m *EnhancementMachine) Accept() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != EnhanceReviewing {
		return m.illegal("accept", m.state)
	}
	m.field.SetText(m.enhanced)
	m.resetLocked()
	m.logger.Info("enhanced prompt applied")
	return nil
}

// Reject discards the enhancement and leaves the field untouched.
func (m *EnhancementMachine) Reject() error {
	return m.dismiss("reject")
}

// Close dismisses the review without deciding; same effect as Reject.
func (m *EnhancementMachine) Close() error {
	return m.dismiss("close")
}

// StartEditing seeds an editable copy of the enhanced text.
func (m *EnhancementMachine) StartEditing() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != EnhanceReviewing {
		return m.illegal("edit", m.state)
	}
	m.draft = m.enhanced
	m.state = EnhanceEditing
	return nil
}

// UpdateDraft replaces the editable copy while editing.
func (m *EnhancementMachine) UpdateDraft(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != EnhanceEditing {
		return m.illegal("update draft", m.state)
	}
	m.draft = text
	return nil
}

// ConfirmEdit writes edited into the field.
func (m *EnhancementMachine) ConfirmEdit(edited string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != EnhanceEditing {
		return m.illegal("confirm", m.state)
	}
	m.field.SetText(edited)
	m.resetLocked()
	m.logger.Info("edited prompt applied")
	return nil
}

// State returns the current state.
func (m *EnhancementMachine) State() EnhanceState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the current session data.
func (m *EnhancementMachine) Session() EnhancementSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return EnhancementSession{
		State:        m.state,
		OriginalText: m.original,
		EnhancedText: m.enhanced,
		DraftText:    m.draft,
	}
}

func (m *EnhancementMachine) dismiss(action string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != EnhanceReviewing && m.state != EnhanceEditing {
		return m.illegal(action, m.state)
	}
	m.resetLocked()
	m.logger.Debug("enhancement dismissed", "action", action)
	return nil
}

func (m *EnhancementMachine) resetLocked() {
	m.state = EnhanceIdle
	m.original = ""
	m.enhanced = ""
	m.draft = ""
}

func (m *EnhancementMachine) illegal(action string, state EnhanceState) *Error {
	m.logger.Debug("ignored enhancement action", "action", action, "state", state)
	return stateError(CodeIllegalTransition, "Cannot "+action+" while the prompt is "+string(state)+".")
}
