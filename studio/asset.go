package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"podcast_studio/generator"
	"podcast_studio/storage"
)

// AssetState is the orchestrator's position in the generate -> upload cycle.
type AssetState string

const (
	AssetIdle       AssetState = "idle"
	AssetGenerating AssetState = "generating"
	AssetUploading  AssetState = "uploading"
	AssetReady      AssetState = "ready"
	AssetFailed     AssetState = "failed"
)

// InFlight reports whether a cycle is running.
func (s AssetState) InFlight() bool {
	return s == AssetGenerating || s == AssetUploading
}

// ResolvedAsset is a stored asset with a fetchable URL. DurationSeconds is
// only set for audio, once the surface or the probe has measured it.
type ResolvedAsset struct {
	Handle          storage.Handle `json:"storage_id"`
	URL             string         `json:"url"`
	MIMEType        string         `json:"mime_type"`
	DurationSeconds float64        `json:"duration_seconds,omitempty"`
}

// Generator produces raw assets. Implemented by *generator.Agent.
type Generator interface {
	Generate(ctx context.Context, req generator.Request) (generator.Asset, error)
}

// DurationProbe measures a resolved audio URL.
type DurationProbe interface {
	Duration(ctx context.Context, url string) (float64, error)
}

// AssetSnapshot is a read-only view of an orchestrator.
type AssetSnapshot struct {
	Modality generator.Modality `json:"modality"`
	State    AssetState         `json:"state"`
	Asset    *ResolvedAsset     `json:"asset,omitempty"`
	Error    *Error             `json:"error,omitempty"`
}

// Orchestrator runs one modality's generate -> upload -> resolve cycle.
// A new Run is refused while a previous one is in flight, so two
// generations for the same modality never race.
type Orchestrator struct {
	modality generator.Modality
	gen      Generator
	store    storage.ObjectStore
	probe    DurationProbe
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state AssetState
	asset *ResolvedAsset
	err   *Error
}

// OrchestratorOption customises an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithDurationProbe measures audio after it resolves.
func WithDurationProbe(p DurationProbe) OrchestratorOption {
	return func(o *Orchestrator) { o.probe = p }
}

// WithLogger sets the orchestrator logger.
func WithLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides time.Now for payload names.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewOrchestrator builds an orchestrator for modality.
func NewOrchestrator(modality generator.Modality, gen Generator, store storage.ObjectStore, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		modality: modality,
		gen:      gen,
		store:    store,
		logger:   slog.Default(),
		now:      time.Now,
		state:    AssetIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("modality", string(modality))
	return o
}

// Modality returns the asset kind this orchestrator produces.
func (o *Orchestrator) Modality() generator.Modality { return o.modality }

// Run starts a fresh cycle. Input problems are reported without touching
// state. Otherwise any previous asset is cleared before generation starts,
// and a failure at any step leaves the orchestrator Failed with no asset.
func (o *Orchestrator) Run(ctx context.Context, prompt string, voice string) (*ResolvedAsset, error) {
	req, verr := o.request(prompt, voice)
	if verr != nil {
		return nil, verr
	}

	o.mu.Lock()
	if o.state.InFlight() {
		o.mu.Unlock()
		return nil, stateError(CodeBusy, fmt.Sprintf("The %s is still being generated.", o.noun()))
	}
	o.state = AssetGenerating
	o.asset = nil
	o.err = nil
	o.mu.Unlock()
	o.logger.Info("generation started", "state", AssetGenerating)

	generated, err := o.gen.Generate(ctx, req)
	if err != nil {
		return nil, o.fail(fromGeneration(CodeGenerationFailed,
			fmt.Sprintf("Failed to generate the %s. Please try again.", o.noun()), err))
	}

	o.setState(AssetUploading)
	payload := storage.Payload{
		Name:     o.modality.FileName(o.now()),
		MIMEType: o.modality.MIMEType(),
		Data:     generated.Data,
	}
	handle, err := o.store.Upload(ctx, payload)
	if err != nil {
		return nil, o.fail(newError(KindUpstream, CodeUploadFailed,
			fmt.Sprintf("Failed to upload the %s. Please try again.", o.noun()), err))
	}
	o.logger.Debug("upload finished", "handle", string(handle), "bytes", len(payload.Data))

	url, err := o.store.ResolveURL(ctx, handle)
	if err == nil && url == "" {
		err = fmt.Errorf("no url for handle %s", handle)
	}
	if err != nil {
		o.discard(ctx, handle)
		return nil, o.fail(newError(KindUpstream, CodeResolveFailed,
			fmt.Sprintf("Failed to load the uploaded %s. Please try again.", o.noun()), err))
	}

	asset := &ResolvedAsset{Handle: handle, URL: url, MIMEType: payload.MIMEType}
	if o.modality == generator.ModalityAudio && o.probe != nil {
		if d, perr := o.probe.Duration(ctx, url); perr != nil {
			o.logger.Warn("audio duration probe failed", "handle", string(handle), "error", perr)
		} else {
			asset.DurationSeconds = d
		}
	}

	o.mu.Lock()
	o.state = AssetReady
	o.asset = asset
	o.mu.Unlock()
	o.logger.Info("asset ready", "state", AssetReady, "handle", string(handle), "url", url)

	out := *asset
	return &out, nil
}

// ReportDuration records the decoded audio duration. The first report for
// a resolved asset wins; later reports are ignored.
func (o *Orchestrator) ReportDuration(seconds float64) error {
	if o.modality != generator.ModalityAudio {
		return newError(KindValidation, CodeInvalidDuration, "Duration only applies to audio.", nil)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return newError(KindValidation, CodeInvalidDuration, "Duration must be a positive number of seconds.", nil)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != AssetReady || o.asset == nil {
		return stateError(CodeIllegalTransition, "There is no generated audio to measure.")
	}
	if o.asset.DurationSeconds == 0 {
		o.asset.DurationSeconds = seconds
	}
	return nil
}

// Resolved returns a copy of the ready asset, or nil.
func (o *Orchestrator) Resolved() *ResolvedAsset {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != AssetReady || o.asset == nil {
		return nil
	}
	out := *o.asset
	return &out
}

// Snapshot returns the current state for display.
func (o *Orchestrator) Snapshot() AssetSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap := AssetSnapshot{Modality: o.modality, State: o.state, Error: o.err}
	if o.asset != nil {
		a := *o.asset
		snap.Asset = &a
	}
	return snap
}

// Reset returns the orchestrator to Idle unless a cycle is in flight.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.InFlight() {
		return stateError(CodeBusy, fmt.Sprintf("The %s is still being generated.", o.noun()))
	}
	o.state = AssetIdle
	o.asset = nil
	o.err = nil
	return nil
}

func (o *Orchestrator) request(prompt, voice string) (generator.Request, *Error) {
	if strings.TrimSpace(prompt) == "" {
		return generator.Request{}, newError(KindValidation, CodeEmptyInput,
			fmt.Sprintf("Please enter a prompt to generate the %s.", o.noun()), nil)
	}
	req := generator.Request{Modality: o.modality, Prompt: prompt}
	if o.modality != generator.ModalityAudio {
		return req, nil
	}
	if strings.TrimSpace(voice) == "" {
		return generator.Request{}, newError(KindValidation, CodeNoVoiceSelected, "Please select a voice first.", nil)
	}
	v, err := generator.ParseVoice(voice)
	if err != nil {
		return generator.Request{}, newError(KindValidation, CodeInvalidVoice, "Please select one of the available voices.", err)
	}
	req.Voice = v
	return req, nil
}

func (o *Orchestrator) setState(s AssetState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.logger.Debug("asset state changed", "state", s)
}

func (o *Orchestrator) fail(e *Error) *Error {
	o.mu.Lock()
	o.state = AssetFailed
	o.asset = nil
	o.err = e
	o.mu.Unlock()
	o.logger.Warn("asset generation failed", "state", AssetFailed, "code", e.Code, "error", e.Err)
	return e
}

// discard drops a blob that was uploaded but could not be resolved.
func (o *Orchestrator) discard(ctx context.Context, h storage.Handle) {
	d, ok := o.store.(storage.Deleter)
	if !ok {
		return
	}
	if err := d.Delete(ctx, h); err != nil && !errors.Is(err, storage.ErrNotFound) {
		o.logger.Warn("discard unresolved upload", "handle", string(h), "error", err)
	}
}

func (o *Orchestrator) noun() string {
	if o.modality == generator.ModalityAudio {
		return "audio"
	}
	return "thumbnail"
}
