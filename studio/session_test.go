package studio

import (
	"context"
	"sync"
	"testing"

	"podcast_studio/generator"
)

type sessionFixture struct {
	session  *Session
	gen      *fakeGenerator
	store    *memStore
	episodes *fakeEpisodes
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{gen: &fakeGenerator{}, store: newMemStore(), episodes: &fakeEpisodes{}}
	gate, err := NewCommitGate(defaultUsers(), f.episodes, quietLogger())
	if err != nil {
		t.Fatalf("NewCommitGate: %v", err)
	}
	s, err := NewSession("s1", "user_1", Deps{
		Generator: f.gen,
		Enhancer:  &fakeEnhancer{fn: returns("better")},
		Store:     f.store,
		Gate:      gate,
		Logger:    quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	f.session = s
	return f
}

func (f *sessionFixture) fill(t *testing.T) {
	t.Helper()
	s := f.session
	if err := s.SetPrompt(generator.ModalityAudio, "Welcome to the show"); err != nil {
		t.Fatalf("SetPrompt audio: %v", err)
	}
	if err := s.SetPrompt(generator.ModalityImage, "A neon microphone"); err != nil {
		t.Fatalf("SetPrompt image: %v", err)
	}
	if err := s.SelectVoice("Nova"); err != nil {
		t.Fatalf("SelectVoice: %v", err)
	}
	if err := s.SetMetadata(Metadata{Title: "Ti", Description: "De"}); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
}

func TestNewSessionRequiresDeps(t *testing.T) {
	if _, err := NewSession("s", "o", Deps{}); err == nil {
		t.Fatal("expected error for missing deps")
	}
}

func TestSessionAudioFailureBlocksCommit(t *testing.T) {
	f := newSessionFixture(t)
	f.fill(t)
	f.gen.fn = func(_ context.Context, req generator.Request) (generator.Asset, error) {
		if req.Modality == generator.ModalityAudio {
			return generator.Asset{}, &generator.Error{Kind: generator.KindUpstreamFailure, Op: "speech", Err: errBoom}
		}
		return generator.Asset{Data: []byte("png"), MIMEType: generator.MIMETypeImage}, nil
	}

	if _, err := f.session.Generate(context.Background(), generator.ModalityAudio); KindOf(err) != KindUpstream {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	if _, err := f.session.Generate(context.Background(), generator.ModalityImage); err != nil {
		t.Fatalf("image Generate: %v", err)
	}

	snap := f.session.Snapshot()
	if snap.Audio.State != AssetFailed || snap.Audio.Asset != nil {
		t.Fatalf("audio should be failed with no asset: %#v", snap.Audio)
	}
	if snap.Image.State != AssetReady || snap.Image.Asset == nil {
		t.Fatalf("image failure must not depend on audio: %#v", snap.Image)
	}
	if snap.CanCommit {
		t.Fatal("commit must not be offered with a failed asset")
	}

	_, err := f.session.Commit(context.Background(), "user_1")
	if CodeOf(err) != CodeIncompleteAssets {
		t.Fatalf("expected IncompleteAssets, got %v", err)
	}
	if f.episodes.count() != 0 {
		t.Fatal("nothing may be written")
	}
}

func TestSessionCommitAndClose(t *testing.T) {
	f := newSessionFixture(t)
	f.fill(t)
	ctx := context.Background()
	if _, err := f.session.Generate(ctx, generator.ModalityAudio); err != nil {
		t.Fatalf("audio Generate: %v", err)
	}
	if _, err := f.session.Generate(ctx, generator.ModalityImage); err != nil {
		t.Fatalf("image Generate: %v", err)
	}
	if err := f.session.ReportDuration(42); err != nil {
		t.Fatalf("ReportDuration: %v", err)
	}
	if !f.session.Snapshot().CanCommit {
		t.Fatal("commit should be offered once both assets are ready")
	}

	id, err := f.session.Commit(ctx, "user_1")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if id == "" || f.episodes.count() != 1 {
		t.Fatalf("id=%q inserts=%d", id, f.episodes.count())
	}
	e := f.episodes.inserted[0]
	if e.Title != "Ti" || e.VoiceType != "nova" || e.AudioDuration != 42 || e.VoicePrompt != "Welcome to the show" {
		t.Fatalf("unexpected episode %#v", e)
	}

	snap := f.session.Snapshot()
	if !snap.Committed || snap.EpisodeID != id || snap.Prompts.Voice != "" || snap.Audio.Asset != nil || snap.Metadata.Title != "" {
		t.Fatalf("session should be cleared after commit: %#v", snap)
	}

	if _, err := f.session.Commit(ctx, "user_1"); CodeOf(err) != CodeSessionClosed {
		t.Fatalf("expected SessionClosed, got %v", err)
	}
	if err := f.session.SetPrompt(generator.ModalityAudio, "again"); CodeOf(err) != CodeSessionClosed {
		t.Fatalf("expected SessionClosed, got %v", err)
	}
	if f.episodes.count() != 1 {
		t.Fatal("a closed session must not write again")
	}
}

func TestSessionConcurrentCommitWritesOnce(t *testing.T) {
	f := newSessionFixture(t)
	f.fill(t)
	ctx := context.Background()
	if _, err := f.session.Generate(ctx, generator.ModalityAudio); err != nil {
		t.Fatalf("audio Generate: %v", err)
	}
	if _, err := f.session.Generate(ctx, generator.ModalityImage); err != nil {
		t.Fatalf("image Generate: %v", err)
	}
	if err := f.session.ReportDuration(42); err != nil {
		t.Fatalf("ReportDuration: %v", err)
	}
	f.episodes.started = make(chan struct{}, 2)
	f.episodes.release = make(chan struct{})

	type result struct {
		id  string
		err error
	}
	first := make(chan result, 1)
	go func() {
		id, err := f.session.Commit(ctx, "user_1")
		first <- result{id, err}
	}()
	<-f.episodes.started

	// first commit is parked inside Insert
	if f.session.Snapshot().CanCommit {
		t.Error("commit should not be offered while one is in flight")
	}
	if err := f.session.SetMetadata(Metadata{Title: "x", Description: "y"}); CodeOf(err) != CodeBusy {
		t.Errorf("expected Busy for edit during commit, got %v", err)
	}

	var (
		wg     sync.WaitGroup
		second result
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		id, err := f.session.Commit(ctx, "user_1")
		second = result{id, err}
	}()
	wg.Wait()
	close(f.episodes.release)
	got := <-first

	if got.err != nil || got.id == "" {
		t.Fatalf("first commit: id=%q err=%v", got.id, got.err)
	}
	if CodeOf(second.err) != CodeBusy {
		t.Fatalf("expected Busy for overlapping commit, got id=%q err=%v", second.id, second.err)
	}
	if f.episodes.count() != 1 {
		t.Fatalf("expected exactly one insert, got %d", f.episodes.count())
	}
	if !f.session.Snapshot().Committed {
		t.Fatal("session should be committed")
	}
}

func TestSessionCommitNeedsBothAssets(t *testing.T) {
	cases := []struct {
		name     string
		generate []generator.Modality
	}{
		{"none", nil},
		{"audio only", []generator.Modality{generator.ModalityAudio}},
		{"image only", []generator.Modality{generator.ModalityImage}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSessionFixture(t)
			f.fill(t)
			for _, m := range tc.generate {
				if _, err := f.session.Generate(context.Background(), m); err != nil {
					t.Fatalf("Generate %s: %v", m, err)
				}
			}
			if _, err := f.session.Commit(context.Background(), "user_1"); CodeOf(err) != CodeIncompleteAssets {
				t.Fatalf("expected IncompleteAssets, got %v", err)
			}
		})
	}
}

func TestSessionEnhancementWritesPrompt(t *testing.T) {
	f := newSessionFixture(t)
	f.fill(t)
	m, err := f.session.Enhancement(generator.ModalityImage)
	if err != nil {
		t.Fatalf("Enhancement: %v", err)
	}
	if err := m.Enhance(context.Background()); err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if got := f.session.Snapshot().Enhancement["image"].Review; !got.Visible {
		t.Fatalf("review should be visible: %#v", got)
	}
	if err := m.Dispatch(ReviewAccept, ""); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got := f.session.PromptText(generator.ModalityImage); got != "better" {
		t.Fatalf("image prompt = %q", got)
	}
	if got := f.session.PromptText(generator.ModalityAudio); got != "Welcome to the show" {
		t.Fatalf("audio prompt must be untouched, got %q", got)
	}
}

func TestSessionRejectsUnknownVoice(t *testing.T) {
	f := newSessionFixture(t)
	if err := f.session.SelectVoice("robot"); CodeOf(err) != CodeInvalidVoice {
		t.Fatalf("expected InvalidVoice, got %v", err)
	}
}
