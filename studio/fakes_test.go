package studio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"podcast_studio/episode"
	"podcast_studio/generator"
	"podcast_studio/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeGenerator struct {
	mu    sync.Mutex
	fn    func(ctx context.Context, req generator.Request) (generator.Asset, error)
	calls []generator.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req generator.Request) (generator.Asset, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	fn := f.fn
	f.mu.Unlock()
	if fn == nil {
		return generator.Asset{Data: []byte("bytes-" + string(req.Modality)), MIMEType: req.Modality.MIMEType()}, nil
	}
	return fn(ctx, req)
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memStore struct {
	mu         sync.Mutex
	objects    map[storage.Handle]storage.Payload
	next       int
	uploadErr  error
	resolveErr error
	noURL      bool
	deleted    []storage.Handle
}

func newMemStore() *memStore {
	return &memStore{objects: map[storage.Handle]storage.Payload{}}
}

func (m *memStore) Upload(_ context.Context, p storage.Payload) (storage.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.next++
	h := storage.Handle(fmt.Sprintf("h%d", m.next))
	m.objects[h] = p
	return h, nil
}

func (m *memStore) ResolveURL(_ context.Context, h storage.Handle) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resolveErr != nil {
		return "", m.resolveErr
	}
	if _, ok := m.objects[h]; !ok || m.noURL {
		return "", nil
	}
	return "http://studio.test/blobs/" + string(h), nil
}

func (m *memStore) Delete(_ context.Context, h storage.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, h)
	m.deleted = append(m.deleted, h)
	return nil
}

type fakeEnhancer struct {
	mu    sync.Mutex
	fn    func(ctx context.Context, text string, m generator.Modality) (string, error)
	calls int
}

func (f *fakeEnhancer) Enhance(ctx context.Context, text string, m generator.Modality) (string, error) {
	f.mu.Lock()
	f.calls++
	fn := f.fn
	f.mu.Unlock()
	return fn(ctx, text, m)
}

func (f *fakeEnhancer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeUsers struct {
	users map[string]episode.User
	err   error
}

func (f *fakeUsers) UserBySubject(_ context.Context, subject string) (*episode.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[subject]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type fakeEpisodes struct {
	mu       sync.Mutex
	inserted []episode.Episode
	err      error
	// started/release hold Insert open until the test lets it finish.
	started chan struct{}
	release chan struct{}
}

func (f *fakeEpisodes) Insert(_ context.Context, e episode.Episode) (string, error) {
	if f.release != nil {
		f.started <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.inserted = append(f.inserted, e)
	return fmt.Sprintf("ep%d", len(f.inserted)), nil
}

func (f *fakeEpisodes) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func defaultUsers() *fakeUsers {
	return &fakeUsers{users: map[string]episode.User{
		"user_1": {ID: "u1", Subject: "user_1", Name: "Ada", ImageURL: "http://img/ada"},
	}}
}

var errBoom = errors.New("boom")
