package services

import (
	"context"
	"sync"

	"github.com/campusvault/pyqhub/internal/server/repositories/repotest"
)

func newFakeRepoManager() *repotest.Manager {
	return repotest.NewManager()
}

// fakeBlob records puts and serves deterministic URLs.
type fakeBlob struct {
	mu   sync.Mutex
	puts []string

	putErr     error
	presignErr error
}

func (b *fakeBlob) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putErr != nil {
		return "", b.putErr
	}
	b.puts = append(b.puts, key)
	return "https://blobs.test/" + key, nil
}

func (b *fakeBlob) PresignGet(ctx context.Context, key string) (string, error) {
	if b.presignErr != nil {
		return "", b.presignErr
	}
	return "https://blobs.test/" + key + "?sig=abc", nil
}

func (b *fakeBlob) putCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.puts)
}

// fakeNotifier captures issued reset codes.
type fakeNotifier struct {
	mu    sync.Mutex
	codes map[string]string

	err error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{codes: make(map[string]string)}
}

func (n *fakeNotifier) SendResetCode(ctx context.Context, email, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.codes[email] = code
	return nil
}

func (n *fakeNotifier) lastCode(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[email]
}
