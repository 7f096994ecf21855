// Package session owns the persisted access token and gates protected
// surfaces on its presence. It never performs network I/O: whether the
// token is still honored by the backend only surfaces as a 401 later.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrNoSession is returned when no access token is present. Callers must
// abandon the protected surface and route to login without fetching anything.
var ErrNoSession = errors.New("no active session")

// IsNoSession reports whether err means the user is unauthenticated.
func IsNoSession(err error) bool { return errors.Is(err, ErrNoSession) }

// Store persists the opaque access token between runs.
type Store interface {
	// Token returns the current token, or ErrNoSession when absent.
	Token() (string, error)
	// SetToken stores a new token, replacing any previous one.
	SetToken(token string) error
	// Clear removes the token. Clearing an absent token is not an error.
	Clear() error
}

// --------------------------------------------------------------------
// FileStore – token under a fixed well-known path
// --------------------------------------------------------------------

// FileStore keeps the token in a single file, created with 0600 since it is
// a bearer credential.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a FileStore rooted at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Token() (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	b, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", ErrNoSession
	}
	return tok, nil
}

func (fs *FileStore) SetToken(token string) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(fs.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------
// MemStore – process-local store for tests and ephemeral sessions
// --------------------------------------------------------------------

type MemStore struct {
	mu  sync.Mutex
	tok string
}

func NewMemStore() *MemStore { return &MemStore{} }

func (ms *MemStore) Token() (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.tok == "" {
		return "", ErrNoSession
	}
	return ms.tok, nil
}

func (ms *MemStore) SetToken(token string) error {
	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}
	ms.mu.Lock()
	ms.tok = token
	ms.mu.Unlock()
	return nil
}

func (ms *MemStore) Clear() error {
	ms.mu.Lock()
	ms.tok = ""
	ms.mu.Unlock()
	return nil
}

// --------------------------------------------------------------------
// Guard – gates protected surfaces
// --------------------------------------------------------------------

const (
	readinessInterval = 10 * time.Millisecond
	readinessBudget   = 80 * time.Millisecond
)

// Guard answers "is the user authenticated" from the store alone. Storage
// may not be ready on the very first check (fresh mounts, slow config dirs),
// so an absent token is re-polled briefly before concluding ErrNoSession;
// a false negative here would bounce an authenticated user to login.
type Guard struct {
	store Store
}

// NewGuard returns a Guard over the given token store.
func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// Check returns the current token, or ErrNoSession after the bounded
// readiness window expires without one appearing.
func (g *Guard) Check(ctx context.Context) (string, error) {
	var token string
	op := func() error {
		tok, err := g.store.Token()
		if err != nil {
			return err
		}
		token = tok
		return nil
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(readinessInterval), uint64(readinessBudget/readinessInterval)),
		ctx,
	)
	if err := backoff.Retry(op, b); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return token, nil
}

// TokenSource adapts the guard's store for the HTTP client: empty string
// when unauthenticated, so login/register still go out unadorned.
func (g *Guard) TokenSource() func() string {
	return func() string {
		tok, err := g.store.Token()
		if err != nil {
			return ""
		}
		return tok
	}
}
