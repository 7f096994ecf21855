package store

import (
	"context"
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/client"
)

// Turn is one transcript entry: either the user's own utterance or the
// assistant's reply with its inferred intent.
type Turn struct {
	Message string
	IsUser  bool
	Intent  string
	At      time.Time
}

// HistoryFetcher is the slice of the SDK the transcript needs for seeding.
type HistoryFetcher interface {
	ChatHistory(ctx context.Context, limit int) ([]client.ChatHistoryMessage, error)
}

// Transcript is the per-session conversation view. User turns are appended
// optimistically (they are the user's own text, not server truth); assistant
// turns land when the reply arrives. With persistence enabled the transcript
// is seeded once from the server-held history.
type Transcript struct {
	mu    sync.Mutex
	turns []Turn
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// AppendUser records the user's utterance.
func (tr *Transcript) AppendUser(message string) {
	tr.append(Turn{Message: message, IsUser: true, At: time.Now()})
}

// AppendAssistant records an assistant reply with its inferred intent.
func (tr *Transcript) AppendAssistant(message, intent string) {
	tr.append(Turn{Message: message, Intent: intent, At: time.Now()})
}

func (tr *Transcript) append(t Turn) {
	tr.mu.Lock()
	tr.turns = append(tr.turns, t)
	tr.mu.Unlock()
}

// Seed replaces the transcript with the server-held history, flattened to
// alternating user/assistant turns in server order. On error the current
// transcript is untouched.
func (tr *Transcript) Seed(ctx context.Context, api HistoryFetcher, limit int) error {
	msgs, err := api.ChatHistory(ctx, limit)
	if err != nil {
		return err
	}
	turns := make([]Turn, 0, 2*len(msgs))
	for _, m := range msgs {
		turns = append(turns,
			Turn{Message: m.Message, IsUser: true, At: m.CreatedAt},
			Turn{Message: m.Response, Intent: m.Intent, At: m.CreatedAt},
		)
	}
	tr.mu.Lock()
	tr.turns = turns
	tr.mu.Unlock()
	return nil
}

// Turns returns a copy of the transcript in order.
func (tr *Transcript) Turns() []Turn {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]Turn, len(tr.turns))
	copy(out, tr.turns)
	return out
}

// Reset discards the transcript, the fresh-start behavior when history
// persistence is disabled.
func (tr *Transcript) Reset() {
	tr.mu.Lock()
	tr.turns = nil
	tr.mu.Unlock()
}

// Len reports the number of turns.
func (tr *Transcript) Len() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.turns)
}
