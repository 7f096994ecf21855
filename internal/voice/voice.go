// Package voice abstracts optional speech-to-text input. Most environments
// have no recognizer; callers probe with Available and disable the affected
// control instead of failing.
package voice

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// ErrUnsupported is reported when no voice capability exists.
var ErrUnsupported = errors.New("voice input not supported")

// Input produces transcript strings for one utterance. The sequence is
// finite per utterance and an Input is not restartable mid-utterance.
type Input interface {
	// Available reports whether the capability can be used at all.
	Available() bool
	// Start begins one utterance and returns a channel of transcript
	// strings, closed when the utterance ends. It returns ErrUnsupported
	// when no recognizer exists.
	Start(ctx context.Context) (<-chan string, error)
}

// System returns the platform voice capability. No recognizer is wired on
// any platform today, so this always reports unavailable.
func System() Input { return unsupported{} }

type unsupported struct{}

func (unsupported) Available() bool { return false }

func (unsupported) Start(context.Context) (<-chan string, error) {
	return nil, ErrUnsupported
}

// ReaderInput adapts a line-oriented reader (a pipe from an external
// transcriber, or a test fixture) into the Input contract. Each Start
// consumes one line as the utterance's transcript.
type ReaderInput struct {
	scanner *bufio.Scanner
}

// NewReaderInput wraps r.
func NewReaderInput(r io.Reader) *ReaderInput {
	return &ReaderInput{scanner: bufio.NewScanner(r)}
}

func (ri *ReaderInput) Available() bool { return true }

func (ri *ReaderInput) Start(ctx context.Context) (<-chan string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(chan string, 1)
	go func() {
		defer close(out)
		if !ri.scanner.Scan() {
			return
		}
		line := strings.TrimSpace(ri.scanner.Text())
		if line == "" {
			return
		}
		select {
		case out <- line:
		case <-ctx.Done():
		}
	}()
	return out, nil
}
