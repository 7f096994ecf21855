package voice

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSystemReportsUnsupported(t *testing.T) {
	mic := System()
	require.False(t, mic.Available())

	_, err := mic.Start(context.Background())
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestReaderInputOneUtterancePerStart(t *testing.T) {
	mic := NewReaderInput(strings.NewReader("add task buy milk\nsecond utterance\n"))
	require.True(t, mic.Available())

	out, err := mic.Start(context.Background())
	require.NoError(t, err)
	var got []string
	for s := range out {
		got = append(got, s)
	}
	require.Equal(t, []string{"add task buy milk"}, got)

	// The sequence is finite per utterance; a new Start yields the next one.
	out, err = mic.Start(context.Background())
	require.NoError(t, err)
	got = nil
	for s := range out {
		got = append(got, s)
	}
	require.Equal(t, []string{"second utterance"}, got)
}

func TestReaderInputExhausted(t *testing.T) {
	mic := NewReaderInput(strings.NewReader(""))
	out, err := mic.Start(context.Background())
	require.NoError(t, err)
	_, open := <-out
	require.False(t, open)
}

func TestReaderInputCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mic := NewReaderInput(strings.NewReader("ignored\n"))
	_, err := mic.Start(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
