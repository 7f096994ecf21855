package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/client"
)

type fakeHistory struct {
	msgs []client.ChatHistoryMessage
	err  error
}

func (f *fakeHistory) ChatHistory(ctx context.Context, limit int) ([]client.ChatHistoryMessage, error) {
	return f.msgs, f.err
}

func TestTranscriptAppendOrder(t *testing.T) {
	tr := NewTranscript()
	tr.AppendUser("add task buy milk")
	tr.AppendAssistant("Task created!", "create_task")

	turns := tr.Turns()
	require.Len(t, turns, 2)
	require.True(t, turns[0].IsUser)
	require.Equal(t, "add task buy milk", turns[0].Message)
	require.False(t, turns[1].IsUser)
	require.Equal(t, "create_task", turns[1].Intent)
}

func TestTranscriptSeedFlattensHistory(t *testing.T) {
	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	f := &fakeHistory{msgs: []client.ChatHistoryMessage{
		{ID: 1, Message: "show my tasks", Response: "Here you go", Intent: "list_tasks", CreatedAt: at},
		{ID: 2, Message: "hi", Response: "Hello!", Intent: "general", CreatedAt: at.Add(time.Minute)},
	}}

	tr := NewTranscript()
	tr.AppendUser("stale turn")
	require.NoError(t, tr.Seed(context.Background(), f, 20))

	turns := tr.Turns()
	require.Len(t, turns, 4)
	require.True(t, turns[0].IsUser)
	require.Equal(t, "show my tasks", turns[0].Message)
	require.Equal(t, "Here you go", turns[1].Message)
	require.Equal(t, "list_tasks", turns[1].Intent)
	require.Equal(t, "Hello!", turns[3].Message)
}

func TestTranscriptSeedFailurePreservesTurns(t *testing.T) {
	tr := NewTranscript()
	tr.AppendUser("keep me")

	f := &fakeHistory{err: errors.New("history unavailable")}
	require.Error(t, tr.Seed(context.Background(), f, 20))
	require.Equal(t, 1, tr.Len())
}

func TestTranscriptReset(t *testing.T) {
	tr := NewTranscript()
	tr.AppendUser("one")
	tr.AppendAssistant("two", "")
	tr.Reset()
	require.Zero(t, tr.Len())
}
