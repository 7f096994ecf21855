package dispatch

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/taskdeck/taskdeck/client"
	"github.com/taskdeck/taskdeck/internal/notify"
)

// SendChat runs one assistant turn. The user's utterance lands in the
// transcript immediately: it is the user's own text, not server-derived
// truth, so the optimistic append cannot diverge from the backend. The
// assistant's reply is appended when it arrives.
//
// An operational failure becomes a synthesized assistant turn so the
// exchange is never silently dropped; only an authorization failure
// propagates, because the caller must route to login.
func (d *Dispatcher) SendChat(ctx context.Context, message string) error {
	if err := client.ValidateMessage(message); err != nil {
		return opErr("send message", err)
	}

	d.transcript.AppendUser(message)

	reply, err := d.chat.SendMessage(ctx, message)
	if err != nil {
		if client.IsUnauthorized(err) {
			return opErr("send message", err)
		}
		log.Debug().Err(err).Msg("chat turn failed, synthesizing error reply")
		d.transcript.AppendAssistant("Error: "+err.Error(), "")
		return nil
	}

	d.transcript.AppendAssistant(reply.Response, reply.Action)

	// The assistant may have mutated task data server-side; let sibling
	// surfaces re-fetch without a manual reload.
	if reply.TaskMutating() {
		d.bus.Publish(notify.TopicTasksChanged)
	}
	return nil
}
