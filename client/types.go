package client

import "time"

// ------------------------------
// Core domain types and payloads
// ------------------------------

// Task statuses as reported by the backend.
const (
	StatusPending  = "Pending"
	StatusComplete = "Complete"
)

// Task represents a server-owned task record. The server copy is
// authoritative; the client never patches a Task locally.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Completed reports whether the task has been marked complete.
func (t Task) Completed() bool { return t.Status == StatusComplete }

// CreateTaskRequest is the payload for POST /api/tasks/.
// A nil Description is serialized as null, matching the backend contract
// for "no description".
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// UpdateTaskRequest is the payload for PUT /api/tasks/{id}.
type UpdateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// ------------------------------
// Auth types
// ------------------------------

// Credentials is the payload for login and registration.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the bearer token issued on login/registration.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ------------------------------
// Chat types
// ------------------------------

// ChatRequest is the payload for POST /chat/message.
type ChatRequest struct {
	Message string `json:"message"`
}

// Assistant actions attached to chat replies. Any action other than
// ActionGeneral means the assistant mutated or read task data server-side.
const ActionGeneral = "general"

// ChatReply is the assistant's answer to one utterance.
type ChatReply struct {
	Response   string   `json:"response"`
	Action     string   `json:"action,omitempty"`
	TaskID     *int64   `json:"task_id,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// TaskMutating reports whether the reply's inferred action changed (or may
// have changed) server-side task data, meaning sibling surfaces should
// re-fetch.
func (r ChatReply) TaskMutating() bool {
	return r.Action != "" && r.Action != ActionGeneral
}

// ChatHistoryMessage is one persisted exchange: the user's utterance plus
// the assistant's reply, with the inferred intent.
type ChatHistoryMessage struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Intent    string    `json:"intent"`
	CreatedAt time.Time `json:"created_at"`
}

// chatHistoryResponse wraps GET /chat/history.
type chatHistoryResponse struct {
	Messages []ChatHistoryMessage `json:"messages"`
}
