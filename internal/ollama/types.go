package ollama

import "fmt"

// Message is a single role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the payload for POST /api/chat.
type chatRequest struct {
	Model    string         `json:"model"`
	Stream   bool           `json:"stream"`
	Messages []Message      `json:"messages"`
	Options  map[string]any `json:"options,omitempty"`
}

// chatResponse is the non-streaming /api/chat reply. Extra fields vary
// between Ollama versions and are ignored.
type chatResponse struct {
	Model     string  `json:"model"`
	CreatedAt string  `json:"created_at"`
	Message   Message `json:"message"`
	Done      bool    `json:"done"`
}

// StatusError is the single error kind for transport-level failures of the
// inference call. Code carries the upstream HTTP status when available and
// 502 otherwise; Detail carries the upstream error body or the raw error
// message.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ollama request failed: status %d: %s", e.Code, e.Detail)
}
