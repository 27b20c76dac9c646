package model

// RoleSystem is the role attached to the single demo message.
const RoleSystem = "system"

// ChatMessage is one entry of a chat-completion conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the body POSTed to <endpoint>/chat/completions.
type ChatCompletionRequest struct {
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model"`
}

// Choice is one completion alternative.
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// Usage carries token accounting when the provider reports it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse is the provider reply. Error is set instead of
// Choices when the request was refused.
type ChatCompletionResponse struct {
	ID      string   `json:"id,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Content returns the first non-empty message content, or "".
func (r *ChatCompletionResponse) Content() string {
	if r == nil {
		return ""
	}
	for _, c := range r.Choices {
		if c.Message.Content != "" {
			return c.Message.Content
		}
	}
	return ""
}
