package agent

// ChatMessage represents a single message in a conversation with the agent.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant"
	Content string `json:"content"`
}

// Session holds the conversation history for one repository checkout.
type Session struct {
	Messages []ChatMessage
}

// StreamEvent represents a single event from the agent's stream-json output.
type StreamEvent struct {
	Type    string      `json:"type"`
	Subtype string      `json:"subtype,omitempty"`
	IsError bool        `json:"is_error,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	CostUSD float64     `json:"cost_usd,omitempty"`
	Message *struct {
		Content []ContentBlock `json:"content,omitempty"`
	} `json:"message,omitempty"`

	// Event holds the nested API event when type == "stream_event"
	// (emitted with --include-partial-messages).
	Event *StreamInnerEvent `json:"event,omitempty"`
}

// StreamInnerEvent is the nested event inside a stream_event envelope.
type StreamInnerEvent struct {
	Type  string       `json:"type"`
	Delta *StreamDelta `json:"delta,omitempty"`
}

// StreamDelta carries incremental content from content_block_delta events.
type StreamDelta struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ContentBlock is a block within a stream event message.
type ContentBlock struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
}
