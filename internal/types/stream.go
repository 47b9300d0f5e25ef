package types

// FunctionCall is a tool invocation surfaced by the agent mid-stream.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// StreamChunk is one decoded unit of the message stream. It is consumed
// immediately by the controller and never persisted.
type StreamChunk struct {
	Text         string
	FunctionCall *FunctionCall
	FinishReason string
	IsError      bool
	ErrorText    string
}

func (c StreamChunk) IsTerminal() bool {
	return c.FinishReason != ""
}
