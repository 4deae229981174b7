package llm

import "context"

type Message struct {
	Role    string
	Name    string
	Content string
}

// Request carries one backend call: the conversation so far, the sampling
// temperature and, optionally, tool definitions for function calling.
type Request struct {
	Messages    []Message
	Temperature float32
	Tools       []Tool
}

type Response struct {
	Content          string
	Model            string
	ToolCalls        []ToolCall
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Tool describes a function the model may choose to call.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolCall is the model's request to invoke a tool, with parsed arguments.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]interface{}
}

type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
