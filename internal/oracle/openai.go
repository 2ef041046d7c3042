package oracle

import (
	"context"
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a helpful assistant."

// OpenAI drives an OpenAI-compatible chat completion endpoint with strict
// structured output.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds the production oracle for the given API token and model.
func NewOpenAI(token, model string) *OpenAI {
	return &OpenAI{client: openai.NewClient(token), model: model}
}

func (o *OpenAI) Invoke(ctx context.Context, req Request) (json.RawMessage, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: req.Schema.Definition,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, TransportError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, SchemaError{Reason: "completion returned no choices"}
	}
	return json.RawMessage(resp.Choices[0].Message.Content), nil
}
