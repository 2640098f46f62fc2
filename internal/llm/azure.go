package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// AzureModel adapts an Azure OpenAI deployment to the langchaingo model
// interface
type AzureModel struct {
	client     *azopenai.Client
	deployment string
}

var _ llms.Model = (*AzureModel)(nil)

// NewAzureModel creates a model for one deployment of an Azure OpenAI resource
func NewAzureModel(endpoint, apiKey, deployment string) (*AzureModel, error) {
	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}
	return &AzureModel{client: client, deployment: deployment}, nil
}

// GenerateContent sends the conversation as a chat completion
func (m *AzureModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	req := azopenai.ChatCompletionsOptions{
		Messages:       azureMessages(messages),
		DeploymentName: to.Ptr(m.deployment),
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = to.Ptr(int32(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		req.Temperature = to.Ptr(float32(opts.Temperature))
	}

	resp, err := m.client.GetChatCompletions(ctx, req, nil)
	if err != nil {
		return nil, fmt.Errorf("Azure OpenAI completion failed: %w", err)
	}

	choices := make([]*llms.ContentChoice, 0, len(resp.Choices))
	for _, c := range resp.Choices {
		if c.Message == nil || c.Message.Content == nil {
			continue
		}
		choice := &llms.ContentChoice{Content: *c.Message.Content}
		if c.FinishReason != nil {
			choice.StopReason = string(*c.FinishReason)
		}
		choices = append(choices, choice)
	}
	if len(choices) == 0 {
		return nil, errors.New("empty response from Azure OpenAI")
	}
	return &llms.ContentResponse{Choices: choices}, nil
}

// Call generates a completion for a single prompt
func (m *AzureModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// azureMessages flattens the conversation into one user message. System
// text comes first, separated from the rest by a blank line.
func azureMessages(messages []llms.MessageContent) []azopenai.ChatRequestMessageClassification {
	var system, rest []string
	for _, msg := range messages {
		text := messageText(msg)
		if text == "" {
			continue
		}
		if msg.Role == schema.ChatMessageTypeSystem {
			system = append(system, text)
		} else {
			rest = append(rest, text)
		}
	}

	content := strings.Join(append(system, rest...), "\n\n")
	return []azopenai.ChatRequestMessageClassification{
		&azopenai.ChatRequestUserMessage{
			Content: azopenai.NewChatRequestUserMessageContent(content),
		},
	}
}

func messageText(msg llms.MessageContent) string {
	var parts []string
	for _, p := range msg.Parts {
		if t, ok := p.(llms.TextContent); ok && t.Text != "" {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}
