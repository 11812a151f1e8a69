package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropicapi "github.com/liushuangls/go-anthropic/v2"

	"github.com/mrimoveis/brokersite/internal/chat"
	"github.com/mrimoveis/brokersite/internal/domain"
)

// maxReplyTokens bounds a single consultant answer. Replies are short
// conversational paragraphs, never documents.
const maxReplyTokens = 1024

type Assistant struct {
	client *anthropicapi.Client
	model  anthropicapi.Model
}

// New builds the Anthropic-backed assistant. An empty apiKey is allowed; Ask
// then fails with chat.ErrNoCredential without any network call.
func New(apiKey, model string, opts ...anthropicapi.ClientOption) *Assistant {
	a := &Assistant{model: anthropicapi.Model(model)}
	if apiKey != "" {
		a.client = anthropicapi.NewClient(apiKey, opts...)
	}
	return a
}

func (a *Assistant) Ask(ctx context.Context, message string, history []domain.ChatMessage) (string, error) {
	if a.client == nil {
		return "", chat.ErrNoCredential
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: empty message", chat.ErrProviderUnavailable)
	}

	temperature := float32(0.7)
	resp, err := a.client.CreateMessages(ctx, anthropicapi.MessagesRequest{
		Model:       a.model,
		MaxTokens:   maxReplyTokens,
		System:      chat.SystemPrompt,
		Temperature: &temperature,
		Messages:    buildMessages(message, history),
	})
	if err != nil {
		return "", classify(err)
	}

	text := strings.TrimSpace(resp.GetFirstContentText())
	if text == "" {
		return chat.FallbackReply, nil
	}
	return text, nil
}

// buildMessages converts the caller's history into provider turns. The API
// requires the first turn to be a user turn, so the canned greeting (and any
// other leading assistant turns) is dropped.
func buildMessages(message string, history []domain.ChatMessage) []anthropicapi.Message {
	start := 0
	for start < len(history) && history[start].Role != domain.RoleUser {
		start++
	}

	msgs := make([]anthropicapi.Message, 0, len(history)-start+1)
	for _, m := range history[start:] {
		switch m.Role {
		case domain.RoleUser:
			msgs = append(msgs, anthropicapi.NewUserTextMessage(m.Content))
		case domain.RoleAssistant:
			msgs = append(msgs, anthropicapi.NewAssistantTextMessage(m.Content))
		}
	}
	return append(msgs, anthropicapi.NewUserTextMessage(message))
}

// classify maps provider errors onto the bridge taxonomy: credential
// rejections get their own bucket so the UI can prompt for setup, everything
// else reads as "try again".
func classify(err error) error {
	var apiErr *anthropicapi.APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsAuthenticationErr() || apiErr.IsPermissionErr() {
			return fmt.Errorf("%w: %s", chat.ErrProviderAuth, apiErr.Message)
		}
		return fmt.Errorf("%w: %s", chat.ErrProviderUnavailable, apiErr.Message)
	}

	var reqErr *anthropicapi.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: status %d", chat.ErrProviderUnavailable, reqErr.StatusCode)
	}
	return fmt.Errorf("%w: %v", chat.ErrProviderUnavailable, err)
}
