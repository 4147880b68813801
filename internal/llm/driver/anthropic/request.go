package anthropic

import (
	"fmt"
	"strings"

	"github.com/schemalens/schemalens/internal/llm/content"
	"github.com/schemalens/schemalens/internal/llm/driver"
)

type messagesRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildMessagesRequest converts the driver request into the Messages API
// shape. Anthropic keeps the system prompt out of the messages array.
func buildMessagesRequest(req *driver.Request) (*messagesRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}

	payload := &messagesRequest{
		Model:       req.Model,
		MaxTokens:   defaultMaxTokens,
		Temperature: req.Temperature,
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		payload.MaxTokens = *req.MaxTokens
	}

	for _, msg := range req.Messages {
		text, err := flattenContent(msg.Content)
		if err != nil {
			return nil, err
		}
		if msg.Role == "system" {
			if payload.System != "" {
				payload.System += "\n"
			}
			payload.System += text
			continue
		}
		payload.Messages = append(payload.Messages, chatMessage{Role: msg.Role, Content: text})
	}

	if len(payload.Messages) == 0 {
		return nil, fmt.Errorf("at least one non-system message is required")
	}
	return payload, nil
}

func flattenContent(blocks []content.ContentBlock) (string, error) {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Type != content.ContentTypeText {
			return "", fmt.Errorf("unsupported content type: %s", block.Type)
		}
		parts = append(parts, block.Text)
	}
	return strings.Join(parts, "\n"), nil
}
