package anthropic

import (
	"fmt"

	"github.com/schemalens/schemalens/internal/llm/content"
	"github.com/schemalens/schemalens/internal/llm/driver"
)

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      *usage         `json:"usage,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

func toDriverResponse(resp *messagesResponse) (*driver.Response, error) {
	if resp == nil || len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response content")
	}

	blocks := make([]content.ContentBlock, 0, len(resp.Content))
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		blocks = append(blocks, content.ContentBlock{Type: content.ContentTypeText, Text: block.Text})
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("response carries no text content")
	}

	response := &driver.Response{
		Content:      blocks,
		FinishReason: resp.StopReason,
	}
	if resp.Usage != nil {
		response.Usage = &driver.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}
	return response, nil
}
