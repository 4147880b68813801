package gemini

import (
	"fmt"
	"strings"

	"github.com/schemalens/schemalens/internal/llm/content"
	"github.com/schemalens/schemalens/internal/llm/driver"
)

type generateResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
}

type candidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

func toDriverResponse(resp *generateResponse) (*driver.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response candidates")
	}

	first := resp.Candidates[0]
	texts := make([]string, 0, len(first.Content.Parts))
	for _, p := range first.Content.Parts {
		texts = append(texts, p.Text)
	}
	text := strings.Join(texts, "")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("response carries no text content")
	}

	response := &driver.Response{
		Content:      []content.ContentBlock{{Type: content.ContentTypeText, Text: text}},
		FinishReason: strings.ToLower(first.FinishReason),
	}
	if resp.UsageMetadata != nil {
		response.Usage = &driver.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}
	return response, nil
}
