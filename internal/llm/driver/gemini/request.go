package gemini

import (
	"fmt"
	"strings"

	"github.com/schemalens/schemalens/internal/llm/content"
	"github.com/schemalens/schemalens/internal/llm/driver"
)

type generateRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// buildGenerateRequest converts the driver request into the generateContent
// shape. System messages become systemInstruction; assistant turns map to
// the "model" role.
func buildGenerateRequest(req *driver.Request) (*generateRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}

	payload := &generateRequest{}
	for _, msg := range req.Messages {
		text, err := flattenContent(msg.Content)
		if err != nil {
			return nil, err
		}
		switch msg.Role {
		case "system":
			if payload.SystemInstruction == nil {
				payload.SystemInstruction = &geminiContent{}
			}
			payload.SystemInstruction.Parts = append(payload.SystemInstruction.Parts, part{Text: text})
		case "assistant":
			payload.Contents = append(payload.Contents, geminiContent{Role: "model", Parts: []part{{Text: text}}})
		default:
			payload.Contents = append(payload.Contents, geminiContent{Role: "user", Parts: []part{{Text: text}}})
		}
	}

	if len(payload.Contents) == 0 {
		return nil, fmt.Errorf("at least one non-system message is required")
	}

	if req.Temperature != nil || req.MaxTokens != nil {
		payload.GenerationConfig = &generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
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
