package gen

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Message is one turn of a generation request.
type Message struct {
	Role    string
	Content string
}

// Options caps a single generation call.
type Options struct {
	MaxTokens int
}

// Generator is the external text-generation collaborator: stateless, one
// call per request, no session.
type Generator interface {
	Generate(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Gemini implements Generator using the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	var contents []*genai.Content
	var config *genai.GenerateContentConfig

	for _, m := range messages {
		if m.Role == "system" {
			if config == nil {
				config = &genai.GenerateContentConfig{}
			}
			config.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: m.Content}},
			}
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  m.Role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	if opts.MaxTokens > 0 {
		if config == nil {
			config = &genai.GenerateContentConfig{}
		}
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generation call failed: %w", err)
	}
	return cleanOutput(resp.Text()), nil
}

// cleanOutput strips a wrapping markdown code fence the model sometimes
// adds around whole-document responses.
func cleanOutput(text string) string {
	out := strings.TrimSpace(text)
	if strings.HasPrefix(out, "```") {
		if idx := strings.Index(out, "\n"); idx != -1 {
			out = out[idx+1:]
		}
		out = strings.TrimSuffix(strings.TrimSpace(out), "```")
		out = strings.TrimRight(out, "\n")
	}
	return out
}
