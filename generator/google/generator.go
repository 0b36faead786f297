package google

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/recall/generator"
	genaiopt "google.golang.org/api/option"
)

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Complete(ctx context.Context, messages []generator.Message) (string, error) {
	model := g.client.GenerativeModel(g.options.Model)

	var parts []genai.Part
	for _, msg := range messages {
		switch msg.Role {
		case generator.RoleSystem:
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(msg.Content)},
			}
		default:
			parts = append(parts, genai.Text(msg.Content))
		}
	}

	rsp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}

	if rsp == nil || len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return generator.NoResponse, nil
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	result := b.String()
	if len(result) == 0 {
		return generator.NoResponse, nil
	}

	return result, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &googleGenerator{
		options: options,
	}

	client, err := genai.NewClient(
		context.Background(),
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		panic(err)
	}

	g.client = client

	return g
}
