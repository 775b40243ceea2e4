package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/config"
	"google.golang.org/genai"
)

// GeminiAnswerer asks Google's Gemini API. It does not stream.
type GeminiAnswerer struct {
	logger    *log.Logger
	client    *genai.Client
	modelName string
	maxWords  int
}

func NewGeminiAnswerer(ctx context.Context, logger *log.Logger, cfg config.GeminiConfig, maxWords int) (*GeminiAnswerer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiAnswerer{
		logger:    logger,
		client:    client,
		modelName: cfg.Model,
		maxWords:  maxWords,
	}, nil
}

func (g *GeminiAnswerer) Model() string {
	return g.modelName
}

func (g *GeminiAnswerer) Answer(ctx context.Context, question string, img *PreparedImage) (string, error) {
	g.logger.Printf("build request: %dx%d %s image, model %s\n", img.Width, img.Height, img.Format, g.modelName)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img.Data, img.MIMEType),
			genai.NewPartFromText(userPrompt(question)),
		}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt(g.maxWords), genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini client error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}
