package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"github.com/gabriel-adutra/deploy-of-an-API-for-text-generation-from-images-using-an-LLM-and-Docker/internal/config"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIAnswerer asks an OpenAI-compatible chat completion endpoint.
type OpenAIAnswerer struct {
	logger       *log.Logger
	openaiClient openai.Client
	modelName    string
	maxWords     int
}

func NewOpenAIAnswerer(logger *log.Logger, cfg config.OpenAIConfig, maxWords int, opts ...option.RequestOption) *OpenAIAnswerer {
	opts = append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(cfg.MaxRetries),
	}, opts...)

	return &OpenAIAnswerer{
		logger:       logger,
		openaiClient: openai.NewClient(opts...),
		modelName:    cfg.Model,
		maxWords:     maxWords,
	}
}

func (a *OpenAIAnswerer) Model() string {
	return a.modelName
}

func (a *OpenAIAnswerer) Answer(ctx context.Context, question string, img *PreparedImage) (string, error) {
	resp, err := a.openaiClient.Chat.Completions.New(ctx, a.buildParams(question, img))
	if err != nil {
		return "", fmt.Errorf("OpenAI client error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("OpenAI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (a *OpenAIAnswerer) AnswerStream(ctx context.Context, question string, img *PreparedImage, onDelta func(string) bool) error {
	stream := a.openaiClient.Chat.Completions.NewStreaming(ctx, a.buildParams(question, img))
	defer stream.Close()

	for stream.Next() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if !onDelta(delta) {
			return nil
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("OpenAI stream error: %w", err)
	}
	return nil
}

func (a *OpenAIAnswerer) buildParams(question string, img *PreparedImage) openai.ChatCompletionNewParams {
	a.logger.Printf("build request: %dx%d %s image, model %s\n", img.Width, img.Height, img.Format, a.modelName)

	return openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(a.maxWords)),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(userPrompt(question)),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL(img),
				}),
			}),
		},
	}
}

func dataURL(img *PreparedImage) string {
	return fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))
}

func systemPrompt(maxWords int) string {
	return fmt.Sprintf(systemPromptTemplate, maxWords)
}

func userPrompt(question string) string {
	return fmt.Sprintf(userPromptTemplate, question)
}
