package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// VisionClient analyzes a screenshot against a prompt and returns the model's
// textual judgment (e.g. a JSON-encoded VisionAction). It is a thin wrapper
// over the same chat-completions endpoint AgentClient uses, with an image
// content part attached to the user turn.
type VisionClient interface {
	Analyze(ctx context.Context, req VisionRequest) (string, error)
	Model() string
}

type VisionRequest struct {
	ImagePNG    []byte
	Prompt      string
	MaxTokens   int
	Temperature *float64
}

type visionClient struct {
	openai openai.Client
	model  string
}

// NewVisionClient creates a VisionClient over the OpenAI multimodal chat
// completions API. cfg.Model should name a vision-capable model
// (spec.md's VISION_MODEL env var).
func NewVisionClient(cfg Config) (VisionClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}

	return &visionClient{
		openai: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (c *visionClient) Analyze(ctx context.Context, req VisionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(req.ImagePNG)

	userParts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(req.Prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}),
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(userParts),
		},
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	start := time.Now()
	resp, err := c.openai.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai vision analyze: %w", err)
	}

	slog.DebugContext(ctx, "vision analyze completed",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in vision response")
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *visionClient) Model() string {
	return c.model
}
