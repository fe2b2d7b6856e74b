package ai

import (
	"context"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Endpoint   string
	APIKey     string
	Deployment string
}

// Client wraps the Azure OpenAI chat API. A Client built without
// credentials is valid but disabled.
type Client struct {
	api        *openai.Client
	deployment string
}

func NewClient(opts Options) *Client {
	if opts.Endpoint == "" || opts.APIKey == "" {
		log.Info().Msg("AI service disabled - Azure OpenAI credentials not provided")
		return &Client{}
	}

	api := openai.NewClient(
		option.WithBaseURL(opts.Endpoint),
		option.WithAPIKey(opts.APIKey),
	)
	deployment := opts.Deployment
	if deployment == "" {
		deployment = "gpt-35-turbo"
	}

	log.Info().Str("deployment", deployment).Msg("AI service initialized with Azure OpenAI")
	return &Client{api: &api, deployment: deployment}
}

// IsEnabled returns whether the AI service is properly initialized
func (c *Client) IsEnabled() bool {
	return c != nil && c.api != nil
}

func (c *Client) generateCompletion(ctx context.Context, systemMessage, userMessage string) (string, error) {
	if !c.IsEnabled() {
		return "", &AIError{Message: "AI service is not enabled"}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.deployment),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemMessage),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(userMessage),
					},
				},
			},
		},
		MaxTokens:   openai.Int(1500),  // Limit response length
		Temperature: openai.Float(0.7), // Balanced creativity
	})
	if err != nil {
		log.Error().Err(err).Msg("AI API error")
		return "", &AIError{Message: "Failed to generate AI response", Cause: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &AIError{Message: "AI returned empty response"}
	}

	return resp.Choices[0].Message.Content, nil
}

// AIError represents an AI service error
type AIError struct {
	Message string
	Cause   error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AIError) Unwrap() error {
	return e.Cause
}
