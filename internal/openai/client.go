package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client wraps the OpenAI SDK and rewrites reminder messages into friendlier text.
type Client struct {
	client *openai.Client
	model  openai.ChatModel
}

const systemPrompt = "You rewrite job search reminder notifications. Keep every fact (company, role, dates), " +
	"stay under 300 characters, be encouraging, and do not add greetings or sign-offs."

// New returns a client. Without an API key the client is inert and Compose returns the draft unchanged.
func New(apiKey string) *Client {
	if apiKey == "" {
		return &Client{}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client: &client,
		model:  openai.ChatModelGPT4oMini,
	}
}

// Enabled reports whether requests go to the API.
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Compose asks the model to polish a drafted notification.
func (c *Client) Compose(ctx context.Context, draft string) (string, error) {
	if strings.TrimSpace(draft) == "" {
		return "", fmt.Errorf("draft cannot be empty")
	}
	if !c.Enabled() {
		return draft, nil
	}

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(draft),
					},
				},
			},
		},
		Temperature:         openai.Float(0.4),
		MaxCompletionTokens: openai.Int(120),
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty completion received")
	}
	return text, nil
}
