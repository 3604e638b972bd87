package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sentientiq/collective/internal/config"
)

// Role names one of the three fixed provider slots.
type Role string

const (
	RoleFast      Role = "fast"
	RolePrimary   Role = "primary"
	RolePrecision Role = "precision"
)

// Task is one outbound call: system prompt, user prompt, sampling parameters.
type Task struct {
	System      string
	User        string
	Temperature float32
}

// Caller is the outbound surface the orchestrators call through. The
// concrete client talks to an OpenAI-compatible endpoint; tests substitute
// fakes.
type Caller interface {
	// Complete performs one non-streaming call and returns the full text.
	Complete(ctx context.Context, t Task) (string, error)
	// Stream performs one token-streaming call, invoking emit for every
	// delta as it arrives. A non-nil error from emit aborts the stream.
	Stream(ctx context.Context, t Task, emit func(delta string) error) error
}

// Client binds one endpoint and one model to a role.
type Client struct {
	api   *openai.Client
	model string
	role  Role
	log   *zap.SugaredLogger
}

func NewClient(role Role, cfg config.Provider, log *zap.SugaredLogger) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	return &Client{
		api:   openai.NewClientWithConfig(oc),
		model: cfg.Model,
		role:  role,
		log:   log,
	}
}

func (c *Client) Complete(ctx context.Context, t Task) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages(t),
		Temperature: t.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s complete: %w", c.role, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s complete: empty response", c.role)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) Stream(ctx context.Context, t Task, emit func(string) error) error {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages(t),
		Temperature: t.Temperature,
		Stream:      true,
	})
	if err != nil {
		c.log.Debugw("stream open failed", "role", c.role, "err", err)
		return fmt.Errorf("%s stream open: %w", c.role, err)
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s stream recv: %w", c.role, err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if err := emit(delta); err != nil {
				return err
			}
		}
	}
}

func messages(t Task) []openai.ChatCompletionMessage {
	var msgs []openai.ChatCompletionMessage
	if t.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: t.System,
		})
	}
	return append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: t.User,
	})
}

// Embedder wraps the fast role's endpoint for embedding lookups.
type Embedder struct {
	api   *openai.Client
	model string
}

func NewEmbedder(cfg config.Provider, model string) *Embedder {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	return &Embedder{api: openai.NewClientWithConfig(oc), model: model}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed: empty response")
	}
	return resp.Data[0].Embedding, nil
}
