package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"doccompliance/internal/config"
)

var (
	ErrServiceUnavailable = errors.New("AI service unavailable")
	ErrInvalidResponse    = errors.New("invalid response from AI service")
)

const (
	DefaultTimeout             = 60 * time.Second
	DefaultTemperature float32 = 0.3
	chatCompletionsPath        = "/chat/completions"
	claudeDefaultMaxTokens     = 3000
)

// Completer sends one prompt to the upstream model and returns its raw text.
type Completer interface {
	Complete(ctx context.Context, messages []*schema.Message, maxTokens int) (string, error)
}

// Client issues single, synchronous chat completions. It never retries.
type Client struct {
	chatModel   model.BaseChatModel
	modelName   string
	timeout     time.Duration
	temperature float32
	logger      *zap.Logger
}

// NewClient builds the chat model for the configured provider.
func NewClient(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Client, error) {
	chatModel, err := newChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewClientWithModel(chatModel, cfg.Model, cfg.Timeout, logger), nil
}

// NewClientWithModel wraps an existing chat model.
func NewClientWithModel(chatModel model.BaseChatModel, modelName string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		chatModel:   chatModel,
		modelName:   modelName,
		timeout:     timeout,
		temperature: DefaultTemperature,
		logger:      logger,
	}
}

func newChatModel(ctx context.Context, cfg config.AIConfig) (model.BaseChatModel, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: BaseURL(cfg.APIURL),
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
			Timeout: timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai model: %w", err)
		}
		return chatModel, nil
	case "claude":
		var baseURLPtr *string
		if cfg.APIURL != "" && cfg.APIURL != config.DefaultAPIURL {
			baseURLPtr = &cfg.APIURL
		}
		chatModel, err := claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   baseURLPtr,
			MaxTokens: claudeDefaultMaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("init claude model: %w", err)
		}
		return chatModel, nil
	case "gemini":
		clientCfg := &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if cfg.APIURL != "" && cfg.APIURL != config.DefaultAPIURL {
			clientCfg.HTTPOptions.BaseURL = cfg.APIURL
		}
		client, err := genai.NewClient(ctx, clientCfg)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  cfg.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini model: %w", err)
		}
		return chatModel, nil
	default:
		return nil, fmt.Errorf("invalid provider: %s", cfg.Provider)
	}
}

// BaseURL turns a full chat-completions endpoint into the base URL the
// OpenAI-compatible client expects; it appends the path itself.
func BaseURL(endpoint string) string {
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	return strings.TrimSuffix(base, chatCompletionsPath)
}

// Complete sends messages with temperature 0.3 and the given output budget.
func (c *Client) Complete(ctx context.Context, messages []*schema.Message, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	opts := []model.Option{model.WithTemperature(c.temperature)}
	if maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(maxTokens))
	}
	resp, err := c.chatModel.Generate(ctx, messages, opts...)
	elapsed := time.Since(start)
	if err != nil {
		if isMalformedResponse(err) {
			c.logger.Error("unexpected AI response format", zap.String("model", c.modelName), zap.Duration("elapsed", elapsed), zap.Error(err))
			return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		c.logger.Error("AI request failed", zap.String("model", c.modelName), zap.Duration("elapsed", elapsed), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if resp == nil {
		c.logger.Error("AI response had no message", zap.String("model", c.modelName))
		return "", ErrInvalidResponse
	}
	if resp.Content == "" && len(resp.ToolCalls) == 0 {
		c.logger.Error("AI response had no content", zap.String("model", c.modelName), zap.Duration("elapsed", elapsed))
		return "", fmt.Errorf("%w: message has no content", ErrInvalidResponse)
	}
	c.logger.Info("AI request completed",
		zap.String("model", c.modelName),
		zap.Int("max_tokens", maxTokens),
		zap.Int("content_length", len(resp.Content)),
		zap.Duration("elapsed", elapsed),
	)
	return resp.Content, nil
}

// isMalformedResponse separates "the service answered with the wrong shape"
// from transport and status failures.
func isMalformedResponse(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "empty choices") || strings.Contains(msg, "no choices")
}
