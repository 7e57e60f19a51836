// Package openai adapts an OpenAI-compatible chat-completions endpoint to the
// ai ports. The base URL and model are configurable so any compatible
// provider (including Gemini's OpenAI endpoint) can serve as collaborator.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"sothuchi/internal/ai"
	"sothuchi/internal/cache"
	"sothuchi/internal/core"
	"sothuchi/internal/recon"
)

type Config struct {
	APIKey  string
	BaseURL string
	// Model handles the structured tasks; ReasoningModel the free-text
	// report/advice ones. ReasoningModel falls back to Model when empty.
	Model          string
	ReasoningModel string
	Timeout        time.Duration
}

const (
	predictionCacheSize = 500
	predictionCacheTTL  = time.Hour
)

type Client struct {
	api            *goopenai.Client
	model          string
	reasoningModel string
	timeout        time.Duration
	logger         *slog.Logger

	// Identical descriptions predict identically, so memoize.
	predictions *cache.LRUCache[core.CategoryPrediction]
}

var _ ai.Collaborator = (*Client)(nil)

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing AI API key")
	}
	if cfg.Model == "" {
		return nil, errors.New("missing AI model")
	}
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	reasoning := cfg.ReasoningModel
	if reasoning == "" {
		reasoning = cfg.Model
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		api:            goopenai.NewClientWithConfig(apiCfg),
		model:          cfg.Model,
		reasoningModel: reasoning,
		timeout:        timeout,
		logger:         logger,
		predictions:    cache.NewLRUCache[core.CategoryPrediction](predictionCacheSize, predictionCacheTTL),
	}, nil
}

func (c *Client) complete(ctx context.Context, model, system string, messages []goopenai.ChatCompletionMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := goopenai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0.2,
	}
	if system != "" {
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	req.Messages = append(req.Messages, messages...)

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func userMessage(text string) []goopenai.ChatCompletionMessage {
	return []goopenai.ChatCompletionMessage{{
		Role:    goopenai.ChatMessageRoleUser,
		Content: text,
	}}
}

func (c *Client) PredictCategory(ctx context.Context, description string) (core.CategoryPrediction, error) {
	key := strings.ToLower(strings.TrimSpace(description))
	if cached, ok := c.predictions.Get(key); ok {
		return cached, nil
	}

	reply, err := c.complete(ctx, c.model, ai.AccountantSystem, userMessage(ai.CategoryPrompt(description)))
	if err != nil {
		return core.CategoryPrediction{}, err
	}

	prediction, err := ai.ParsePrediction(reply)
	if err != nil {
		return core.CategoryPrediction{}, err
	}
	c.predictions.Set(key, prediction)
	return prediction, nil
}

func (c *Client) ExtractInvoice(ctx context.Context, imageBase64, mimeType string) (core.InvoiceData, error) {
	messages := []goopenai.ChatCompletionMessage{{
		Role: goopenai.ChatMessageRoleUser,
		MultiContent: []goopenai.ChatMessagePart{
			{
				Type: goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", mimeType, imageBase64),
				},
			},
			{
				Type: goopenai.ChatMessagePartTypeText,
				Text: ai.InvoiceExtractionPrompt(),
			},
		},
	}}
	reply, err := c.complete(ctx, c.model, "", messages)
	if err != nil {
		return core.InvoiceData{}, err
	}
	return ai.ParseInvoice(reply)
}

// AnalyzeBankTransaction never returns an error for collaborator failures:
// the original behavior is to degrade to an IGNORE suggestion so the bank
// feed stays usable when the model is down.
func (c *Client) AnalyzeBankTransaction(ctx context.Context, description string, amount int64, flow core.BankFlow) (core.BankSuggestion, error) {
	reply, err := c.complete(ctx, c.model, "", userMessage(ai.BankAnalysisPrompt(description, amount, flow)))
	if err != nil {
		c.logger.WarnContext(ctx, "bank analysis failed, suggesting ignore", "error", err)
		return core.BankSuggestion{Action: core.ActionIgnore, Explanation: "AI Error"}, nil
	}
	suggestion, err := ai.ParseBankSuggestion(reply)
	if err != nil {
		c.logger.WarnContext(ctx, "bank analysis unparseable, suggesting ignore", "error", err)
		return core.BankSuggestion{Action: core.ActionIgnore, Explanation: "AI Error"}, nil
	}
	return suggestion, nil
}

func (c *Client) MatchBankToContracts(ctx context.Context, credits []core.BankTransaction, contracts []core.Contract) ([]recon.RawResult, error) {
	if len(credits) == 0 || len(contracts) == 0 {
		return nil, nil
	}
	reply, err := c.complete(ctx, c.model, ai.AccountantSystem, userMessage(ai.MatchPrompt(credits, contracts)))
	if err != nil {
		return nil, err
	}
	return ai.ParseMatches(reply)
}

func (c *Client) GenerateReport(ctx context.Context, txs []core.Transaction) (string, error) {
	reply, err := c.complete(ctx, c.reasoningModel, "", userMessage(ai.ReportPrompt(txs)))
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (c *Client) Advise(ctx context.Context, txs []core.Transaction, query string) (string, error) {
	reply, err := c.complete(ctx, c.reasoningModel, ai.AdvisorSystem, userMessage(ai.AdvicePrompt(txs, query)))
	if err != nil {
		return "", err
	}
	return reply, nil
}
