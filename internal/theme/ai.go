package theme

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SergeiKhy/linkstack/internal/config"
	"github.com/SergeiKhy/linkstack/internal/models"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	aiPresetCount  = 3
	aiTemperature  = 1.2
	maxResponseLen = 1 << 20
)

var (
	ErrAIUnavailable = errors.New("all AI credentials failed")
	ErrNoCredentials = errors.New("no AI credentials configured")
)

const presetPrompt = `Generate 3 unique, creative theme presets for a link-in-bio page.

Respond with a raw JSON array of 3 objects and nothing else: no markdown, no code fences, no commentary.

Each object has these fields:
- name: an original name inspired by abstract or natural concepts, not repeated
- backgroundColor: a solid hex color (#RRGGBB) or a soft linear-gradient of 2-3 colors, e.g. linear-gradient(135deg, #abc123 0%, #def456 100%)
- textColor: #FFFFFF on dark backgrounds, #1A0A00 on light ones, with at least 7:1 contrast against backgroundColor
- linkTextColor: strongly contrasting with linkColor, especially when linkFill is "fill"
- fontFamily: exactly one of 'Inter', 'Poppins', 'General Sans', 'Montserrat', 'Roboto', 'Playfair Display', 'Open Sans', 'Clash Display', 'Cabinet Grotesk', 'Satoshi', written with single quotes and a generic fallback, like 'Poppins', sans-serif
- backgroundStyle: "solid" or "gradient"
- buttonStyle: "sharp", "rounded" or "pill"
- linkFill: "fill", "outline" or "glass"
- linkShadow: "none", "subtle" or "hard"
- linkColor: a harmonious hex color (#RRGGBB), or a semi-transparent rgba such as rgba(255,255,255,0.14) when linkFill is "glass"

Design rules:
- modern and accessible, with balanced contrast between text, links and background
- smooth color harmony in gradients, no harsh primary pairings
- glass buttons use a semi-transparent linkColor and #FFFFFF linkTextColor

Return exactly one array. Do not use markdown or backticks.`

// Generator запрашивает у языковой модели варианты тем
type Generator interface {
	Generate(ctx context.Context) ([]models.Preset, error)
}

type chatGenerator struct {
	client   *http.Client
	endpoint string
	model    string
	keys     []string
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewGenerator создаёт генератор поверх OpenAI-совместимого chat completions API.
// Ключи перебираются в порядке из конфига.
func NewGenerator(cfg config.AIConfig, client *http.Client, logger *zap.Logger) Generator {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &chatGenerator{
		client:   client,
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		keys:     cfg.APIKeys,
		timeout:  cfg.Timeout,
		now:      time.Now,
		logger:   logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *chatGenerator) Generate(ctx context.Context) ([]models.Preset, error) {
	if len(g.keys) == 0 {
		return nil, ErrNoCredentials
	}

	// Метка времени делает запрос уникальным, чтобы модель не повторяла ответы
	prompt := fmt.Sprintf("%s\n\nTheme ID: %d", presetPrompt, g.now().UnixMilli())

	var errs error
	for i, key := range g.keys {
		presets, err := g.attempt(ctx, prompt, key)
		if err == nil {
			if len(presets) > aiPresetCount {
				presets = presets[:aiPresetCount]
			}
			return presets, nil
		}

		g.logger.Warn("AI credential failed, trying next",
			zap.Int("credential", i),
			zap.Error(err),
		)
		errs = multierr.Append(errs, fmt.Errorf("credential %d: %w", i, err))

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrAIUnavailable, errs)
}

// attempt ограничивает таймаутом один ключ, зависший ключ не останавливает цепочку
func (g *chatGenerator) attempt(ctx context.Context, prompt, key string) ([]models.Preset, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.call(ctx, prompt, key)
}

func (g *chatGenerator) call(ctx context.Context, prompt, key string) ([]models.Preset, error) {
	body, err := json.Marshal(chatRequest{
		Model:       g.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: aiTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseLen))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseLen)).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == "" {
		return nil, errors.New("empty completion")
	}

	return ParsePresets(decoded.Choices[0].Message.Content)
}
