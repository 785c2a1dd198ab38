package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kapu/digital-card-go/internal/constants"
	"github.com/kapu/digital-card-go/internal/util"
	"github.com/kapu/digital-card-go/pkg/errors"
)

var (
	httpStatusPattern  = regexp.MustCompile(`\b(5\d{2})\b`)
	geminiCodePattern  = regexp.MustCompile(`"code":(\d{3})`)
	openaiCodePattern  = regexp.MustCompile(`^(\d{3})\s`)
	errServiceDegraded = "AI service is temporarily unavailable"
)

// ModelManager routes JSON generation to the primary provider and falls back
// to the secondary one. A circuit breaker stops calls while both keep failing.
type ModelManager struct {
	primary        JSONProvider
	fallback       JSONProvider
	logger         *zap.Logger
	enableFallback bool
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	GeminiAPIKey       string
	OpenAIAPIKey       string
	DefaultGeminiModel string
	DefaultOpenAIModel string
	EnableFallback     bool
}

func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	defaultGemini := cfg.DefaultGeminiModel
	if defaultGemini == "" {
		defaultGemini = "gemini-2.5-flash"
	}

	defaultOpenAI := cfg.DefaultOpenAIModel
	if defaultOpenAI == "" {
		defaultOpenAI = "gpt-5-mini"
	}

	var fallback JSONProvider
	if cfg.EnableFallback {
		if openaiProvider := NewOpenAIProvider(cfg.OpenAIAPIKey, defaultOpenAI, logger); openaiProvider != nil {
			logger.Info("OpenAI fallback enabled", zap.String("model", defaultOpenAI))
			fallback = openaiProvider
		} else {
			logger.Info("OpenAI fallback disabled (no API key)")
		}
	}

	return NewModelManagerWithProviders(NewGeminiProvider(geminiClient, defaultGemini, logger), fallback, logger), nil
}

// NewModelManagerWithProviders builds a manager around existing providers.
// fallback may be nil.
func NewModelManagerWithProviders(primary, fallback JSONProvider, logger *zap.Logger) *ModelManager {
	if logger == nil {
		logger = zap.NewNop()
	}

	mm := &ModelManager{
		primary:        primary,
		fallback:       fallback,
		logger:         logger,
		enableFallback: fallback != nil,
	}

	mm.circuitBreaker = util.NewCircuitBreaker(
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		mm.healthCheckPing,
		logger,
	)

	return mm
}

// GenerateJSON runs prompt and decodes the model's JSON answer into dest.
func (mm *ModelManager) GenerateJSON(ctx context.Context, prompt string, preset ModelPreset, dest any, opts *GenerateOptions) (*GenerateMetadata, error) {
	if !mm.circuitBreaker.CanExecute() {
		status := mm.circuitBreaker.GetStatus()
		nextRetry := "unknown"
		if status.NextRetryTime != nil {
			nextRetry = status.NextRetryTime.Format("15:04:05")
		}

		mm.logger.Warn("AI service unavailable (circuit open)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
			zap.String("next_retry", nextRetry),
		)

		return nil, errors.NewServiceError(errServiceDegraded, "ai", "generate", nil)
	}

	var options GenerateOptions
	if opts != nil {
		options = *opts
	}
	options.JSONMode = true

	primaryResult, primaryErr := mm.invokeProvider(ctx, mm.primary, prompt, preset, &options)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		metadata := &GenerateMetadata{
			Provider:     mm.primary.Name(),
			Model:        primaryResult.Model,
			PromptTokens: primaryResult.PromptTokens,
			OutputTokens: primaryResult.OutputTokens,
		}
		return mm.decodeJSON(primaryResult.Text, metadata, dest)
	}

	if mm.enableFallback && mm.fallback != nil {
		fallbackResult, fallbackErr := mm.invokeProvider(ctx, mm.fallback, prompt, preset, &options)
		if fallbackErr == nil {
			mm.circuitBreaker.RecordSuccess()
			metadata := &GenerateMetadata{
				Provider:     mm.fallback.Name(),
				Model:        fallbackResult.Model,
				UsedFallback: true,
				PromptTokens: fallbackResult.PromptTokens,
				OutputTokens: fallbackResult.OutputTokens,
			}
			return mm.decodeJSON(fallbackResult.Text, metadata, dest)
		}

		mm.recordFailure(primaryErr)
		mm.recordFailure(fallbackErr)

		if mm.isServiceFailure(primaryErr) || mm.isServiceFailure(fallbackErr) {
			return nil, errors.NewServiceError(errServiceDegraded, "ai", "generate", fallbackErr)
		}

		return nil, fallbackErr
	}

	mm.recordFailure(primaryErr)

	if mm.isServiceFailure(primaryErr) {
		return nil, errors.NewServiceError(errServiceDegraded, "ai", "generate", primaryErr)
	}

	return nil, primaryErr
}

func (mm *ModelManager) invokeProvider(ctx context.Context, provider JSONProvider, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error) {
	if provider == nil {
		return ProviderResult{}, fmt.Errorf("model provider is not configured")
	}
	return provider.Generate(ctx, prompt, preset, opts)
}

func (mm *ModelManager) decodeJSON(text string, metadata *GenerateMetadata, dest any) (*GenerateMetadata, error) {
	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%s API returned empty response", metadata.Provider)
	}

	if err := json.Unmarshal([]byte(cleaned), dest); err != nil {
		mm.logger.Error("Failed to unmarshal JSON response",
			zap.String("provider", metadata.Provider),
			zap.Error(err),
			zap.String("response_preview", util.TruncateString(cleaned, 200)),
		)
		return nil, fmt.Errorf("invalid JSON from %s: %w", metadata.Provider, err)
	}

	return metadata, nil
}

func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```json"))
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```"))
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "```"))
	}
	return cleaned
}

func (mm *ModelManager) recordFailure(err error) {
	if err == nil || !mm.isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if mm.isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}

	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) healthCheckPing() bool {
	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	primaryOK := mm.primary != nil && mm.primary.Ping(ctx)
	fallbackOK := mm.enableFallback && mm.fallback != nil && mm.fallback.Ping(ctx)
	healthy := primaryOK || fallbackOK

	mm.logger.Info("Health check result",
		zap.Bool("primary", primaryOK),
		zap.Bool("fallback", fallbackOK),
		zap.Bool("healthy", healthy),
	)

	return healthy
}

func statusCode(msg string) (int, bool) {
	for _, pattern := range []*regexp.Regexp{geminiCodePattern, openaiCodePattern} {
		if matches := pattern.FindStringSubmatch(msg); len(matches) > 1 {
			if code, err := strconv.Atoi(matches[1]); err == nil {
				return code, true
			}
		}
	}
	return 0, false
}

func (mm *ModelManager) isServiceFailure(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") || strings.Contains(msg, "deadline exceeded") {
		return true
	}

	if mm.isRateLimitError(err) {
		return true
	}

	if httpStatusPattern.MatchString(msg) {
		return true
	}

	if code, ok := statusCode(msg); ok {
		return code >= 500 && code < 600
	}

	return false
}

func (mm *ModelManager) isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return true
	}

	code, ok := statusCode(msg)
	return ok && code == 429
}

func (mm *ModelManager) GetCircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.GetStatus()
}

func (mm *ModelManager) ResetCircuit() {
	mm.circuitBreaker.Reset()
}
