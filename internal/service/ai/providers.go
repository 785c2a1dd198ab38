package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// JSONProvider is one model backend the ModelManager can route to.
type JSONProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error)
	Ping(ctx context.Context) bool
}

// ProviderResult is the raw answer of one provider call.
type ProviderResult struct {
	Text         string
	Model        string
	PromptTokens int64
	OutputTokens int64
}

const (
	jsonOnlyInstruction = "Respond with one valid JSON object and nothing else."
	pingTimeout         = 5 * time.Second
)

// errTruncated is returned when the model stopped at its token limit. A cut-off
// JSON object cannot be decoded, so it is reported before decoding.
func errTruncated(provider, model string) error {
	return fmt.Errorf("%s response truncated at token limit (model %s)", provider, model)
}

func modelFor(defaultModel string, opts *GenerateOptions) string {
	if opts != nil && opts.Model != "" {
		return opts.Model
	}
	return defaultModel
}

// systemText joins the caller's instruction with the JSON-only rule when JSON mode is on.
func systemText(opts *GenerateOptions) string {
	if opts == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(opts.SystemInstruction); s != "" {
		parts = append(parts, s)
	}
	if opts.JSONMode {
		parts = append(parts, jsonOnlyInstruction)
	}
	return strings.Join(parts, "\n")
}

// GeminiProvider generates with the Gemini API.
type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
	logger       *zap.Logger
}

func NewGeminiProvider(client *genai.Client, defaultModel string, logger *zap.Logger) *GeminiProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiProvider{client: client, defaultModel: defaultModel, logger: logger}
}

func (g *GeminiProvider) Name() string {
	return "Gemini"
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error) {
	if g.client == nil {
		return ProviderResult{}, fmt.Errorf("gemini client not initialized")
	}

	modelName := modelFor(g.defaultModel, opts)
	genConfig := geminiConfig(applyOverrides(GetPresetConfig(preset), opts), opts)

	g.logger.Debug("Generating with Gemini",
		zap.String("model", modelName),
		zap.String("preset", string(preset)),
		zap.Bool("system_instruction", genConfig.SystemInstruction != nil),
	)

	resp, err := g.client.Models.GenerateContent(ctx, modelName, []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: prompt}}},
	}, genConfig)
	if err != nil {
		g.logger.Error("Gemini generation failed", zap.String("model", modelName), zap.Error(err))
		return ProviderResult{}, err
	}

	result, err := geminiResult(resp, modelName)
	if err != nil {
		return ProviderResult{}, err
	}

	g.logger.Debug("Gemini response received",
		zap.Int("length", len(result.Text)),
		zap.Int64("prompt_tokens", result.PromptTokens),
		zap.Int64("output_tokens", result.OutputTokens),
	)
	return result, nil
}

func geminiConfig(config ModelConfig, opts *GenerateOptions) *genai.GenerateContentConfig {
	topK := float32(config.TopK)
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &config.Temperature,
		TopP:            &config.TopP,
		TopK:            &topK,
		MaxOutputTokens: int32(config.MaxOutputTokens),
	}
	if opts != nil && opts.JSONMode {
		genConfig.ResponseMIMEType = "application/json"
	}
	if opts != nil && strings.TrimSpace(opts.SystemInstruction) != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.TrimSpace(opts.SystemInstruction)}},
		}
	}
	return genConfig
}

// geminiResult extracts text and usage from the first candidate.
func geminiResult(resp *genai.GenerateContentResponse, model string) (ProviderResult, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ProviderResult{}, fmt.Errorf("empty response from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonMaxTokens {
		return ProviderResult{}, errTruncated("Gemini", model)
	}

	var sb strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil {
				sb.WriteString(part.Text)
			}
		}
	}
	if sb.Len() == 0 {
		return ProviderResult{}, fmt.Errorf("empty response from Gemini")
	}

	result := ProviderResult{Text: sb.String(), Model: model}
	if usage := resp.UsageMetadata; usage != nil {
		result.PromptTokens = int64(usage.PromptTokenCount)
		result.OutputTokens = int64(usage.CandidatesTokenCount)
	}
	return result, nil
}

func (g *GeminiProvider) Ping(ctx context.Context) bool {
	if g.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	temp := float32(0)
	resp, err := g.client.Models.GenerateContent(ctx, g.defaultModel, []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: "ping"}}},
	}, &genai.GenerateContentConfig{Temperature: &temp, MaxOutputTokens: 10})
	if err != nil {
		g.logger.Debug("Gemini ping failed", zap.Error(err))
		return false
	}

	_, err = geminiResult(resp, g.defaultModel)
	return err == nil
}

// OpenAIProvider is the chat completions fallback.
type OpenAIProvider struct {
	client       *openai.Client
	defaultModel string
	logger       *zap.Logger
}

// NewOpenAIProvider returns nil when apiKey is empty.
func NewOpenAIProvider(apiKey string, defaultModel string, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client, defaultModel: defaultModel, logger: logger}
}

func (o *OpenAIProvider) Name() string {
	return "OpenAI"
}

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (ProviderResult, error) {
	if o.client == nil {
		return ProviderResult{}, fmt.Errorf("OpenAI client not initialized")
	}

	modelName := modelFor(o.defaultModel, opts)
	params := openAIParams(modelName, prompt, GetOpenAIPresetConfig(preset), opts)

	o.logger.Info("Generating with OpenAI fallback",
		zap.String("model", modelName),
		zap.String("preset", string(preset)),
	)

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		o.logger.Error("OpenAI generation failed", zap.String("model", modelName), zap.Error(err))
		return ProviderResult{}, err
	}

	result, err := openAIResult(resp, modelName)
	if err != nil {
		return ProviderResult{}, err
	}

	o.logger.Info("OpenAI response received",
		zap.Int("length", len(result.Text)),
		zap.Int64("prompt_tokens", result.PromptTokens),
		zap.Int64("output_tokens", result.OutputTokens),
	)
	return result, nil
}

func openAIParams(modelName, prompt string, config OpenAIConfig, opts *GenerateOptions) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if system := systemText(opts); system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(modelName),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(config.MaxTokens)),
	}

	if opts != nil && opts.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	// gpt-5 family rejects sampling parameters.
	if !strings.HasPrefix(modelName, "gpt-5") {
		params.Temperature = openai.Float(float64(config.Temperature))
		params.TopP = openai.Float(float64(config.TopP))
	}

	return params
}

func openAIResult(resp *openai.ChatCompletion, model string) (ProviderResult, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return ProviderResult{}, fmt.Errorf("no choices in OpenAI response")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		return ProviderResult{}, errTruncated("OpenAI", model)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return ProviderResult{}, fmt.Errorf("empty response from OpenAI")
	}

	return ProviderResult{
		Text:         choice.Message.Content,
		Model:        model,
		PromptTokens: resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (o *OpenAIProvider) Ping(ctx context.Context) bool {
	if o.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.defaultModel),
		Messages:            []openai.ChatCompletionMessageParamUnion{openai.UserMessage("ping")},
		MaxCompletionTokens: openai.Int(16),
	})
	if err != nil {
		o.logger.Debug("OpenAI ping failed", zap.Error(err))
		return false
	}

	return len(resp.Choices) > 0
}

func applyOverrides(config ModelConfig, opts *GenerateOptions) ModelConfig {
	if opts == nil || opts.Overrides == nil {
		return config
	}
	if opts.Overrides.Temperature > 0 {
		config.Temperature = opts.Overrides.Temperature
	}
	if opts.Overrides.TopP > 0 {
		config.TopP = opts.Overrides.TopP
	}
	if opts.Overrides.TopK > 0 {
		config.TopK = opts.Overrides.TopK
	}
	if opts.Overrides.MaxOutputTokens > 0 {
		config.MaxOutputTokens = opts.Overrides.MaxOutputTokens
	}
	return config
}
