package ai

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/digital-card-go/internal/constants"
	"github.com/kapu/digital-card-go/internal/domain"
	"github.com/kapu/digital-card-go/internal/prompt"
	"github.com/kapu/digital-card-go/internal/util"
)

// JSONGenerator is the part of ModelManager the augmenter depends on.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, preset ModelPreset, dest any, opts *GenerateOptions) (*GenerateMetadata, error)
}

type shareLinksResponse struct {
	WhatsApp *string `json:"whatsapp"`
	SMS      *string `json:"sms"`
	LinkedIn *string `json:"linkedin"`
	CopyLink *string `json:"copyLink"`
}

// ShareLinkAugmenter asks a language model to draft share links for a card.
type ShareLinkAugmenter struct {
	generator JSONGenerator
	prompts   *prompt.PromptBuilder
	logger    *zap.Logger
}

func NewShareLinkAugmenter(generator JSONGenerator, prompts *prompt.PromptBuilder, logger *zap.Logger) *ShareLinkAugmenter {
	if prompts == nil {
		prompts = prompt.DefaultPromptBuilder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareLinkAugmenter{generator: generator, prompts: prompts, logger: logger}
}

// Suggest returns the model's links. Channels the model leaves null, blank or
// malformed come back as "".
func (a *ShareLinkAugmenter) Suggest(ctx context.Context, in domain.ShareInput) (domain.ShareLinks, error) {
	if a.generator == nil {
		return domain.ShareLinks{}, fmt.Errorf("share link augmenter has no generator")
	}

	socials := make(map[string]string, len(in.Socials))
	for platform, link := range in.Socials {
		socials[string(platform)] = sanitizeField(link)
	}

	built, err := a.prompts.BuildShareLinksPrompt(prompt.ShareLinksPromptVars{
		Name:        sanitizeField(in.Name),
		Designation: sanitizeField(in.Designation),
		CardURL:     sanitizeField(in.CardURL),
		Company:     sanitizeField(in.Company),
		Socials:     socials,
	})
	if err != nil {
		return domain.ShareLinks{}, err
	}

	var resp shareLinksResponse
	metadata, err := a.generator.GenerateJSON(ctx, built.Text, ParsePreset(built.Preset), &resp, &GenerateOptions{
		SystemInstruction: built.System,
	})
	if err != nil {
		return domain.ShareLinks{}, fmt.Errorf("generate share links: %w", err)
	}

	links := domain.ShareLinks{
		WhatsApp: acceptLink(resp.WhatsApp, "https"),
		SMS:      acceptLink(resp.SMS, "sms"),
		LinkedIn: acceptLink(resp.LinkedIn, "https"),
		CopyLink: acceptLink(resp.CopyLink, "http", "https"),
	}

	if metadata != nil {
		a.logger.Debug("Share link suggestions generated",
			zap.String("provider", metadata.Provider),
			zap.String("model", metadata.Model),
			zap.Bool("used_fallback", metadata.UsedFallback),
			zap.Int64("prompt_tokens", metadata.PromptTokens),
			zap.Int64("output_tokens", metadata.OutputTokens),
		)
	}

	return links, nil
}

func sanitizeField(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, s)
	return util.TruncateString(strings.TrimSpace(s), constants.ShareConfig.MaxPromptFieldRune)
}

func acceptLink(raw *string, schemes ...string) string {
	if raw == nil {
		return ""
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return ""
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return ""
	}
	for _, scheme := range schemes {
		if strings.EqualFold(parsed.Scheme, scheme) {
			return value
		}
	}
	return ""
}
