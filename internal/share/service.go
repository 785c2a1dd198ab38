package share

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/digital-card-go/internal/constants"
	"github.com/kapu/digital-card-go/internal/domain"
	"github.com/kapu/digital-card-go/internal/service/cache"
)

// Suggester drafts alternative share links, typically with a language model.
type Suggester interface {
	Suggest(ctx context.Context, in domain.ShareInput) (domain.ShareLinks, error)
}

// LinkOptions selects the optional parts of a share result.
type LinkOptions struct {
	Recipient string
	Suggest   bool
}

// Service composes deterministic links with recipient links and model suggestions.
type Service struct {
	suggester Suggester
	cache     cache.Store
	logger    *zap.Logger
}

// NewService accepts a nil suggester or cache.
func NewService(suggester Suggester, store cache.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{suggester: suggester, cache: store, logger: logger}
}

// SuggestionsEnabled reports whether a suggester is configured.
func (s *Service) SuggestionsEnabled() bool {
	return s.suggester != nil
}

// Links always returns the deterministic set. Suggestion failures are logged
// and leave Suggestions nil.
func (s *Service) Links(ctx context.Context, in domain.ShareInput, opts LinkOptions) domain.ShareResult {
	result := domain.ShareResult{Links: Build(in)}

	if strings.TrimSpace(opts.Recipient) != "" {
		recipient := RecipientLinks(in, opts.Recipient)
		result.Recipient = &recipient
	}

	if opts.Suggest && s.suggester != nil {
		if suggestions, ok := s.suggestions(ctx, in); ok {
			result.Suggestions = &suggestions
		}
	}

	return result
}

// Prime fills the suggestion cache for in.
func (s *Service) Prime(ctx context.Context, in domain.ShareInput) error {
	if s.suggester == nil {
		return nil
	}
	if _, ok := s.suggestions(ctx, in); !ok {
		return fmt.Errorf("share suggestions unavailable")
	}
	return nil
}

func (s *Service) suggestions(ctx context.Context, in domain.ShareInput) (domain.ShareLinks, bool) {
	key := fmt.Sprintf(constants.CacheKeys.ShareSuggestions, suggestionKey(in))

	if s.cache != nil {
		var cached domain.ShareLinks
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("Share suggestion cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			return cached, true
		}
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ShareConfig.SuggestionTimeout)
	defer cancel()

	links, err := s.suggester.Suggest(ctx, in)
	if err != nil {
		s.logger.Warn("Share suggestions failed, using deterministic links", zap.Error(err))
		return domain.ShareLinks{}, false
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, links, constants.CacheTTL.ShareSuggestions); err != nil {
			s.logger.Warn("Share suggestion cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return links, true
}

func suggestionKey(in domain.ShareInput) string {
	h := sha256.New()
	for _, part := range []string{in.Name, in.Designation, in.CardURL, in.Company} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}

	platforms := make([]string, 0, len(in.Socials))
	for platform := range in.Socials {
		platforms = append(platforms, string(platform))
	}
	sort.Strings(platforms)
	for _, platform := range platforms {
		h.Write([]byte(platform + "=" + in.Socials[domain.SocialPlatform(platform)]))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))[:16]
}
