package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/digital-card-go/internal/domain"
)

func parseWith(t *testing.T, vars map[string]string) *Config {
	t.Helper()
	cfg, err := Parse(env.Options{Environment: vars})
	require.NoError(t, err)
	return cfg
}

func TestParseDefaults(t *testing.T) {
	cfg := parseWith(t, map[string]string{})

	assert.Equal(t, "Your Name", cfg.Card.Name)
	assert.Equal(t, "Your Company", cfg.Card.Company)
	assert.Equal(t, "http://localhost:9002", cfg.Card.AppURL)
	assert.Equal(t, 9002, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "H", cfg.QR.Level)
	assert.Equal(t, "#007a3d", cfg.QR.Foreground)
	assert.Equal(t, "en", cfg.Locale.Primary)
	assert.Equal(t, "kn", cfg.Locale.Secondary)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.AIEnabled())
}

func TestParseBlankValuesFallBackToPlaceholders(t *testing.T) {
	cfg := parseWith(t, map[string]string{
		"CARD_PERSON_NAME":  "   ",
		"CARD_PERSON_EMAIL": "",
		"CARD_PERSON_ROLE":  " Director ",
	})

	assert.Equal(t, "Your Name", cfg.Card.Name)
	assert.Equal(t, "your.email@example.com", cfg.Card.Email)
	assert.Equal(t, "Director", cfg.Card.Role)
}

func TestProfileOmitsUnsetSocials(t *testing.T) {
	cfg := parseWith(t, map[string]string{
		"CARD_PERSON_NAME":     "Jane Mary Doe",
		"CARD_APP_URL":         "https://example.com/card/42",
		"CARD_SOCIAL_LINKEDIN": "https://linkedin.com/in/jane",
		"CARD_SOCIAL_FACEBOOK": "  ",
	})

	profile := cfg.Card.Profile()
	assert.Equal(t, "Jane Mary Doe", profile.Name)
	assert.Equal(t, "https://example.com/card/42", profile.CardURL)

	_, hasFacebook := profile.Social(domain.SocialFacebook)
	assert.False(t, hasFacebook)

	links := profile.SocialLinks()
	require.Len(t, links, 1)
	assert.Equal(t, domain.SocialLinkedIn, links[0].Platform)
}

func TestValidateRejectsBadServerSettings(t *testing.T) {
	_, err := Parse(env.Options{Environment: map[string]string{"SERVER_PORT": "70000"}})
	assert.Error(t, err)

	_, err = Parse(env.Options{Environment: map[string]string{"QR_SIZE": "0"}})
	assert.Error(t, err)

	_, err = Parse(env.Options{Environment: map[string]string{"QR_MARGIN": "100000"}})
	assert.Error(t, err)

	_, err = Parse(env.Options{Environment: map[string]string{"LOCALE_SECONDARY": "EN"}})
	assert.Error(t, err)
}

func TestAIEnabledWithKey(t *testing.T) {
	cfg := parseWith(t, map[string]string{"GEMINI_API_KEY": "key"})
	assert.True(t, cfg.AIEnabled())
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
}
