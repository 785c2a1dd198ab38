package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/kapu/digital-card-go/internal/constants"
	"github.com/kapu/digital-card-go/internal/domain"
)

type Config struct {
	Card    CardConfig    `envPrefix:"CARD_"`
	Server  ServerConfig  `envPrefix:"SERVER_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	Gemini  GeminiConfig  `envPrefix:"GEMINI_"`
	OpenAI  OpenAIConfig  `envPrefix:"OPENAI_"`
	QR      QRConfig      `envPrefix:"QR_"`
	Locale  LocaleConfig  `envPrefix:"LOCALE_"`
	Logging LoggingConfig `envPrefix:"LOG_"`
}

// CardConfig carries the published profile. Every field has a placeholder so an
// unconfigured deployment still renders a card.
type CardConfig struct {
	Name      string `env:"PERSON_NAME" envDefault:"Your Name"`
	Role      string `env:"PERSON_ROLE" envDefault:"Your Role"`
	Phone     string `env:"PERSON_PHONE" envDefault:"1234567890"`
	Email     string `env:"PERSON_EMAIL" envDefault:"your.email@example.com"`
	Office    string `env:"PERSON_OFFICE" envDefault:"Your Office Address"`
	PhotoURL  string `env:"PERSON_PHOTO_URL" envDefault:"https://picsum.photos/seed/placeholder/400/400"`
	AppURL    string `env:"APP_URL" envDefault:"http://localhost:9002"`
	Company   string `env:"COMPANY_NAME" envDefault:"Your Company"`
	Facebook  string `env:"SOCIAL_FACEBOOK"`
	LinkedIn  string `env:"SOCIAL_LINKEDIN"`
	YouTube   string `env:"SOCIAL_YOUTUBE"`
	Instagram string `env:"SOCIAL_INSTAGRAM"`
}

type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"9002"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
}

type RedisConfig struct {
	Enabled  bool   `env:"ENABLED" envDefault:"false"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type GeminiConfig struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL" envDefault:"gemini-2.5-flash"`
}

type OpenAIConfig struct {
	APIKey         string `env:"API_KEY"`
	Model          string `env:"MODEL" envDefault:"gpt-5-mini"`
	EnableFallback bool   `env:"ENABLE_FALLBACK" envDefault:"true"`
}

type QRConfig struct {
	Size       int    `env:"SIZE" envDefault:"300"`
	Margin     int    `env:"MARGIN" envDefault:"2"`
	Level      string `env:"LEVEL" envDefault:"H"`
	Foreground string `env:"FOREGROUND" envDefault:"#007a3d"`
	Background string `env:"BACKGROUND" envDefault:"#FFFFFF"`
}

type LocaleConfig struct {
	Primary   string `env:"PRIMARY" envDefault:"en"`
	Secondary string `env:"SECONDARY" envDefault:"kn"`
}

type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	File   string `env:"FILE"`
	Format string `env:"FORMAT" envDefault:"console"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse(env.Options{})
}

// Parse builds a Config from opts. Tests pass opts.Environment to avoid touching the process env.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.Card.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks runtime settings. Profile values never fail validation; blanks
// are replaced by placeholders in normalize.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	if c.QR.Size <= 0 || c.QR.Size > constants.QRDefaults.MaxSize {
		return fmt.Errorf("QR_SIZE must be between 1 and %d", constants.QRDefaults.MaxSize)
	}
	if c.QR.Margin < 0 || c.QR.Margin > constants.QRDefaults.MaxMargin {
		return fmt.Errorf("QR_MARGIN must be between 0 and %d", constants.QRDefaults.MaxMargin)
	}
	if strings.TrimSpace(c.Locale.Primary) == "" || strings.TrimSpace(c.Locale.Secondary) == "" {
		return fmt.Errorf("LOCALE_PRIMARY and LOCALE_SECONDARY are required")
	}
	if strings.EqualFold(c.Locale.Primary, c.Locale.Secondary) {
		return fmt.Errorf("LOCALE_PRIMARY and LOCALE_SECONDARY must differ")
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("REDIS_HOST is required when REDIS_ENABLED is set")
	}
	return nil
}

// AIEnabled reports whether share-link suggestions can be generated.
func (c *Config) AIEnabled() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

var cardDefaults = CardConfig{
	Name:     "Your Name",
	Role:     "Your Role",
	Phone:    "1234567890",
	Email:    "your.email@example.com",
	Office:   "Your Office Address",
	PhotoURL: "https://picsum.photos/seed/placeholder/400/400",
	AppURL:   "http://localhost:9002",
	Company:  "Your Company",
}

// normalize trims values and substitutes placeholders for values that are set but blank.
func (c *CardConfig) normalize() {
	fill := func(value *string, fallback string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}
	fill(&c.Name, cardDefaults.Name)
	fill(&c.Role, cardDefaults.Role)
	fill(&c.Phone, cardDefaults.Phone)
	fill(&c.Email, cardDefaults.Email)
	fill(&c.Office, cardDefaults.Office)
	fill(&c.PhotoURL, cardDefaults.PhotoURL)
	fill(&c.AppURL, cardDefaults.AppURL)
	fill(&c.Company, cardDefaults.Company)

	c.Facebook = strings.TrimSpace(c.Facebook)
	c.LinkedIn = strings.TrimSpace(c.LinkedIn)
	c.YouTube = strings.TrimSpace(c.YouTube)
	c.Instagram = strings.TrimSpace(c.Instagram)
}

// Profile converts the card settings into the immutable profile value.
func (c CardConfig) Profile() domain.ContactProfile {
	socials := map[domain.SocialPlatform]string{}
	for platform, link := range map[domain.SocialPlatform]string{
		domain.SocialFacebook:  c.Facebook,
		domain.SocialLinkedIn:  c.LinkedIn,
		domain.SocialYouTube:   c.YouTube,
		domain.SocialInstagram: c.Instagram,
	} {
		if link != "" {
			socials[platform] = link
		}
	}

	return domain.NewContactProfile(domain.ContactProfile{
		Name:     c.Name,
		Role:     c.Role,
		Phone:    c.Phone,
		Email:    c.Email,
		Office:   c.Office,
		PhotoURL: c.PhotoURL,
		CardURL:  c.AppURL,
		Company:  c.Company,
		Socials:  socials,
	})
}
