package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/digital-card-go/internal/config"
	"github.com/kapu/digital-card-go/internal/constants"
	"github.com/kapu/digital-card-go/internal/domain"
	"github.com/kapu/digital-card-go/internal/i18n"
	"github.com/kapu/digital-card-go/internal/prompt"
	"github.com/kapu/digital-card-go/internal/qrcode"
	"github.com/kapu/digital-card-go/internal/server"
	"github.com/kapu/digital-card-go/internal/service/ai"
	"github.com/kapu/digital-card-go/internal/service/cache"
	"github.com/kapu/digital-card-go/internal/share"
	"github.com/kapu/digital-card-go/internal/web"
)

// Container bundles assembled services for the HTTP server and CLI commands.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Profile      domain.ContactProfile
	Localizer    *i18n.Localizer
	Renderer     *web.Renderer
	Cache        cache.Store
	ModelManager *ai.ModelManager
	Share        *share.Service
	QR           *qrcode.Generator
	QROptions    qrcode.Options

	closers []func()
}

// Build assembles every service. Optional infrastructure (Redis, the model
// providers) degrades with a warning; only a broken locale table or invalid
// QR settings fail the build.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{Config: cfg, Logger: logger, Profile: cfg.Card.Profile()}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	c.Localizer, err = i18n.New(i18n.Language(cfg.Locale.Primary), i18n.Language(cfg.Locale.Secondary))
	if err != nil {
		return nil, fmt.Errorf("failed to load locales: %w", err)
	}
	if err = c.Localizer.Validate(); err != nil {
		return nil, fmt.Errorf("locale table invalid: %w", err)
	}

	c.Renderer, err = web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load page templates: %w", err)
	}

	c.QROptions, err = qrcode.NewOptions(cfg.QR.Size, cfg.QR.Margin, cfg.QR.Level, cfg.QR.Foreground, cfg.QR.Background)
	if err != nil {
		return nil, fmt.Errorf("invalid QR settings: %w", err)
	}

	c.Cache = c.buildCache(ctx)
	c.closers = append(c.closers, func() {
		_ = c.Cache.Close()
	})

	var suggester share.Suggester
	if cfg.AIEnabled() {
		modelManager, mmErr := ai.NewModelManager(ctx, ai.ModelManagerConfig{
			GeminiAPIKey:       cfg.Gemini.APIKey,
			OpenAIAPIKey:       cfg.OpenAI.APIKey,
			DefaultGeminiModel: cfg.Gemini.Model,
			DefaultOpenAIModel: cfg.OpenAI.Model,
			EnableFallback:     cfg.OpenAI.EnableFallback,
		}, logger)
		if mmErr != nil {
			logger.Warn("Model manager unavailable, share suggestions disabled", zap.Error(mmErr))
		} else {
			c.ModelManager = modelManager
			suggester = ai.NewShareLinkAugmenter(modelManager, prompt.DefaultPromptBuilder(), logger)
			logger.Info("Share suggestions enabled", zap.String("model", cfg.Gemini.Model))
		}
	}

	c.Share = share.NewService(suggester, c.Cache, logger)
	c.QR = qrcode.NewGenerator(c.Cache, logger)

	logger.Info("Card services assembled",
		zap.String("name", c.Profile.Name),
		zap.String("card_url", c.Profile.CardURL),
		zap.String("cache", c.Cache.Name()),
		zap.Bool("suggestions", c.Share.SuggestionsEnabled()),
	)

	return c, nil
}

func (c *Container) buildCache(ctx context.Context) cache.Store {
	if !c.Config.Redis.Enabled {
		return cache.NewMemoryStore()
	}

	redisStore, err := cache.NewRedisStore(ctx, cache.CacheConfig{
		Host:     c.Config.Redis.Host,
		Port:     c.Config.Redis.Port,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}, c.Logger)
	if err != nil {
		c.Logger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		return cache.NewMemoryStore()
	}
	return redisStore
}

// Router returns the HTTP handler for the card.
func (c *Container) Router() (http.Handler, error) {
	deps := server.Dependencies{
		Profile:        c.Profile,
		Localizer:      c.Localizer,
		Renderer:       c.Renderer,
		Share:          c.Share,
		QR:             c.QR,
		QROptions:      c.QROptions,
		Cache:          c.Cache,
		AllowedOrigins: c.Config.Server.AllowedOrigins,
		Logger:         c.Logger,
	}
	if c.ModelManager != nil {
		deps.Circuit = c.ModelManager
	}
	return server.NewRouter(deps)
}

// NewServer builds the HTTP server from config.
func (c *Container) NewServer() (*server.Server, error) {
	router, err := c.Router()
	if err != nil {
		return nil, err
	}
	return server.New(server.Config{
		Addr:            c.Config.Server.Addr(),
		ReadTimeout:     c.Config.Server.ReadTimeout,
		WriteTimeout:    c.Config.Server.WriteTimeout,
		IdleTimeout:     c.Config.Server.IdleTimeout,
		ShutdownTimeout: c.Config.Server.ShutdownTimeout,
	}, router, c.Logger), nil
}

// WarmUpReport counts warm-up tasks.
type WarmUpReport struct {
	Succeeded int
	Failed    int
}

// WarmUp renders the QR code and primes share suggestions concurrently.
// Failures are logged and counted, never returned.
func (c *Container) WarmUp(ctx context.Context) WarmUpReport {
	ctx, cancel := context.WithTimeout(ctx, constants.WarmUpConfig.Timeout)
	defer cancel()

	tasks := map[string]func(context.Context) error{
		"qr": func(ctx context.Context) error {
			_, err := c.QR.Generate(ctx, c.Profile.CardURL, c.QROptions)
			return err
		},
		"page": func(context.Context) error {
			for _, lang := range c.Localizer.Languages() {
				data := web.NewPageData(c.Profile, c.Localizer, c.Localizer.SessionFor(lang), share.Build(domain.ShareInputFrom(c.Profile)))
				if err := c.Renderer.Render(io.Discard, data); err != nil {
					return err
				}
			}
			return nil
		},
	}
	if c.Share.SuggestionsEnabled() {
		tasks["suggestions"] = func(ctx context.Context) error {
			return c.Share.Prime(ctx, domain.ShareInputFrom(c.Profile))
		}
	}

	var succeeded, failed atomic.Int32
	p := pool.New().WithMaxGoroutines(constants.WarmUpConfig.MaxGoroutines)
	for name, task := range tasks {
		p.Go(func() {
			if err := task(ctx); err != nil {
				failed.Add(1)
				c.Logger.Warn("Warm-up task failed", zap.String("task", name), zap.Error(err))
				return
			}
			succeeded.Add(1)
			c.Logger.Debug("Warm-up task done", zap.String("task", name))
		})
	}
	p.Wait()

	report := WarmUpReport{Succeeded: int(succeeded.Load()), Failed: int(failed.Load())}
	c.Logger.Info("Warm-up complete",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
	)
	return report
}

// Close releases resources in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
