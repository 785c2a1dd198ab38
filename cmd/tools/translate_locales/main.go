package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/kapu/digital-card-go/internal/config"
	"github.com/kapu/digital-card-go/internal/i18n"
	"github.com/kapu/digital-card-go/internal/prompt"
	"github.com/kapu/digital-card-go/internal/service/ai"
)

const (
	defaultLocaleDir   = "internal/i18n/locales"
	defaultGeminiModel = "gemini-2.5-pro"
	maxAttempts        = 4
	backoffBase        = 2 * time.Second
)

func main() {
	var localeDir string
	var target string
	var force bool
	var dryRun bool
	var useOpenAI bool
	var generationModel string

	flag.StringVar(&localeDir, "dir", defaultLocaleDir, "directory holding messages.<lang>.toml")
	flag.StringVar(&target, "target", "", "language to fill (defaults to LOCALE_SECONDARY)")
	flag.BoolVar(&force, "force", false, "retranslate every key, not only missing ones")
	flag.BoolVar(&dryRun, "dry-run", false, "print the merged table instead of writing it")
	flag.BoolVar(&useOpenAI, "use-openai", false, "enable OpenAI fallback for translation")
	flag.StringVar(&generationModel, "model", defaultGeminiModel, "Gemini model to use")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		logger.Fatal("GEMINI_API_KEY is not configured")
	}

	primary := i18n.Language(cfg.Locale.Primary)
	targetLang := i18n.Language(strings.TrimSpace(target))
	if targetLang == "" {
		targetLang = i18n.Language(cfg.Locale.Secondary)
	}
	if targetLang == primary {
		logger.Fatal("target must differ from the primary language", zap.String("target", string(targetLang)))
	}

	loc, err := i18n.Load(os.DirFS(localeDir), ".", primary, targetLang)
	if err != nil {
		logger.Fatal("failed to load locales", zap.String("dir", localeDir), zap.Error(err))
	}

	targetPath := filepath.Join(localeDir, fmt.Sprintf("messages.%s.toml", targetLang))
	existing, err := readTable(targetPath)
	if err != nil {
		logger.Fatal("failed to read target table", zap.String("path", targetPath), zap.Error(err))
	}

	entries := pendingEntries(loc, targetLang, force)
	if len(entries) == 0 {
		logger.Info("nothing to translate", zap.String("target", string(targetLang)))
		return
	}

	promptText, err := prompt.BuildLocaleTranslatorPrompt(prompt.LocaleTranslatorPromptVars{
		SourceLanguage: loc.Text(primary, i18n.LanguageNameKey),
		TargetLanguage: loc.Text(targetLang, i18n.LanguageNameKey),
		Entries:        entries,
	})
	if err != nil {
		logger.Fatal("failed to build prompt", zap.Error(err))
	}

	ctx := context.Background()
	mm, err := ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:       cfg.Gemini.APIKey,
		DefaultGeminiModel: generationModel,
		OpenAIAPIKey:       cfg.OpenAI.APIKey,
		DefaultOpenAIModel: cfg.OpenAI.Model,
		EnableFallback:     useOpenAI && cfg.OpenAI.APIKey != "",
	}, logger)
	if err != nil {
		logger.Fatal("failed to create model manager", zap.Error(err))
	}

	logger.Info("starting translation run",
		zap.String("source", string(primary)),
		zap.String("target", string(targetLang)),
		zap.Int("entries", len(entries)),
	)

	translated, err := translateWithRetry(ctx, mm, promptText, logger)
	if err != nil {
		logger.Fatal("translation failed", zap.Error(err))
	}

	merged, applied := merge(existing, entries, translated)
	for _, entry := range entries {
		if _, ok := translated[entry.Key]; !ok {
			logger.Warn("key missing from response", zap.String("key", entry.Key))
		}
	}

	if dryRun {
		if err := toml.NewEncoder(os.Stdout).Encode(merged); err != nil {
			logger.Fatal("failed to encode table", zap.Error(err))
		}
		return
	}

	if err := writeTable(targetPath, merged); err != nil {
		logger.Fatal("failed to write output", zap.Error(err))
	}

	logger.Info("translation completed", zap.Int("applied", applied), zap.String("output", targetPath))
}

// pendingEntries lists the source text for keys the target lacks, or every key when force is set.
func pendingEntries(loc *i18n.Localizer, target i18n.Language, force bool) []prompt.LocaleEntry {
	keys := loc.MissingKeys(target)
	if force {
		keys = loc.Keys()
	}
	sort.Strings(keys)

	entries := make([]prompt.LocaleEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, prompt.LocaleEntry{Key: key, Text: loc.Text(loc.Primary(), key)})
	}
	return entries
}

// merge copies translations for requested keys into existing. Keys the model
// invented and blank values are dropped.
func merge(existing map[string]string, requested []prompt.LocaleEntry, translated map[string]string) (map[string]string, int) {
	out := make(map[string]string, len(existing)+len(requested))
	for k, v := range existing {
		out[k] = v
	}

	applied := 0
	for _, entry := range requested {
		value := strings.TrimSpace(translated[entry.Key])
		if value == "" {
			continue
		}
		out[entry.Key] = value
		applied++
	}
	return out, applied
}

func translateWithRetry(ctx context.Context, mm *ai.ModelManager, promptText string, logger *zap.Logger) (map[string]string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var translated map[string]string
		_, err := mm.GenerateJSON(ctx, promptText, ai.PresetPrecise, &translated, nil)
		if err == nil {
			return translated, nil
		}

		lastErr = err
		if !isRecoverableError(err) || attempt == maxAttempts {
			break
		}

		sleep := backoffBase * time.Duration(attempt)
		logger.Warn("retrying translation",
			zap.Int("attempt", attempt),
			zap.Duration("sleep", sleep),
			zap.Error(err),
		)
		time.Sleep(sleep)
	}

	return nil, lastErr
}

func isRecoverableError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	for _, marker := range []string{"503", "UNAVAILABLE", "overloaded", "temporarily unavailable"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func readTable(path string) (map[string]string, error) {
	table := map[string]string{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return table, nil
	}
	if _, err := toml.DecodeFile(path, &table); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return table, nil
}

func writeTable(path string, table map[string]string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(table); err != nil {
		return fmt.Errorf("encode table: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
