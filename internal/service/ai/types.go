package ai

// ModelPreset represents the model usage preset
type ModelPreset string

const (
	PresetCreative ModelPreset = "creative"
	PresetPrecise  ModelPreset = "precise"
	PresetBalanced ModelPreset = "balanced"
)

// ParsePreset maps a template's preset name to a ModelPreset, defaulting to balanced.
func ParsePreset(name string) ModelPreset {
	switch ModelPreset(name) {
	case PresetCreative, PresetPrecise, PresetBalanced:
		return ModelPreset(name)
	default:
		return PresetBalanced
	}
}

// ModelConfig holds model configuration
type ModelConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// OpenAIConfig holds OpenAI-specific configuration
type OpenAIConfig struct {
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// GenerateMetadata contains metadata about the generation
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
	PromptTokens int64
	OutputTokens int64
}

// GenerateOptions holds options for AI generation
type GenerateOptions struct {
	Model             string
	JSONMode          bool
	SystemInstruction string
	Overrides         *ModelConfig
}

func GetPresetConfig(preset ModelPreset) ModelConfig {
	switch preset {
	case PresetCreative:
		return ModelConfig{Temperature: 0.7, TopP: 0.95, TopK: 40, MaxOutputTokens: 2048}
	case PresetPrecise:
		return ModelConfig{Temperature: 0.1, TopP: 0.9, TopK: 20, MaxOutputTokens: 1024}
	case PresetBalanced:
		return ModelConfig{Temperature: 0.3, TopP: 0.95, TopK: 40, MaxOutputTokens: 2048}
	default:
		return GetPresetConfig(PresetBalanced)
	}
}

func GetOpenAIPresetConfig(preset ModelPreset) OpenAIConfig {
	switch preset {
	case PresetCreative:
		return OpenAIConfig{Temperature: 0.7, MaxTokens: 2048, TopP: 0.95}
	case PresetPrecise:
		return OpenAIConfig{Temperature: 0.1, MaxTokens: 1024, TopP: 0.9}
	case PresetBalanced:
		return OpenAIConfig{Temperature: 0.3, MaxTokens: 2048, TopP: 0.95}
	default:
		return GetOpenAIPresetConfig(PresetBalanced)
	}
}
