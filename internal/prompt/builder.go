package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yaml
var templateFS embed.FS

type TemplateName string

const (
	TemplateShareLinks       TemplateName = "share_links.yaml"
	TemplateLocaleTranslator TemplateName = "locale_translator.yaml"
)

// Definition is the YAML document stored for each prompt.
type Definition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Preset      string `yaml:"preset"`
	System      string `yaml:"system"`
	Template    string `yaml:"template"`
}

// Prompt is a rendered template together with its generation hints.
type Prompt struct {
	Text   string
	Preset string
	System string
}

type compiled struct {
	def  Definition
	tmpl *template.Template
}

type PromptBuilder struct {
	mu        sync.RWMutex
	templates map[TemplateName]*compiled
}

var (
	defaultBuilderOnce sync.Once
	defaultBuilder     *PromptBuilder
)

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		templates: make(map[TemplateName]*compiled),
	}
}

func DefaultPromptBuilder() *PromptBuilder {
	defaultBuilderOnce.Do(func() {
		defaultBuilder = NewPromptBuilder()
	})
	return defaultBuilder
}

func (pb *PromptBuilder) Render(name TemplateName, data any) (string, error) {
	c, err := pb.get(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// Build renders name and attaches the preset and system instruction it declares.
func (pb *PromptBuilder) Build(name TemplateName, data any) (Prompt, error) {
	c, err := pb.get(name)
	if err != nil {
		return Prompt{}, err
	}
	text, err := pb.Render(name, data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{Text: text, Preset: c.def.Preset, System: strings.TrimSpace(c.def.System)}, nil
}

// Preset returns the model preset declared by the template, e.g. "precise".
func (pb *PromptBuilder) Preset(name TemplateName) (string, error) {
	c, err := pb.get(name)
	if err != nil {
		return "", err
	}
	return c.def.Preset, nil
}

func (pb *PromptBuilder) get(name TemplateName) (*compiled, error) {
	pb.mu.RLock()
	if c, ok := pb.templates[name]; ok {
		pb.mu.RUnlock()
		return c, nil
	}
	pb.mu.RUnlock()

	content, err := templateFS.ReadFile(path.Join("templates", string(name)))
	if err != nil {
		return nil, fmt.Errorf("load prompt template %s: %w", name, err)
	}

	var def Definition
	if err := yaml.Unmarshal(content, &def); err != nil {
		return nil, fmt.Errorf("decode prompt template %s: %w", name, err)
	}
	if strings.TrimSpace(def.Template) == "" {
		return nil, fmt.Errorf("prompt template %s has no body", name)
	}

	tmpl, err := template.New(string(name)).Option("missingkey=error").Parse(def.Template)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	c := &compiled{def: def, tmpl: tmpl}

	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.templates[name] = c

	return c, nil
}
