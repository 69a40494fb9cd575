package genai

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"pescasolic/pkg/domain"
)

// PromptDef is one entry of the YAML-loaded prompt registry: a named prompt
// bound to a response schema, keyed by operation name ("classify",
// "evaluate") or by document classification ("extract.CNIS").
type PromptDef struct {
	Key              string `yaml:"key"`
	Description      string `yaml:"description,omitempty"`
	SystemPrompt     string `yaml:"system_prompt,omitempty"`
	UserPrompt       string `yaml:"user_prompt"`
	ResponseSchema   string `yaml:"response_schema"`
	ResponseMimeType string `yaml:"response_mime_type,omitempty"`
}

type promptFile struct {
	Constants map[string]string `yaml:"constants"`
	Prompts   []PromptDef        `yaml:"prompts"`
}

// PromptRegistry holds every loaded prompt keyed by PromptDef.Key, validated
// at load time against the static schema registry (see schemas.go). Loaded
// once and cached for the process lifetime; reloading requires a restart.
type PromptRegistry struct {
	byKey map[string]PromptDef
}

var (
	registryOnce sync.Once
	registry     *PromptRegistry
	registryErr  error
)

// LoadPromptRegistry reads path exactly once per process and memoises the
// result; subsequent calls (even with a different path) return the cached
// registry or its load error.
func LoadPromptRegistry(path string) (*PromptRegistry, error) {
	registryOnce.Do(func() {
		registry, registryErr = loadPromptRegistry(path)
	})
	return registry, registryErr
}

func loadPromptRegistry(path string) (*PromptRegistry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt registry %s: %w", path, err)
	}

	var file promptFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse prompt registry %s: %w", path, err)
	}

	byKey := make(map[string]PromptDef, len(file.Prompts))
	for _, p := range file.Prompts {
		if p.Key == "" {
			return nil, fmt.Errorf("prompt registry %s: entry with empty key", path)
		}
		if p.UserPrompt == "" {
			return nil, fmt.Errorf("prompt registry %s: prompt %q has no user_prompt", path, p.Key)
		}
		if _, ok := schemaRegistry[p.ResponseSchema]; !ok {
			return nil, fmt.Errorf("prompt registry %s: prompt %q references unknown response_schema %q", path, p.Key, p.ResponseSchema)
		}
		if p.ResponseMimeType == "" {
			p.ResponseMimeType = "application/json"
		}
		p.SystemPrompt = substitute(p.SystemPrompt, file.Constants)
		p.UserPrompt = substitute(p.UserPrompt, file.Constants)
		byKey[p.Key] = p
	}

	if err := validateRequiredKeys(byKey); err != nil {
		return nil, err
	}

	return &PromptRegistry{byKey: byKey}, nil
}

func substitute(body string, constants map[string]string) string {
	for name, value := range constants {
		body = strings.ReplaceAll(body, "${"+name+"}", value)
	}
	return body
}

func validateRequiredKeys(byKey map[string]PromptDef) error {
	if _, ok := byKey["classify"]; !ok {
		return fmt.Errorf("prompt registry missing required key %q", "classify")
	}
	if _, ok := byKey["evaluate"]; !ok {
		return fmt.Errorf("prompt registry missing required key %q", "evaluate")
	}
	for c := range validExtractClassifications {
		key := extractKey(c)
		if _, ok := byKey[key]; !ok {
			return fmt.Errorf("prompt registry missing required key %q", key)
		}
	}
	return nil
}

var validExtractClassifications = map[domain.DocumentClassification]bool{
	domain.ClassCertificadoDeRegularidade: true,
	domain.ClassCAEPF:                     true,
	domain.ClassDeclaracaoDeResidencia:    true,
	domain.ClassCNIS:                      true,
	domain.ClassTermoDeRepresentacao:      true,
	domain.ClassProcuracao:                true,
	domain.ClassGPSEComprovante:           true,
	domain.ClassBiometria:                 true,
	domain.ClassComprovanteResidencia:     true,
	domain.ClassDocumentoIdentidade:       true,
	domain.ClassCIN:                       true,
	domain.ClassCPF:                       true,
	domain.ClassREAP:                      true,
	domain.ClassOutro:                     true,
}

func extractKey(c domain.DocumentClassification) string {
	return "extract." + string(c)
}

func (r *PromptRegistry) classify() PromptDef {
	return r.byKey["classify"]
}

func (r *PromptRegistry) extract(classification domain.DocumentClassification) PromptDef {
	if p, ok := r.byKey[extractKey(classification)]; ok {
		return p
	}
	return r.byKey[extractKey(domain.ClassOutro)]
}

func (r *PromptRegistry) evaluate() PromptDef {
	return r.byKey["evaluate"]
}
