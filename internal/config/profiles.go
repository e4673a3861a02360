package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelProfile describes retrieval behavior for one model family: a display
// label, the retrieval depth used when a request leaves topK unset, and extra
// alias tokens accepted when resolving the family to a local model file.
type ModelProfile struct {
	Label       string   `yaml:"label"`
	DefaultTopK int      `yaml:"default_top_k"`
	Aliases     []string `yaml:"aliases"`
}

// ModelProfiles maps normalized model keys to their profiles.
type ModelProfiles map[string]ModelProfile

// DefaultModelProfiles returns the built-in model profiles.
func DefaultModelProfiles() ModelProfiles {
	return ModelProfiles{
		"llama-3-2-3b":        {Label: "Balanced", DefaultTopK: 5, Aliases: []string{"tinyllama", "llama"}},
		"phi-3-5-mini":        {Label: "Concise", DefaultTopK: 4, Aliases: []string{"phi-2", "phi2", "phi"}},
		"qwen-2-5-3b":         {Label: "Multilingual", DefaultTopK: 5, Aliases: []string{"qwen2", "qwen"}},
		"mistral-7b-instruct": {Label: "Deep context", DefaultTopK: 7, Aliases: []string{"mistral"}},
		"gemma-2-2b":          {Label: "Fast", DefaultTopK: 4, Aliases: []string{"gemma"}},
	}
}

// LoadModelProfiles reads model profiles from a YAML file and merges them over
// the built-in defaults. An empty path returns the defaults unchanged.
func LoadModelProfiles(path string) (ModelProfiles, error) {
	profiles := DefaultModelProfiles()
	if path == "" {
		return profiles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model profiles: %w", err)
	}

	var loaded ModelProfiles
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse model profiles: %w", err)
	}

	for key, profile := range loaded {
		profiles[key] = profile
	}
	return profiles, nil
}

// TopKFor returns the default retrieval depth for the given normalized model
// key, or the fallback when the key has no profile.
func (p ModelProfiles) TopKFor(key string, fallback int) int {
	if profile, ok := p[key]; ok && profile.DefaultTopK > 0 {
		return profile.DefaultTopK
	}
	return fallback
}

// AliasesFor returns the alias tokens for the given normalized model key.
func (p ModelProfiles) AliasesFor(key string) []string {
	profile, ok := p[key]
	if !ok {
		return nil
	}
	aliases := make([]string, len(profile.Aliases))
	copy(aliases, profile.Aliases)
	return aliases
}

// AliasTable flattens the profiles into a key → aliases map for model
// resolution.
func (p ModelProfiles) AliasTable() map[string][]string {
	table := make(map[string][]string, len(p))
	for key, profile := range p {
		if len(profile.Aliases) == 0 {
			continue
		}
		aliases := make([]string, len(profile.Aliases))
		copy(aliases, profile.Aliases)
		table[key] = aliases
	}
	return table
}
