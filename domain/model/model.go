// Package model defines local inference model identity and selection.
//
// Model files carry no metadata beyond their file name, so selection works on
// normalized name tokens: a requested model id or display name is reduced to
// a key and matched against the keys of the files discovered on disk.
package model

import (
	"regexp"
	"strings"
)

// LocalModel describes a model file discovered under the model root.
// It is a snapshot of the directory scan, not a persisted entity.
type LocalModel struct {
	key       string
	path      string
	sizeBytes int64
}

// NewLocalModel creates a LocalModel.
func NewLocalModel(key, path string, sizeBytes int64) LocalModel {
	return LocalModel{key: key, path: path, sizeBytes: sizeBytes}
}

// Key returns the normalized file stem.
func (m LocalModel) Key() string { return m.key }

// Path returns the absolute file path.
func (m LocalModel) Path() string { return m.path }

// SizeBytes returns the file size.
func (m LocalModel) SizeBytes() int64 { return m.sizeBytes }

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize reduces an identifier to its key form: lowercase, with runs of
// non-alphanumeric characters collapsed to single dashes.
func Normalize(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
}

// Strategy identifies which rule of the selection chain matched a model.
type Strategy string

// Selection strategies, in evaluation order.
const (
	StrategyExactKey     Strategy = "exact_key"
	StrategyAliasKey     Strategy = "alias_key"
	StrategySubstringKey Strategy = "substring_key"
	StrategyNameTokens   Strategy = "name_tokens"
	StrategyDefaultFirst Strategy = "default_first"
)

// Match is the result of resolving a selection against discovered models.
type Match struct {
	model    LocalModel
	strategy Strategy
}

// Model returns the matched model.
func (m Match) Model() LocalModel { return m.model }

// Strategy returns the rule that produced the match.
func (m Match) Strategy() Strategy { return m.strategy }

// Select resolves a requested model id and display name against the
// discovered models, which must be in deterministic (sorted path) order.
// Aliases maps canonical model keys to additional acceptable tokens.
//
// The strategies are tried in fixed priority order, and the id's strategies
// are exhausted before the display name is consulted at all: exact id key,
// alias table tokens for the id, substring containment of the id, then the
// same exact/substring pair for the name, then the name's individual tokens.
// Only when no identifier was supplied at all does the first discovered model
// win.
func Select(models []LocalModel, requestedID, requestedName string, aliases map[string][]string) (Match, bool) {
	if len(models) == 0 {
		return Match{}, false
	}

	byKey := make(map[string]LocalModel, len(models))
	for _, m := range models {
		if _, dup := byKey[m.key]; !dup {
			byKey[m.key] = m
		}
	}

	id := Normalize(requestedID)
	name := Normalize(requestedName)

	if id == "" && name == "" {
		return Match{model: models[0], strategy: StrategyDefaultFirst}, true
	}

	if id != "" {
		if m, ok := byKey[id]; ok {
			return Match{model: m, strategy: StrategyExactKey}, true
		}
		for _, token := range aliases[id] {
			if m, ok := matchToken(token, byKey, models); ok {
				return Match{model: m, strategy: StrategyAliasKey}, true
			}
		}
		if m, ok := matchSubstring(id, models); ok {
			return Match{model: m, strategy: StrategySubstringKey}, true
		}
	}

	if name != "" {
		if m, ok := byKey[name]; ok {
			return Match{model: m, strategy: StrategyExactKey}, true
		}
		if m, ok := matchSubstring(name, models); ok {
			return Match{model: m, strategy: StrategySubstringKey}, true
		}
		for _, token := range strings.Split(name, "-") {
			if token == "" {
				continue
			}
			if m, ok := matchToken(token, byKey, models); ok {
				return Match{model: m, strategy: StrategyNameTokens}, true
			}
		}
	}

	return Match{}, false
}

func matchSubstring(key string, models []LocalModel) (LocalModel, bool) {
	for _, m := range models {
		if strings.Contains(m.key, key) {
			return m, true
		}
	}
	return LocalModel{}, false
}

func matchToken(token string, byKey map[string]LocalModel, models []LocalModel) (LocalModel, bool) {
	if token == "" {
		return LocalModel{}, false
	}
	if m, ok := byKey[token]; ok {
		return m, true
	}
	for _, m := range models {
		if strings.Contains(m.key, token) {
			return m, true
		}
	}
	return LocalModel{}, false
}
