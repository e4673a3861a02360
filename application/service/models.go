package service

import (
	"path/filepath"

	"github.com/ragline/ragline/infrastructure/runtime"
)

// ModelInfo describes one discovered GGUF file.
type ModelInfo struct {
	key       string
	fileName  string
	path      string
	sizeBytes int64
	loaded    bool
}

// Key returns the normalized model key.
func (m ModelInfo) Key() string { return m.key }

// FileName returns the model file's base name.
func (m ModelInfo) FileName() string { return m.fileName }

// Path returns the absolute file path.
func (m ModelInfo) Path() string { return m.path }

// SizeBytes returns the file size.
func (m ModelInfo) SizeBytes() int64 { return m.sizeBytes }

// Loaded reports whether this file backs the currently cached runtime.
func (m ModelInfo) Loaded() bool { return m.loaded }

// ModelService lists discovered models and their load state.
type ModelService struct {
	resolver *runtime.Resolver
	cache    *runtime.Cache
}

// NewModelService creates a ModelService.
func NewModelService(resolver *runtime.Resolver, cache *runtime.Cache) *ModelService {
	return &ModelService{resolver: resolver, cache: cache}
}

// List returns every discovered model in sorted path order.
func (s *ModelService) List() ([]ModelInfo, error) {
	models, err := s.resolver.Discover()
	if err != nil {
		return nil, err
	}

	infos := make([]ModelInfo, len(models))
	for i, m := range models {
		infos[i] = ModelInfo{
			key:       m.Key(),
			fileName:  filepath.Base(m.Path()),
			path:      m.Path(),
			sizeBytes: m.SizeBytes(),
			loaded:    s.cache.IsLoaded(m.Path()),
		}
	}
	return infos, nil
}
