package runtime

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ragline/ragline/domain/model"
)

// ModelExtension is the file extension identifying local model files.
const ModelExtension = ".gguf"

// Resolver discovers GGUF files under a model root and resolves model
// selections against them.
type Resolver struct {
	modelDir string
	aliases  map[string][]string
}

// NewResolver creates a Resolver. The alias table maps canonical model keys
// to additional acceptable tokens.
func NewResolver(modelDir string, aliases map[string][]string) *Resolver {
	return &Resolver{modelDir: modelDir, aliases: aliases}
}

// Discover scans the model directory recursively and returns every GGUF file
// in sorted path order. A missing model directory is not an error; it simply
// yields no models.
func (r *Resolver) Discover() ([]model.LocalModel, error) {
	var models []model.LocalModel

	err := filepath.WalkDir(r.modelDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if os.IsNotExist(walkErr) {
				return filepath.SkipAll
			}
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ModelExtension) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		models = append(models, model.NewLocalModel(model.Normalize(stem), path, info.Size()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].Path() < models[j].Path()
	})
	return models, nil
}

// Resolve maps a requested model id and display name to a discovered file.
// Returns ErrNoModelsFound when the directory holds no GGUF files at all,
// or a NoCompatibleModelError naming the available files when identifiers
// were supplied but nothing matched.
func (r *Resolver) Resolve(requestedID, requestedName string) (model.Match, error) {
	models, err := r.Discover()
	if err != nil {
		return model.Match{}, err
	}
	if len(models) == 0 {
		return model.Match{}, ErrNoModelsFound
	}

	match, ok := model.Select(models, requestedID, requestedName, r.aliases)
	if !ok {
		available := make([]string, len(models))
		for i, m := range models {
			available[i] = filepath.Base(m.Path())
		}
		return model.Match{}, NewNoCompatibleModelError(requestedID, requestedName, available)
	}
	return match, nil
}
