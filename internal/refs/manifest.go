package refs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/jamie8johnson/cqs/internal/model"
)

const manifestFile = "manifest.toml"

// manifestRecord is the on-disk shape of model.Reference. A second,
// independent TOML codec (BurntSushi/toml rather than the
// pelletier/go-toml/v2 used for docs/notes.toml and .cqs.toml) so a
// malformed project config can never corrupt reference loading and vice
// versa.
type manifestRecord struct {
	Name      string    `toml:"name"`
	Path      string    `toml:"path"`
	Weight    float64   `toml:"weight"`
	StorePath string    `toml:"store_path"`
	CreatedAt time.Time `toml:"created_at"`
}

func loadManifest(path string) (*model.Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cqserr.New(cqserr.NotFound, "refs.loadManifest", err)
	}
	var rec manifestRecord
	if _, err := toml.Decode(string(data), &rec); err != nil {
		return nil, cqserr.New(cqserr.ParseError, "refs.loadManifest", err)
	}
	return &model.Reference{
		Name: rec.Name, Path: rec.Path, Weight: rec.Weight,
		StorePath: rec.StorePath, CreatedAt: rec.CreatedAt,
	}, nil
}

func saveManifest(path string, ref *model.Reference) error {
	rec := manifestRecord{
		Name: ref.Name, Path: ref.Path, Weight: ref.Weight,
		StorePath: ref.StorePath, CreatedAt: ref.CreatedAt,
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(rec); err != nil {
		return cqserr.New(cqserr.Unknown, "refs.saveManifest", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o644); err != nil {
		return cqserr.New(cqserr.Unknown, "refs.saveManifest", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return cqserr.New(cqserr.Unknown, "refs.saveManifest", err)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return cqserr.New(cqserr.InvalidInput, "refs.validateName", fmt.Errorf("reference name must not be empty"))
	}
	for _, r := range name {
		if r == filepath.Separator || r == '/' || r == 0 {
			return cqserr.New(cqserr.InvalidInput, "refs.validateName",
				fmt.Errorf("reference name %q must not contain path separators or null bytes", name))
		}
	}
	return nil
}
