package menu

import (
	"context"
	"os"
	"strings"

	"servecart/models"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML catalog used to seed an empty database or to run
// without one.
type SeedFile struct {
	Items          []models.MenuItem      `yaml:"items"`
	PaymentMethods []models.PaymentMethod `yaml:"payment_methods"`
}

func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read seed file %s", path)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a seed document and validates every item.
func ParseSeed(data []byte) (*SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse seed file")
	}
	seen := make(map[string]bool, len(f.Items))
	for _, it := range f.Items {
		if err := it.Validate(); err != nil {
			return nil, err
		}
		if seen[it.ID] {
			return nil, errors.Wrapf(ErrDuplicateItem, "%q", it.ID)
		}
		seen[it.ID] = true
	}
	return &f, nil
}

// FileSource serves a fixed catalog from memory.
type FileSource struct {
	items []models.MenuItem
	byID  map[string]int
}

func NewFileSource(items []models.MenuItem) *FileSource {
	fs := &FileSource{items: items, byID: make(map[string]int, len(items))}
	for i, it := range items {
		fs.byID[it.ID] = i
	}
	return fs
}

func (f *FileSource) List(context.Context) ([]models.MenuItem, error) {
	out := make([]models.MenuItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *FileSource) Get(_ context.Context, id string) (models.MenuItem, error) {
	i, ok := f.byID[strings.TrimSpace(id)]
	if !ok {
		return models.MenuItem{}, errors.Wrapf(models.ErrItemNotFound, "%q", id)
	}
	return f.items[i], nil
}
