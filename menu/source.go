package menu

import (
	"context"

	"servecart/models"

	"github.com/pkg/errors"
)

var ErrDuplicateItem = errors.New("menu item already exists")

// Source is a read-only catalog.
type Source interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Get(ctx context.Context, id string) (models.MenuItem, error)
}

// Repository is a writable catalog.
type Repository interface {
	Source
	Create(ctx context.Context, item models.MenuItem) error
	Update(ctx context.Context, item models.MenuItem) error
	Delete(ctx context.Context, id string) error
	SetImage(ctx context.Context, id, image, thumbnail string) error
}

// Categories lists the item categories in first-seen order.
func Categories(items []models.MenuItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out
}

func InCategory(items []models.MenuItem, category string) []models.MenuItem {
	if category == "" {
		return items
	}
	out := make([]models.MenuItem, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}
