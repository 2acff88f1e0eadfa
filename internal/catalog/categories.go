package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CategoryID derives the stable id of a category label.
func CategoryID(label string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), "-")
}

// AddCategory stores a category unless one with the same id exists, in which
// case the existing one is returned.
func (c *Catalog) AddCategory(ctx context.Context, label string) (models.Category, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.Category{}, ErrEmptyLabel
	}

	cat := models.Category{ID: CategoryID(label), Label: label}
	docs, err := c.store.Query(ctx, CategoriesCollection, repository.Query{
		Filters: []repository.Filter{repository.Where("id", cat.ID)},
		Limit:   1,
	})
	if err != nil {
		return models.Category{}, fmt.Errorf("lookup category %s: %w", cat.ID, err)
	}
	if len(docs) > 0 {
		var existing models.Category
		if err := docs[0].Decode(&existing); err != nil {
			return models.Category{}, err
		}
		return existing, nil
	}

	if c.validator != nil {
		raw, err := json.Marshal(cat)
		if err != nil {
			return models.Category{}, err
		}
		if err := c.validator.Validate(ctx, "category", raw); err != nil {
			return models.Category{}, err
		}
	}

	if _, err := c.store.Create(ctx, CategoriesCollection, cat); err != nil {
		return models.Category{}, fmt.Errorf("create category %s: %w", cat.ID, err)
	}
	c.logger.Info("category added", slog.String("id", cat.ID))
	return cat, nil
}

// ListCategories returns all categories ordered by label.
func (c *Catalog) ListCategories(ctx context.Context) ([]models.Category, error) {
	docs, err := c.store.Query(ctx, CategoriesCollection, repository.Query{OrderBy: "label"})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]models.Category, 0, len(docs))
	for _, d := range docs {
		var cat models.Category
		if err := d.Decode(&cat); err != nil {
			c.logger.Warn("skipping undecodable category", slog.String("id", d.ID), "err", err)
			continue
		}
		out = append(out, cat)
	}
	return out, nil
}
