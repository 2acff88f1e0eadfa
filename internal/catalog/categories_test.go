package catalog_test

import (
	"context"
	"testing"

	"github.com/garnizeh/jobboard/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryID(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Engineering", "engineering"},
		{"Data Science", "data-science"},
		{"  Customer \t  Success ", "customer-success"},
		{"UX/UI", "ux/ui"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, catalog.CategoryID(tt.label), tt.label)
	}
}

func TestAddCategory(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.AddCategory(ctx, "   ")
	assert.ErrorIs(t, err, catalog.ErrEmptyLabel)

	cat, err := c.AddCategory(ctx, "  Data Science ")
	require.NoError(t, err)
	assert.Equal(t, "data-science", cat.ID)
	assert.Equal(t, "Data Science", cat.Label)

	// same id is deduplicated and the first label wins
	dup, err := c.AddCategory(ctx, "data   science")
	require.NoError(t, err)
	assert.Equal(t, "Data Science", dup.Label)

	_, err = c.AddCategory(ctx, "Design")
	require.NoError(t, err)

	list, err := c.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Data Science", list[0].Label)
	assert.Equal(t, "Design", list[1].Label)
}
