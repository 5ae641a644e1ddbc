package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/dealrater"
	"github.com/fwojciec/dealrater/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTemplateFile_LoadTemplates(t *testing.T) {
	t.Parallel()

	t.Run("missing file yields no templates", func(t *testing.T) {
		t.Parallel()

		f := fs.NewTemplateFile(filepath.Join(t.TempDir(), "formats.json"))

		templates, err := f.LoadTemplates(context.Background())

		require.NoError(t, err)
		assert.Empty(t, templates)
	})

	t.Run("empty path yields no templates", func(t *testing.T) {
		t.Parallel()

		templates, err := fs.NewTemplateFile("").LoadTemplates(context.Background())

		require.NoError(t, err)
		assert.Empty(t, templates)
	})

	t.Run("reads JSON templates in file order", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "formats.json", `[
  {"brand": "Main Street Motors", "container": "article.car", "title": "h2", "price": ".cost", "image": "img", "link": "a"},
  {"brand": "Lakeside Auto", "container": ".unit", "title": ".name", "price": ".amount", "image": ".pic img", "link": ".more"}
]`)

		templates, err := fs.NewTemplateFile(path).LoadTemplates(context.Background())

		require.NoError(t, err)
		require.Len(t, templates, 2)
		assert.Equal(t, dealrater.Template{
			Brand:     "Main Street Motors",
			Container: "article.car",
			Title:     "h2",
			Price:     ".cost",
			Image:     "img",
			Link:      "a",
		}, templates[0])
		assert.Equal(t, "Lakeside Auto", templates[1].Brand)
	})

	t.Run("reads YAML templates", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "formats.yaml", `- brand: Main Street Motors
  container: article.car
  title: h2
  price: .cost
  image: img
  link: a
`)

		templates, err := fs.NewTemplateFile(path).LoadTemplates(context.Background())

		require.NoError(t, err)
		require.Len(t, templates, 1)
		assert.Equal(t, "article.car", templates[0].Container)
		assert.Equal(t, ".cost", templates[0].Price)
	})

	t.Run("malformed file returns EINVALID", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "formats.json", `{"brand": `)

		_, err := fs.NewTemplateFile(path).LoadTemplates(context.Background())

		require.Error(t, err)
		assert.Equal(t, dealrater.EINVALID, dealrater.ErrorCode(err))
	})
}
