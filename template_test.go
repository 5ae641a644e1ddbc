package dealrater_test

import (
	"testing"

	"github.com/fwojciec/dealrater"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuilder_Build(t *testing.T) {
	t.Parallel()

	t.Run("places built-ins before external templates", func(t *testing.T) {
		t.Parallel()

		registry := dealrater.NewRegistryBuilder().
			Add(dealrater.Template{Brand: "Custom"}).
			AddBuiltins(dealrater.Template{Brand: "Toyota"}, dealrater.Template{Brand: "Ford"}).
			Build()

		brands := make([]string, 0, registry.Len())
		for _, tmpl := range registry.Templates() {
			brands = append(brands, tmpl.Brand)
		}

		assert.Equal(t, []string{"Toyota", "Ford", "Custom"}, brands)
		assert.True(t, registry.Builtin(0))
		assert.True(t, registry.Builtin(1))
		assert.False(t, registry.Builtin(2))
	})

	t.Run("registry is not affected by later builder changes", func(t *testing.T) {
		t.Parallel()

		builder := dealrater.NewRegistryBuilder().AddBuiltins(dealrater.Template{Brand: "Toyota"})
		registry := builder.Build()
		builder.Add(dealrater.Template{Brand: "Late"})

		assert.Equal(t, 1, registry.Len())
	})

	t.Run("Templates returns a copy", func(t *testing.T) {
		t.Parallel()

		registry := dealrater.NewRegistryBuilder().AddBuiltins(dealrater.Template{Brand: "Toyota"}).Build()

		templates := registry.Templates()
		templates[0].Brand = "Mutated"

		assert.Equal(t, "Toyota", registry.Templates()[0].Brand)
	})

	t.Run("same inputs produce the same order", func(t *testing.T) {
		t.Parallel()

		build := func() []dealrater.Template {
			return dealrater.NewRegistryBuilder().
				AddBuiltins(dealrater.Template{Brand: "A"}, dealrater.Template{Brand: "B"}).
				Add(dealrater.Template{Brand: "C"}).
				Build().
				Templates()
		}

		assert.Equal(t, build(), build())
	})
}

func TestRegistry_Find(t *testing.T) {
	t.Parallel()

	registry := dealrater.NewRegistryBuilder().
		AddBuiltins(dealrater.Template{Brand: "Kia", Container: "div.builtin"}).
		Add(dealrater.Template{Brand: "Kia", Container: "div.external"}).
		Build()

	t.Run("returns first template with brand", func(t *testing.T) {
		t.Parallel()

		tmpl, err := registry.Find("Kia")

		require.NoError(t, err)
		assert.Equal(t, "div.builtin", tmpl.Container)
	})

	t.Run("returns ENOTFOUND for unknown brand", func(t *testing.T) {
		t.Parallel()

		_, err := registry.Find("Lada")

		require.Error(t, err)
		assert.Equal(t, dealrater.ENOTFOUND, dealrater.ErrorCode(err))
	})
}
