package goquery

import (
	"context"

	"github.com/fwojciec/dealrater"
)

// builtinTemplates lists the dealer and marketplace layouts supported out of
// the box. Order matters: the first template whose container matches wins.
var builtinTemplates = []dealrater.Template{
	{
		Brand:     "Toyota",
		Container: ".standard-inventory",
		Title:     ".vehiclebox-title h2",
		Price:     ".vehiclebox-msrp",
		Image:     ".vehiclebox-image img",
		Link:      "a",
	},
	{
		Brand:     "Dodge Chrysler Jeep",
		Container: ".vehicle-card",
		Title:     ".title-wrap .title",
		Price:     ".price-wrap .price",
		Image:     ".vehicle-img",
		Link:      "a",
	},
	{
		Brand:     "Ford",
		Container: "div.vehicle-info",
		Title:     ".vehicle-title",
		Price:     ".vehicle-price",
		Image:     "img.vehicle-image",
		Link:      "a",
	},
	{
		Brand:     "Honda",
		Container: "div.inventory-listing",
		Title:     ".inventory-title",
		Price:     ".inventory-price",
		Image:     ".inventory-image img",
		Link:      "a",
	},
	{
		Brand:     "Chevrolet",
		Container: "div.vehicle-card-vdp",
		Title:     ".vehicle-card-title",
		Price:     ".vehicle-card-price",
		Image:     ".vehicle-card-photo img",
		Link:      "a",
	},
	{
		Brand:     "Nissan",
		Container: "div.vehicle-listing",
		Title:     ".vehicle-name",
		Price:     ".vehicle-price",
		Image:     ".vehicle-image img",
		Link:      "a",
	},
	{
		Brand:     "Subaru",
		Container: "div.inventory-container",
		Title:     ".inventory-title",
		Price:     ".inventory-price",
		Image:     ".inventory-photo img",
		Link:      "a",
	},
	{
		Brand:     "Kia",
		Container: "div.vehicle-info-container",
		Title:     ".vehicle-name",
		Price:     ".vehicle-price",
		Image:     "img.vehicle-image",
		Link:      "a",
	},
	{
		Brand:     "CarMax",
		Container: ".scct--car-tile",
		Title:     ".scct--make-model-info",
		Price:     ".scct--price-miles-info--price",
		Image:     ".scct--image-gallery__image",
		Link:      ".scct--make-model-info-link",
	},
	{
		Brand:     "Edmunds",
		Container: ".usurp-inventory-card",
		Title:     ".size-16.text-cool-gray-10",
		Price:     ".heading-3",
		Image:     ".usurp-inventory-card-photo-image img",
		Link:      ".usurp-inventory-card-vdp-link",
	},
}

// BuiltinTemplates returns the built-in templates in registration order.
func BuiltinTemplates() []dealrater.Template {
	out := make([]dealrater.Template, len(builtinTemplates))
	copy(out, builtinTemplates)
	return out
}

// NewRegistry returns a registry of the built-in templates followed by extra.
func NewRegistry(extra ...dealrater.Template) *dealrater.Registry {
	return dealrater.NewRegistryBuilder().
		AddBuiltins(BuiltinTemplates()...).
		Add(extra...).
		Build()
}

// LoadRegistry returns a registry of the built-in templates followed by the
// templates read from source. A nil source adds nothing.
func LoadRegistry(ctx context.Context, source dealrater.TemplateSource) (*dealrater.Registry, error) {
	if source == nil {
		return NewRegistry(), nil
	}
	extra, err := source.LoadTemplates(ctx)
	if err != nil {
		return nil, err
	}
	return NewRegistry(extra...), nil
}
