package dealrater

import "context"

// Template is a named set of CSS selectors describing how one dealer site
// marks up a listing container and its fields. Selectors other than Container
// are evaluated relative to each matched container.
type Template struct {
	Brand     string `json:"brand" yaml:"brand"`
	Container string `json:"container" yaml:"container"`
	Title     string `json:"title" yaml:"title"`
	Price     string `json:"price" yaml:"price"`
	Image     string `json:"image" yaml:"image"`
	Link      string `json:"link" yaml:"link"`
}

// TemplateSource loads externally defined templates.
type TemplateSource interface {
	// LoadTemplates returns the templates defined by the source in file order.
	// A source that does not exist yields no templates and no error.
	LoadTemplates(ctx context.Context) ([]Template, error)
}

// Registry is an ordered, read-only collection of templates.
// Order is registration order and decides which template wins
// when a page matches more than one.
type Registry struct {
	templates []Template
	builtins  int
}

// Templates returns a copy of the registered templates in order.
func (r *Registry) Templates() []Template {
	out := make([]Template, len(r.templates))
	copy(out, r.templates)
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.templates)
}

// Builtin reports whether the template at index i was registered as a built-in.
func (r *Registry) Builtin(i int) bool {
	return i >= 0 && i < r.builtins
}

// Find returns the first template registered under brand.
// Returns ENOTFOUND if no template has that brand.
func (r *Registry) Find(brand string) (Template, error) {
	for _, t := range r.templates {
		if t.Brand == brand {
			return t, nil
		}
	}
	return Template{}, Errorf(ENOTFOUND, "template %q not found", brand)
}

// RegistryBuilder assembles a Registry. It is used once at startup;
// the built Registry never changes afterwards.
type RegistryBuilder struct {
	builtins []Template
	external []Template
}

// NewRegistryBuilder returns an empty RegistryBuilder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

// AddBuiltins appends built-in templates. Built-ins always precede
// external templates regardless of call order.
func (b *RegistryBuilder) AddBuiltins(templates ...Template) *RegistryBuilder {
	b.builtins = append(b.builtins, templates...)
	return b
}

// Add appends externally supplied templates after the built-ins.
func (b *RegistryBuilder) Add(templates ...Template) *RegistryBuilder {
	b.external = append(b.external, templates...)
	return b
}

// Build returns a Registry holding a snapshot of the added templates.
func (b *RegistryBuilder) Build() *Registry {
	templates := make([]Template, 0, len(b.builtins)+len(b.external))
	templates = append(templates, b.builtins...)
	templates = append(templates, b.external...)
	return &Registry{templates: templates, builtins: len(b.builtins)}
}
