// Package fs provides file-based template loading and report output.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/dealrater"
	"gopkg.in/yaml.v3"
)

// Ensure TemplateFile implements dealrater.TemplateSource at compile time.
var _ dealrater.TemplateSource = (*TemplateFile)(nil)

// TemplateFile loads user-supplied templates from a JSON or YAML file.
// The file holds a list of template objects with the keys brand, container,
// title, price, image and link.
type TemplateFile struct {
	path string
}

// NewTemplateFile creates a TemplateFile reading from path.
func NewTemplateFile(path string) *TemplateFile {
	return &TemplateFile{path: path}
}

// Path returns the file location.
func (f *TemplateFile) Path() string {
	return f.path
}

// LoadTemplates reads the file. A missing file yields no templates and no
// error. Files ending in .yaml or .yml are parsed as YAML, anything else
// as JSON.
func (f *TemplateFile) LoadTemplates(ctx context.Context) ([]dealrater.Template, error) {
	if f.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	var templates []dealrater.Template
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &templates)
	default:
		err = json.Unmarshal(data, &templates)
	}
	if err != nil {
		return nil, dealrater.Errorf(dealrater.EINVALID, "invalid template file %s: %v", f.path, err)
	}

	return templates, nil
}
