package template

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileStore loads templates from a YAML file into memory at construction time.
// The file holds a list of templates:
//
//	templates:
//	  - name: claim_submitted
//	    subject: "Claim {{.claimNumber}} received"
//	    html: "<p>We received your claim {{.claimNumber}}.</p>"
//	    text: "We received your claim {{.claimNumber}}."
//	    active: true
//
// The store is read-only after load; edit the file and restart to change
// templates.
type FileStore struct {
	inner *MemoryStore
}

type templateFile struct {
	Templates []Template `yaml:"templates"`
}

// NewFileStore reads and parses the YAML file at path.
func NewFileStore(path string) (*FileStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadTemplates, err)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Join(ErrFailedToLoadTemplates, err)
	}

	inner := NewMemoryStore()
	for _, tmpl := range file.Templates {
		if err := inner.Upsert(context.Background(), tmpl); err != nil {
			return nil, fmt.Errorf("%w: template %q: %v", ErrFailedToLoadTemplates, tmpl.Name, err)
		}
	}

	return &FileStore{inner: inner}, nil
}

func (s *FileStore) GetByName(ctx context.Context, name string) (*Template, error) {
	return s.inner.GetByName(ctx, name)
}
