package template

import (
	"context"
	"time"
)

// Template is a named email template with subject, HTML and plain text parts.
// Bodies use Go template syntax; variables are referenced as {{.name}}.
type Template struct {
	Name      string    `json:"name" yaml:"name"`
	Subject   string    `json:"subject" yaml:"subject"`
	HTML      string    `json:"html" yaml:"html"`
	Text      string    `json:"text" yaml:"text"`
	Active    bool      `json:"active" yaml:"active"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// Store provides access to named templates.
// Implementations must return ErrTemplateNotFound for unknown names;
// the Resolver treats that (and inactive templates) as a signal to fall
// back to built-in defaults.
type Store interface {
	GetByName(ctx context.Context, name string) (*Template, error)
}

// Rendered is the result of resolving and rendering a template.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}
