package template

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Resolver resolves a named template and renders it with the supplied
// variables. Lookup order: active template from the store, then the built-in
// defaults map. Unknown names with no fallback return ErrTemplateNotFound.
//
// Rendering is escaping-aware: the HTML part goes through html/template so
// user-controlled variables cannot inject markup; subject and text parts use
// text/template. Missing variables render as empty strings.
type Resolver struct {
	store    Store
	defaults map[string]Template
	logger   *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger for the Resolver.
func WithResolverLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = log
	}
}

// WithDefaults replaces the built-in default templates.
func WithDefaults(defaults map[string]Template) ResolverOption {
	return func(r *Resolver) {
		if defaults != nil {
			r.defaults = defaults
		}
	}
}

// NewResolver creates a template resolver backed by the given store.
// A nil store means only built-in defaults are consulted.
func NewResolver(store Store, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:    store,
		defaults: builtinDefaults(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve looks up the named template and renders it with vars.
func (r *Resolver) Resolve(ctx context.Context, name string, vars map[string]string) (*Rendered, error) {
	tmpl, err := r.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return render(tmpl, vars)
}

func (r *Resolver) lookup(ctx context.Context, name string) (*Template, error) {
	if r.store != nil {
		tmpl, err := r.store.GetByName(ctx, name)
		switch {
		case err == nil && tmpl.Active:
			return tmpl, nil
		case err == nil && !tmpl.Active:
			// Inactive templates fall through to defaults so operators can
			// disable a stored template without breaking sends.
			r.logger.LogAttrs(ctx, slog.LevelDebug, "stored template inactive, using default",
				slog.String("template", name),
			)
		case errors.Is(err, ErrTemplateNotFound):
			// Fall through to defaults.
		default:
			return nil, fmt.Errorf("template store lookup for %q: %w", name, err)
		}
	}

	if tmpl, ok := r.defaults[name]; ok {
		return &tmpl, nil
	}

	r.logger.LogAttrs(ctx, slog.LevelWarn, "template not found and no default exists",
		slog.String("template", name), logger.Error(ErrTemplateNotFound),
	)
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// Render renders an ad-hoc template without a store lookup. Used for inline
// content that still needs per-recipient variable substitution with the same
// escaping rules as stored templates.
func Render(tmpl Template, vars map[string]string) (*Rendered, error) {
	return render(&tmpl, vars)
}

// render executes the three template parts. HTML uses html/template for
// contextual escaping; subject and text are plain text.
func render(tmpl *Template, vars map[string]string) (*Rendered, error) {
	if vars == nil {
		vars = map[string]string{}
	}

	subject, err := renderText("subject", tmpl.Subject, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: subject of %q: %v", ErrRenderFailed, tmpl.Name, err)
	}

	text, err := renderText("text", tmpl.Text, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: text of %q: %v", ErrRenderFailed, tmpl.Name, err)
	}

	var html string
	if tmpl.HTML != "" {
		t, err := htmltemplate.New("html").Option("missingkey=zero").Parse(tmpl.HTML)
		if err != nil {
			return nil, fmt.Errorf("%w: html of %q: %v", ErrRenderFailed, tmpl.Name, err)
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, vars); err != nil {
			return nil, fmt.Errorf("%w: html of %q: %v", ErrRenderFailed, tmpl.Name, err)
		}
		html = buf.String()
	}

	return &Rendered{Subject: subject, HTML: html, Text: text}, nil
}

func renderText(part, body string, vars map[string]string) (string, error) {
	if body == "" {
		return "", nil
	}
	t, err := texttemplate.New(part).Option("missingkey=zero").Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}
