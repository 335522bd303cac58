package template_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/template"
)

func TestResolverUsesStoredTemplate(t *testing.T) {
	t.Parallel()

	store := template.NewMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), template.Template{
		Name:    "welcome",
		Subject: "Hey {{.firstName}}",
		Text:    "Custom welcome for {{.firstName}}.",
		Active:  true,
	}))

	resolver := template.NewResolver(store)
	rendered, err := resolver.Resolve(context.Background(), "welcome", map[string]string{"firstName": "Jane"})
	require.NoError(t, err)

	assert.Equal(t, "Hey Jane", rendered.Subject)
	assert.Equal(t, "Custom welcome for Jane.", rendered.Text)
	assert.Empty(t, rendered.HTML)
}

func TestResolverFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		store template.Store
	}{
		{"nil store", nil},
		{"store without the template", template.NewMemoryStore()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resolver := template.NewResolver(tt.store)
			rendered, err := resolver.Resolve(context.Background(), "welcome", map[string]string{"firstName": "Jane"})
			require.NoError(t, err)
			assert.Equal(t, "Welcome, Jane!", rendered.Subject)
			assert.Contains(t, rendered.HTML, "Welcome, Jane!")
		})
	}
}

func TestResolverInactiveStoredTemplateFallsBack(t *testing.T) {
	t.Parallel()

	store := template.NewMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), template.Template{
		Name:    "welcome",
		Subject: "Disabled custom subject",
		Active:  false,
	}))

	resolver := template.NewResolver(store)
	rendered, err := resolver.Resolve(context.Background(), "welcome", map[string]string{"firstName": "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome, Jane!", rendered.Subject, "inactive stored template must not win")
}

func TestResolverUnknownNameWithoutDefault(t *testing.T) {
	t.Parallel()

	resolver := template.NewResolver(nil)
	_, err := resolver.Resolve(context.Background(), "does_not_exist", nil)
	require.ErrorIs(t, err, template.ErrTemplateNotFound)
}

func TestResolverEscapesHTMLVariables(t *testing.T) {
	t.Parallel()

	resolver := template.NewResolver(nil)
	rendered, err := resolver.Resolve(context.Background(), "general", map[string]string{
		"title":   "Hi",
		"message": `<script>alert("x")</script>`,
	})
	require.NoError(t, err)

	assert.NotContains(t, rendered.HTML, "<script>")
	assert.Contains(t, rendered.HTML, "&lt;script&gt;")
	// The text part is not HTML and stays verbatim.
	assert.Equal(t, `<script>alert("x")</script>`, rendered.Text)
}

func TestResolverMissingVariablesRenderEmpty(t *testing.T) {
	t.Parallel()

	resolver := template.NewResolver(nil)
	rendered, err := resolver.Resolve(context.Background(), "welcome", nil)
	require.NoError(t, err)
	assert.Equal(t, "Welcome, !", rendered.Subject)
}

func TestRenderInlineTemplate(t *testing.T) {
	t.Parallel()

	rendered, err := template.Render(template.Template{
		Name:    "inline",
		Subject: "Hello {{.firstName}}",
		Text:    "Body for {{.firstName}}",
	}, map[string]string{"firstName": "Ada"})
	require.NoError(t, err)

	assert.Equal(t, "Hello Ada", rendered.Subject)
	assert.Equal(t, "Body for Ada", rendered.Text)
}

func TestRenderReportsParseFailures(t *testing.T) {
	t.Parallel()

	_, err := template.Render(template.Template{
		Name:    "broken",
		Subject: "{{.unclosed",
	}, nil)
	require.ErrorIs(t, err, template.ErrRenderFailed)
}

func TestMemoryStoreUpsertRequiresName(t *testing.T) {
	t.Parallel()

	store := template.NewMemoryStore()
	require.ErrorIs(t, store.Upsert(context.Background(), template.Template{}), template.ErrTemplateNameRequired)
}
