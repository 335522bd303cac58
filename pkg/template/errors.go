package template

import "errors"

var (
	ErrTemplateNotFound      = errors.New("template.errors.not_found")
	ErrTemplateNameRequired  = errors.New("template.errors.name_required")
	ErrRenderFailed          = errors.New("template.errors.render_failed")
	ErrFailedToLoadTemplates = errors.New("template.errors.failed_to_load")
)
