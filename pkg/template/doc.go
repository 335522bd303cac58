// Package template resolves named message templates and renders them with
// per-send variables.
//
// Resolution order: an active template from the configured Store, then the
// built-in defaults map keyed by the same name. Stored templates can be
// deactivated to fall back to defaults without breaking sends; names unknown
// to both return ErrTemplateNotFound.
//
// Rendering uses html/template for HTML bodies (contextual escaping guards
// against content injection via user-controlled variables) and text/template
// for subjects and plain text parts.
package template
