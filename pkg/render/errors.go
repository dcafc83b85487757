package render

import "github.com/goliatone/go-tplforge/pkg/render/template"

// Rendering error sentinels, usable with errors.Is on any error returned by
// a template-backed Renderable.
var (
	ErrTemplateNotFound = template.ErrTemplateNotFound
	ErrEvaluationFailed = template.ErrEvaluationFailed
)

// Error is the rendering error type reported by template engines.
type Error = template.Error
