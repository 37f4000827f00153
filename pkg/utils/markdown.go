package utils

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	// HardLineBreak keeps the line breaks of wrapped answers.
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock | parser.HardLineBreak
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	pagePolicy = bluemonday.UGCPolicy()
)

// MarkdownToHTML renders md and strips anything outside the user-generated-content allowlist.
func MarkdownToHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(pagePolicy.SanitizeBytes(unsafeHTML))
}
