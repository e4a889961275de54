package ui

import (
	"html/template"
	"io/fs"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"sheetqa/internal/i18n"
)

// renderHelp converts help/<lang>.md into HTML for every language
func renderHelp(files fs.FS) (map[string]template.HTML, error) {
	help := make(map[string]template.HTML)
	for _, lang := range i18n.Languages() {
		source, err := fs.ReadFile(files, "help/"+lang+".md")
		if err != nil {
			return nil, err
		}
		p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
		r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
		// Help pages are trusted files embedded at build time
		help[lang] = template.HTML(markdown.ToHTML(source, p, r))
	}
	return help, nil
}
