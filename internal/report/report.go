// Package report renders the persisted conversation as a standalone HTML
// page. Agent answers are markdown with GFM tables, so they go through
// goldmark; user questions are plain text.
package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/mgtools/nexo/internal/history"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

const pageHeader = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>NEXO - Relatório de Análises</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; color: #1a1a1a; }
.turn { margin: 1.5rem 0; padding: 1rem; border-radius: 8px; }
.turn.user { background: #eef2f7; }
.turn.agent { background: #f7f7f2; }
.turn .role { font-size: .8rem; text-transform: uppercase; letter-spacing: .05em; color: #666; margin-bottom: .5rem; }
table { border-collapse: collapse; margin: .5rem 0; }
th, td { border: 1px solid #ccc; padding: .3rem .6rem; text-align: left; }
</style>
</head>
<body>
<h1>NEXO - Relatório de Análises</h1>
`

// RenderHTML produces the report page for a conversation, oldest turn first.
func RenderHTML(turns []history.Turn) (string, error) {
	var b strings.Builder
	b.WriteString(pageHeader)

	if len(turns) == 0 {
		b.WriteString("<p>Nenhuma análise registrada.</p>\n")
	}

	for _, t := range turns {
		role := "user"
		label := "Pergunta"
		if t.Role == "agent" {
			role = "agent"
			label = "NEXO"
		}

		fmt.Fprintf(&b, `<div class="turn %s">`, role)
		fmt.Fprintf(&b, `<div class="role">%s · %s</div>`, label,
			t.CreatedAt.Format("02/01/2006 15:04"))

		if role == "agent" {
			var body bytes.Buffer
			if err := markdown.Convert([]byte(t.Content), &body); err != nil {
				return "", fmt.Errorf("render turn %d: %w", t.ID, err)
			}
			b.Write(body.Bytes())
		} else {
			fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(t.Content))
		}

		b.WriteString("</div>\n")
	}

	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
