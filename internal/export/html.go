// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/storage"
)

var (
	codeBlockRegex  = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`\n]+)`")
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports transcripts to a standalone HTML page.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export renders the transcript. All message text is escaped.
func (e *HTMLExporter) Export(t *storage.Transcript) ([]byte, error) {
	if err := validate(t); err != nil {
		return nil, err
	}
	title := html.EscapeString(t.DisplayTitle())
	now := e.options.now()

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("<meta charset=\"UTF-8\">\n")
	sb.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "<meta name=\"generator\" content=\"%s\">\n", generator)
	fmt.Fprintf(&sb, "<title>%s</title>\n", title)
	sb.WriteString(pageCSS)
	sb.WriteString("</head>\n<body>\n<main>\n")

	fmt.Fprintf(&sb, "<h1>%s</h1>\n", title)
	if e.options.IncludeMetadata {
		fmt.Fprintf(&sb, "<p class=\"meta\">Chat %s &middot; %d messages &middot; exported %s</p>\n",
			html.EscapeString(t.ConversationID.String()), len(t.Messages), now.Format(time.RFC3339))
	}

	for _, msg := range model.SortByID(t.Messages) {
		class := "assistant"
		if msg.IsUser() {
			class = "user"
		}
		fmt.Fprintf(&sb, "<section class=\"msg %s\">\n<div class=\"who\">%s</div>\n%s\n</section>\n",
			class, html.EscapeString(msg.Sender.DisplayName()), formatContent(msg.Content))
	}

	sb.WriteString("</main>\n</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string { return ".html" }

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string { return "text/html" }

// formatContent escapes content, then turns fenced and inline code into
// markup and splits the rest into paragraphs.
func formatContent(content string) string {
	content = strings.ReplaceAll(strings.TrimSpace(content), "\x00", "")
	escaped := html.EscapeString(content)

	blocks := make(map[string]string)
	escaped = codeBlockRegex.ReplaceAllStringFunc(escaped, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		lang := ""
		if parts[1] != "" {
			lang = fmt.Sprintf("<div class=\"lang\">%s</div>", parts[1])
		}
		key := fmt.Sprintf("\x00%d\x00", len(blocks))
		blocks[key] = fmt.Sprintf("<div class=\"code\">%s<pre><code>%s</code></pre></div>",
			lang, strings.TrimRight(parts[2], "\n"))
		return "\n\n" + key + "\n\n"
	})

	var out []string
	for _, para := range strings.Split(escaped, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if block, ok := blocks[para]; ok {
			out = append(out, block)
			continue
		}
		para = inlineCodeRegex.ReplaceAllString(para, "<code>$1</code>")
		out = append(out, "<p>"+strings.ReplaceAll(para, "\n", "<br>")+"</p>")
	}
	return strings.Join(out, "\n")
}

const pageCSS = `<style>
body { margin: 0; background: #0f172a; color: #e2e8f0; font: 15px/1.6 system-ui, sans-serif; }
main { max-width: 760px; margin: 0 auto; padding: 32px 16px; }
h1 { color: #c4b5fd; }
.meta { color: #94a3b8; font-size: 13px; }
.msg { border-radius: 10px; padding: 12px 16px; margin: 14px 0; }
.msg.user { background: #312e81; margin-left: 15%; }
.msg.assistant { background: #1e293b; margin-right: 15%; }
.who { font-weight: 600; font-size: 12px; color: #a5b4fc; margin-bottom: 4px; }
.code { background: #020617; border-radius: 6px; overflow-x: auto; }
.code pre { margin: 0; padding: 10px 12px; }
.lang { font-size: 11px; color: #64748b; padding: 6px 12px 0; }
code { font-family: ui-monospace, monospace; }
</style>
`
