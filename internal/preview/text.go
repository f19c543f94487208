package preview

import (
	"fmt"
	"strings"

	"github.com/sangkips/ecs-receipts/pkg/printer"
)

const textWidth = 72

// Text renders a plain-text receipt for terminals and email bodies.
func Text(doc Document) string {
	var b strings.Builder
	rule := strings.Repeat("=", textWidth)

	b.WriteString(center(doc.Title))
	b.WriteString(center(doc.Subtitle))
	b.WriteString(rule + "\n")
	for _, f := range doc.Header {
		writeField(&b, f)
	}
	for _, s := range doc.Sections {
		b.WriteString("\n" + s.Title + "\n")
		b.WriteString(strings.Repeat("-", len([]rune(s.Title))) + "\n")
		for _, f := range s.Fields {
			writeField(&b, f)
		}
	}
	b.WriteString("\n" + rule + "\n")
	for _, line := range printer.Wrap(doc.Footer, textWidth) {
		b.WriteString(line + "\n")
	}
	return b.String()
}

func writeField(b *strings.Builder, f Field) {
	lines := printer.Wrap(f.Display(), textWidth-28)
	for i, line := range lines {
		label := ""
		if i == 0 {
			label = f.Label
		}
		fmt.Fprintf(b, "  %-26s%s\n", label, line)
	}
}

func center(s string) string {
	pad := (textWidth - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s + "\n"
}
