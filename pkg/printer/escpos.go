package printer

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ESC/POS control bytes.
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

const (
	FontNormal = 0x00
	FontDouble = 0x11 // double width + double height
	FontTall   = 0x01
)

// Paper widths in characters.
const (
	Width58mm = 32
	Width80mm = 48
)

// Most receipt printers ship with code page 437 selected. Characters outside
// it are mapped to ASCII first, then anything left becomes '?'.
var asciiFallback = strings.NewReplacer(
	"—", "-", "–", "-", "₹", "Rs.", "’", "'", "‘", "'", "“", `"`, "”", `"`, "…", "...",
)

var cp437 = encoding.ReplaceUnsupported(charmap.CodePage437.NewEncoder())

// Document accumulates an ESC/POS byte stream for one ticket.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a ticket for a printer with the given character width.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = Width58mm
	}
	d := &Document{width: charWidth}
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// Width is the line width in characters.
func (d *Document) Width() int { return d.width }

func (d *Document) write(s string) {
	s = asciiFallback.Replace(s)
	out, err := cp437.String(s)
	if err != nil {
		out = s
	}
	// ReplaceUnsupported emits SUB; '?' reads better on paper.
	d.buf.WriteString(strings.ReplaceAll(out, "\x1a", "?"))
}

func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

func (d *Document) SetBold(on bool) *Document {
	b := byte(0)
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{GS, '!', size})
	return d
}

// Text writes s wrapped to the paper width.
func (d *Document) Text(s string) *Document {
	for _, line := range Wrap(s, d.width) {
		d.write(line)
		d.buf.WriteByte(LF)
	}
	return d
}

// Heading writes a bold, underlined section title.
func (d *Document) Heading(title string) *Document {
	d.SetBold(true)
	d.Text(title)
	d.SetBold(false)
	d.Separator('-')
	return d
}

func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// KeyValue prints the key left and the value right-aligned on one line.
// Values that do not fit continue right-aligned on the following lines.
func (d *Document) KeyValue(key, value string) *Document {
	key = asciiFallback.Replace(key)
	value = asciiFallback.Replace(value)

	room := d.width - len([]rune(key)) - 1
	if room < d.width/2 {
		d.Text(key)
		room = d.width
		key = ""
	}
	lines := Wrap(value, room)
	if len(lines) == 0 {
		lines = []string{""}
	}
	for i, line := range lines {
		prefix := ""
		if i == 0 {
			prefix = key
		}
		pad := d.width - len([]rune(prefix)) - len([]rune(line))
		if pad < 1 {
			pad = 1
		}
		d.write(prefix + strings.Repeat(" ", pad) + line)
		d.buf.WriteByte(LF)
	}
	return d
}

// PartialCut feeds and cuts leaving a hinge.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{GS, 'V', 0x01})
	return d
}

func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// Wrap splits s into lines of at most width runes, breaking on spaces where
// possible. Embedded newlines are kept.
func Wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, w := range words {
			for len([]rune(w)) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				r := []rune(w)
				out = append(out, string(r[:width]))
				w = string(r[width:])
			}
			switch {
			case line == "":
				line = w
			case len([]rune(line))+1+len([]rune(w)) <= width:
				line += " " + w
			default:
				out = append(out, line)
				line = w
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
