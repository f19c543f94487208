package preview

import (
	"github.com/sangkips/ecs-receipts/pkg/printer"
)

// ESCPOS renders doc as a thermal printer ticket of the given character width.
func ESCPOS(doc Document, width int) []byte {
	d := printer.NewDocument(width)

	d.SetAlign(printer.AlignCenter).
		SetFontSize(printer.FontDouble).
		SetBold(true).
		Text(doc.Title).
		SetFontSize(printer.FontNormal).
		SetBold(false).
		Text(doc.Subtitle).
		SetAlign(printer.AlignLeft).
		Separator('=')

	for _, f := range doc.Header {
		d.KeyValue(f.Label, f.Display())
	}
	for _, s := range doc.Sections {
		d.LineFeed().Heading(s.Title)
		for _, f := range s.Fields {
			d.KeyValue(f.Label, f.Display())
		}
	}

	d.Separator('=').
		SetAlign(printer.AlignCenter).
		Text(doc.Footer).
		SetAlign(printer.AlignLeft).
		FeedLines(4).
		PartialCut()

	return d.Bytes()
}
