// Package documents renders and stores certificate documents.
package documents

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	pageTop    = 760
	lineHeight = 16
	leftMargin = 50
)

// escapeText escapes the characters that terminate a PDF literal string.
func escapeText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// RenderPDF produces a single-page PDF containing the given lines of text,
// drawn top-down in 12pt Helvetica. The output is a complete, self-contained
// document with a valid cross-reference table.
func RenderPDF(lines []string) []byte {
	var content bytes.Buffer
	y := pageTop
	for _, line := range lines {
		fmt.Fprintf(&content, "BT /F1 12 Tf %d %d Td (%s) Tj ET\n", leftMargin, y, escapeText(line))
		y -= lineHeight
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)

	return buf.Bytes()
}
