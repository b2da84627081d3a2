package documents

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeText(t *testing.T) {
	assert.Equal(t, `Acme \(Holdings\)`, escapeText("Acme (Holdings)"))
	assert.Equal(t, `C:\\temp`, escapeText(`C:\temp`))
	assert.Equal(t, "plain text", escapeText("plain text"))
}

func TestRenderPDF(t *testing.T) {
	t.Run("should produce a complete document", func(t *testing.T) {
		data := RenderPDF([]string{"first line", "second line"})
		text := string(data)

		assert.True(t, strings.HasPrefix(text, "%PDF-1.4\n"))
		assert.True(t, strings.HasSuffix(text, "%%EOF\n"))
		assert.Contains(t, text, "(first line) Tj")
		assert.Contains(t, text, "(second line) Tj")
		assert.Contains(t, text, "/BaseFont /Helvetica")
		assert.Contains(t, text, "xref")
		assert.Contains(t, text, "trailer")
	})

	t.Run("should escape parentheses in content", func(t *testing.T) {
		data := RenderPDF([]string{"Acme (Holdings)"})
		assert.Contains(t, string(data), `(Acme \(Holdings\)) Tj`)
	})

	t.Run("should step lines down the page", func(t *testing.T) {
		data := RenderPDF([]string{"a", "b"})
		text := string(data)
		assert.Contains(t, text, "50 760 Td (a)")
		assert.Contains(t, text, "50 744 Td (b)")
	})

	t.Run("should render an empty page without content lines", func(t *testing.T) {
		data := RenderPDF(nil)
		text := string(data)
		require.True(t, strings.HasPrefix(text, "%PDF-1.4\n"))
		assert.NotContains(t, text, "Tj")
	})
}
