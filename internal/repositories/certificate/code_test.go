package certificate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	t.Run("should produce 12 characters from the uppercase alphanumeric set", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			code, err := GenerateVerificationCode()
			require.NoError(t, err)
			require.Len(t, code, 12)
			for _, c := range code {
				assert.True(t, strings.ContainsRune(codeAlphabet, c), "unexpected character %q in %s", c, code)
			}
		}
	})

	t.Run("should not repeat across generations", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			code, err := GenerateVerificationCode()
			require.NoError(t, err)
			assert.False(t, seen[code], "code %s repeated", code)
			seen[code] = true
		}
	})
}
