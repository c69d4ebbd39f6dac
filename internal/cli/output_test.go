package cli

import (
	"io"
	"os"
	"testing"

	"github.com/jamie8johnson/cqs/internal/cqserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name     string
		number   int
		expected string
	}{
		{"single digit", 5, "5"},
		{"triple digit", 999, "999"},
		{"thousands", 1234, "1,234"},
		{"millions", 1234567, "1,234,567"},
		{"negative", -1234, "-1,234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatNumber(tt.number))
		})
	}
}

func TestNotFoundWrapsKindAndName(t *testing.T) {
	err := notFound("cli.explain", "Widget")
	var cqsErr *cqserr.Error
	require.ErrorAs(t, err, &cqsErr)
	assert.Equal(t, cqserr.NotFound, cqsErr.Kind)
	assert.Contains(t, err.Error(), "Widget")
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	t.Cleanup(func() { os.Stdout = old })

	fn()

	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintResultJSONMode(t *testing.T) {
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })

	out := captureStdout(t, func() {
		err := printResult(map[string]string{"name": "Widget"}, func() {
			t.Fatal("textFn must not run when --json is set")
		})
		require.NoError(t, err)
	})
	assert.Contains(t, out, "\"name\": \"Widget\"")
}

func TestPrintResultTextMode(t *testing.T) {
	jsonOutput = false

	out := captureStdout(t, func() {
		err := printResult("ignored", func() { printf("hello\n") })
		require.NoError(t, err)
	})
	assert.Equal(t, "hello\n", out)
}

func TestPrintfSuppressedByQuietUnlessJSON(t *testing.T) {
	quiet = true
	jsonOutput = false
	t.Cleanup(func() { quiet = false })

	out := captureStdout(t, func() { printf("should not print\n") })
	assert.Empty(t, out)

	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })
	out = captureStdout(t, func() { printf("should print\n") })
	assert.Equal(t, "should print\n", out)
}
