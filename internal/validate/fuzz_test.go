package validate

import (
	"testing"
	"unicode"
	"unicode/utf8"
)

// Run with: go test ./internal/validate -fuzz=FuzzSanitizeName -fuzztime=30s
func FuzzSanitizeName(f *testing.F) {
	for _, seed := range []string{
		"normal text",
		"hello\x00world",
		"test\x1b[31mred",
		"café résumé",
		"'; DROP TABLE tasks;--",
		"<script>alert('xss')</script>",
		"",
		"\t\n\r",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		out := SanitizeName(input)
		for _, r := range out {
			if unicode.IsControl(r) {
				t.Fatalf("SanitizeName(%q) kept control rune %U", input, r)
			}
		}
		_ = Name("task", out)
	})
}

func FuzzSanitizeNote(f *testing.F) {
	for _, seed := range []string{"line one\r\nline two", "a\x00b", "\r\r", "  padded  "} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		out := SanitizeNote(input)
		for _, r := range out {
			if r == 0 || r == '\r' {
				t.Fatalf("SanitizeNote(%q) kept %U", input, r)
			}
		}
	})
}

func FuzzTruncateString(f *testing.F) {
	f.Add("Homepage mockups for the spring campaign", uint8(10))
	f.Add("日本語テスト", uint8(3))
	f.Add("", uint8(0))

	f.Fuzz(func(t *testing.T, input string, limit uint8) {
		out := TruncateString(input, int(limit))
		if utf8.RuneCountInString(out) > int(limit) {
			t.Fatalf("TruncateString(%q, %d) = %q", input, limit, out)
		}
	})
}

func FuzzServerLink(f *testing.F) {
	for _, seed := range []string{"https://erp.example.com", "http://localhost:8069", "local://", "ftp://x", "javascript:alert(1)", ""} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		_ = ServerLink(input)
	})
}
