package parser

import (
	"testing"
	"time"
)

// Run with: go test ./internal/parser -fuzz=FuzzParseHours -fuzztime=30s
func FuzzParseHours(f *testing.F) {
	for _, seed := range []string{
		"1:30", "0:45", "1.5", "90m", "2h", "1h30m", "2 hours", "-1h", "", "abc", "9999:59", "1e308h",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		h, err := ParseHours(input)
		if err == nil && h < 0 {
			t.Fatalf("ParseHours(%q) = %v, want non-negative", input, h)
		}
	})
}

func FuzzParseDate(f *testing.F) {
	for _, seed := range []string{
		"today", "tomorrow", "yesterday", "next monday", "friday", "2025-06-11", "in 3 days", "", "31/02/2025",
	} {
		f.Add(seed)
	}
	now := time.Date(2025, 6, 11, 9, 0, 0, 0, time.Local)

	f.Fuzz(func(t *testing.T, input string) {
		_, _ = ParseDate(input, now)
	})
}

func FuzzParseIDs(f *testing.F) {
	for _, seed := range []string{"1", "1,2,3", "3,3,1", " 4 , 5 ", "0", "-2", "1,,2", "x"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		ids, err := ParseIDs([]string{input})
		if err != nil {
			return
		}
		seen := make(map[int64]bool)
		for _, id := range ids {
			if id <= 0 {
				t.Fatalf("ParseIDs(%q) returned non-positive id %d", input, id)
			}
			if seen[id] {
				t.Fatalf("ParseIDs(%q) returned duplicate id %d", input, id)
			}
			seen[id] = true
		}
	})
}

func FuzzParseAssignee(f *testing.F) {
	for _, seed := range []string{"7", "2:7", "-1:7", ":", "a:b", "1:2:3", ""} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		_, _ = ParseAssignee(input)
		_, _ = ParseQuadrant(input)
	})
}
