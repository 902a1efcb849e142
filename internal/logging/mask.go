package logging

import (
	"strings"
)

const (
	// MaskChar is the character used for masking.
	MaskChar = "*"
	// DefaultMaskLength is how many mask characters to show.
	DefaultMaskLength = 3
)

// SensitiveFields contains field names that should be masked.
var SensitiveFields = map[string]bool{
	"api_key":  true,
	"apikey":   true,
	"password": true,
	"secret":   true,
	"token":    true,
}

// MaskValue masks a sensitive value completely.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	return strings.Repeat(MaskChar, min(len(value), 8))
}

// MaskPartial masks a value but shows the first few characters.
func MaskPartial(value string, showChars int) string {
	if len(value) <= showChars {
		return strings.Repeat(MaskChar, len(value))
	}
	return value[:showChars] + strings.Repeat(MaskChar, DefaultMaskLength)
}

// IsSensitiveField checks if a field name indicates sensitive data.
func IsSensitiveField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	if SensitiveFields[lower] {
		return true
	}
	for keyword := range SensitiveFields {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// MaskArgs masks sensitive values in a slice of logging arguments.
// Arguments are expected in key-value pairs: key1, value1, key2, value2, ...
func MaskArgs(args []any) []any {
	if len(args) < 2 {
		return args
	}

	result := make([]any, len(args))
	copy(result, args)

	for i := 0; i < len(result)-1; i += 2 {
		key, ok := result[i].(string)
		if !ok || !IsSensitiveField(key) {
			continue
		}
		if strVal, ok := result[i+1].(string); ok {
			result[i+1] = MaskValue(strVal)
		} else {
			result[i+1] = strings.Repeat(MaskChar, 8)
		}
	}

	return result
}

// MaskMap masks sensitive values in a form snapshot before it is logged.
func MaskMap(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for key, value := range m {
		switch v := value.(type) {
		case map[string]any:
			result[key] = MaskMap(v)
		case string:
			if IsSensitiveField(key) {
				result[key] = MaskValue(v)
			} else {
				result[key] = v
			}
		default:
			if IsSensitiveField(key) {
				result[key] = strings.Repeat(MaskChar, 8)
			} else {
				result[key] = v
			}
		}
	}
	return result
}
