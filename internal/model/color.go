package model

import "strconv"

// DefaultColor is the "no color" tag.
const DefaultColor = "0"

// palette maps backend color indexes to hex values.
var palette = [...]string{
	"",        // 0 no color
	"#F06050", // 1 red
	"#F4A460", // 2 orange
	"#F7CD1F", // 3 yellow
	"#6CC1ED", // 4 cyan
	"#814968", // 5 purple
	"#EB7E7F", // 6 almond
	"#2C8397", // 7 teal
	"#475577", // 8 blue
	"#D6145F", // 9 raspberry
	"#30C381", // 10 green
	"#9365B8", // 11 violet
}

// HasColor reports whether tag is a real color and not the default.
func HasColor(tag string) bool {
	return tag != "" && tag != DefaultColor
}

// ColorHex returns the hex value of a color tag, or "" for none.
// Tags that are already hex values are returned unchanged.
func ColorHex(tag string) string {
	if len(tag) > 0 && tag[0] == '#' {
		return tag
	}
	n, err := strconv.Atoi(tag)
	if err != nil || n < 0 || n >= len(palette) {
		return ""
	}
	return palette[n]
}

// PaletteSize is the number of backend color indexes.
func PaletteSize() int {
	return len(palette)
}
