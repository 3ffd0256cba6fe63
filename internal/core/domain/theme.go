package domain

import "time"

// themePalette is cycled through for themes created without a color.
var themePalette = []string{
	"#ec4899",
	"#8b5cf6",
	"#0ea5e9",
	"#22c55e",
	"#f97316",
	"#ef4444",
	"#06b6d4",
	"#84cc16",
	"#f59e0b",
	"#6366f1",
}

// PaletteColor returns the palette entry for the nth item, wrapping around.
func PaletteColor(n int) string {
	if n < 0 {
		n = -n
	}
	return themePalette[n%len(themePalette)]
}

// Theme groups related codes into a higher-level pattern.
type Theme struct {
	ID          string
	Name        string
	Description string
	Color       string
	Memo        string

	// CodeIDs is a duplicate-free set of member codes.
	CodeIDs []string

	// ParentID optionally nests this theme under another.
	ParentID string

	CreatedAt time.Time
}

// ThemeUpdate carries editable theme fields. Nil fields are left unchanged.
type ThemeUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Memo        *string
}
