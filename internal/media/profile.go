package media

import (
	"path/filepath"
	"strings"

	"github.com/xxxsen/slimdeck/internal/config"
	"github.com/xxxsen/slimdeck/internal/converter"
)

// Format is a normalized file extension: lower case, without the dot.
type Format string

// Profile says how one format is recompressed. An empty TargetExt keeps the
// file's own extension.
type Profile struct {
	Kind      converter.Kind
	Param     int
	TargetExt string
}

// Profiles maps formats to their recompression profile. Formats missing from
// the table are passed through untouched.
type Profiles map[Format]Profile

// DefaultProfiles builds the dispatch table from the converter config.
func DefaultProfiles(cfg config.ConverterConfig) Profiles {
	palette := Profile{Kind: converter.KindPalette, Param: cfg.PaletteColors, TargetExt: ".png"}
	quality := Profile{Kind: converter.KindQuality, Param: cfg.JPEGQuality}
	return Profiles{
		"png":       palette,
		"jpg":       quality,
		"jpeg":      quality,
		"jpg-large": quality,
		"tif":       palette,
		"tiff":      palette,
		"emf":       palette,
	}
}

// FormatOf returns the normalized format of a file name.
func FormatOf(name string) Format {
	return Format(strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")))
}

// Lookup returns the profile for name and the extension the result would
// carry. ok is false for pass-through formats.
func (p Profiles) Lookup(name string) (Profile, string, bool) {
	ext := filepath.Ext(name)
	prof, ok := p[FormatOf(name)]
	if !ok {
		return Profile{}, ext, false
	}
	if prof.TargetExt != "" {
		ext = prof.TargetExt
	}
	return prof, ext, true
}
