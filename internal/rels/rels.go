// Package rels finds which relationship descriptors mention which media.
// Descriptors are treated as opaque text and are never modified.
package rels

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// Suffix marks relationship descriptor files.
	Suffix = ".xml.rels"

	slideLiteral = "slide"
)

var ErrNotText = errors.New("relationship descriptor is not valid utf-8")

// Usage maps a media reference to the descriptors that mention it, in the
// order the descriptors were visited.
type Usage map[string][]string

// IsDescriptor reports whether name is a relationship descriptor.
func IsDescriptor(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), Suffix)
}

// Identifier derives the short label used in reports: the suffix is dropped
// along with every "slide" literal, so slide12.xml.rels becomes "12".
func Identifier(name string) string {
	base := name
	if IsDescriptor(base) {
		base = base[:len(base)-len(Suffix)]
	}
	return strings.ReplaceAll(base, slideLiteral, "")
}

// Scan walks root in lexical order and records, for every key, the
// descriptors whose text contains it.
func Scan(root string, keys []string) (Usage, error) {
	usage := make(Usage)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !IsDescriptor(d.Name()) {
			return nil
		}
		text, err := readText(path)
		if err != nil {
			return err
		}
		id := Identifier(d.Name())
		for _, key := range keys {
			if strings.Contains(text, key) {
				usage[key] = append(usage[key], id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return usage, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read descriptor %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s", ErrNotText, path)
	}
	return string(data), nil
}
