// Package pptx unpacks a slide deck container into a scratch directory and
// packs the directory back into a zip archive.
package pptx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

const (
	// MediaDir is the slash separated location of embedded media.
	MediaDir = "ppt/media"
	// PartDir is the directory media references are relative to.
	PartDir = "ppt"
)

var ErrUnsafePath = errors.New("archive entry escapes extraction root")

// Manifest is the ordered list of entry names found in the source archive.
// Directory entries keep their trailing slash.
type Manifest struct {
	Entries []string
}

// Unpack extracts every entry of the archive at src below dir.
func Unpack(src, dir string) (*Manifest, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", src, err)
	}
	defer zr.Close()

	m := &Manifest{Entries: make([]string, 0, len(zr.File))}
	seen := make(map[string]struct{}, len(zr.File))
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate archive entry %s", name)
		}
		seen[name] = struct{}{}

		target, err := joinUnder(dir, name)
		if err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, fmt.Errorf("create dir %s: %w", target, err)
			}
			m.Entries = append(m.Entries, strings.TrimSuffix(name, "/")+"/")
			continue
		}
		if err := extractFile(f, target); err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, name)
	}
	return m, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.Name, err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract entry %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	return nil
}

// Pack writes every file below dir into a deflate compressed archive at dst.
// Entries listed in m come first in manifest order; anything else found in
// dir follows in lexical order. m may be nil.
func Pack(dir, dst string, m *Manifest) error {
	files, err := listFiles(dir)
	if err != nil {
		return err
	}
	order := packOrder(m, files)

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", dst, err)
	}
	zw := zip.NewWriter(out)
	if err := writeEntries(zw, dir, order); err != nil {
		zw.Close()
		out.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finish archive %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close archive %s: %w", dst, err)
	}
	return nil
}

func writeEntries(zw *zip.Writer, dir string, order []string) error {
	for _, name := range order {
		if strings.HasSuffix(name, "/") {
			if _, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store}); err != nil {
				return fmt.Errorf("write dir entry %s: %w", name, err)
			}
			continue
		}
		if err := writeFile(zw, filepath.Join(dir, filepath.FromSlash(name)), name); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(zw *zip.Writer, src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("build header for %s: %w", name, err)
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

// listFiles returns slash separated paths of regular files below dir.
func listFiles(dir string) (map[string]struct{}, error) {
	files := make(map[string]struct{})
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return files, nil
}

func packOrder(m *Manifest, files map[string]struct{}) []string {
	order := make([]string, 0, len(files))
	used := make(map[string]struct{}, len(files))
	if m != nil {
		for _, name := range m.Entries {
			if strings.HasSuffix(name, "/") {
				order = append(order, name)
				continue
			}
			if _, ok := files[name]; !ok {
				continue
			}
			order = append(order, name)
			used[name] = struct{}{}
		}
	}
	rest := make([]string, 0, len(files)-len(used))
	for name := range files {
		if _, ok := used[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// joinUnder resolves a slash separated entry name below root, rejecting
// absolute names and parent traversal.
func joinUnder(root, name string) (string, error) {
	clean := path.Clean(strings.TrimSuffix(name, "/"))
	if name == "" || clean == "." || path.IsAbs(clean) || filepath.IsAbs(filepath.FromSlash(clean)) || filepath.VolumeName(filepath.FromSlash(clean)) != "" {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	target := filepath.Join(root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", fmt.Errorf("compare paths: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrUnsafePath, name)
	}
	return target, nil
}
