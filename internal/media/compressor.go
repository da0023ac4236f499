// Package media recompresses the images embedded in an unpacked deck.
package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/slimdeck/internal/converter"
)

// Result is the outcome for a single media file.
type Result struct {
	Path         string
	Name         string
	Key          string
	Ext          string
	TargetExt    string
	OriginalSize int64
	FinalSize    int64
	Replaced     bool
}

// Saved returns the number of bytes the file shrank by.
func (r Result) Saved() int64 {
	return r.OriginalSize - r.FinalSize
}

// Options configures a Compressor.
type Options struct {
	Profiles   Profiles
	MaxEdge    int
	MinSavings int64
	// TempDir holds converter output; empty means the system default.
	TempDir string
}

// Compressor runs media files through the converter and keeps a candidate
// only if it is smaller than the original by more than MinSavings bytes.
type Compressor struct {
	conv converter.Converter
	opts Options
}

// NewCompressor builds a compressor around conv.
func NewCompressor(conv converter.Converter, opts Options) *Compressor {
	return &Compressor{conv: conv, opts: opts}
}

// CompressFile processes one file. The file keeps its name even when the
// candidate was produced in another format.
func (c *Compressor) CompressFile(ctx context.Context, path string) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("stat media %s: %w", path, err)
	}
	name := filepath.Base(path)
	prof, targetExt, ok := c.opts.Profiles.Lookup(name)
	res := Result{
		Path:         path,
		Name:         name,
		Ext:          filepath.Ext(name),
		TargetExt:    targetExt,
		OriginalSize: info.Size(),
		FinalSize:    info.Size(),
	}
	if !ok {
		return res, nil
	}

	tmp, err := os.CreateTemp(c.opts.TempDir, "slimdeck-*"+targetExt)
	if err != nil {
		return res, fmt.Errorf("create temp output: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	mode := converter.Mode{Kind: prof.Kind, Param: prof.Param, MaxEdge: c.opts.MaxEdge}
	if err := c.conv.Convert(ctx, path, tmpPath, mode); err != nil {
		return res, fmt.Errorf("convert %s: %w", name, err)
	}

	candidate, err := os.ReadFile(tmpPath)
	if err != nil {
		return res, fmt.Errorf("read converter output for %s: %w", name, err)
	}
	newSize := int64(len(candidate))
	if newSize >= res.OriginalSize-c.opts.MinSavings {
		logutil.GetLogger(ctx).Debug("keep original media",
			zap.String("name", name),
			zap.Int64("size", res.OriginalSize),
			zap.Int64("candidate", newSize),
		)
		return res, nil
	}

	if err := os.WriteFile(path, candidate, info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("replace media %s: %w", name, err)
	}
	res.FinalSize = newSize
	res.Replaced = true
	logutil.GetLogger(ctx).Debug("media replaced",
		zap.String("name", name),
		zap.String("from", humanize.Bytes(uint64(res.OriginalSize))),
		zap.String("to", humanize.Bytes(uint64(newSize))),
	)
	return res, nil
}

// CompressDir walks mediaDir in lexical order and compresses every regular
// file. Ledger keys are the file paths relative to partDir, prefixed with
// "../" the way relationship descriptors refer to them. fn, if set, is called
// after each file. A missing mediaDir yields an empty ledger.
func (c *Compressor) CompressDir(ctx context.Context, mediaDir, partDir string, fn func(Result)) (*Ledger, error) {
	ledger := NewLedger()
	if _, err := os.Stat(mediaDir); errors.Is(err, os.ErrNotExist) {
		logutil.GetLogger(ctx).Info("deck has no media directory", zap.String("dir", mediaDir))
		return ledger, nil
	}

	err := filepath.WalkDir(mediaDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(partDir, path)
		if err != nil {
			return err
		}
		res, err := c.CompressFile(ctx, path)
		if err != nil {
			return err
		}
		res.Key = "../" + filepath.ToSlash(rel)
		ledger.Add(res)
		if fn != nil {
			fn(res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}
