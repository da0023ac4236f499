// Package deck runs the whole recompression of one slide deck: unpack,
// recompress media, scan references, report and repack.
package deck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/slimdeck/internal/converter"
	"github.com/xxxsen/slimdeck/internal/media"
	"github.com/xxxsen/slimdeck/internal/pptx"
	"github.com/xxxsen/slimdeck/internal/rels"
	"github.com/xxxsen/slimdeck/internal/report"
)

// DefaultTitle is the title used for decks without one. Nothing in the
// pipeline reads it.
const DefaultTitle = "PowerPoint Presentation"

// CompressedSuffix is appended to the source stem when not overwriting.
const CompressedSuffix = ".compressed.pptx"

// Options controls a single run.
type Options struct {
	Source    string
	Force     bool
	Converter converter.Converter
	Media     media.Options
	// Out receives the console report; nil discards it.
	Out io.Writer
	// ScratchDir is the parent of the scratch directory; empty means the
	// system default.
	ScratchDir string
}

// Result summarises a finished run.
type Result struct {
	Output string
	Ledger *media.Ledger
	Usage  rels.Usage
}

// OutputPath returns where the compressed archive for source is written.
func OutputPath(source string, force bool) string {
	if force {
		return source
	}
	dir := filepath.Dir(source)
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+CompressedSuffix)
}

// Compress runs the pipeline for opts.Source. The scratch directory is
// removed on every return path.
func Compress(ctx context.Context, opts Options) (*Result, error) {
	if opts.Converter == nil {
		return nil, errors.New("no converter configured")
	}
	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("resolve source %s: %w", opts.Source, err)
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	logger := logutil.GetLogger(ctx)

	scratch, err := os.MkdirTemp(opts.ScratchDir, "slimdeck-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Error("remove scratch dir failed", zap.String("dir", scratch), zap.Error(err))
		}
	}()

	manifest, err := pptx.Unpack(source, scratch)
	if err != nil {
		return nil, err
	}
	logger.Debug("deck unpacked",
		zap.String("source", source),
		zap.String("scratch", scratch),
		zap.Int("entries", len(manifest.Entries)),
	)

	printer := report.NewPrinter(out)
	partDir := filepath.Join(scratch, filepath.FromSlash(pptx.PartDir))
	mediaDir := filepath.Join(scratch, filepath.FromSlash(pptx.MediaDir))
	ledger, err := media.NewCompressor(opts.Converter, opts.Media).CompressDir(ctx, mediaDir, partDir, printer.File)
	if err != nil {
		return nil, err
	}

	usage, err := rels.Scan(scratch, ledger.Keys())
	if err != nil {
		return nil, err
	}
	printer.Largest(ledger, usage)

	output := OutputPath(source, opts.Force)
	if err := pptx.Pack(scratch, output, manifest); err != nil {
		return nil, err
	}

	original, final := ledger.Totals()
	logger.Info("deck compressed",
		zap.String("output", output),
		zap.Int("media", ledger.Len()),
		zap.String("media_before", humanize.Bytes(uint64(original))),
		zap.String("media_after", humanize.Bytes(uint64(final))),
	)
	printer.Summary(ledger, output)

	return &Result{Output: output, Ledger: ledger, Usage: usage}, nil
}
