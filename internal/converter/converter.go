// Package converter wraps the external image converter. Callers only rely on
// the exit status of the process and the file it leaves at the output path.
package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/slimdeck/internal/config"
)

// Kind selects how an image is reduced.
type Kind int

const (
	// KindPalette resizes and reduces the colour palette.
	KindPalette Kind = iota + 1
	// KindQuality resizes and lowers the lossy encoding quality.
	KindQuality
)

func (k Kind) String() string {
	switch k {
	case KindPalette:
		return "palette"
	case KindQuality:
		return "quality"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Mode is one conversion request. Param is the palette size for KindPalette
// and the quality factor for KindQuality. MaxEdge bounds the longest edge in
// pixels; images are only ever shrunk.
type Mode struct {
	Kind    Kind
	Param   int
	MaxEdge int
}

// Converter writes a recompressed copy of in to out.
type Converter interface {
	Convert(ctx context.Context, in, out string, mode Mode) error
}

// ErrNotFound is returned by Check when the binary is not on PATH.
var ErrNotFound = errors.New("converter not found on PATH")

// Error describes a failed converter invocation.
type Error struct {
	Binary   string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("run %s (exit %d): %v", e.Binary, e.ExitCode, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Magick runs ImageMagick (or any binary accepting the same flags).
type Magick struct {
	binary  string
	timeout time.Duration
}

// NewMagick builds a converter from the converter section of the config.
func NewMagick(cfg config.ConverterConfig) *Magick {
	binary := cfg.Binary
	if binary == "" {
		binary = config.DefaultBinary
	}
	return &Magick{binary: binary, timeout: time.Duration(cfg.ConvertTimeout)}
}

// Binary returns the executable the converter invokes.
func (m *Magick) Binary() string { return m.binary }

// Convert runs the binary and waits for it. Stderr is captured and attached to
// the returned *Error.
func (m *Magick) Convert(ctx context.Context, in, out string, mode Mode) error {
	args, err := BuildArgs(in, out, mode)
	if err != nil {
		return err
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	logutil.GetLogger(ctx).Debug("run converter",
		zap.String("binary", m.binary),
		zap.Strings("args", args),
	)

	cmd := exec.CommandContext(ctx, m.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cerr := &Error{
			Binary:   m.binary,
			Args:     args,
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cerr.ExitCode = exitErr.ExitCode()
		}
		return cerr
	}
	return nil
}

// BuildArgs returns the argument list for one conversion.
func BuildArgs(in, out string, mode Mode) ([]string, error) {
	if mode.MaxEdge <= 0 {
		return nil, fmt.Errorf("invalid max edge %d", mode.MaxEdge)
	}
	if mode.Param <= 0 {
		return nil, fmt.Errorf("invalid %s parameter %d", mode.Kind, mode.Param)
	}
	// ">" makes the geometry shrink-only.
	geometry := fmt.Sprintf("%dx%d>", mode.MaxEdge, mode.MaxEdge)
	args := []string{in, "-resize", geometry}
	switch mode.Kind {
	case KindPalette:
		args = append(args, "-colors", strconv.Itoa(mode.Param), "-type", "optimize")
	case KindQuality:
		args = append(args, "-quality", strconv.Itoa(mode.Param))
	default:
		return nil, fmt.Errorf("unsupported conversion %s", mode.Kind)
	}
	return append(args, out), nil
}

// Check verifies that binary can be found and returns the first line it
// prints for -version.
func Check(ctx context.Context, binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, binary)
	}
	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%s found at %s but -version failed: %w", binary, path, err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}
