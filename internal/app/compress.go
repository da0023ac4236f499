package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/slimdeck/internal/config"
	"github.com/xxxsen/slimdeck/internal/converter"
	"github.com/xxxsen/slimdeck/internal/deck"
	"github.com/xxxsen/slimdeck/internal/media"
)

// CompressCommand recompresses the images of one deck.
type CompressCommand struct {
	source string
	width  int
	force  bool

	out    io.Writer
	conv   converter.Converter
	result *deck.Result
}

func NewCompressCommand() *CompressCommand {
	return &CompressCommand{out: os.Stdout}
}

func (c *CompressCommand) Name() string { return "compress" }

func (c *CompressCommand) Desc() string {
	return "Compress the images embedded in a PowerPoint presentation"
}

func (c *CompressCommand) Use() string { return "compress <source.pptx>" }

func (c *CompressCommand) NArgs() int { return 1 }

func (c *CompressCommand) SetArgs(args []string) {
	if len(args) > 0 {
		c.source = args[0]
	}
}

func (c *CompressCommand) SetOutput(w io.Writer) { c.out = w }

func (c *CompressCommand) Init(f *pflag.FlagSet) {
	f.IntVar(&c.width, "width", 0, "Longest edge of image output in pixels (0 uses converter.max_edge from config)")
	f.BoolVarP(&c.force, "force", "f", false, "Overwrite original file")
}

func (c *CompressCommand) PreRun(ctx context.Context) error {
	if strings.TrimSpace(c.source) == "" {
		return errors.New("compress requires a source pptx file")
	}
	if c.width < 0 {
		return fmt.Errorf("invalid --width %d", c.width)
	}
	info, err := os.Stat(c.source)
	if err != nil {
		return fmt.Errorf("stat source %s: %w", c.source, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", c.source)
	}
	logutil.GetLogger(ctx).Info("starting compress",
		zap.String("source", c.source),
		zap.Int("width", c.width),
		zap.Bool("force", c.force),
	)
	return nil
}

func (c *CompressCommand) Run(ctx context.Context) error {
	cfg := config.Current()
	maxEdge := cfg.Converter.MaxEdge
	if c.width > 0 {
		maxEdge = c.width
	}
	conv := c.conv
	if conv == nil {
		conv = converter.NewMagick(cfg.Converter)
	}

	res, err := deck.Compress(ctx, deck.Options{
		Source:    c.source,
		Force:     c.force,
		Converter: conv,
		Media: media.Options{
			Profiles:   media.DefaultProfiles(cfg.Converter),
			MaxEdge:    maxEdge,
			MinSavings: cfg.MinSavings,
		},
		Out: c.out,
	})
	if err != nil {
		return err
	}
	c.result = res
	return nil
}

func (c *CompressCommand) PostRun(ctx context.Context) error {
	if c.result == nil {
		return nil
	}
	logutil.GetLogger(ctx).Info("compress finished", zap.String("output", c.result.Output))
	return nil
}

// Result returns the outcome gathered during Run.
func (c *CompressCommand) Result() *deck.Result {
	return c.result
}

func init() {
	RegisterRunner("compress", func() IRunner { return NewCompressCommand() })
}
