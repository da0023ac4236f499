package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/slimdeck/internal/config"
	"github.com/xxxsen/slimdeck/internal/converter"
)

// CheckCommand verifies that the configured image converter can be run.
type CheckCommand struct {
	out io.Writer
}

func NewCheckCommand() *CheckCommand {
	return &CheckCommand{out: os.Stdout}
}

func (c *CheckCommand) Name() string { return "check" }

func (c *CheckCommand) Desc() string {
	return "Check that the image converter is installed"
}

func (c *CheckCommand) SetOutput(w io.Writer) { c.out = w }

func (c *CheckCommand) Init(f *pflag.FlagSet) {}

func (c *CheckCommand) PreRun(ctx context.Context) error { return nil }

func (c *CheckCommand) Run(ctx context.Context) error {
	binary := config.Current().Converter.Binary
	version, err := converter.Check(ctx, binary)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Debug("converter found", zap.String("binary", binary), zap.String("version", version))
	fmt.Fprintf(c.out, "%s: %s\n", binary, version)
	return nil
}

func (c *CheckCommand) PostRun(ctx context.Context) error { return nil }

func init() {
	RegisterRunner("check", func() IRunner { return NewCheckCommand() })
}
