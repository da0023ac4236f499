package app

import (
	"context"
	"io"

	"github.com/spf13/pflag"
)

// IRunner represents a runnable command in the application layer.
type IRunner interface {
	Name() string
	Desc() string
	Init(f *pflag.FlagSet)
	PreRun(ctx context.Context) error
	Run(ctx context.Context) error
	PostRun(ctx context.Context) error
}

// IArgsRunner is implemented by runners that take positional arguments.
// Use returns the cobra usage line and NArgs the exact argument count.
type IArgsRunner interface {
	Use() string
	NArgs() int
	SetArgs(args []string)
}

// IOutputRunner is implemented by runners that print a console report.
type IOutputRunner interface {
	SetOutput(w io.Writer)
}
