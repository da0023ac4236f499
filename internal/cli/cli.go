package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/slimdeck/internal/app"
	"github.com/xxxsen/slimdeck/internal/cli/common"
	"github.com/xxxsen/slimdeck/internal/config"
)

const defaultRunnerName = "compress"

// NewRootCommand builds the command tree with one subcommand per registered
// runner.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "slimdeck",
		Short:         "Shrink PowerPoint presentations by recompressing embedded images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Root().PersistentFlags().GetString(common.ConfigFlag)
			cfg, err := common.LoadConfig(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			config.SetDefault(cfg)
			return nil
		},
	}
	rootCmd.PersistentFlags().String(common.ConfigFlag, "", "Path to a json or yaml config file")

	// the bare form "slimdeck <source>" runs the compress runner directly
	defaultRunner := app.MustResolveRunner(defaultRunnerName)
	rootCmd.Args = cobra.MaximumNArgs(1)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runRunner(cmd, defaultRunner, args)
	}
	if ar, ok := defaultRunner.(app.IArgsRunner); ok {
		rootCmd.Use = "slimdeck " + strings.TrimPrefix(ar.Use(), defaultRunner.Name()+" ")
	}
	defaultRunner.Init(rootCmd.Flags())

	for _, r := range app.RunnerList() {
		runner := app.MustResolveRunner(r)
		subcmd := &cobra.Command{
			Use:   runner.Name(),
			Short: runner.Desc(),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runRunner(cmd, runner, args)
			},
		}
		if ar, ok := runner.(app.IArgsRunner); ok {
			subcmd.Use = ar.Use()
			subcmd.Args = cobra.ExactArgs(ar.NArgs())
		}
		runner.Init(subcmd.Flags())
		rootCmd.AddCommand(subcmd)
	}
	return rootCmd
}

func runRunner(cmd *cobra.Command, runner app.IRunner, args []string) error {
	ctx := commandContext(cmd)
	if ar, ok := runner.(app.IArgsRunner); ok {
		ar.SetArgs(args)
	}
	if wr, ok := runner.(app.IOutputRunner); ok {
		wr.SetOutput(cmd.OutOrStdout())
	}
	if err := runner.PreRun(ctx); err != nil {
		return err
	}
	if err := runner.Run(ctx); err != nil {
		return err
	}
	return runner.PostRun(ctx)
}

// Execute runs the CLI.
func Execute() error {
	if err := NewRootCommand().Execute(); err != nil {
		logutil.GetLogger(context.Background()).Error("exec cmd failed", zap.Error(err))
		return err
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
