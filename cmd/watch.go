package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/extdot/internal"
	"github.com/gnoswap-labs/extdot/internal/writer"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Re-expand files whenever they are written",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}

		config, engine, err := loadEngine("")
		if err != nil {
			logger.Error("Failed to initialize expansion engine", zap.Error(err))
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := writer.New(false, config.OutputExtension)
		w.Out = cmd.OutOrStdout()
		return runWatch(ctx, logger, engine, args, w, cmd)
	},
}

func runWatch(ctx context.Context, logger *zap.Logger, engine *internal.Engine, dirs []string, w *writer.Writer, cmd *cobra.Command) error {
	handle := func(result internal.Result, err error) {
		if err != nil {
			return // already logged by the engine
		}
		if _, err := w.Write(result.Filename, result.Output); err != nil {
			logger.Error("Error writing output", zap.String("file", result.Filename), zap.Error(err))
			return
		}
		printIssues(logger, []internal.Result{result}, cmd.ErrOrStderr())
	}

	if err := engine.StartWatching(dirs, handle); err != nil {
		return err
	}
	<-ctx.Done()
	logger.Info("stopping watcher")
	return engine.StopWatching()
}
