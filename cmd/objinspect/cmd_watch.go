package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"coreobject/internal/logging"
	"coreobject/internal/schema"
	"coreobject/internal/watch"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Recompile definitions on change and reprint the hierarchy",
		Long: `Prints the type hierarchy, then watches the schema paths and prints it
again whenever a definition file changes. Compile errors are reported and the
watch continues. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			a.reload(ctx, out)

			w, err := watch.New(a.cfg.Schema.Paths, a.cfg.GetWatchDebounce())
			if err != nil {
				return err
			}
			defer w.Close()

			fmt.Fprintln(out, "watching for changes...")
			return w.Run(ctx, func(ctx context.Context, changed []string) {
				logging.CLI("reloading after changes to %v", changed)
				a.reload(ctx, out)
			})
		},
	}
}

// reload recompiles the definitions and prints the tree or the errors.
func (a *app) reload(ctx context.Context, out io.Writer) {
	reg, err := a.load(ctx)
	if err != nil {
		logging.WatchError("recompile failed: %v", err)
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(out, a.renderer().Tree(reg, schema.RootName))
}
