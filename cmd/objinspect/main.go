// Command objinspect loads type definitions and inspects the resulting
// hierarchy, prototypes and instances.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coreobject/internal/config"
	"coreobject/internal/inspect"
	"coreobject/internal/logging"
	"coreobject/internal/schema"
	"coreobject/pkg/object"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries the flags and loaded configuration shared by all commands.
type app struct {
	configPath  string
	schemaPaths []string
	debug       bool
	showHidden  bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "objinspect",
		Short: "Inspect prototype type hierarchies defined in YAML",
		Long: `objinspect compiles YAML type definitions into a prototype hierarchy
rooted at BaseObject and prints what it finds.

Types declare concatenated and merged properties, computed properties,
methods and statics. Instances can be constructed from the command line to
see how initialization data is combined with the prototype chain.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultFile, "Configuration file")
	rootCmd.PersistentFlags().StringSliceVarP(&a.schemaPaths, "schema", "s", nil, "Definition files or directories (overrides schema.paths)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&a.showHidden, "hidden", false, "Show non-enumerable slots")

	rootCmd.AddCommand(
		a.treeCmd(),
		a.describeCmd(),
		a.newCmd(),
		a.watchCmd(),
		versionCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if len(a.schemaPaths) > 0 {
		cfg.Schema.Paths = a.schemaPaths
	}
	if a.debug {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}
	if a.showHidden {
		cfg.Output.ShowHidden = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	object.SetLoggers(object.Loggers{
		Types:    logging.Zap(logging.CategoryTypes),
		Mixin:    logging.Zap(logging.CategoryMixin),
		Instance: logging.Zap(logging.CategoryInstance),
	})

	a.cfg = cfg
	logging.CLIDebug("running %s with schema paths %v", cmd.Name(), cfg.Schema.Paths)
	return nil
}

func (a *app) load(ctx context.Context) (*schema.Registry, error) {
	return schema.Load(ctx, a.cfg.Schema.Paths)
}

func (a *app) renderer() *inspect.Renderer {
	return inspect.NewRenderer(inspect.Options{
		Color:        a.cfg.Output.Color,
		ShowHidden:   a.cfg.Output.ShowHidden,
		ShowBuiltins: a.cfg.Output.ShowBuiltins,
	})
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the objinspect version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "objinspect %s\n", version)
		},
	}
}

func main() {
	defer logging.CloseAll()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
