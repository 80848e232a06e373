// Command qniverse translates an OpenQASM 2.0 file into a Python program
// for Qiskit, Cirq or CUDA-Q.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"go.uber.org/zap"

	"qniverse/internal/config"
	"qniverse/internal/preview"
	"qniverse/internal/translate"
	"qniverse/internal/watch"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
	headStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

type options struct {
	platform     string
	backend      string
	output       string
	shots        int
	configFile   string
	watch        bool
	preview      bool
	verbose      bool
	listBackends bool
	initConfig   bool
}

// apply overrides cfg with the flags given on the command line.
func (o *options) apply(cfg *config.Config) {
	if o.platform != "" {
		cfg.Platform = o.platform
	}
	if o.backend != "" {
		cfg.Backend = o.backend
	}
	if o.output != "" {
		cfg.Output = o.output
	}
	if o.shots != 0 {
		cfg.Shots = o.shots
	}
}

// newRootCmd builds the command, binding its flags to o. Flags may come
// before or after the input file.
func newRootCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qniverse <file.qasm>",
		Short: "Translate OpenQASM 2.0 into Qiskit, Cirq or CUDA-Q programs",
		Long: `qniverse reads an OpenQASM 2.0 circuit and writes a Python program that
builds and runs it with Qiskit, Cirq or CUDA-Q on the chosen backend.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case o.listBackends:
				fmt.Fprint(cmd.OutOrStdout(), backendTable())
				return nil
			case o.initConfig:
				return writeDefaultConfig(cmd, o)
			case len(args) != 1:
				cmd.Usage()
				return errors.New("expected one input file")
			}
			return run(cmd, o, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.platform, "platform", "p", "", "target platform: qiskit, cirq or cudaq")
	f.StringVarP(&o.backend, "backend", "b", "", "backend for the target platform")
	f.StringVarP(&o.output, "output", "o", "", "write the generated program to this file instead of stdout")
	f.IntVar(&o.shots, "shots", 0, "number of samples the generated program requests")
	f.StringVar(&o.configFile, "config", "", "configuration file (default "+config.DefaultFileName+")")
	f.BoolVarP(&o.watch, "watch", "w", false, "translate again whenever the input changes")
	f.BoolVar(&o.preview, "preview", false, "open the interactive preview")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "verbose logging")
	f.BoolVar(&o.listBackends, "list-backends", false, "list the backends of every platform")
	f.BoolVar(&o.initConfig, "init", false, "write a default configuration file")
	return cmd
}

func main() {
	var o options
	if err := newRootCmd(&o).Execute(); err != nil {
		report(err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func writeDefaultConfig(cmd *cobra.Command, o *options) error {
	path := o.configFile
	if path == "" {
		path = config.DefaultFileName
	}
	cfg := config.Config{}.WithDefaults()
	o.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("wrote "+path))
	return nil
}

// run translates name once, then hands over to the preview or the watcher
// when asked to.
func run(cmd *cobra.Command, o *options, name string) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.CreateLogger(o.verbose)
	if err != nil {
		return err
	}
	atexit.Register(func() { _ = logger.Sync() })

	path, err := resolveSource(name)
	if err != nil {
		return err
	}

	tr, err := translate.New(
		translate.WithLogger(logger),
		translate.WithShots(cfg.Shots),
		translate.WithCacheSize(cfg.CacheSize),
	)
	if err != nil {
		return err
	}
	platform := cfg.PlatformValue()

	if o.preview {
		src, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrap(err, "read source")
		}
		return preview.Run(preview.New(tr, path, string(src), platform, cfg.Backend))
	}

	j := &job{
		translator: tr,
		logger:     logger,
		stdout:     cmd.OutOrStdout(),
		path:       path,
		output:     cfg.Output,
		platform:   platform,
		backend:    cfg.Backend,
	}
	if err := j.run(); err != nil {
		if !o.watch {
			return err
		}
		report(err)
	}
	if o.watch {
		return watchSource(cmd.Context(), j)
	}
	return nil
}

// watchSource translates again after every write to the source until
// interrupted. Failures are reported and the previous output is left alone.
func watchSource(ctx context.Context, j *job) error {
	w, err := watch.New(j.path, j.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	j.logger.Info("watching", zap.String("path", j.path))
	return w.Run(ctx, func() {
		if err := j.run(); err != nil {
			report(err)
		}
	})
}

func report(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
}
