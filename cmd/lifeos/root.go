package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lifeos/internal/amqp"
	"lifeos/internal/cli"
	"lifeos/internal/config"
	"lifeos/internal/log"
	"lifeos/internal/render"
	"lifeos/internal/session"
	"lifeos/internal/storage"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// app holds what a single invocation opens and must close.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   storage.BlobStore
	events  *amqp.Client
	session *session.Session

	output  string
	sample  bool
	verbose bool
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lifeos",
		Short:         "Track health, finance, career, relationships, habits and goals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputText, "Output format: text, json or yaml")
	cmd.PersistentFlags().BoolVar(&a.sample, "sample", false, "Show the read-only sample data instead of your own")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log at debug level")

	cmd.AddCommand(newDashboardCmd(a))
	cmd.AddCommand(newDomainCmd(a))
	cmd.AddCommand(newLogCmd(a))
	cmd.AddCommand(newAskCmd(a))
	cmd.AddCommand(newChatCmd(a))
	cmd.AddCommand(newInsightsCmd(a))
	cmd.AddCommand(newChecklistCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newResetCmd(a))
	return cmd
}

func (a *app) open(ctx context.Context) (err error) {
	switch a.output {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unsupported output format: %s (supported: text, json, yaml)", a.output)
	}

	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = cli.SetupLogger(cfg.LogLevel, a.verbose, log.ComponentCLI)
	if err != nil {
		return err
	}
	defer cli.Recover(a.logger, &err)

	a.store, err = cli.OpenStore(cfg, a.logger)
	if err != nil {
		return err
	}
	caller, err := cli.BuildCaller(cfg)
	if err != nil {
		return err
	}

	opts := session.Options{
		Caller:    caller,
		AgentIDs:  cli.AgentIDs(cfg),
		Store:     a.store,
		Logger:    a.logger,
		Location:  cfg.Location(),
		StatusTTL: cfg.StatusTTL,
		CacheSize: cfg.ViewCacheSize,
		CacheTTL:  cfg.ViewCacheTTL,
	}
	if a.events = cli.OpenEvents(cfg, a.logger); a.events != nil {
		opts.Events = a.events
	}

	a.session, err = session.New(opts)
	if err != nil {
		return err
	}
	if err := a.session.Load(ctx); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	a.session.SetSampleMode(a.sample)
	return nil
}

// close releases what open acquired. It is safe to call when open failed
// part way or never ran.
func (a *app) close() error {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("Failed to close AMQP client", log.FieldError, err.Error())
		}
		a.events = nil
	}
	if a.store != nil {
		err := a.store.Close()
		a.store = nil
		return err
	}
	return nil
}

// guarded recovers a panic in a command body into cli.ErrInternal.
func (a *app) guarded(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer cli.Recover(a.logger, &err)
		return run(cmd, args)
	}
}

// emit writes v as JSON or YAML, or calls text for the text format.
func (a *app) emit(w io.Writer, v any, text func(io.Writer) error) error {
	if a.output == outputText {
		return text(w)
	}
	return render.Encode(w, a.output, v)
}

// status prints the session banner in text mode.
func (a *app) status(w io.Writer) error {
	if a.output != outputText {
		return nil
	}
	st, ok := a.session.Status()
	if !ok {
		return nil
	}
	a.session.DismissStatus()
	return render.WriteStatus(w, st)
}
