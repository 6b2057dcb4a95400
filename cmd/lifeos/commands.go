package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lifeos/internal/core"
	"lifeos/internal/log"
	"lifeos/internal/render"
	"lifeos/internal/storage"
)

func domainKeys() string {
	keys := make([]string, len(core.Domains))
	for i, d := range core.Domains {
		keys[i] = string(d)
	}
	return strings.Join(keys, ", ")
}

func parseDomainArg(s string) (core.Domain, error) {
	d, err := core.ParseDomain(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q (one of %s)", err, s, domainKeys())
	}
	return d, nil
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the overview of every domain",
		Args:  cobra.NoArgs,
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			d := a.session.Dashboard()
			return a.emit(cmd.OutOrStdout(), d, func(w io.Writer) error {
				return render.WriteDashboard(w, d)
			})
		}),
	}
}

func newDomainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "domain <key>",
		Short: "Show the detail view of one domain",
		Long:  "Show the detail view of one domain. Keys: " + domainKeys() + ".",
		Args:  cobra.ExactArgs(1),
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			v, err := a.session.DomainView(d)
			if err != nil {
				return err
			}
			return a.emit(cmd.OutOrStdout(), v, func(w io.Writer) error {
				return render.WriteDomainView(w, v)
			})
		}),
	}
}

func newLogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "log <domain> <text...>",
		Short: "Describe something in plain language and file it as an entry",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			entry, err := a.session.LogEntry(cmd.Context(), d, strings.Join(args[1:], " "))
			if serr := a.status(out); serr != nil {
				return serr
			}
			if err != nil {
				return err
			}
			return a.emit(out, entry, func(w io.Writer) error {
				return render.WriteEntry(w, entry)
			})
		}),
	}
}

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <domain> <question...>",
		Short: "Ask a question about one domain",
		Args:  cobra.MinimumNArgs(2),
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			d, err := parseDomainArg(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			answer, err := a.session.AskDomain(cmd.Context(), d, strings.Join(args[1:], " "))
			if err != nil {
				if serr := a.status(out); serr != nil {
					return serr
				}
				return err
			}
			return a.emit(out, answer, func(w io.Writer) error {
				return render.WriteAnswer(w, answer)
			})
		}),
	}
}

func newChatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <message...>",
		Short: "Talk to the life coach",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			reply, err := a.session.SendChat(cmd.Context(), strings.Join(args, " "))
			if reply.Content != "" {
				if werr := a.emit(cmd.OutOrStdout(), reply, func(w io.Writer) error {
					return render.WriteMessage(w, reply)
				}); werr != nil {
					return werr
				}
			}
			return err
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Print the conversation so far",
		Args:  cobra.NoArgs,
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			msgs := a.session.Chat()
			return a.emit(cmd.OutOrStdout(), msgs, func(w io.Writer) error {
				return render.WriteChat(w, msgs)
			})
		}),
	})
	return cmd
}

func newInsightsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Analyse every domain and refresh the scores",
		Args:  cobra.NoArgs,
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			insight, err := a.session.GenerateInsights(cmd.Context())
			if serr := a.status(out); serr != nil {
				return serr
			}
			if err != nil {
				return err
			}
			return a.emit(out, insight, func(w io.Writer) error {
				return render.WriteInsight(w, insight)
			})
		}),
	}
}

func newChecklistCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Show today's checklist",
		Args:  cobra.NoArgs,
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			return a.writeChecklist(cmd.OutOrStdout())
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <n>",
		Short: "Check or uncheck item n (numbered from 1)",
		Args:  cobra.ExactArgs(1),
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid item number %q", args[0])
			}
			if _, err := a.session.ToggleChecklistItem(cmd.Context(), n-1); err != nil {
				return err
			}
			return a.writeChecklist(cmd.OutOrStdout())
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Uncheck every item",
		Args:  cobra.NoArgs,
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			a.session.ResetChecklist(cmd.Context())
			return a.writeChecklist(cmd.OutOrStdout())
		}),
	})
	return cmd
}

func (a *app) writeChecklist(out io.Writer) error {
	items := a.session.Checklist()
	return a.emit(out, items, func(w io.Writer) error {
		return render.WriteChecklist(w, items)
	})
}

func newExportCmd(a *app) *cobra.Command {
	var format, file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every entry, the insight, checklist and chat to one document",
		Args:  cobra.NoArgs,
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			exporter, err := render.NewExporter(format)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if file != "" {
				f, err := os.Create(file)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				out = f
			}
			snap := a.session.Snapshot()
			if err := exporter.Export(snap, out); err != nil {
				return fmt.Errorf("export %s: %w", exporter.Extension(), err)
			}
			a.logger.Info("Exported session",
				log.FieldOperation, log.OpExport,
				"format", exporter.Extension(),
				log.FieldEntryCount, snap.Entries.Count())
			return nil
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json, yaml or md")
	cmd.Flags().StringVar(&file, "file", "", "Write to this file instead of stdout")
	return cmd
}

var errResetNotConfirmed = errors.New("reset deletes all stored data; pass --yes to confirm")

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every stored entry, insight, chat message and checklist",
		Args:  cobra.NoArgs,
		RunE: a.guarded(func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errResetNotConfirmed
			}
			for _, key := range storage.AllKeys {
				if err := a.store.Delete(cmd.Context(), key); err != nil {
					return fmt.Errorf("delete %s: %w", key, err)
				}
			}
			a.logger.Info("Stored data deleted", "keys", len(storage.AllKeys))
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "All LifeOS data deleted.")
			return err
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
