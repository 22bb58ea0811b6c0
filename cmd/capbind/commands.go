package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-capability/framework/app"
	"github.com/km-arc/go-capability/framework/binding"
	"github.com/km-arc/go-capability/framework/capability"
	"github.com/km-arc/go-capability/framework/config"
	"github.com/km-arc/go-capability/storage"
	"github.com/km-arc/go-capability/storage/httpapi"
	"github.com/km-arc/go-capability/storage/inmemory"
)

type options struct {
	envFiles []string
	document string
	output   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "capbind",
		Short:         "`capbind` binds capability implementations from a configuration document",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	root.PersistentFlags().StringVarP(&opts.document, "config", "c", "", "capability document (overrides CAPABILITIES_FILE)")

	check := &cobra.Command{
		Use:   "check",
		Short: "`check` binds every capability and prints what was bound",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), opts.output, a.Host.Bindings())
		},
	}
	check.Flags().StringVarP(&opts.output, "output", "o", "text", "report format: text or json")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "`serve` binds every capability and serves storage and diagnostics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, opts)
			if err != nil {
				return err
			}
			httpapi.Mount(a.Router(), a.Container)
			return a.Run(ctx)
		},
	}

	root.AddCommand(check, serve)
	return root
}

// bootstrap builds the application with the storage capabilities required
// and the in-memory implementations offered, then binds them.
func bootstrap(ctx context.Context, opts *options) (*app.Application, error) {
	a, err := app.New(opts.envFiles...)
	if err != nil {
		return nil, err
	}
	for _, t := range []capability.Type{storage.ServerStorageType, storage.ClientStorageType} {
		if err := a.RequireCapability(t); err != nil {
			return nil, err
		}
	}
	if err := a.UseImplementation(inmemory.NewServer); err != nil {
		return nil, err
	}
	if err := a.UseImplementation(inmemory.NewClient); err != nil {
		return nil, err
	}

	if opts.document != "" {
		doc, err := config.LoadDocument(opts.document)
		if err != nil {
			return nil, err
		}
		if err := a.Configure(doc); err != nil {
			return nil, err
		}
	}

	if err := a.Boot(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func report(w io.Writer, format string, records []binding.Record) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "text", "":
		for _, r := range records {
			line := fmt.Sprintf("%-16s %-18s", r.Type, r.Strategy)
			switch {
			case len(r.Instances) > 0:
				line += " instances=" + strings.Join(r.Instances, ",")
			case r.Implementation != "":
				line += " implementation=" + r.Implementation
			}
			if len(r.Members) > 0 {
				line += " members=" + strings.Join(r.Members, ",")
			}
			fmt.Fprintln(w, line)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
