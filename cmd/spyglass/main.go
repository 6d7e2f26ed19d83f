// Command spyglass browses heterogeneous resources through one URI
// grammar: spyglass scheme://resource renders a structural summary or a
// single named element of whatever the scheme's adapter can reach.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"spyglass/internal/backend"
	"spyglass/internal/codec"
	"spyglass/internal/config"
	"spyglass/internal/dispatch"
	"spyglass/internal/logging"
	"spyglass/internal/registry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	format   string
	debug    bool
	metadata bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "spyglass <uri | @listFile>",
		Short: "Universal resource browser",
		Long: `Spyglass resolves a resource URI against a registry of scheme adapters,
extracts the resource's structure or one named element, and renders the
result as text, json, grep, or csv.

Examples:
  spyglass env://HOME
  spyglass sqlite:///var/db/app.sqlite?table=users --format csv
  spyglass dns://example.com?type=MX
  spyglass @uris.txt --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], opts)
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging and full error traces")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: "+strings.Join(codec.Formats(), ", "))
	cmd.Flags().BoolVar(&opts.metadata, "metadata", false, "also surface adapter metadata where available")

	cmd.AddCommand(newSchemesCmd(opts))

	return cmd
}

func run(target string, opts *rootOptions) error {
	cfg, cfgPath, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spyglass: %v\n", err)
		return err
	}

	logger, err := logging.New(opts.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spyglass: init logging: %v\n", err)
		return err
	}
	defer logger.Sync()

	if cfgPath != "" {
		logger.Debug("loaded config", zap.String("path", cfgPath))
	}

	formatName := opts.format
	if formatName == "" {
		formatName = cfg.DefaultFormat
	}
	format, err := codec.ParseFormat(formatName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spyglass: %v\n", err)
		return err
	}

	reg, err := registry.New(backend.Entries(cfg)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spyglass: %v\n", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := dispatch.New(reg, logger)
	runOpts := dispatch.Options{Format: format, Metadata: opts.metadata}

	uris, err := resolveTargets(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spyglass: %v\n", err)
		return err
	}

	// One URI is fully resolved before the next; a failing batch entry
	// is logged and the rest still run.
	failed := 0
	for _, raw := range uris {
		if err := d.Run(ctx, raw, runOpts, os.Stdout, os.Stderr); err != nil {
			failed++
			if len(uris) > 1 {
				logger.Warn("entry failed", zap.String("uri", raw), zap.Error(err))
			}
			var internal *dispatch.InternalError
			if opts.debug && errors.As(err, &internal) && internal.Stack != "" {
				fmt.Fprintln(os.Stderr, internal.Stack)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d resources failed", failed, len(uris))
	}
	return nil
}

// resolveTargets expands an @listFile argument into its URIs; anything
// else is a single URI. Blank lines and # comments are skipped.
func resolveTargets(target string) ([]string, error) {
	if !strings.HasPrefix(target, "@") {
		return []string{target}, nil
	}

	path := strings.TrimPrefix(target, "@")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list file: %w", err)
	}
	defer f.Close()

	var uris []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		uris = append(uris, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list file: %w", err)
	}
	if len(uris) == 0 {
		return nil, fmt.Errorf("list file %q contains no URIs", path)
	}
	return uris, nil
}

func newSchemesCmd(opts *rootOptions) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "schemes",
		Short: "List registered schemes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load()
			if err != nil {
				return err
			}
			reg, err := registry.New(backend.Entries(cfg)...)
			if err != nil {
				return err
			}

			for _, scheme := range reg.Schemes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", scheme, reg.Help(scheme))
				if !long {
					continue
				}
				schema := reg.Schema(scheme)
				keys := make([]string, 0, len(schema))
				for key := range schema {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				for _, key := range keys {
					fmt.Fprintf(cmd.OutOrStdout(), "           ?%s= %s\n", key, schema[key])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&long, "long", false, "include query parameter schemas")
	return cmd
}
