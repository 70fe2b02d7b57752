// Package cli implements the eudrctl commands for running the pipeline and
// inspecting the ledger without the HTTP server.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"eudrgate/internal/audit"
	"eudrgate/internal/export"
	"eudrgate/internal/ingest"
	"eudrgate/internal/ledger"
	"eudrgate/internal/normalize"
	"eudrgate/internal/platform/config"
	"eudrgate/internal/platform/logger"
	"eudrgate/internal/reconcile"
	"eudrgate/internal/traces"
)

// app holds the wired pipeline shared by all commands.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	service *ingest.Service
	reader  *reconcile.Reader
	builder *export.Builder
}

func newApp() (*app, error) {
	cfg := config.Load()
	log := logger.New()
	slog.SetDefault(log)

	var store ledger.Store
	switch cfg.Ledger.Backend {
	case "memory":
		store = ledger.NewInMemoryStore()
	default:
		fileStore, err := ledger.NewFileStore(cfg.Ledger.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open ledger file: %w", err)
		}
		store = fileStore
	}

	var registry traces.Client
	if cfg.Registry.Mock {
		registry = &traces.MockClient{}
	} else {
		httpClient, err := traces.NewHTTPClient(traces.HTTPClientConfig{
			BaseURL:     cfg.Registry.BaseURL,
			BearerToken: cfg.Registry.BearerToken,
			Timeout:     cfg.Registry.Timeout,
		})
		if err != nil {
			return nil, err
		}
		registry = httpClient
	}

	validator := ingest.NewValidator(registry, cfg.Validation.Concurrency, log, nil)
	submitter := ingest.NewSubmitter(registry, ingest.TraderProfile{
		OperatorName:    cfg.Trader.OperatorName,
		OperatorCountry: cfg.Trader.OperatorCountry,
		OperatorAddress: cfg.Trader.OperatorAddress,
		OperatorEmail:   cfg.Trader.OperatorEmail,
		HSHeading:       cfg.Trader.HSHeading,
		GoodsDesc:       cfg.Trader.GoodsDesc,
		QuantityUnit:    cfg.Trader.QuantityUnit,
	}, log, nil)
	service := ingest.NewService(validator, submitter, store, audit.NopPublisher{}, log, nil)
	reconciler := reconcile.New(store, registry, audit.NopPublisher{}, log, nil)
	reader := reconcile.NewReader(store, reconciler)

	return &app{
		cfg:     cfg,
		logger:  log,
		service: service,
		reader:  reader,
		builder: export.NewBuilder(reader),
	}, nil
}

// NewRootCommand assembles the eudrctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "eudrctl",
		Short:         "Run the compliance pipeline and inspect the statement ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPipelineCommand())
	root.AddCommand(newRecordsCommand())
	root.AddCommand(newExportCommand())
	root.AddCommand(newResetCommand())
	return root
}

func newPipelineCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Validate a supplier feed, submit the consolidated statement and record it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open feed: %w", err)
			}
			defer f.Close()

			rows, err := normalize.ReadCSV(f)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			summary, err := a.service.Ingest(ctx, file, rows)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded %s: %d accepted, %d rejected of %d\n",
				summary.InternalReferenceNumber, summary.Accepted, summary.Rejected, summary.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "input.csv", "supplier CSV feed to ingest")
	return cmd
}

func newRecordsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List ledger records, reconciling pending registry numbers first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			records, err := a.reader.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			for _, record := range records {
				ref := "pending"
				if record.TraderStatement.ReferenceNumber != nil {
					ref = *record.TraderStatement.ReferenceNumber
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  ref=%s  statements=%d\n",
					record.InternalReferenceNumber,
					record.Timestamp.Format(time.RFC3339),
					record.TraderStatement.Status,
					ref,
					len(record.SupplierStatements),
				)
			}
			return nil
		},
	}
}

func newExportCommand() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the cumulative product report",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			mapping, err := a.builder.BuildMapping(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "csv":
				return export.WriteCSV(w, mapping)
			case "onix":
				return export.WriteONIX(w, mapping)
			case "xlsx":
				return export.WriteXLSX(w, mapping)
			}
			return fmt.Errorf("unknown export format %q", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv, onix or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the statement ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.service.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ledger cleared")
			return nil
		},
	}
}
