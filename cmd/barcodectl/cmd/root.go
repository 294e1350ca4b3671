// Package cmd implements the barcodectl command line.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/anime-shed/barcode-studio-go/internal/config"
	"github.com/anime-shed/barcode-studio-go/internal/container"
	"github.com/anime-shed/barcode-studio-go/internal/generator"
	"github.com/anime-shed/barcode-studio-go/internal/logger"
	"github.com/anime-shed/barcode-studio-go/internal/scanner"
	"github.com/anime-shed/barcode-studio-go/internal/service"
	"github.com/anime-shed/barcode-studio-go/pkg/validation"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Each call returns fresh commands so
// tests can run them independently.
func NewRootCommand(version string) *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:   "barcodectl",
		Short: "Generate and scan barcodes from the command line",
		Long: `barcodectl renders linear and 2D barcodes and decodes them from images,
using the same pipeline as the HTTP server.

Examples:
  barcodectl generate --type qrcode --data "https://example.com" --out qr.png
  barcodectl generate --type EAN13 --data 590123412345 --format svg
  barcodectl scan photo.jpg --expected "ABC-123"
  barcodectl types`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "error", "log level (debug, info, warn, error)")

	newService := func(cmd *cobra.Command) (service.BarcodeService, error) {
		log := logrus.New()
		log.SetOutput(cmd.ErrOrStderr())
		log.SetLevel(logger.ParseLevel(logLevel))
		return buildService(log)
	}

	root.AddCommand(
		newGenerateCommand(newService),
		newScanCommand(newService),
		newTypesCommand(newService),
	)
	return root
}

type serviceFactory func(cmd *cobra.Command) (service.BarcodeService, error)

// buildService wires the generator with the logo sources configured in the
// environment. The CLI has no uploads, metrics or event observers.
func buildService(log logrus.FieldLogger) (service.BarcodeService, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logos, err := container.NewLogoRepository(cfg, log)
	if err != nil {
		return nil, err
	}
	return service.NewBarcodeService(service.Dependencies{
		Pipeline: generator.New(
			generator.WithLogoLoader(logos),
			generator.WithLogoTimeout(cfg.LogoFetchTimeout),
			generator.WithMaxWidth(cfg.MaxBarcodeWidth),
			generator.WithLogger(log),
		),
		Scanner: scanner.New(scanner.WithLogger(log)),
		Validator: validation.NewRequestValidator(validation.Limits{
			MinSize:       cfg.MinSize,
			MaxSize:       cfg.MaxSize,
			MaxDimension:  cfg.MaxSize,
			MaxDataLength: cfg.MaxDataLength,
			BatchMaxItems: cfg.BatchMaxItems,
		}),
		Logger: log,
	}), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
