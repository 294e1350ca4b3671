package cmd

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anime-shed/barcode-studio-go/internal/generator"
	"github.com/anime-shed/barcode-studio-go/internal/symbology"
	"github.com/anime-shed/barcode-studio-go/pkg/models"

	"github.com/spf13/cobra"
)

func newGenerateCommand(newService serviceFactory) *cobra.Command {
	var (
		req    models.GenerateRequest
		out    string
		noText bool
		margin int
		ec     string
		dots   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a barcode to a file or stdout",
		Long: `Render one barcode. Raster and PDF output is written as binary, SVG as text.
Without --out the output goes to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("no-text") {
				req.Options.DisplayValue = generator.Bool(!noText)
			}
			if cmd.Flags().Changed("margin") {
				req.Options.Margin = generator.Int(margin)
			}
			req.Options.ErrorCorrectionLevel = generator.ECLevel(strings.ToUpper(ec))
			req.Options.DotStyle = generator.DotStyle(dots)

			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			if !res.Success {
				return errors.New(res.Error)
			}
			if res.Note != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "note:", res.Note)
			}

			body, err := payloadBytes(res.Data)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				out = filepath.Join(out, outputName(res))
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%s, %d bytes)\n", out, res.Format, len(body))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&req.Type, "type", "t", "", "symbology, e.g. CODE128, EAN13, qrcode, datamatrix")
	f.StringVarP(&req.Data, "data", "d", "", "payload to encode")
	f.StringVarP(&req.Format, "format", "f", "png", "output format: png, svg, jpg, jpeg, gif, webp, pdf")
	f.StringVarP(&out, "out", "o", "", "output file or directory (default stdout)")
	f.IntVar(&req.Options.Size, "size", 0, "QR size in pixels")
	f.StringVar(&req.Options.Foreground, "fg", "", "foreground color (#RRGGBB)")
	f.StringVar(&req.Options.Background, "bg", "", "background color (#RRGGBB)")
	f.StringVar(&req.Options.EyeColor, "eye-color", "", "QR finder pattern color")
	f.StringVar(&dots, "dot-style", "", "QR module style: square, rounded")
	f.StringVar(&req.Options.LogoPath, "logo", "", "logo to place in the QR center (path, URL or azblob://)")
	f.StringVar(&ec, "ec", "", "QR error correction level: L, M, Q, H")
	f.Float64Var(&req.Options.Width, "width", 0, "linear bar width")
	f.IntVar(&req.Options.Height, "height", 0, "linear bar height")
	f.BoolVar(&noText, "no-text", false, "hide the human readable text under linear codes")
	f.IntVar(&req.Options.FontSize, "font-size", 0, "human readable text size")
	f.IntVar(&margin, "margin", 0, "quiet zone")
	f.IntVar(&req.Options.Scale, "scale", 0, "2D module scale")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

// payloadBytes turns a result body into file content: data URIs are decoded,
// SVG markup is returned as is.
func payloadBytes(data string) ([]byte, error) {
	if !strings.HasPrefix(data, "data:") {
		return []byte(data), nil
	}
	_, encoded, ok := strings.Cut(data, ";base64,")
	if !ok {
		return nil, fmt.Errorf("unexpected data URI %.32q", data)
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// outputName is the file name used when --out is a directory.
func outputName(res *generator.Result) string {
	return strings.ToLower(res.Type) + symbology.Format(res.Format).Extension()
}
