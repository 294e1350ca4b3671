package cmd

import (
	"fmt"

	"github.com/anime-shed/barcode-studio-go/pkg/models"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	// imaging registers bmp and tiff; webp photos need their own decoder.
	_ "golang.org/x/image/webp"
)

func newScanCommand(newService serviceFactory) *cobra.Command {
	var req models.ScanRequest

	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Decode the barcodes in an image and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Phone photos carry their rotation in EXIF; decoders want it applied.
			img, err := imaging.Open(args[0], imaging.AutoOrientation(true))
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}

			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			resp, err := svc.ScanImage(cmd.Context(), img, req)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			if !resp.Success {
				return fmt.Errorf("%s", resp.Error)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ExpectedText, "expected", "", "text the code should contain; adds a similarity report")
	f.BoolVar(&req.TryHarder, "try-harder", false, "spend more time looking for codes")
	f.BoolVar(&req.Multi, "multi", false, "report every code in the image")
	return cmd
}
