package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmorgan81/stickerbot/internal/inject"
	"github.com/dmorgan81/stickerbot/internal/sticker"
	"github.com/dmorgan81/stickerbot/internal/store"
	"github.com/spf13/cobra"
)

type composeOptions struct {
	radius    int
	segmenter string
	rembgURL  string
	tolerance int
}

func newComposeCmd(root *rootOptions) *cobra.Command {
	opts := &composeOptions{}
	cmd := &cobra.Command{
		Use:   "compose IN OUT",
		Short: "Cut out an existing image and give it a white sticker border",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := root.cfg.Sticker
			flags := cmd.Flags()
			if flags.Changed("radius") {
				cfg.BorderRadius = opts.radius
			}
			if flags.Changed("segmenter") {
				cfg.Segmenter = opts.segmenter
			}
			if flags.Changed("rembg-url") {
				cfg.RembgURL = opts.rembgURL
			}
			if flags.Changed("tolerance") {
				cfg.Tolerance = opts.tolerance
			}
			if cfg.BorderRadius < 0 {
				return errors.New("--radius must not be negative")
			}
			if cfg.Segmenter == "rembg" && cfg.RembgURL == "" {
				return errors.New("--rembg-url is required with the rembg segmenter")
			}

			segmenter, err := inject.NewSegmenter(cfg)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			compositor := &sticker.Compositor{Segmenter: segmenter, Radius: cfg.BorderRadius}
			out, err := compositor.Compose(ctx, raw)
			if err != nil {
				return err
			}

			if err := (&store.FileWriter{}).Write(ctx, store.File{Name: args[1], Data: out}); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", args[1], len(out))
			return err
		},
	}
	cmd.Flags().IntVar(&opts.radius, "radius", sticker.DefaultRadius, "border width in pixels")
	cmd.Flags().StringVar(&opts.segmenter, "segmenter", "floodfill", "background removal: floodfill, rembg or none")
	cmd.Flags().StringVar(&opts.rembgURL, "rembg-url", "", "base URL of a rembg server")
	cmd.Flags().IntVar(&opts.tolerance, "tolerance", sticker.DefaultTolerance, "flood fill colour tolerance")
	return cmd
}
