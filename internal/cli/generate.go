package cli

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"github.com/dmorgan81/stickerbot/internal/handler"
	"github.com/dmorgan81/stickerbot/internal/inject"
	"github.com/dmorgan81/stickerbot/internal/store"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	out     string
	history []string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate CITY",
		Short: "Run the full pipeline for a city and save the sticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			injector := inject.Setup(ctx, root.cfg)
			defer func() { _ = injector.Shutdown() }()

			h := do.MustInvoke[*handler.Handler](injector)
			out, err := h.Handle(ctx, handler.Input{City: args[0], History: opts.history})
			if err != nil {
				return err
			}

			data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(out.Image, "data:image/png;base64,"))
			if err != nil {
				return err
			}
			name := opts.out
			if name == "" {
				name = slug(args[0]) + ".png"
			}
			if err := (&store.FileWriter{}).Write(ctx, store.File{Name: name, Data: data}); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "concept: %s\nprompt: %s\nwrote %s\n", out.Concept, out.Prompt, name)
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file, defaults to CITY.png")
	cmd.Flags().StringArrayVar(&opts.history, "history", nil, "a previous concept to avoid, repeatable")
	return cmd
}

func slug(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(s))
	if s == "" {
		return "sticker"
	}
	return s
}
