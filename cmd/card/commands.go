package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kapu/digital-card-go/internal/app"
	"github.com/kapu/digital-card-go/internal/constants"
	"github.com/kapu/digital-card-go/internal/domain"
	"github.com/kapu/digital-card-go/internal/i18n"
	"github.com/kapu/digital-card-go/internal/qrcode"
	"github.com/kapu/digital-card-go/internal/share"
	"github.com/kapu/digital-card-go/internal/vcard"
)

func newVCardCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "vcard",
		Short: "Print the vCard for the configured profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := vcard.Encode(c.cfg.Card.Profile())
			if output == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), body)
				return err
			}
			return os.WriteFile(output, []byte(body), 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newLinksCmd(c *cli) *cobra.Command {
	var (
		recipient string
		suggest   bool
	)

	cmd := &cobra.Command{
		Use:   "links",
		Short: "Print the share links as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := domain.ShareInputFrom(c.cfg.Card.Profile())

			var result domain.ShareResult
			if suggest {
				ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
				defer cancel()

				container, err := app.Build(ctx, c.cfg, c.logger)
				if err != nil {
					return err
				}
				defer container.Close()

				result = container.Share.Links(ctx, input, share.LinkOptions{Recipient: recipient, Suggest: true})
			} else {
				result = share.NewService(nil, nil, c.logger).Links(cmd.Context(), input, share.LinkOptions{Recipient: recipient})
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&recipient, "to", "", "phone number for recipient-addressed WhatsApp and SMS links")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "also ask the language model for suggestions")
	return cmd
}

func newQRCmd(c *cli) *cobra.Command {
	var (
		output string
		size   int
		level  string
	)

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Render the card URL as a PNG QR code",
		RunE: func(cmd *cobra.Command, args []string) error {
			qr := c.cfg.QR
			if size > 0 {
				qr.Size = size
			}
			if level != "" {
				qr.Level = level
			}

			opts, err := qrcode.NewOptions(qr.Size, qr.Margin, qr.Level, qr.Foreground, qr.Background)
			if err != nil {
				return err
			}

			img, err := qrcode.Render(c.cfg.Card.AppURL, opts)
			if err != nil {
				return err
			}

			if err := os.WriteFile(output, img.PNG, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(img.PNG))
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", constants.QRDefaults.DownloadFilename, "output file")
	cmd.Flags().IntVar(&size, "size", 0, "image size in pixels (default from QR_SIZE)")
	cmd.Flags().StringVar(&level, "level", "", "error-correction level L, M, Q or H (default from QR_LEVEL)")
	return cmd
}

func newLocalesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locales",
		Short: "Locale table utilities",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Verify every message key exists in both languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := i18n.New(i18n.Language(c.cfg.Locale.Primary), i18n.Language(c.cfg.Locale.Secondary))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := false
			for _, lang := range loc.Languages() {
				missing := loc.MissingKeys(lang)
				if len(missing) == 0 {
					fmt.Fprintf(out, "%s: ok (%d keys)\n", lang, len(loc.Keys()))
					continue
				}
				failed = true
				for _, key := range missing {
					fmt.Fprintf(out, "%s: missing %s\n", lang, key)
				}
			}

			if failed {
				return loc.Validate()
			}
			return nil
		},
	})

	return cmd
}
