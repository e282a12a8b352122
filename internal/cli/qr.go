package cli

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/palette"
	"github.com/matzehuels/deskkit/pkg/pipeline"
	"github.com/matzehuels/deskkit/pkg/qr"
)

const (
	qrFormatPNG      = "png"
	qrFormatSVG      = "svg"
	qrFormatTerminal = "terminal"
)

// qrFlags are shared by every qr subcommand.
type qrFlags struct {
	output string
	format string
	size   int
	level  string
	fg     string
	bg     string
}

func (f *qrFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default: qr_<timestamp>.<format>)")
	cmd.Flags().StringVarP(&f.format, "format", "f", qrFormatPNG, "png, svg or terminal")
	cmd.Flags().IntVarP(&f.size, "size", "s", qr.DefaultSize, "image size in pixels")
	cmd.Flags().StringVarP(&f.level, "level", "l", "medium", "error correction: low, medium, high, highest")
	cmd.Flags().StringVar(&f.fg, "fg", "#000000", "module colour")
	cmd.Flags().StringVar(&f.bg, "bg", "#ffffff", "background colour")
	cmd.RegisterFlagCompletionFunc("format", completeNames([]string{qrFormatPNG, qrFormatSVG, qrFormatTerminal}))
}

func (c *CLI) qrCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Generate QR codes for text, links, contacts, WiFi and more",
	}

	cmd.AddCommand(c.qrSimpleCommand("text <text>", "Encode plain text", func(s string) qr.Payload { return qr.Text(s) }))
	cmd.AddCommand(c.qrSimpleCommand("url <url>", "Encode a link", func(s string) qr.Payload { return qr.URL(s) }))
	cmd.AddCommand(c.qrSimpleCommand("tel <number>", "Encode a phone number", func(s string) qr.Payload { return qr.Phone(s) }))
	cmd.AddCommand(c.qrWiFiCommand())
	cmd.AddCommand(c.qrVCardCommand())
	cmd.AddCommand(c.qrGeoCommand())
	cmd.AddCommand(c.qrEmailCommand())
	cmd.AddCommand(c.qrSMSCommand())

	return cmd
}

// qrSimpleCommand builds a subcommand whose payload is its single argument.
func (c *CLI) qrSimpleCommand(use, short string, payload func(string) qr.Payload) *cobra.Command {
	var flags qrFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.writeQR(cmd, payload(args[0]), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) qrWiFiCommand() *cobra.Command {
	var (
		flags    qrFlags
		wifi     qr.WiFi
		security string
	)
	cmd := &cobra.Command{
		Use:   "wifi <ssid>",
		Short: "Encode WiFi network credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wifi.SSID = args[0]
			wifi.Security = qr.Security(security)
			return c.writeQR(cmd, wifi, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&wifi.Password, "password", "p", "", "network password")
	cmd.Flags().StringVar(&security, "security", string(qr.WPA), "WPA, WEP or nopass")
	cmd.Flags().BoolVar(&wifi.Hidden, "hidden", false, "the network does not broadcast its SSID")
	return cmd
}

func (c *CLI) qrVCardCommand() *cobra.Command {
	var (
		flags qrFlags
		card  qr.VCard
	)
	cmd := &cobra.Command{
		Use:   "vcard <name>",
		Short: "Encode a contact card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			card.Name = args[0]
			return c.writeQR(cmd, card, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&card.Org, "org", "", "organisation")
	cmd.Flags().StringVar(&card.Title, "title", "", "job title")
	cmd.Flags().StringVar(&card.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&card.Email, "email", "", "email address")
	cmd.Flags().StringVar(&card.URL, "url", "", "website")
	cmd.Flags().StringVar(&card.Address, "address", "", "postal address")
	return cmd
}

func (c *CLI) qrGeoCommand() *cobra.Command {
	var flags qrFlags
	cmd := &cobra.Command{
		Use:   "geo <lat> <lng>",
		Short: "Encode a map location",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "latitude")
			}
			lng, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "longitude")
			}
			return c.writeQR(cmd, qr.Geo{Lat: lat, Lng: lng}, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) qrEmailCommand() *cobra.Command {
	var (
		flags qrFlags
		email qr.Email
	)
	cmd := &cobra.Command{
		Use:   "email <address>",
		Short: "Encode a pre-filled email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email.To = args[0]
			return c.writeQR(cmd, email, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&email.Subject, "subject", "", "subject line")
	cmd.Flags().StringVar(&email.Body, "body", "", "message body")
	return cmd
}

func (c *CLI) qrSMSCommand() *cobra.Command {
	var (
		flags qrFlags
		sms   qr.SMS
	)
	cmd := &cobra.Command{
		Use:   "sms <number>",
		Short: "Encode a pre-filled text message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sms.Number = args[0]
			return c.writeQR(cmd, sms, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&sms.Message, "message", "m", "", "message text")
	return cmd
}

// writeQR encodes payload in the requested format and writes or prints it.
func (c *CLI) writeQR(cmd *cobra.Command, payload qr.Payload, f qrFlags) error {
	content, err := payload.Content()
	if err != nil {
		return err
	}
	level, err := qr.ParseLevel(f.level)
	if err != nil {
		return err
	}

	var data []byte
	switch strings.ToLower(f.format) {
	case qrFormatTerminal:
		s, err := qr.Terminal(content, level)
		if err != nil {
			return err
		}
		fmt.Fprint(c.Out, s)
		return nil
	case qrFormatSVG:
		svg, err := qr.SVG(content, qr.SVGOptions{Size: f.size, Level: level, Foreground: f.fg, Background: f.bg})
		if err != nil {
			return err
		}
		data = []byte(svg)
	case qrFormatPNG:
		fg, err := qrColor("fg", f.fg)
		if err != nil {
			return err
		}
		bg, err := qrColor("bg", f.bg)
		if err != nil {
			return err
		}
		if data, err = qr.PNG(content, qr.PNGOptions{Size: f.size, Level: level, Foreground: fg, Background: bg}); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown QR format %q (must be png, svg or terminal)", f.format)
	}

	out := f.output
	if out == "" {
		out = "qr_" + timestamp() + "." + strings.ToLower(f.format)
	}
	if err := pipeline.WriteFile(out, data); err != nil {
		return err
	}
	c.Logger.Debug("qr written", "payload", cmd.Name(), "chars", len(content), "level", level)
	printSuccess("QR code (%s)", cmd.Name())
	printFile(out)
	return nil
}

func qrColor(flag, s string) (color.Color, error) {
	c, err := palette.ParseHex(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "--%s", flag)
	}
	return c, nil
}
