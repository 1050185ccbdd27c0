package main

import (
	"bytes"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/ProtonMail/gluon/async"
	"github.com/lockmail/go-lockmail-api"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "sendmail",
		Usage: "send a message through the delivery pipeline end to end",

		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: lockmail.DefaultHostURL, Usage: "API host"},
			&cli.StringFlag{Name: "uid", Required: true, Usage: "session UID"},
			&cli.StringFlag{Name: "token", Required: true, Usage: "session access token"},
			&cli.StringFlag{Name: "password", Required: true, Usage: "mailbox password"},
			&cli.StringSliceFlag{Name: "to", Required: true, Usage: "recipient address (repeatable)"},
			&cli.StringFlag{Name: "subject", Value: "(no subject)"},
			&cli.StringFlag{Name: "body", Value: ""},
			&cli.StringFlag{Name: "eo-password", Usage: "password for keyless external recipients"},
			&cli.StringFlag{Name: "eo-hint", Usage: "password hint for keyless external recipients"},
			&cli.StringFlag{Name: "archive", Usage: "write an encrypted copy of the sent message to this path"},
			&cli.BoolFlag{Name: "insecure", Usage: "skip TLS certificate verification"},
		},

		Action: send,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("Failed to send message")
	}
}

func send(c *cli.Context) error {
	ctx := c.Context

	opts := []lockmail.Option{
		lockmail.WithHostURL(c.String("host")),
	}

	if c.Bool("insecure") {
		opts = append(opts, lockmail.WithTransport(lockmail.InsecureTransport()))
	}

	m := lockmail.New(opts...)
	defer m.Close()

	client := m.NewClient(c.String("uid"), c.String("token"), "", timeNever())
	defer client.Close()

	user, err := client.GetUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	salts, err := client.GetKeySalts(ctx)
	if err != nil {
		return fmt.Errorf("failed to get key salts: %w", err)
	}

	primary, err := user.Keys.Primary()
	if err != nil {
		return err
	}

	salt, err := salts.SaltForKey(primary.ID)
	if err != nil {
		return err
	}

	keyPass, err := lockmail.SaltedKeyPass([]byte(c.String("password")), salt)
	if err != nil {
		return err
	}

	addresses, err := client.GetAddresses(ctx)
	if err != nil {
		return fmt.Errorf("failed to get addresses: %w", err)
	}

	_, addrKRs, err := lockmail.Unlock(user, addresses, keyPass, async.NoopPanicHandler{})
	if err != nil {
		return fmt.Errorf("failed to unlock keys: %w", err)
	}

	addr := addresses[0]
	addrKR := addrKRs[addr.ID]

	settings, err := client.GetMailSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to get mail settings: %w", err)
	}

	toList := make([]*mail.Address, 0, len(c.StringSlice("to")))

	for _, to := range c.StringSlice("to") {
		toList = append(toList, &mail.Address{Address: to})
	}

	draft, err := client.CreateDraft(ctx, addrKR, lockmail.CreateDraftReq{
		Message: lockmail.DraftTemplate{
			Subject:  c.String("subject"),
			Sender:   &mail.Address{Address: addr.Email},
			ToList:   toList,
			Body:     c.String("body"),
			MIMEType: settings.DraftMIMEType,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}

	logrus.WithField("draftID", draft.ID).Info("Draft created")

	prefs, err := client.ResolveSendPreferences(
		ctx,
		addrKR,
		settings,
		settings.DraftMIMEType,
		c.String("eo-password") != "",
		c.StringSlice("to"),
	)
	if err != nil {
		return fmt.Errorf("failed to resolve send preferences: %w", err)
	}

	builder := lockmail.NewSendReqBuilder(addrKR, c.String("body"), settings.DraftMIMEType).WithPreferences(prefs)

	if eoPassword := c.String("eo-password"); eoPassword != "" {
		modulus, err := client.GetAuthModulus(ctx)
		if err != nil {
			return fmt.Errorf("failed to get modulus: %w", err)
		}

		builder = builder.WithOutsideEncryption(&lockmail.OutsideEncryption{
			Password: []byte(eoPassword),
			Hint:     c.String("eo-hint"),
			Modulus:  modulus,
		})
	}

	req, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}

	sent, err := client.SendDraft(ctx, draft.ID, req)
	if err != nil {
		return fmt.Errorf("failed to send draft: %w", err)
	}

	logrus.WithField("messageID", sent.ID).Info("Message sent")

	if path := c.String("archive"); path != "" {
		literal := archiveLiteral(addr.Email, c.StringSlice("to"), c.String("subject"), c.String("body"))

		enc, err := lockmail.EncryptRFC822(addrKR, literal)
		if err != nil {
			return fmt.Errorf("failed to encrypt archive copy: %w", err)
		}

		if err := os.WriteFile(path, enc, 0o600); err != nil {
			return fmt.Errorf("failed to write archive copy: %w", err)
		}

		logrus.WithField("path", path).Info("Encrypted copy archived")
	}

	return nil
}

func archiveLiteral(from string, to []string, subject, body string) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "From: %v\r\n", from)
	fmt.Fprintf(&b, "To: %v\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %v\r\n", subject)
	fmt.Fprintf(&b, "Date: %v\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return b.Bytes()
}

func timeNever() time.Time {
	return time.Now().Add(365 * 24 * time.Hour)
}
