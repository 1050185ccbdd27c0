package lockmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/google/uuid"
)

// CharsetReader returns a charset decoder for the given charset.
// If set, it will be used to decode non-utf8 encoded messages.
var CharsetReader func(charset string, input io.Reader) (io.Reader, error)

// MIMEAttachment is an attachment carried inside a MIME body rather than
// uploaded separately.
type MIMEAttachment struct {
	Name        string
	MIMEType    rfc822.MIMEType
	ContentID   string
	Disposition Disposition
	Data        []byte
}

// BuildMIMEBody assembles a multipart/mixed literal from the message body
// and its attachments. Recipients served from a MIME package receive this
// literal instead of the bare body, so their attachments travel inside it.
func BuildMIMEBody(body string, mimeType rfc822.MIMEType, atts []MIMEAttachment) (string, error) {
	if mimeType != rfc822.TextPlain && mimeType != rfc822.TextHTML {
		return "", fmt.Errorf("invalid MIME type for MIME body: %s", mimeType)
	}

	buf := new(bytes.Buffer)
	boundary := strings.ReplaceAll(uuid.NewString(), "-", "")
	writer := rfc822.NewMultipartWriter(buf, boundary)

	{
		header := rfc822.NewEmptyHeader()
		header.Set("Mime-Version", "1.0")
		header.Set("Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{
			"boundary": boundary,
		}))

		buf.Write(header.Raw())
	}

	{
		header := rfc822.NewEmptyHeader()
		header.Set("Content-Type", mime.FormatMediaType(string(mimeType), map[string]string{
			"charset": "utf-8",
		}))

		if err := writer.AddPart(func(w io.Writer) error {
			if _, err := w.Write(header.Raw()); err != nil {
				return err
			}

			_, err := w.Write([]byte(body))

			return err
		}); err != nil {
			return "", err
		}
	}

	for _, att := range atts {
		header := rfc822.NewEmptyHeader()
		header.Set("Content-Type", mime.FormatMediaType(string(att.MIMEType), map[string]string{
			"name": att.Name,
		}))
		header.Set("Content-Disposition", mime.FormatMediaType(string(att.Disposition), map[string]string{
			"filename": att.Name,
		}))
		header.Set("Content-Transfer-Encoding", "base64")

		if att.ContentID != "" {
			header.Set("Content-Id", "<"+att.ContentID+">")
		}

		if err := writer.AddPart(func(w io.Writer) error {
			if _, err := w.Write(header.Raw()); err != nil {
				return err
			}

			return writeBase64(w, att.Data)
		}); err != nil {
			return "", err
		}
	}

	if err := writer.Done(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// EncryptRFC822 encrypts the given message literal as a PGP attachment
// wrapped in a multipart/encrypted envelope, keeping the routing headers in
// the clear.
func EncryptRFC822(kr *crypto.KeyRing, literal []byte) ([]byte, error) {
	msg, err := kr.Encrypt(crypto.NewPlainMessage(literal), kr)
	if err != nil {
		return nil, err
	}

	armored, err := msg.GetArmored()
	if err != nil {
		return nil, err
	}

	header, _ := rfc822.Split(literal)

	headerParsed, err := rfc822.NewHeader(header)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	boundary := strings.ReplaceAll(uuid.NewString(), "-", "")
	writer := rfc822.NewMultipartWriter(buf, boundary)

	{
		newHeader := rfc822.NewEmptyHeader()

		if value, ok := headerParsed.GetChecked("Message-Id"); ok {
			newHeader.Set("Message-Id", value)
		}

		newHeader.Set("Mime-Version", "1.0")
		newHeader.Set("Content-Type", mime.FormatMediaType("multipart/encrypted", map[string]string{
			"boundary": boundary,
			"protocol": "application/pgp-encrypted",
		}))

		for _, key := range []string{"From", "To", "Subject", "Date", "Received"} {
			if value, ok := headerParsed.GetChecked(key); ok {
				newHeader.Set(key, value)
			}
		}

		buf.Write(newHeader.Raw())
	}

	{
		controlHeader := rfc822.NewEmptyHeader()
		controlHeader.Set("Content-Description", "PGP/MIME version identification")
		controlHeader.Set("Content-Type", "application/pgp-encrypted")

		if err := writer.AddPart(func(w io.Writer) error {
			if _, err := w.Write(controlHeader.Raw()); err != nil {
				return err
			}

			_, err := w.Write([]byte("Version: 1"))

			return err
		}); err != nil {
			return nil, err
		}
	}

	{
		attachmentHeader := rfc822.NewEmptyHeader()
		attachmentHeader.Set("Content-Description", "OpenPGP encrypted message")
		attachmentHeader.Set("Content-Disposition", "inline; filename=encrypted.asc")
		attachmentHeader.Set("Content-Type", mime.FormatMediaType("application/octet-stream", map[string]string{
			"name": "encrypted.asc",
		}))

		if err := writer.AddPart(func(w io.Writer) error {
			if _, err := w.Write(attachmentHeader.Raw()); err != nil {
				return err
			}

			_, err := w.Write([]byte(armored))

			return err
		}); err != nil {
			return nil, err
		}
	}

	if err := writer.Done(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeBase64(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)

	for len(enc) > 0 {
		line := enc

		if len(line) > 76 {
			line = line[:76]
		}

		if _, err := w.Write([]byte(line + "\r\n")); err != nil {
			return err
		}

		enc = enc[len(line):]
	}

	return nil
}
