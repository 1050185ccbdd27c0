package lockmail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/gopenpgp/v2/constants"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message"
)

// VerificationState is the outcome of checking the sender signature on a
// decrypted body.
type VerificationState int

const (
	// VerificationOK means the body carried a signature which checked out
	// against the sender's key.
	VerificationOK VerificationState = iota

	// VerificationNotSigned means the body carried no signature.
	VerificationNotSigned

	// VerificationNoVerifier means no sender key was available to check
	// against.
	VerificationNoVerifier

	// VerificationFailed means the body carried a signature which did not
	// check out.
	VerificationFailed
)

// DecryptedMessage is a message body after decryption. For multipart bodies
// the text part is promoted to Body and the remaining parts are broken out
// as attachments.
type DecryptedMessage struct {
	Body         string
	MIMEType     rfc822.MIMEType
	Verification VerificationState
	Attachments  []MIMEAttachment
}

// DecryptFull decrypts the message body, trying each of the given keyrings
// in turn, and verifies the embedded signature against verifyKR if given.
// If no keyring opens the body, the returned *DecryptionError carries the
// number of attempts and the first underlying cause. A verification failure
// is reported in the result, not as an error; the caller decides how loudly
// to warn.
func (m Message) DecryptFull(krs []*crypto.KeyRing, verifyKR *crypto.KeyRing) (DecryptedMessage, error) {
	if len(krs) == 0 {
		return DecryptedMessage{}, fmt.Errorf("no keys to decrypt with")
	}

	enc, err := crypto.NewPGPMessageFromArmored(m.Body)
	if err != nil {
		return DecryptedMessage{}, err
	}

	dec, state, err := decryptAny(enc, krs, verifyKR)
	if err != nil {
		return DecryptedMessage{}, err
	}

	res := DecryptedMessage{
		Body:         dec.GetString(),
		MIMEType:     m.MIMEType,
		Verification: state,
	}

	if m.MIMEType == rfc822.MultipartMixed {
		body, mimeType, atts, err := parseMIMEBody(dec.GetBinary())
		if err != nil {
			return DecryptedMessage{}, fmt.Errorf("failed to parse MIME body: %w", err)
		}

		res.Body = body
		res.MIMEType = mimeType
		res.Attachments = atts
	}

	return res, nil
}

// HTMLBody returns the body as HTML. A plaintext body is escaped and its
// line breaks made explicit so it renders faithfully.
func (d DecryptedMessage) HTMLBody() string {
	if d.MIMEType == rfc822.TextHTML {
		return d.Body
	}

	return strings.ReplaceAll(html.EscapeString(d.Body), "\n", "<br>")
}

// EmbedInlineImages resolves cid: references in an HTML body to data URIs
// built from the message's inline attachments.
func (d DecryptedMessage) EmbedInlineImages() (string, error) {
	if d.MIMEType != rfc822.TextHTML {
		return d.Body, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.Body))
	if err != nil {
		return "", err
	}

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok || !strings.HasPrefix(src, "cid:") {
			return
		}

		for _, att := range d.Attachments {
			if att.ContentID != strings.TrimPrefix(src, "cid:") {
				continue
			}

			sel.SetAttr("src", fmt.Sprintf(
				"data:%v;base64,%v",
				att.MIMEType,
				base64.StdEncoding.EncodeToString(att.Data),
			))
		}
	})

	return doc.Html()
}

func decryptAny(enc *crypto.PGPMessage, krs []*crypto.KeyRing, verifyKR *crypto.KeyRing) (*crypto.PlainMessage, VerificationState, error) {
	var firstErr error

	for _, kr := range krs {
		dec, err := kr.Decrypt(enc, verifyKR, crypto.GetUnixTime())
		if err == nil {
			return dec, verificationState(verifyKR != nil, nil), nil
		}

		var sigErr crypto.SignatureVerificationError

		// The body opened; only the signature is in question.
		if errors.As(err, &sigErr) {
			return dec, verificationState(verifyKR != nil, &sigErr), nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	return nil, VerificationFailed, &DecryptionError{Attempts: len(krs), Err: firstErr}
}

func verificationState(hasVerifier bool, sigErr *crypto.SignatureVerificationError) VerificationState {
	if !hasVerifier {
		return VerificationNoVerifier
	}

	if sigErr == nil {
		return VerificationOK
	}

	switch sigErr.Status {
	case constants.SIGNATURE_NOT_SIGNED:
		return VerificationNotSigned

	case constants.SIGNATURE_NO_VERIFIER:
		return VerificationNoVerifier

	default:
		return VerificationFailed
	}
}

func parseMIMEBody(literal []byte) (string, rfc822.MIMEType, []MIMEAttachment, error) {
	// go-message only understands utf-8 on its own; the hook supplies the
	// rest.
	if CharsetReader != nil {
		message.CharsetReader = CharsetReader
	}

	ent, err := message.Read(bytes.NewReader(literal))
	if err != nil {
		return "", "", nil, err
	}

	var walker mimeWalker

	if err := walker.walk(ent, false); err != nil {
		return "", "", nil, err
	}

	return walker.body, walker.bodyType, walker.atts, nil
}

// mimeWalker disassembles a MIME tree depth-first: the first text leaf is
// promoted to the body, unpicked renditions of an alternative group are
// dropped, and every other leaf becomes an attachment.
type mimeWalker struct {
	body     string
	bodyType rfc822.MIMEType
	atts     []MIMEAttachment
}

func (w *mimeWalker) walk(ent *message.Entity, inAlternative bool) error {
	if mr := ent.MultipartReader(); mr != nil {
		contentType, _, err := ent.Header.ContentType()
		if err != nil {
			return err
		}

		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			} else if err != nil {
				return err
			}

			if err := w.walk(part, contentType == "multipart/alternative"); err != nil {
				return err
			}
		}

		return nil
	}

	data, err := io.ReadAll(ent.Body)
	if err != nil {
		return err
	}

	mimeType, typeParams, err := ent.Header.ContentType()
	if err != nil {
		return err
	}

	disp, dispParams, _ := ent.Header.ContentDisposition()

	isText := mimeType == string(rfc822.TextPlain) || mimeType == string(rfc822.TextHTML)

	if isText && disp != string(AttachmentDisposition) {
		if w.body == "" {
			w.body = string(data)
			w.bodyType = rfc822.MIMEType(mimeType)

			return nil
		}

		// A sibling rendition of the promoted body, not an attachment.
		if inAlternative {
			return nil
		}
	}

	name := dispParams["filename"]

	if name == "" {
		name = typeParams["name"]
	}

	disposition := Disposition(disp)

	if disposition == "" {
		disposition = AttachmentDisposition
	}

	w.atts = append(w.atts, MIMEAttachment{
		Name:        name,
		MIMEType:    rfc822.MIMEType(mimeType),
		ContentID:   strings.Trim(ent.Header.Get("Content-Id"), "<>"),
		Disposition: disposition,
		Data:        data,
	})

	return nil
}
