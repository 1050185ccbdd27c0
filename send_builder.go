package lockmail

import (
	"fmt"
	"strings"

	"github.com/ProtonMail/gluon/async"
	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/PuerkitoBio/goquery"
)

// SendReqBuilder assembles the send request for a draft. Recipients are
// bucketed by the body rendition their preferences call for; each bucket
// becomes one package, and the packages are encrypted concurrently. Any
// single failure aborts the whole build, so a partially deliverable request
// is never produced.
type SendReqBuilder struct {
	kr       *crypto.KeyRing
	body     string
	mimeType rfc822.MIMEType

	atts    []MIMEAttachment
	attKeys map[string]*crypto.SessionKey

	eo *OutsideEncryption

	prefs map[string]SendPreferences

	panicHandler async.PanicHandler
}

func NewSendReqBuilder(kr *crypto.KeyRing, body string, mimeType rfc822.MIMEType) *SendReqBuilder {
	return &SendReqBuilder{
		kr:       kr,
		body:     body,
		mimeType: mimeType,

		attKeys: make(map[string]*crypto.SessionKey),
		prefs:   make(map[string]SendPreferences),

		panicHandler: async.NoopPanicHandler{},
	}
}

// WithAttachment registers an uploaded attachment: its decrypted content for
// recipients served from a MIME body, and its session key for everyone else.
func (b *SendReqBuilder) WithAttachment(attID string, att MIMEAttachment, key *crypto.SessionKey) *SendReqBuilder {
	b.atts = append(b.atts, att)
	b.attKeys[attID] = key

	return b
}

func (b *SendReqBuilder) WithOutsideEncryption(eo *OutsideEncryption) *SendReqBuilder {
	b.eo = eo

	return b
}

func (b *SendReqBuilder) WithPreferences(prefs map[string]SendPreferences) *SendReqBuilder {
	for email, pref := range prefs {
		b.prefs[email] = pref
	}

	return b
}

func (b *SendReqBuilder) WithPanicHandler(panicHandler async.PanicHandler) *SendReqBuilder {
	b.panicHandler = panicHandler

	return b
}

// Build produces the send request. A draft body in HTML is downconverted to
// a plaintext sibling for recipients whose rendition must be text/plain, and
// expanded into a multipart/mixed sibling for MIME recipients.
func (b *SendReqBuilder) Build() (SendDraftReq, error) {
	if len(b.prefs) == 0 {
		return SendDraftReq{}, fmt.Errorf("no recipients")
	}

	buckets := make(map[rfc822.MIMEType]map[string]SendPreferences)

	for email, pref := range b.prefs {
		mimeType := pref.MIMEType

		// A plaintext draft has no richer rendition to offer.
		if b.mimeType == rfc822.TextPlain && mimeType == rfc822.TextHTML {
			mimeType = rfc822.TextPlain
			pref.MIMEType = rfc822.TextPlain
		}

		if pref.EncryptionScheme == EncryptedOutsideScheme && b.eo == nil {
			return SendDraftReq{}, &EncryptionError{Email: email, Err: fmt.Errorf("missing password setup")}
		}

		if buckets[mimeType] == nil {
			buckets[mimeType] = make(map[string]SendPreferences)
		}

		buckets[mimeType][email] = pref
	}

	group := NewGroup[*MessagePackage](b.panicHandler)

	for mimeType, prefs := range buckets {
		mimeType, prefs := mimeType, prefs

		switch mimeType {
		case rfc822.MultipartMixed:
			group.Add(func() (*MessagePackage, error) {
				mimeBody, err := BuildMIMEBody(b.body, b.mimeType, b.atts)
				if err != nil {
					return nil, err
				}

				return newMIMEPackage(b.kr, mimeBody, prefs)
			})

		case rfc822.TextPlain:
			group.Add(func() (*MessagePackage, error) {
				body := b.body

				if b.mimeType == rfc822.TextHTML {
					plain, err := htmlToPlain(body)
					if err != nil {
						return nil, err
					}

					body = plain
				}

				return newTextPackage(b.kr, body, rfc822.TextPlain, prefs, b.attKeys, b.eo)
			})

		case rfc822.TextHTML:
			group.Add(func() (*MessagePackage, error) {
				return newTextPackage(b.kr, b.body, rfc822.TextHTML, prefs, b.attKeys, b.eo)
			})

		default:
			return SendDraftReq{}, fmt.Errorf("invalid package MIME type: %s", mimeType)
		}
	}

	packages, err := group.Result()
	if err != nil {
		return SendDraftReq{}, err
	}

	return SendDraftReq{Packages: packages}, nil
}

// htmlToPlain renders an HTML body as plain text, dropping markup and any
// non-content elements.
func htmlToPlain(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", err
	}

	doc.Find("style,script,head").Remove()

	doc.Find("br").Each(func(_ int, sel *goquery.Selection) {
		sel.ReplaceWithHtml("\n")
	})

	return strings.TrimSpace(doc.Text()), nil
}
