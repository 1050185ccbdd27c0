package lockmail

import (
	"encoding/base64"
	"fmt"
	"net/mail"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

type CreateDraftAction int

const (
	ReplyAction CreateDraftAction = iota
	ReplyAllAction
	ForwardAction
	AutoResponseAction
	ReadReceiptAction
)

type DraftTemplate struct {
	Subject  string
	Sender   *mail.Address
	ToList   []*mail.Address
	CCList   []*mail.Address
	BCCList  []*mail.Address
	Body     string
	MIMEType rfc822.MIMEType

	ExternalID string `json:",omitempty"`

	Unread Bool
}

type CreateDraftReq struct {
	Message              DraftTemplate
	AttachmentKeyPackets []string

	ParentID string `json:",omitempty"`
	Action   CreateDraftAction
}

type UpdateDraftReq struct {
	Message DraftTemplate
}

// MessageRecipient is one recipient's entry in a package: its scheme, how
// the body is signed for it, and the key material wrapped for it. The
// Token/EncToken/Auth/PasswordHint fields are only set for password-protected
// external recipients.
type MessageRecipient struct {
	Type      EncryptionScheme
	Signature SignatureType

	BodyKeyPacket        string            `json:",omitempty"`
	AttachmentKeyPackets map[string]string `json:",omitempty"`

	Token        string  `json:",omitempty"`
	EncToken     string  `json:",omitempty"`
	Auth         *EOAuth `json:",omitempty"`
	PasswordHint string  `json:",omitempty"`
}

// MessagePackage carries one encrypted rendition of the message body and the
// per-recipient key material for every recipient served from it. Type is the
// union of the recipient schemes.
type MessagePackage struct {
	Addresses map[string]*MessageRecipient
	MIMEType  rfc822.MIMEType
	Type      EncryptionScheme
	Body      string

	BodyKey        *SessionKey            `json:",omitempty"`
	AttachmentKeys map[string]*SessionKey `json:",omitempty"`
}

func newMessagePackage(mimeType rfc822.MIMEType, encBodyData []byte) *MessagePackage {
	return &MessagePackage{
		Addresses: make(map[string]*MessageRecipient),
		MIMEType:  mimeType,
		Body:      base64.StdEncoding.EncodeToString(encBodyData),

		AttachmentKeys: make(map[string]*SessionKey),
	}
}

type SessionKey struct {
	Key       string
	Algorithm string
}

func newSessionKey(key *crypto.SessionKey) *SessionKey {
	return &SessionKey{
		Key:       key.GetBase64Key(),
		Algorithm: key.Algo,
	}
}

type SendDraftReq struct {
	Packages []*MessagePackage

	ExpirationTime int64 `json:",omitempty"`
}

func (req *SendDraftReq) AddMIMEPackage(
	kr *crypto.KeyRing,
	mimeBody string,
	prefs map[string]SendPreferences,
) error {
	for _, prefs := range prefs {
		if prefs.MIMEType != rfc822.MultipartMixed {
			return fmt.Errorf("invalid MIME type for MIME package: %s", prefs.MIMEType)
		}
	}

	pkg, err := newMIMEPackage(kr, mimeBody, prefs)
	if err != nil {
		return err
	}

	req.Packages = append(req.Packages, pkg)

	return nil
}

func (req *SendDraftReq) AddTextPackage(
	kr *crypto.KeyRing,
	body string,
	mimeType rfc822.MIMEType,
	prefs map[string]SendPreferences,
	attKeys map[string]*crypto.SessionKey,
	eo *OutsideEncryption,
) error {
	pkg, err := newTextPackage(kr, body, mimeType, prefs, attKeys, eo)
	if err != nil {
		return err
	}

	req.Packages = append(req.Packages, pkg)

	return nil
}

func newMIMEPackage(
	kr *crypto.KeyRing,
	mimeBody string,
	prefs map[string]SendPreferences,
) (*MessagePackage, error) {
	decBodyKey, encBodyData, err := encSplit(kr, mimeBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt MIME body: %w", err)
	}

	pkg := newMessagePackage(rfc822.MultipartMixed, encBodyData)

	for addr, prefs := range prefs {
		if prefs.MIMEType != rfc822.MultipartMixed {
			return nil, fmt.Errorf("invalid MIME type for MIME package: %s", prefs.MIMEType)
		}

		if prefs.SignatureType != DetachedSignature {
			return nil, fmt.Errorf("invalid signature type for MIME package: %d", prefs.SignatureType)
		}

		recipient := &MessageRecipient{
			Type:      prefs.EncryptionScheme,
			Signature: prefs.SignatureType,
		}

		switch prefs.EncryptionScheme {
		case PGPMIMEScheme:
			if prefs.PubKey == nil {
				return nil, fmt.Errorf("missing public key for %s", addr)
			}

			encBodyKey, err := prefs.PubKey.EncryptSessionKey(decBodyKey)
			if err != nil {
				return nil, fmt.Errorf("failed to encrypt session key: %w", err)
			}

			recipient.BodyKeyPacket = base64.StdEncoding.EncodeToString(encBodyKey)

		case ClearMIMEScheme:
			pkg.BodyKey = newSessionKey(decBodyKey)

		default:
			return nil, fmt.Errorf("invalid encryption scheme for MIME package: %d", prefs.EncryptionScheme)
		}

		pkg.Addresses[addr] = recipient
		pkg.Type |= prefs.EncryptionScheme
	}

	return pkg, nil
}

func newTextPackage(
	kr *crypto.KeyRing,
	body string,
	mimeType rfc822.MIMEType,
	prefs map[string]SendPreferences,
	attKeys map[string]*crypto.SessionKey,
	eo *OutsideEncryption,
) (*MessagePackage, error) {
	if mimeType != rfc822.TextPlain && mimeType != rfc822.TextHTML {
		return nil, fmt.Errorf("invalid MIME type for package: %s", mimeType)
	}

	decBodyKey, encBodyData, err := encSplit(kr, body)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt message body: %w", err)
	}

	pkg := newMessagePackage(mimeType, encBodyData)

	for addr, prefs := range prefs {
		if prefs.MIMEType != mimeType {
			return nil, fmt.Errorf("invalid MIME type for package: %s", prefs.MIMEType)
		}

		if prefs.SignatureType == DetachedSignature && !prefs.Encrypt {
			if prefs.EncryptionScheme == PGPInlineScheme {
				return nil, fmt.Errorf("invalid encryption scheme for %s: %d", addr, prefs.EncryptionScheme)
			}

			if prefs.EncryptionScheme == ClearScheme && mimeType != rfc822.TextPlain {
				return nil, fmt.Errorf("invalid MIME type for clear package: %s", mimeType)
			}
		}

		if prefs.EncryptionScheme == InternalScheme && !prefs.Encrypt {
			return nil, fmt.Errorf("internal packages must be encrypted")
		}

		if prefs.EncryptionScheme == PGPInlineScheme && mimeType != rfc822.TextPlain {
			return nil, fmt.Errorf("invalid MIME type for PGP inline package: %s", mimeType)
		}

		recipient := &MessageRecipient{
			Type:                 prefs.EncryptionScheme,
			Signature:            prefs.SignatureType,
			AttachmentKeyPackets: make(map[string]string),
		}

		switch {
		case prefs.EncryptionScheme == ClearScheme:
			pkg.BodyKey = newSessionKey(decBodyKey)

			for attID, attKey := range attKeys {
				pkg.AttachmentKeys[attID] = newSessionKey(attKey)
			}

		case prefs.EncryptionScheme == EncryptedOutsideScheme:
			if eo == nil {
				return nil, fmt.Errorf("missing password setup for %s", addr)
			}

			if err := eo.wrapRecipient(recipient, decBodyKey, attKeys); err != nil {
				return nil, fmt.Errorf("failed to wrap keys for %s: %w", addr, err)
			}

		case prefs.Encrypt:
			if prefs.PubKey == nil {
				return nil, fmt.Errorf("missing public key for %s", addr)
			}

			if prefs.SignatureType != DetachedSignature {
				return nil, fmt.Errorf("invalid signature type for package: %d", prefs.SignatureType)
			}

			encBodyKey, err := prefs.PubKey.EncryptSessionKey(decBodyKey)
			if err != nil {
				return nil, fmt.Errorf("failed to encrypt session key: %w", err)
			}

			recipient.BodyKeyPacket = base64.StdEncoding.EncodeToString(encBodyKey)

			for attID, attKey := range attKeys {
				encAttKey, err := prefs.PubKey.EncryptSessionKey(attKey)
				if err != nil {
					return nil, fmt.Errorf("failed to encrypt attachment key: %w", err)
				}

				recipient.AttachmentKeyPackets[attID] = base64.StdEncoding.EncodeToString(encAttKey)
			}

		default:
			return nil, fmt.Errorf("invalid encryption scheme for package: %d", prefs.EncryptionScheme)
		}

		pkg.Addresses[addr] = recipient
		pkg.Type |= prefs.EncryptionScheme
	}

	return pkg, nil
}

func encSplit(kr *crypto.KeyRing, body string) (*crypto.SessionKey, []byte, error) {
	encBody, err := kr.Encrypt(crypto.NewPlainMessageFromString(body), kr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt body: %w", err)
	}

	splitEncBody, err := encBody.SplitMessage()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to split message: %w", err)
	}

	decBodyKey, err := kr.DecryptSessionKey(splitEncBody.GetBinaryKeyPacket())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrypt session key: %w", err)
	}

	return decBodyKey, splitEncBody.GetBinaryDataPacket(), nil
}
