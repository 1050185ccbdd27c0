package lockmail

import (
	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

type RecipientType int

const (
	// RecipientTypeInternal is a recipient hosted on this platform.
	RecipientTypeInternal RecipientType = iota + 1

	// RecipientTypeExternal is any other recipient.
	RecipientTypeExternal
)

type KeyFlag int

const (
	KeyFlagVerify KeyFlag = 1 << iota
	KeyFlagEncrypt
)

func (f KeyFlag) Has(flag KeyFlag) bool {
	return f&flag == flag
}

// PublicKey is a key advertised by the key directory for a recipient email.
type PublicKey struct {
	Flags     KeyFlag
	PublicKey string
}

// RecipientKeys is the key directory's answer for one email address.
type RecipientKeys struct {
	RecipientType RecipientType
	Keys          []PublicKey
}

// EncryptionKey returns the first encryption-capable advertised key as a
// keyring, or nil if the directory advertises none.
func (rk RecipientKeys) EncryptionKey() (*crypto.KeyRing, error) {
	for _, key := range rk.Keys {
		if !key.Flags.Has(KeyFlagEncrypt) {
			continue
		}

		pubKey, err := crypto.NewKeyFromArmored(key.PublicKey)
		if err != nil {
			return nil, err
		}

		return crypto.NewKeyRing(pubKey)
	}

	return nil, nil
}

// SendPreferences is the per-recipient outcome of capability resolution:
// exactly one scheme, the keyring to wrap session keys with (if any), how to
// sign, and the MIME type the body must be in for this recipient.
type SendPreferences struct {
	// Encrypt indicates whether session keys are wrapped with PubKey.
	Encrypt bool

	// PubKey contains an OpenPGP keyring used for wrapping session keys.
	PubKey *crypto.KeyRing

	// SignatureType indicates how the message is signed.
	SignatureType SignatureType

	// EncryptionScheme is the delivery scheme chosen for this recipient.
	EncryptionScheme EncryptionScheme

	// MIMEType is the body format for this recipient. multipart/mixed
	// recipients are served from the MIME sibling body; text/plain
	// recipients from the plaintext sibling body when the draft is HTML.
	MIMEType rfc822.MIMEType
}
