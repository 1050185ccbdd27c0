package lockmail

// EncryptionScheme is the encryption/delivery strategy applied to a single
// recipient of an outgoing message. The values form a bitmask because a
// message package carries the union of its recipients' schemes.
type EncryptionScheme int

const (
	// InternalScheme targets recipients on this platform; the body session
	// key is wrapped with the recipient's public key.
	InternalScheme EncryptionScheme = 1 << iota

	// EncryptedOutsideScheme targets external recipients without a usable
	// key who should still receive the message encrypted; the session keys
	// are wrapped with a password and the recipient authenticates via an
	// SRP verifier derived from that password.
	EncryptedOutsideScheme

	// ClearScheme sends the body in the clear, optionally signed.
	ClearScheme

	// PGPInlineScheme sends an armored PGP block as the message body.
	PGPInlineScheme

	// PGPMIMEScheme encrypts a full MIME body (attachments included) for
	// recipients with a key who prefer PGP/MIME.
	PGPMIMEScheme

	// ClearMIMEScheme sends a signed multipart/mixed body in the clear.
	ClearMIMEScheme
)

func (s EncryptionScheme) String() string {
	switch s {
	case InternalScheme:
		return "internal"

	case EncryptedOutsideScheme:
		return "encrypted-outside"

	case ClearScheme:
		return "clear"

	case PGPInlineScheme:
		return "pgp-inline"

	case PGPMIMEScheme:
		return "pgp-mime"

	case ClearMIMEScheme:
		return "clear-mime"

	default:
		return "unknown"
	}
}

type SignatureType int

const (
	NoSignature SignatureType = iota
	DetachedSignature
	AttachedSignature
)
