package lockmail

import "github.com/ProtonMail/gluon/rfc822"

type MailSettings struct {
	DisplayName     string
	Signature       string
	DraftMIMEType   rfc822.MIMEType
	AttachPublicKey AttachPublicKey
	Sign            SignExternalMessages
	PGPScheme       EncryptionScheme
}

type AttachPublicKey int

const (
	AttachPublicKeyDisabled AttachPublicKey = iota
	AttachPublicKeyEnabled
)

// SignExternalMessages is the organization-wide "always sign outgoing
// messages" setting. When enabled, recipients without a usable key still get
// a detached signature.
type SignExternalMessages int

const (
	SignExternalMessagesDisabled SignExternalMessages = iota
	SignExternalMessagesEnabled
)

type SetSignExternalMessagesReq struct {
	Sign SignExternalMessages
}

type SetDefaultPGPSchemeReq struct {
	PGPScheme EncryptionScheme
}

type SetDraftMIMETypeReq struct {
	MIMEType rfc822.MIMEType
}
