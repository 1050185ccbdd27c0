package lockmail

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/emersion/go-vcard"
)

// Per-contact crypto policy is stored as extension fields on the contact's
// signed vcard, grouped with the email they apply to.
const (
	FieldScheme   = "X-LM-SCHEME"
	FieldMIMEType = "X-LM-MIMETYPE"
	FieldSign     = "X-LM-SIGN"
	FieldEncrypt  = "X-LM-ENCRYPT"
)

type CardType int

const (
	CardTypeCleartext CardType = iota
	CardTypeEncrypted
	CardTypeSigned
	CardTypeEncryptedAndSigned
)

type Card struct {
	Type      CardType
	Data      string
	Signature string `json:",omitempty"`
}

// Verify checks the card's detached signature against the given keyring.
func (card Card) Verify(kr *crypto.KeyRing) error {
	if card.Signature == "" {
		return fmt.Errorf("card has no signature")
	}

	sig, err := crypto.NewPGPSignatureFromArmored(card.Signature)
	if err != nil {
		return fmt.Errorf("failed to parse card signature: %w", err)
	}

	return kr.VerifyDetached(crypto.NewPlainMessageFromString(card.Data), sig, crypto.GetUnixTime())
}

type Cards []Card

func (cards Cards) Get(cardType CardType) (Card, bool) {
	for _, card := range cards {
		if card.Type == cardType {
			return card, true
		}
	}

	return Card{}, false
}

// ContactSettings is the per-contact crypto policy for one email address.
// Nil fields mean "no preference"; the sender's mail settings apply.
type ContactSettings struct {
	MIMEType *rfc822.MIMEType
	Scheme   *EncryptionScheme
	Sign     *bool
	Encrypt  *bool
	Keys     []*crypto.Key
}

type Contact struct {
	ContactMetadata
	ContactCards
}

type ContactMetadata struct {
	ID            string
	Name          string
	UID           string
	Size          int64
	CreateTime    int64
	ModifyTime    int64
	ContactEmails []ContactEmail
	LabelIDs      []string
}

type ContactCards struct {
	Cards Cards
}

type ContactEmail struct {
	ID        string
	Name      string
	Email     string
	Type      []string
	ContactID string
	LabelIDs  []string
}

// GetSettings extracts the crypto policy for the given email from the
// contact's card of the given type. The card's signature, if any, is checked
// against the given keyring first; policy from a card that fails
// verification is never used.
func (c *Contact) GetSettings(kr *crypto.KeyRing, email string, cardType CardType) (ContactSettings, error) {
	card, ok := c.Cards.Get(cardType)
	if !ok {
		return ContactSettings{}, nil
	}

	if card.Signature != "" && kr != nil {
		if err := card.Verify(kr); err != nil {
			return ContactSettings{}, fmt.Errorf("failed to verify contact card: %w", err)
		}
	}

	dec, err := vcard.NewDecoder(strings.NewReader(card.Data)).Decode()
	if err != nil {
		return ContactSettings{}, fmt.Errorf("failed to decode contact card: %w", err)
	}

	group, ok := emailGroup(dec, email)
	if !ok {
		return ContactSettings{}, nil
	}

	var settings ContactSettings

	if scheme := groupValues(dec, FieldScheme, group); len(scheme) > 0 {
		switch scheme[0] {
		case "pgp-inline":
			settings.Scheme = newPtr(PGPInlineScheme)

		case "pgp-mime":
			settings.Scheme = newPtr(PGPMIMEScheme)
		}
	}

	if mimeType := groupValues(dec, FieldMIMEType, group); len(mimeType) > 0 {
		settings.MIMEType = newPtr(rfc822.MIMEType(mimeType[0]))
	}

	if sign := groupValues(dec, FieldSign, group); len(sign) > 0 {
		sign, err := strconv.ParseBool(sign[0])
		if err != nil {
			return ContactSettings{}, err
		}

		settings.Sign = newPtr(sign)
	}

	if encrypt := groupValues(dec, FieldEncrypt, group); len(encrypt) > 0 {
		encrypt, err := strconv.ParseBool(encrypt[0])
		if err != nil {
			return ContactSettings{}, err
		}

		settings.Encrypt = newPtr(encrypt)
	}

	for _, key := range groupValues(dec, vcard.FieldKey, group) {
		split := strings.SplitN(key, ",", 2)
		if len(split) != 2 {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(split[1])
		if err != nil {
			return ContactSettings{}, err
		}

		pubKey, err := crypto.NewKey(raw)
		if err != nil {
			return ContactSettings{}, err
		}

		settings.Keys = append(settings.Keys, pubKey)
	}

	return settings, nil
}

// emailGroup returns the vcard property group of the EMAIL field matching
// the given address.
func emailGroup(card vcard.Card, email string) (string, bool) {
	for _, field := range card[vcard.FieldEmail] {
		if strings.EqualFold(field.Value, email) {
			return field.Group, true
		}
	}

	return "", false
}

// groupValues returns the values of all fields with the given name belonging
// to the given property group.
func groupValues(card vcard.Card, name, group string) []string {
	var values []string

	for _, field := range card[name] {
		if field.Group == group {
			values = append(values, field.Value)
		}
	}

	return values
}

type CreateContactsReq struct {
	Contacts  []ContactCards
	Overwrite int
	Labels    int
}

type DeleteContactsReq struct {
	IDs []string
}

func newPtr[T any](v T) *T {
	return &v
}
