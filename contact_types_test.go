package lockmail_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/lockmail/go-lockmail-api"
	"github.com/stretchr/testify/require"
)

func testCardData(t *testing.T, email string, fields map[string]string) string {
	t.Helper()

	var b strings.Builder

	b.WriteString("BEGIN:VCARD\r\n")
	b.WriteString("VERSION:4.0\r\n")
	b.WriteString("FN:Test Contact\r\n")
	b.WriteString("ITEM1.EMAIL:" + email + "\r\n")

	for name, value := range fields {
		b.WriteString("ITEM1." + name + ":" + value + "\r\n")
	}

	b.WriteString("END:VCARD\r\n")

	return b.String()
}

func TestContact_GetSettings(t *testing.T) {
	data := testCardData(t, "recipient@email.com", map[string]string{
		lockmail.FieldScheme:   "pgp-mime",
		lockmail.FieldMIMEType: "text/plain",
		lockmail.FieldSign:     "true",
		lockmail.FieldEncrypt:  "true",
	})

	contact := lockmail.Contact{
		ContactCards: lockmail.ContactCards{
			Cards: lockmail.Cards{{Type: lockmail.CardTypeSigned, Data: data}},
		},
	}

	settings, err := contact.GetSettings(nil, "recipient@email.com", lockmail.CardTypeSigned)
	require.NoError(t, err)

	require.NotNil(t, settings.Scheme)
	require.Equal(t, lockmail.PGPMIMEScheme, *settings.Scheme)

	require.NotNil(t, settings.MIMEType)
	require.Equal(t, rfc822.TextPlain, *settings.MIMEType)

	require.NotNil(t, settings.Sign)
	require.True(t, *settings.Sign)

	require.NotNil(t, settings.Encrypt)
	require.True(t, *settings.Encrypt)
}

func TestContact_GetSettings_OtherEmail(t *testing.T) {
	data := testCardData(t, "recipient@email.com", map[string]string{
		lockmail.FieldScheme: "pgp-inline",
	})

	contact := lockmail.Contact{
		ContactCards: lockmail.ContactCards{
			Cards: lockmail.Cards{{Type: lockmail.CardTypeSigned, Data: data}},
		},
	}

	// Policy is grouped per email; another address gets none of it.
	settings, err := contact.GetSettings(nil, "someone-else@email.com", lockmail.CardTypeSigned)
	require.NoError(t, err)
	require.Equal(t, lockmail.ContactSettings{}, settings)
}

func TestContact_GetSettings_PinnedKey(t *testing.T) {
	key, err := crypto.GenerateKey("pinned", "recipient@email.com", "rsa", 2048)
	require.NoError(t, err)

	pub, err := key.GetPublicKey()
	require.NoError(t, err)

	data := testCardData(t, "recipient@email.com", map[string]string{
		"KEY": "data:application/pgp-keys;base64," + base64.StdEncoding.EncodeToString(pub),
	})

	contact := lockmail.Contact{
		ContactCards: lockmail.ContactCards{
			Cards: lockmail.Cards{{Type: lockmail.CardTypeSigned, Data: data}},
		},
	}

	settings, err := contact.GetSettings(nil, "recipient@email.com", lockmail.CardTypeSigned)
	require.NoError(t, err)

	require.Len(t, settings.Keys, 1)
	require.Equal(t, key.GetKeyID(), settings.Keys[0].GetKeyID())
}

func TestContact_GetSettings_SignedCard(t *testing.T) {
	kr := newTestKeyRing(t, "owner", "owner@lockmail.io")
	otherKR := newTestKeyRing(t, "other", "other@lockmail.io")

	data := testCardData(t, "recipient@email.com", map[string]string{
		lockmail.FieldScheme: "pgp-inline",
	})

	sig, err := kr.SignDetached(crypto.NewPlainMessageFromString(data))
	require.NoError(t, err)

	armSig, err := sig.GetArmored()
	require.NoError(t, err)

	contact := lockmail.Contact{
		ContactCards: lockmail.ContactCards{
			Cards: lockmail.Cards{{Type: lockmail.CardTypeSigned, Data: data, Signature: armSig}},
		},
	}

	settings, err := contact.GetSettings(kr, "recipient@email.com", lockmail.CardTypeSigned)
	require.NoError(t, err)
	require.NotNil(t, settings.Scheme)

	// A card whose signature does not check out contributes no policy.
	_, err = contact.GetSettings(otherKR, "recipient@email.com", lockmail.CardTypeSigned)
	require.Error(t, err)
}

func TestContact_GetSettings_MissingCard(t *testing.T) {
	var contact lockmail.Contact

	settings, err := contact.GetSettings(nil, "recipient@email.com", lockmail.CardTypeSigned)
	require.NoError(t, err)
	require.Equal(t, lockmail.ContactSettings{}, settings)
}
