package lockmail_test

import (
	"encoding/base64"
	"testing"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/lockmail/go-lockmail-api"
	"github.com/stretchr/testify/require"
)

func TestSendReqBuilder_BucketsByMIMEType(t *testing.T) {
	kr := newTestKeyRing(t, "sender", "sender@lockmail.io")
	recipientKR := newTestKeyRing(t, "recipient", "recipient@lockmail.io")

	req, err := lockmail.NewSendReqBuilder(kr, "<html><body>hello<br>there</body></html>", rfc822.TextHTML).
		WithPreferences(map[string]lockmail.SendPreferences{
			"internal@lockmail.io": {
				Encrypt:          true,
				PubKey:           recipientKR,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.InternalScheme,
				MIMEType:         rfc822.TextHTML,
			},
			"pgp-inline@email.com": {
				Encrypt:          true,
				PubKey:           recipientKR,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.PGPInlineScheme,
				MIMEType:         rfc822.TextPlain,
			},
			"pgp-mime@email.com": {
				Encrypt:          true,
				PubKey:           recipientKR,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.PGPMIMEScheme,
				MIMEType:         rfc822.MultipartMixed,
			},
		}).
		Build()
	require.NoError(t, err)

	require.Len(t, req.Packages, 3)

	byMIMEType := make(map[rfc822.MIMEType]*lockmail.MessagePackage)

	for _, pkg := range req.Packages {
		byMIMEType[pkg.MIMEType] = pkg
	}

	require.Contains(t, byMIMEType, rfc822.TextHTML)
	require.Contains(t, byMIMEType, rfc822.TextPlain)
	require.Contains(t, byMIMEType, rfc822.MultipartMixed)

	require.Equal(t, lockmail.InternalScheme, byMIMEType[rfc822.TextHTML].Type)
	require.Equal(t, lockmail.PGPInlineScheme, byMIMEType[rfc822.TextPlain].Type)
	require.Equal(t, lockmail.PGPMIMEScheme, byMIMEType[rfc822.MultipartMixed].Type)

	// The plaintext sibling is the HTML body with markup dropped.
	plain := byMIMEType[rfc822.TextPlain]

	keyPacket := plain.Addresses["pgp-inline@email.com"].BodyKeyPacket
	require.NotEmpty(t, keyPacket)

	body := decryptPackageBody(t, recipientKR, plain, keyPacket)
	require.Equal(t, "hello\nthere", body)
}

func TestSendReqBuilder_PlainDraftNeverUpgraded(t *testing.T) {
	kr := newTestKeyRing(t, "sender", "sender@lockmail.io")
	recipientKR := newTestKeyRing(t, "recipient", "recipient@lockmail.io")

	req, err := lockmail.NewSendReqBuilder(kr, "plain body", rfc822.TextPlain).
		WithPreferences(map[string]lockmail.SendPreferences{
			"internal@lockmail.io": {
				Encrypt:          true,
				PubKey:           recipientKR,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.InternalScheme,
				MIMEType:         rfc822.TextHTML,
			},
		}).
		Build()
	require.NoError(t, err)

	require.Len(t, req.Packages, 1)
	require.Equal(t, rfc822.TextPlain, req.Packages[0].MIMEType)
}

func TestSendReqBuilder_SharedRendition(t *testing.T) {
	kr := newTestKeyRing(t, "sender", "sender@lockmail.io")
	recipientKR := newTestKeyRing(t, "recipient", "recipient@lockmail.io")

	req, err := lockmail.NewSendReqBuilder(kr, "hello", rfc822.TextPlain).
		WithPreferences(map[string]lockmail.SendPreferences{
			"pgp-inline@email.com": {
				Encrypt:          true,
				PubKey:           recipientKR,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.PGPInlineScheme,
				MIMEType:         rfc822.TextPlain,
			},
			"clear@email.com": {
				EncryptionScheme: lockmail.ClearScheme,
				MIMEType:         rfc822.TextPlain,
			},
		}).
		Build()
	require.NoError(t, err)

	// One body rendition serves both recipients; the clear recipient gets the
	// session key in the open, the keyed one gets it wrapped.
	require.Len(t, req.Packages, 1)

	pkg := req.Packages[0]
	require.Equal(t, lockmail.PGPInlineScheme|lockmail.ClearScheme, pkg.Type)
	require.NotNil(t, pkg.BodyKey)
	require.NotEmpty(t, pkg.Addresses["pgp-inline@email.com"].BodyKeyPacket)
	require.Empty(t, pkg.Addresses["clear@email.com"].BodyKeyPacket)
}

func TestSendReqBuilder_NoRecipients(t *testing.T) {
	kr := newTestKeyRing(t, "sender", "sender@lockmail.io")

	_, err := lockmail.NewSendReqBuilder(kr, "hello", rfc822.TextPlain).Build()
	require.Error(t, err)
}

func TestSendReqBuilder_OutsidePasswordMissing(t *testing.T) {
	kr := newTestKeyRing(t, "sender", "sender@lockmail.io")

	_, err := lockmail.NewSendReqBuilder(kr, "hello", rfc822.TextPlain).
		WithPreferences(map[string]lockmail.SendPreferences{
			"outside@email.com": {
				EncryptionScheme: lockmail.EncryptedOutsideScheme,
				MIMEType:         rfc822.TextPlain,
			},
		}).
		Build()

	var encErr *lockmail.EncryptionError

	require.ErrorAs(t, err, &encErr)
	require.Equal(t, "outside@email.com", encErr.Email)
}

func TestSendReqBuilder_OneBadRecipientFailsBuild(t *testing.T) {
	kr := newTestKeyRing(t, "sender", "sender@lockmail.io")
	recipientKR := newTestKeyRing(t, "recipient", "recipient@lockmail.io")

	_, err := lockmail.NewSendReqBuilder(kr, "hello", rfc822.TextPlain).
		WithPreferences(map[string]lockmail.SendPreferences{
			"good@lockmail.io": {
				Encrypt:          true,
				PubKey:           recipientKR,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.InternalScheme,
				MIMEType:         rfc822.TextPlain,
			},
			"bad@lockmail.io": {
				Encrypt:          true,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.InternalScheme,
				MIMEType:         rfc822.TextPlain,
			},
		}).
		Build()
	require.Error(t, err)
}

func newTestKeyRing(t *testing.T, name, email string) *crypto.KeyRing {
	t.Helper()

	key, err := crypto.GenerateKey(name, email, "rsa", 2048)
	require.NoError(t, err)

	kr, err := crypto.NewKeyRing(key)
	require.NoError(t, err)

	return kr
}

func decryptPackageBody(t *testing.T, kr *crypto.KeyRing, pkg *lockmail.MessagePackage, keyPacketB64 string) string {
	t.Helper()

	keyPacket := mustBase64(t, keyPacketB64)
	dataPacket := mustBase64(t, pkg.Body)

	dec, err := kr.Decrypt(crypto.NewPGPSplitMessage(keyPacket, dataPacket).GetPGPMessage(), nil, 0)
	require.NoError(t, err)

	return dec.GetString()
}

func mustBase64(t *testing.T, s string) []byte {
	t.Helper()

	raw, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)

	return raw
}
