package lockmail_test

import (
	"encoding/base64"
	"testing"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/lockmail/go-lockmail-api"
	"github.com/stretchr/testify/require"
)

func TestSendDraftReq_AddMIMEPackage(t *testing.T) {
	key, err := crypto.GenerateKey("name", "email", "rsa", 2048)
	require.NoError(t, err)

	kr, err := crypto.NewKeyRing(key)
	require.NoError(t, err)

	tests := []struct {
		name     string
		mimeBody string
		prefs    map[string]lockmail.SendPreferences
		wantErr  bool
	}{
		{
			name:     "Clear MIME with detached signature",
			mimeBody: "this is a mime body",
			prefs: map[string]lockmail.SendPreferences{"mime-sign@email.com": {
				Encrypt:          false,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.ClearMIMEScheme,
				MIMEType:         rfc822.MultipartMixed,
			}},
			wantErr: false,
		},
		{
			name:     "Clear MIME with no signature (error)",
			mimeBody: "this is a mime body",
			prefs: map[string]lockmail.SendPreferences{"mime-no-sign@email.com": {
				Encrypt:          false,
				SignatureType:    lockmail.NoSignature,
				EncryptionScheme: lockmail.ClearMIMEScheme,
				MIMEType:         rfc822.MultipartMixed,
			}},
			wantErr: true,
		},
		{
			name:     "Clear MIME with plain text (error)",
			mimeBody: "this is a mime body",
			prefs: map[string]lockmail.SendPreferences{"mime-plain@email.com": {
				Encrypt:          false,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.ClearMIMEScheme,
				MIMEType:         rfc822.TextPlain,
			}},
			wantErr: true,
		},
		{
			name:     "PGP MIME with detached signature",
			mimeBody: "this is a mime body",
			prefs: map[string]lockmail.SendPreferences{"mime-encrypted@email.com": {
				Encrypt:          true,
				PubKey:           kr,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.PGPMIMEScheme,
				MIMEType:         rfc822.MultipartMixed,
			}},
			wantErr: false,
		},
		{
			name:     "PGP MIME with rich text (error)",
			mimeBody: "this is a mime body",
			prefs: map[string]lockmail.SendPreferences{"mime-encrypted-html@email.com": {
				Encrypt:          true,
				PubKey:           kr,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.PGPMIMEScheme,
				MIMEType:         rfc822.TextHTML,
			}},
			wantErr: true,
		},
		{
			name:     "PGP MIME with missing public key (error)",
			mimeBody: "this is a mime body",
			prefs: map[string]lockmail.SendPreferences{"mime-encrypted-no-pubkey@email.com": {
				Encrypt:          true,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.PGPMIMEScheme,
				MIMEType:         rfc822.MultipartMixed,
			}},
			wantErr: true,
		},
		{
			name:     "PGP MIME with no signature (error)",
			mimeBody: "this is a mime body",
			prefs: map[string]lockmail.SendPreferences{"mime-encrypted-no-signature@email.com": {
				Encrypt:          true,
				PubKey:           kr,
				SignatureType:    lockmail.NoSignature,
				EncryptionScheme: lockmail.PGPMIMEScheme,
				MIMEType:         rfc822.MultipartMixed,
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req lockmail.SendDraftReq

			if err := req.AddMIMEPackage(kr, tt.mimeBody, tt.prefs); (err != nil) != tt.wantErr {
				t.Errorf("SendDraftReq.AddMIMEPackage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSendDraftReq_AddTextPackage(t *testing.T) {
	key, err := crypto.GenerateKey("name", "email", "rsa", 2048)
	require.NoError(t, err)

	kr, err := crypto.NewKeyRing(key)
	require.NoError(t, err)

	eo := &lockmail.OutsideEncryption{
		Password:    []byte("hunter2"),
		Hint:        "the usual",
		GenVerifier: fakeVerifier,
	}

	tests := []struct {
		name     string
		body     string
		mimeType rfc822.MIMEType
		prefs    map[string]lockmail.SendPreferences
		attKeys  map[string]*crypto.SessionKey
		eo       *lockmail.OutsideEncryption
		wantErr  bool
	}{
		{
			name:     "internal plain text with detached signature",
			body:     "this is a text/plain body",
			mimeType: rfc822.TextPlain,
			prefs: map[string]lockmail.SendPreferences{"internal-plain@email.com": {
				Encrypt:          true,
				PubKey:           kr,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.InternalScheme,
				MIMEType:         rfc822.TextPlain,
			}},
			wantErr: false,
		},
		{
			name:     "internal rich text with detached signature",
			body:     "this is a text/html body",
			mimeType: rfc822.TextHTML,
			prefs: map[string]lockmail.SendPreferences{"internal-html@email.com": {
				Encrypt:          true,
				PubKey:           kr,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.InternalScheme,
				MIMEType:         rfc822.TextHTML,
			}},
			wantErr: false,
		},
		{
			name:     "internal with multipart (error)",
			body:     "this is a text/html body",
			mimeType: rfc822.MultipartMixed,
			prefs: map[string]lockmail.SendPreferences{"internal-multipart-mixed@email.com": {
				Encrypt:          true,
				PubKey:           kr,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.InternalScheme,
				MIMEType:         rfc822.MultipartMixed,
			}},
			wantErr: true,
		},
		{
			name:     "internal without encryption (error)",
			body:     "this is a text/html body",
			mimeType: rfc822.TextHTML,
			prefs: map[string]lockmail.SendPreferences{"internal-no-encrypt@email.com": {
				Encrypt:          false,
				PubKey:           kr,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.InternalScheme,
				MIMEType:         rfc822.TextHTML,
			}},
			wantErr: true,
		},
		{
			name:     "internal without pubkey (error)",
			body:     "this is a text/html body",
			mimeType: rfc822.TextHTML,
			prefs: map[string]lockmail.SendPreferences{"internal-no-pubkey@email.com": {
				Encrypt:          true,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.InternalScheme,
				MIMEType:         rfc822.TextHTML,
			}},
			wantErr: true,
		},
		{
			name:     "clear rich text without signature",
			body:     "this is a text/html body",
			mimeType: rfc822.TextHTML,
			prefs: map[string]lockmail.SendPreferences{"clear-rich@email.com": {
				Encrypt:          false,
				SignatureType:    lockmail.NoSignature,
				EncryptionScheme: lockmail.ClearScheme,
				MIMEType:         rfc822.TextHTML,
			}},
			wantErr: false,
		},
		{
			name:     "clear plain text with signature",
			body:     "this is a text/plain body",
			mimeType: rfc822.TextPlain,
			prefs: map[string]lockmail.SendPreferences{"clear-plain-with-sig@email.com": {
				Encrypt:          false,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.ClearScheme,
				MIMEType:         rfc822.TextPlain,
			}},
			wantErr: false,
		},
		{
			name:     "clear rich text with signature (error)",
			body:     "this is a text/html body",
			mimeType: rfc822.TextHTML,
			prefs: map[string]lockmail.SendPreferences{"clear-rich-with-sig@email.com": {
				Encrypt:          false,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.ClearScheme,
				MIMEType:         rfc822.TextHTML,
			}},
			wantErr: true,
		},
		{
			name:     "encrypted plain text with signature",
			body:     "this is a text/plain body",
			mimeType: rfc822.TextPlain,
			prefs: map[string]lockmail.SendPreferences{"pgp-inline-with-sig@email.com": {
				Encrypt:          true,
				PubKey:           kr,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.PGPInlineScheme,
				MIMEType:         rfc822.TextPlain,
			}},
			wantErr: false,
		},
		{
			name:     "encrypted html text with signature (error)",
			body:     "this is a text/html body",
			mimeType: rfc822.TextHTML,
			prefs: map[string]lockmail.SendPreferences{"pgp-inline-rich-with-sig@email.com": {
				Encrypt:          true,
				PubKey:           kr,
				SignatureType:    lockmail.DetachedSignature,
				EncryptionScheme: lockmail.PGPInlineScheme,
				MIMEType:         rfc822.TextHTML,
			}},
			wantErr: true,
		},
		{
			name:     "encrypted for outside with password setup",
			body:     "this is a text/html body",
			mimeType: rfc822.TextHTML,
			prefs: map[string]lockmail.SendPreferences{"enc-for-outside@email.com": {
				Encrypt:          false,
				SignatureType:    lockmail.NoSignature,
				EncryptionScheme: lockmail.EncryptedOutsideScheme,
				MIMEType:         rfc822.TextHTML,
			}},
			eo:      eo,
			wantErr: false,
		},
		{
			name:     "encrypted for outside without password setup (error)",
			body:     "this is a text/html body",
			mimeType: rfc822.TextHTML,
			prefs: map[string]lockmail.SendPreferences{"enc-for-outside-no-pass@email.com": {
				Encrypt:          false,
				SignatureType:    lockmail.NoSignature,
				EncryptionScheme: lockmail.EncryptedOutsideScheme,
				MIMEType:         rfc822.TextHTML,
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req lockmail.SendDraftReq

			if err := req.AddTextPackage(kr, tt.body, tt.mimeType, tt.prefs, tt.attKeys, tt.eo); (err != nil) != tt.wantErr {
				t.Errorf("SendDraftReq.AddTextPackage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTextPackage_RoundTrip(t *testing.T) {
	senderKey, err := crypto.GenerateKey("sender", "sender@lockmail.io", "rsa", 2048)
	require.NoError(t, err)

	senderKR, err := crypto.NewKeyRing(senderKey)
	require.NoError(t, err)

	recipientKey, err := crypto.GenerateKey("recipient", "recipient@lockmail.io", "rsa", 2048)
	require.NoError(t, err)

	recipientKR, err := crypto.NewKeyRing(recipientKey)
	require.NoError(t, err)

	var req lockmail.SendDraftReq

	require.NoError(t, req.AddTextPackage(senderKR, "hello there", rfc822.TextHTML, map[string]lockmail.SendPreferences{
		"recipient@lockmail.io": {
			Encrypt:          true,
			PubKey:           recipientKR,
			SignatureType:    lockmail.DetachedSignature,
			EncryptionScheme: lockmail.InternalScheme,
			MIMEType:         rfc822.TextHTML,
		},
	}, nil, nil))

	require.Len(t, req.Packages, 1)

	pkg := req.Packages[0]
	require.Equal(t, lockmail.InternalScheme, pkg.Type)
	require.Nil(t, pkg.BodyKey)

	recipient, ok := pkg.Addresses["recipient@lockmail.io"]
	require.True(t, ok)

	keyPacket, err := base64.StdEncoding.DecodeString(recipient.BodyKeyPacket)
	require.NoError(t, err)

	dataPacket, err := base64.StdEncoding.DecodeString(pkg.Body)
	require.NoError(t, err)

	dec, err := recipientKR.Decrypt(crypto.NewPGPSplitMessage(keyPacket, dataPacket).GetPGPMessage(), nil, 0)
	require.NoError(t, err)
	require.Equal(t, "hello there", dec.GetString())
}

func TestClearPackage_ExposesBodyKey(t *testing.T) {
	senderKey, err := crypto.GenerateKey("sender", "sender@lockmail.io", "rsa", 2048)
	require.NoError(t, err)

	senderKR, err := crypto.NewKeyRing(senderKey)
	require.NoError(t, err)

	var req lockmail.SendDraftReq

	require.NoError(t, req.AddTextPackage(senderKR, "hello there", rfc822.TextHTML, map[string]lockmail.SendPreferences{
		"clear@email.com": {
			EncryptionScheme: lockmail.ClearScheme,
			MIMEType:         rfc822.TextHTML,
		},
	}, nil, nil))

	require.Len(t, req.Packages, 1)

	pkg := req.Packages[0]
	require.NotNil(t, pkg.BodyKey)

	rawKey, err := base64.StdEncoding.DecodeString(pkg.BodyKey.Key)
	require.NoError(t, err)

	dataPacket, err := base64.StdEncoding.DecodeString(pkg.Body)
	require.NoError(t, err)

	sessionKey := crypto.NewSessionKeyFromToken(rawKey, pkg.BodyKey.Algorithm)

	dec, err := sessionKey.Decrypt(dataPacket)
	require.NoError(t, err)
	require.Equal(t, "hello there", dec.GetString())
}

func fakeVerifier(password []byte, signedModulus string) (string, string, error) {
	return base64.StdEncoding.EncodeToString([]byte("fixed-salt-16byt")),
		base64.StdEncoding.EncodeToString([]byte("not-a-real-verifier")),
		nil
}
