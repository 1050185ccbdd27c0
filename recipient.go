package lockmail

import (
	"context"
	"runtime"

	"github.com/ProtonMail/gluon/rfc822"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/bradenaw/juniper/parallel"
	"github.com/go-resty/resty/v2"
)

// GetRecipientKeys asks the key directory for the locality and advertised
// public keys of the given email address.
func (c *Client) GetRecipientKeys(ctx context.Context, email string) (RecipientKeys, error) {
	var res RecipientKeys

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&res).SetQueryParam("Email", email).Get("/core/v4/keys")
	}); err != nil {
		return RecipientKeys{}, err
	}

	return res, nil
}

// ResolveSendPreferences builds the send preferences for every recipient of
// a message. Contact and key directory lookups for distinct recipients run
// concurrently; a lookup failure for one recipient does not block the
// others. If any lookup failed, the successfully resolved preferences are
// returned together with a *KeyResolutionError naming the failures.
func (c *Client) ResolveSendPreferences(
	ctx context.Context,
	addrKR *crypto.KeyRing,
	settings MailSettings,
	draftMIMEType rfc822.MIMEType,
	eoRequested bool,
	emails []string,
) (map[string]SendPreferences, error) {
	type resolved struct {
		email string
		prefs SendPreferences
		err   error
	}

	results := parallel.Map(runtime.NumCPU(), emails, func(email string) resolved {
		prefs, err := c.resolveOne(ctx, addrKR, settings, draftMIMEType, eoRequested, email)

		return resolved{email: email, prefs: prefs, err: err}
	})

	prefs := make(map[string]SendPreferences, len(emails))
	failures := make(map[string]error)

	for _, res := range results {
		if res.err != nil {
			failures[res.email] = res.err
		} else {
			prefs[res.email] = res.prefs
		}
	}

	if len(failures) > 0 {
		return prefs, &KeyResolutionError{Failures: failures}
	}

	return prefs, nil
}

func (c *Client) resolveOne(
	ctx context.Context,
	addrKR *crypto.KeyRing,
	settings MailSettings,
	draftMIMEType rfc822.MIMEType,
	eoRequested bool,
	email string,
) (SendPreferences, error) {
	contact, err := c.GetContactSettings(ctx, addrKR, email)
	if err != nil {
		return SendPreferences{}, err
	}

	keys, err := c.GetRecipientKeys(ctx, email)
	if err != nil {
		return SendPreferences{}, err
	}

	return buildSendPrefs(contact, settings, keys, draftMIMEType, eoRequested)
}

// buildSendPrefs merges the contact's pinned policy, the key directory
// answer and the sender's mail settings into one recipient preference set.
// A key pinned in the contact wins over a directory-advertised one.
func buildSendPrefs(
	contact ContactSettings,
	settings MailSettings,
	keys RecipientKeys,
	draftMIMEType rfc822.MIMEType,
	eoRequested bool,
) (SendPreferences, error) {
	pubKey, err := pinnedOrAdvertisedKey(contact, keys)
	if err != nil {
		return SendPreferences{}, err
	}

	hasKey := pubKey != nil

	canEncrypt := hasKey

	if contact.Encrypt != nil {
		canEncrypt = hasKey && *contact.Encrypt
	}

	sign := settings.Sign == SignExternalMessagesEnabled

	if contact.Sign != nil {
		sign = *contact.Sign
	}

	mimePreferred := false

	if contact.Scheme != nil {
		mimePreferred = *contact.Scheme == PGPMIMEScheme
	} else if keys.RecipientType == RecipientTypeExternal && hasKey && canEncrypt {
		mimePreferred = settings.PGPScheme == PGPMIMEScheme
	}

	// A clear MIME body always carries a detached signature; without signing
	// there is nothing MIME buys us, so the preference is dropped.
	if mimePreferred && !canEncrypt && !sign {
		mimePreferred = false
	}

	scheme := ClassifyScheme(keys.RecipientType, hasKey, canEncrypt, mimePreferred, eoRequested)

	prefs := SendPreferences{
		EncryptionScheme: scheme,
		MIMEType:         schemeMIMEType(scheme, contact, draftMIMEType),
	}

	switch scheme {
	case InternalScheme, PGPInlineScheme, PGPMIMEScheme:
		prefs.Encrypt = true
		prefs.PubKey = pubKey
		prefs.SignatureType = DetachedSignature

	case ClearMIMEScheme:
		prefs.SignatureType = DetachedSignature

	case EncryptedOutsideScheme:
		prefs.SignatureType = NoSignature

	case ClearScheme:
		// A signed clear body must go out as plain text; the detached
		// signature covers the exact bytes the recipient sees.
		if sign {
			prefs.SignatureType = DetachedSignature
			prefs.MIMEType = rfc822.TextPlain
		}
	}

	return prefs, nil
}

func pinnedOrAdvertisedKey(contact ContactSettings, keys RecipientKeys) (*crypto.KeyRing, error) {
	if len(contact.Keys) > 0 {
		return crypto.NewKeyRing(contact.Keys[0])
	}

	return keys.EncryptionKey()
}

func schemeMIMEType(scheme EncryptionScheme, contact ContactSettings, draftMIMEType rfc822.MIMEType) rfc822.MIMEType {
	switch scheme {
	case PGPMIMEScheme, ClearMIMEScheme:
		return rfc822.MultipartMixed

	case PGPInlineScheme:
		return rfc822.TextPlain

	default:
		if contact.MIMEType != nil {
			return *contact.MIMEType
		}

		return draftMIMEType
	}
}
