package lockmail

import (
	"fmt"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

type Key struct {
	ID         string
	PrivateKey string

	// Token, when set, is a PGP message holding this key's passphrase,
	// encrypted with one of the user keys. Address keys of migrated accounts
	// carry tokens; legacy address keys are locked with the salted key
	// password directly.
	Token     string `json:",omitempty"`
	Signature string `json:",omitempty"`

	Primary Bool
	Active  Bool
}

// Unlock unlocks the key using either its token (decrypted with the given
// user keyring) or, if it has no token, the given passphrase.
func (key Key) Unlock(passphrase []byte, userKR *crypto.KeyRing) (*crypto.Key, error) {
	lockedKey, err := crypto.NewKeyFromArmored(key.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	if key.Token != "" && userKR != nil {
		msg, err := crypto.NewPGPMessageFromArmored(key.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to parse key token: %w", err)
		}

		token, err := userKR.Decrypt(msg, nil, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt key token: %w", err)
		}

		if key.Signature != "" {
			sig, err := crypto.NewPGPSignatureFromArmored(key.Signature)
			if err != nil {
				return nil, fmt.Errorf("failed to parse token signature: %w", err)
			}

			if err := userKR.VerifyDetached(token, sig, crypto.GetUnixTime()); err != nil {
				return nil, fmt.Errorf("failed to verify key token: %w", err)
			}
		}

		passphrase = token.GetBinary()
	}

	return lockedKey.Unlock(passphrase)
}

type Keys []Key

// Unlock unlocks all the keys it can and returns them as a keyring.
func (keys Keys) Unlock(passphrase []byte, userKR *crypto.KeyRing) (*crypto.KeyRing, error) {
	kr, err := crypto.NewKeyRing(nil)
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		if !key.Active {
			continue
		}

		unlocked, err := key.Unlock(passphrase, userKR)
		if err != nil {
			continue
		}

		if err := kr.AddKey(unlocked); err != nil {
			return nil, err
		}
	}

	return kr, nil
}

// TryUnlock is like Unlock but returns nil if no key could be unlocked.
func (keys Keys) TryUnlock(passphrase []byte, userKR *crypto.KeyRing) *crypto.KeyRing {
	kr, err := keys.Unlock(passphrase, userKR)
	if err != nil {
		return nil
	}

	if kr.CountDecryptionEntities() == 0 {
		return nil
	}

	return kr
}

// Primary returns the primary key.
func (keys Keys) Primary() (Key, error) {
	for _, key := range keys {
		if key.Primary {
			return key, nil
		}
	}

	return Key{}, fmt.Errorf("no primary key")
}
