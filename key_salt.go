package lockmail

import (
	"encoding/base64"
	"fmt"

	"github.com/ProtonMail/go-srp"
)

type KeySalts []KeySalt

// SaltForKey returns the raw salt for the given key.
func (salts KeySalts) SaltForKey(keyID string) ([]byte, error) {
	for _, salt := range salts {
		if salt.ID == keyID {
			return base64.StdEncoding.DecodeString(salt.KeySalt)
		}
	}

	return nil, fmt.Errorf("no salt found for key %s", keyID)
}

// SaltedKeyPass derives the mailbox key passphrase from the account password
// and the key salt.
func SaltedKeyPass(password, salt []byte) ([]byte, error) {
	passphrase, err := srp.MailboxPassword(password, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// The hash is bcrypt-formatted; the passphrase is its final 31 bytes.
	return passphrase[len(passphrase)-31:], nil
}
