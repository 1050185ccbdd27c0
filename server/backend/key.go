package backend

import (
	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

// GenerateKey generates a locked, armored private key for the given identity.
// It is a variable so tests can substitute a faster generator.
var GenerateKey = func(name, email string, passphrase []byte) (string, error) {
	genKey, err := crypto.GenerateKey(name, email, "rsa", 2048)
	if err != nil {
		return "", err
	}

	lockedKey, err := genKey.Lock(passphrase)
	if err != nil {
		return "", err
	}

	return lockedKey.Armor()
}
