package server

import (
	"testing"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/lockmail/go-lockmail-api/server/backend"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func init() {
	key, err := crypto.GenerateKey("name", "email", "rsa", 1024)
	if err != nil {
		panic(err)
	}

	backend.GenerateKey = func(_, _ string, passphrase []byte) (string, error) {
		encKey, err := key.Lock(passphrase)
		if err != nil {
			return "", err
		}

		return encKey.Armor()
	}
}
