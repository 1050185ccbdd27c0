package backend

import (
	"strings"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/lockmail/go-lockmail-api"
)

// GetRecipientKeys answers a key directory lookup for the given email. An
// address hosted here is internal and advertises its address keys; a
// registered external address advertises its recorded key; anything else is
// external with no keys.
func (b *Backend) GetRecipientKeys(email string) (lockmail.RecipientKeys, error) {
	b.accLock.RLock()
	defer b.accLock.RUnlock()

	for _, acc := range b.accounts {
		for _, addr := range acc.addresses {
			if !strings.EqualFold(addr.email, email) {
				continue
			}

			var keys []lockmail.PublicKey

			for _, k := range addr.keys {
				pubKey, err := publicKey(k.armKey)
				if err != nil {
					return lockmail.RecipientKeys{}, err
				}

				keys = append(keys, lockmail.PublicKey{
					Flags:     lockmail.KeyFlagVerify | lockmail.KeyFlagEncrypt,
					PublicKey: pubKey,
				})
			}

			return lockmail.RecipientKeys{
				RecipientType: lockmail.RecipientTypeInternal,
				Keys:          keys,
			}, nil
		}
	}

	b.extLock.RLock()
	defer b.extLock.RUnlock()

	if armPubKey, ok := b.external[strings.ToLower(email)]; ok {
		return lockmail.RecipientKeys{
			RecipientType: lockmail.RecipientTypeExternal,
			Keys: []lockmail.PublicKey{{
				Flags:     lockmail.KeyFlagVerify | lockmail.KeyFlagEncrypt,
				PublicKey: armPubKey,
			}},
		}, nil
	}

	return lockmail.RecipientKeys{RecipientType: lockmail.RecipientTypeExternal}, nil
}

func publicKey(armKey string) (string, error) {
	privKey, err := crypto.NewKeyFromArmored(armKey)
	if err != nil {
		return "", err
	}

	return privKey.GetArmoredPublicKey()
}
