package lockmail

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/ProtonMail/go-srp"
	"github.com/ProtonMail/gopenpgp/v2/crypto"
	"github.com/go-resty/resty/v2"
)

const (
	srpBitLength = 2048
	srpSaltSize  = 16
	eoTokenSize  = 16
)

// Modulus is a clear-signed SRP modulus handed out by the API for verifier
// generation.
type Modulus struct {
	ModulusID string
	Modulus   string
}

func (c *Client) GetAuthModulus(ctx context.Context) (Modulus, error) {
	var res Modulus

	if err := c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&res).Get("/auth/v4/modulus")
	}); err != nil {
		return Modulus{}, err
	}

	return res, nil
}

// EOAuth is the SRP verifier material for one password-protected message.
// The server uses it to authenticate the external recipient without ever
// seeing the password.
type EOAuth struct {
	Version   int
	ModulusID string
	Salt      string
	Verifier  string
}

// VerifierGenerator derives an SRP salt and verifier from a password and a
// clear-signed modulus.
type VerifierGenerator func(password []byte, signedModulus string) (salt, verifier string, err error)

func srpVerifier(password []byte, signedModulus string) (string, string, error) {
	rawSalt, err := crypto.RandomToken(srpSaltSize)
	if err != nil {
		return "", "", err
	}

	auth, err := srp.NewAuthForVerifier(password, signedModulus, rawSalt)
	if err != nil {
		return "", "", err
	}

	verifier, err := auth.GenerateVerifier(srpBitLength)
	if err != nil {
		return "", "", err
	}

	return base64.StdEncoding.EncodeToString(rawSalt), base64.StdEncoding.EncodeToString(verifier), nil
}

// OutsideEncryption is the password setup for external recipients without
// keys who must still receive the message encrypted. The message rides
// encrypted on the platform; the recipient opens it in the browser after
// authenticating with the password via SRP.
type OutsideEncryption struct {
	Password []byte
	Hint     string
	Modulus  Modulus

	// GenVerifier overrides SRP verifier generation. Nil means the real one.
	GenVerifier VerifierGenerator
}

func (eo *OutsideEncryption) auth() (*EOAuth, error) {
	gen := eo.GenVerifier

	if gen == nil {
		gen = srpVerifier
	}

	salt, verifier, err := gen(eo.Password, eo.Modulus.Modulus)
	if err != nil {
		return nil, &SRPSetupError{Err: err}
	}

	return &EOAuth{
		Version:   4,
		ModulusID: eo.Modulus.ModulusID,
		Salt:      salt,
		Verifier:  verifier,
	}, nil
}

// wrapRecipient fills in the password-protected key material for one
// recipient: body and attachment session keys encrypted with the password,
// a fresh reply token (clear and password-encrypted), the SRP auth and the
// password hint.
func (eo *OutsideEncryption) wrapRecipient(
	recipient *MessageRecipient,
	bodyKey *crypto.SessionKey,
	attKeys map[string]*crypto.SessionKey,
) error {
	auth, err := eo.auth()
	if err != nil {
		return err
	}

	encBodyKey, err := crypto.EncryptSessionKeyWithPassword(bodyKey, eo.Password)
	if err != nil {
		return fmt.Errorf("failed to encrypt session key: %w", err)
	}

	recipient.BodyKeyPacket = base64.StdEncoding.EncodeToString(encBodyKey)

	for attID, attKey := range attKeys {
		encAttKey, err := crypto.EncryptSessionKeyWithPassword(attKey, eo.Password)
		if err != nil {
			return fmt.Errorf("failed to encrypt attachment key: %w", err)
		}

		recipient.AttachmentKeyPackets[attID] = base64.StdEncoding.EncodeToString(encAttKey)
	}

	rawToken, err := crypto.RandomToken(eoTokenSize)
	if err != nil {
		return err
	}

	token := hex.EncodeToString(rawToken)

	encToken, err := crypto.EncryptMessageWithPassword(crypto.NewPlainMessageFromString(token), eo.Password)
	if err != nil {
		return fmt.Errorf("failed to encrypt reply token: %w", err)
	}

	armToken, err := encToken.GetArmored()
	if err != nil {
		return err
	}

	recipient.Token = token
	recipient.EncToken = armToken
	recipient.Auth = auth
	recipient.PasswordHint = eo.Hint

	return nil
}
