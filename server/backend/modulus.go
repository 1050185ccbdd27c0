package backend

import (
	"github.com/lockmail/go-lockmail-api"
)

// modulus is a fixture in the clear-signed layout the production API hands
// out. Production verifier generation checks the signature against the
// platform key, so tests exercising password-protected sends inject their
// own verifier generator rather than running SRP against this fixture.
const modulus = `-----BEGIN PGP SIGNED MESSAGE-----
Hash: SHA256

W2uDGWrhHIQQgnpdOrpgltM08P2jEuJjuTNIUIcsapJZXhdFeK/0mKDq8T/V70lBLcrHCqNXMS1T
9XfowHO2ZLhSm6S3sS6fBOHhZdDlE4Ww/F0CiTUHhXtRa2f1VhM4BrI0nFzknjbHxLxnOqWfjoEs
4SzEt2RJQf1nzUEb7rLZ0Sckbv0zfXPZVPs65BwZZhI4LpI9BrcTrYFPWhnqJIiBYAs3dq6XbU1k
xE2fCsCzWIDPHhW4tk9SUqBkBfkNpyflOBLbJSqFM8vsN5x1d7HsdTGfwgnMNuIPWbTaU4Ke6ZbD
ruox3jfjVdjVrvonmIRkv6v9d1YYxLb3bazCFw==
-----BEGIN PGP SIGNATURE-----
Version: GopenPGP 2.7.1

wl4EARYIABAFAmRvJ1gJEDUFhcTpUY8mAAD4kwEAxKNTvrvEqEPZAP0hSz2gr89b
pTDrpSJk0sVGsc6kFqkBAIzrTyGYn9fdLUKjrbg9rLGb+5rgsmdAXxzhtIhsvTQJ
=aPcQ
-----END PGP SIGNATURE-----`

func (b *Backend) GetAuthModulus() lockmail.Modulus {
	return lockmail.Modulus{
		ModulusID: "fixture-modulus-id",
		Modulus:   modulus,
	}
}
