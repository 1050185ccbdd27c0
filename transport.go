package lockmail

import (
	"crypto/tls"
	"net/http"
)

// InsecureTransport returns an HTTP transport which skips certificate
// verification, for talking to test servers with self-signed certificates.
func InsecureTransport() *http.Transport {
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	}
}
