// Package httpclient builds the HTTP clients shared by the mirror, updater,
// and manpage packages.
package httpclient

import (
	"crypto/tls"
	"net/http"
	"time"
)

// New returns an HTTP client with the given timeout. A zero timeout means no
// limit, used for large archive downloads. With insecure set, TLS certificate
// verification is skipped, e.g. for private mirrors with self-signed
// certificates.
func New(timeout time.Duration, insecure bool) *http.Client {
	client := &http.Client{Timeout: timeout}
	if insecure {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return client
}
