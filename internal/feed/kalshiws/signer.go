// Package kalshiws implements the upstream feed transport: a WebSocket
// client that dials the Kalshi market-data stream, subscribes to a fixed
// ticker set, keeps the connection alive with ping/pong, and decodes wire
// messages into session.Event for the orchestrator's ingest loop.
package kalshiws

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alanyoungcy/analyticscore/internal/domain"
)

const (
	headerKey       = "KALSHI-ACCESS-KEY"
	headerSignature = "KALSHI-ACCESS-SIGNATURE"
	headerTimestamp = "KALSHI-ACCESS-TIMESTAMP"
)

// Signer produces the three out-of-band headers spec §6 requires for
// upstream authentication: RSA-PSS SHA-256 over timestamp||method||path,
// base64-encoded.
type Signer struct {
	apiKeyID   string
	privateKey *rsa.PrivateKey
}

// NewSigner returns a Signer with no key loaded; Headers fails until
// SetRSAPrivateKey succeeds.
func NewSigner(apiKeyID string) *Signer {
	return &Signer{apiKeyID: apiKeyID}
}

// SetRSAPrivateKey loads an RSA private key from PEM-encoded bytes,
// accepting both PKCS#8 and PKCS#1 encodings.
func (s *Signer) SetRSAPrivateKey(pemBytes []byte) error {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return fmt.Errorf("kalshiws: no PEM block found in private key")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		pkcs1Key, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if pkcs1Err != nil {
			return fmt.Errorf("kalshiws: parse private key: %w (pkcs1: %v)", err, pkcs1Err)
		}
		s.privateKey = pkcs1Key
		return nil
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return fmt.Errorf("kalshiws: expected RSA private key, got %T", key)
	}
	s.privateKey = rsaKey
	return nil
}

// Headers returns the signed request headers for method+path at now.
func (s *Signer) Headers(method, path string, now time.Time) (http.Header, error) {
	if s.privateKey == nil {
		return nil, fmt.Errorf("kalshiws: %w: no RSA private key configured", domain.ErrSigningFailed)
	}

	ts := strconv.FormatInt(now.UnixMilli(), 10)
	message := ts + method + path

	hash := sha256.Sum256([]byte(message))
	signature, err := rsa.SignPSS(rand.Reader, s.privateKey, crypto.SHA256, hash[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return nil, fmt.Errorf("kalshiws: %w: %v", domain.ErrSigningFailed, err)
	}

	h := http.Header{}
	h.Set(headerKey, s.apiKeyID)
	h.Set(headerSignature, base64.StdEncoding.EncodeToString(signature))
	h.Set(headerTimestamp, ts)
	return h, nil
}
