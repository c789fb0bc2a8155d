// Package tlsconf derives TLS credentials for the TCP control listener from
// the shared bearer token.
//
// The server's Ed25519 key is derived deterministically, so the daemon and a
// CLI holding the same token agree on it without any certificate
// distribution. The certificate itself is throwaway: clients pin the public
// key via VerifyPeerCertificate and skip chain verification.
//
//	HKDF-SHA256(ikm=token, salt="clipbox-control-tls-v1", info="ed25519-seed")
//	→ 32-byte seed → Ed25519 key
package tlsconf

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"golang.org/x/crypto/hkdf"
	"google.golang.org/grpc/credentials"
)

const serverName = "clipbox"

var (
	hkdfSalt = []byte("clipbox-control-tls-v1")
	hkdfInfo = []byte("ed25519-seed")

	// ErrEmptySecret is returned when TLS is requested without a token.
	ErrEmptySecret = errors.New("tlsconf: TLS needs a non-empty token")
	// ErrKeyMismatch is returned by the client handshake when the server's
	// key was derived from a different token.
	ErrKeyMismatch = errors.New("tlsconf: server key does not match token")
)

// Pair holds both ends of the TLS setup for one token.
type Pair struct {
	server *tls.Config
	client *tls.Config
}

// Derive builds the server and client TLS configs for secret.
func Derive(secret string) (*Pair, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	key, err := deriveKey(secret)
	if err != nil {
		return nil, err
	}
	der, err := selfSigned(key)
	if err != nil {
		return nil, fmt.Errorf("tlsconf: cert: %w", err)
	}

	return &Pair{
		server: &tls.Config{
			Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}},
			// ALPN must offer both so gRPC and HTTP/JSON share the listener.
			NextProtos: []string{"h2", "http/1.1"},
			MinVersion: tls.VersionTLS13,
		},
		client: &tls.Config{
			InsecureSkipVerify:    true, //nolint:gosec // the public key is pinned below
			ServerName:            serverName,
			MinVersion:            tls.VersionTLS13,
			VerifyPeerCertificate: pinned(key.Public().(ed25519.PublicKey)),
		},
	}, nil
}

// ServerConfig returns a config for tls.NewListener.
func (p *Pair) ServerConfig() *tls.Config { return p.server.Clone() }

// ClientConfig returns a config for HTTP clients of the listener.
func (p *Pair) ClientConfig() *tls.Config { return p.client.Clone() }

// Credentials returns gRPC transport credentials for the listener.
func (p *Pair) Credentials() credentials.TransportCredentials {
	return credentials.NewTLS(p.ClientConfig())
}

func deriveKey(secret string) (ed25519.PrivateKey, error) {
	r := hkdf.New(sha256.New, []byte(secret), hkdfSalt, hkdfInfo)
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, fmt.Errorf("tlsconf: derive key: %w", err)
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

func selfSigned(key ed25519.PrivateKey) ([]byte, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: serverName},
		DNSNames:              []string{serverName},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(10 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	return x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
}

func pinned(want ed25519.PublicKey) func([][]byte, [][]*x509.Certificate) error {
	return func(raw [][]byte, _ [][]*x509.Certificate) error {
		if len(raw) == 0 {
			return errors.New("tlsconf: server presented no certificate")
		}
		cert, err := x509.ParseCertificate(raw[0])
		if err != nil {
			return fmt.Errorf("tlsconf: parse server cert: %w", err)
		}
		got, ok := cert.PublicKey.(ed25519.PublicKey)
		if !ok || !want.Equal(got) {
			return ErrKeyMismatch
		}
		return nil
	}
}
