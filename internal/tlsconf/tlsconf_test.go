package tlsconf

import (
	"crypto/ed25519"
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, p *Pair) string {
	t.Helper()
	ln, err := tls.Listen("tcp", "127.0.0.1:0", p.ServerConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.(*tls.Conn).Handshake()
			_ = conn.Close()
		}
	}()
	return ln.Addr().String()
}

func TestDeriveIsDeterministic(t *testing.T) {
	a, err := Derive("token")
	require.NoError(t, err)
	b, err := Derive("token")
	require.NoError(t, err)
	c, err := Derive("other")
	require.NoError(t, err)

	keyOf := func(p *Pair) ed25519.PrivateKey {
		return p.server.Certificates[0].PrivateKey.(ed25519.PrivateKey)
	}
	assert.True(t, keyOf(a).Equal(keyOf(b)))
	assert.False(t, keyOf(a).Equal(keyOf(c)))
}

func TestDeriveRejectsEmptySecret(t *testing.T) {
	_, err := Derive("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestHandshakeWithMatchingToken(t *testing.T) {
	server, err := Derive("shared")
	require.NoError(t, err)
	client, err := Derive("shared")
	require.NoError(t, err)

	conn, err := tls.Dial("tcp", serve(t, server), client.ClientConfig())
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, uint16(tls.VersionTLS13), conn.ConnectionState().Version)
}

func TestHandshakeWithWrongTokenFails(t *testing.T) {
	server, err := Derive("shared")
	require.NoError(t, err)
	client, err := Derive("guess")
	require.NoError(t, err)

	_, err = tls.Dial("tcp", serve(t, server), client.ClientConfig())
	assert.ErrorContains(t, err, ErrKeyMismatch.Error())
}

func TestServerOffersBothProtocols(t *testing.T) {
	p, err := Derive("shared")
	require.NoError(t, err)
	assert.Equal(t, []string{"h2", "http/1.1"}, p.ServerConfig().NextProtos)
}
