package network

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainHTTPIsRedirected(t *testing.T) {
	raw, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	l := NewRedirectListener(raw)
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		_, _ = io.Copy(io.Discard, conn)
	}()

	conn, err := net.Dial("tcp", raw.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("GET /admin-login?next=1 HTTP/1.1\r\nHost: panel.example\r\n\r\n"))
	require.NoError(t, err)

	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "https://panel.example/admin-login?next=1", resp.Header.Get("Location"))
}

func TestTLSBytesPassThrough(t *testing.T) {
	raw, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	l := NewRedirectListener(raw)
	defer l.Close()

	got := make(chan []byte, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 3)
		_, _ = io.ReadFull(conn, buf)
		got <- buf
	}()

	conn, err := net.Dial("tcp", raw.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte{tlsHandshake, 0x03, 0x01})
	require.NoError(t, err)

	assert.Equal(t, []byte{tlsHandshake, 0x03, 0x01}, <-got)
}
