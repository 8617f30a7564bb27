// Package network lets one TLS port answer plain HTTP clients with a
// redirect to the https:// URL.
package network

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// tlsHandshake is the record type that opens every TLS connection.
const tlsHandshake = 0x16

// RedirectListener wraps the raw listener beneath a tls.Listener.
type RedirectListener struct {
	net.Listener
}

func NewRedirectListener(l net.Listener) net.Listener {
	return &RedirectListener{Listener: l}
}

func (l *RedirectListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &sniffConn{Conn: conn, reader: bufio.NewReader(conn)}, nil
}

// sniffConn peeks at the first byte. Non-TLS traffic is parsed as an HTTP
// request, answered with 307 and closed; the TLS layer then sees EOF.
type sniffConn struct {
	net.Conn
	reader *bufio.Reader
	once   sync.Once
	closed bool
}

func (c *sniffConn) Read(p []byte) (int, error) {
	c.once.Do(c.sniff)
	if c.closed {
		return 0, net.ErrClosed
	}
	return c.reader.Read(p)
}

func (c *sniffConn) sniff() {
	first, err := c.reader.Peek(1)
	if err != nil || first[0] == tlsHandshake {
		return
	}
	_ = c.Conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	req, err := http.ReadRequest(c.reader)
	if err == nil {
		resp := &http.Response{
			StatusCode: http.StatusTemporaryRedirect,
			ProtoMajor: 1,
			ProtoMinor: 1,
			Header:     http.Header{},
		}
		resp.Header.Set("Location", fmt.Sprintf("https://%s%s", req.Host, req.RequestURI))
		resp.Header.Set("Connection", "close")
		_ = resp.Write(c.Conn)
	}
	c.closed = true
	_ = c.Conn.Close()
}
