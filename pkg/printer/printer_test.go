package printer

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"12 MG Road,", "Mumbai"}, Wrap("12 MG Road, Mumbai", 12))
	assert.Equal(t, []string{"abcde", "fgh"}, Wrap("abcdefgh", 5))
	assert.Equal(t, []string{"a", "b"}, Wrap("a\nb", 10))
	assert.Equal(t, []string{""}, Wrap("", 10))
}

func TestKeyValue_AlignsAndWraps(t *testing.T) {
	d := NewDocument(20)
	start := len(d.Bytes())
	d.KeyValue("PAN", "ABCDE1234F")
	line := string(d.Bytes()[start:])
	assert.Equal(t, "PAN       ABCDE1234F\n", line)

	d = NewDocument(20)
	start = len(d.Bytes())
	d.KeyValue("Address", "12 MG Road Fort Mumbai")
	lines := bytes.Split(bytes.TrimSuffix(d.Bytes()[start:], []byte{LF}), []byte{LF})
	require.Len(t, lines, 2)
	for _, l := range lines {
		assert.Len(t, l, 20)
	}
}

func TestDocument_MapsUnicodeToPrintable(t *testing.T) {
	d := NewDocument(Width58mm)
	d.Text("Amount ₹ 50 — ok")
	assert.Contains(t, string(d.Bytes()), "Amount Rs. 50 - ok")
}

func TestNewPrinterFromConfig(t *testing.T) {
	p, err := NewPrinterFromConfig("", "", "")
	require.NoError(t, err)
	assert.Equal(t, "none", p.Kind())

	_, err = NewPrinterFromConfig("usb", "", "")
	assert.Error(t, err)
	_, err = NewPrinterFromConfig("serial", "", "")
	assert.Error(t, err)
}

func TestNetworkPrinter_Print(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	got := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		b, _ := io.ReadAll(conn)
		got <- b
	}()

	p := NewNetworkPrinter(ln.Addr().String())
	require.NoError(t, p.Print(context.Background(), []byte("ticket")))
	assert.Equal(t, []byte("ticket"), <-got)
}
