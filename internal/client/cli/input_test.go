package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func withTerminal(t *testing.T, tty bool) {
	t.Helper()
	old := isTerminal
	isTerminal = func() bool { return tty }
	t.Cleanup(func() { isTerminal = old })
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name?", &out)
	require.NoError(t, err)
	require.Equal(t, "hello world", got)
	require.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleText_EOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	require.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.Error(t, err)
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\n\n"), "Enter text", &out)
	require.NoError(t, err)
	require.Equal(t, "a\nb", got)
}

func TestGetMultiline_EOFWithoutBlankLine(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("only line"), "Enter text", &out)
	require.NoError(t, err)
	require.Equal(t, "only line", got)
}

func TestGetPassword_Terminal(t *testing.T) {
	withTerminal(t, true)
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }
	var out bytes.Buffer
	pw, err := GetPassword(rdr(""), &out)
	require.NoError(t, err)
	require.Equal(t, "s3cret", string(pw))

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = GetPassword(rdr(""), &out)
	require.Error(t, err)
}

func TestGetPassword_PipedInput(t *testing.T) {
	withTerminal(t, false)
	var out bytes.Buffer
	pw, err := GetPassword(rdr("piped pass\nnext\n"), &out)
	require.NoError(t, err)
	require.Equal(t, "piped pass", string(pw))
}

func TestWipe(t *testing.T) {
	b := []byte("secret")
	wipe(b)
	require.Equal(t, make([]byte, 6), b)
}
