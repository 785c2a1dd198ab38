package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/digital-card-go/internal/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CARD_PERSON_NAME", "Jane Mary Doe")
	t.Setenv("CARD_APP_URL", "https://card.example.com")
	t.Setenv("LOG_LEVEL", "error")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestVCardCommand(t *testing.T) {
	out, err := run(t, "vcard")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCARD\n"))
	assert.Contains(t, out, "FN:Jane Mary Doe")
}

func TestLinksCommand(t *testing.T) {
	out, err := run(t, "links", "--to", "+91 98765 43210")
	require.NoError(t, err)

	var result domain.ShareResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "https://card.example.com", result.Links.CopyLink)
	require.NotNil(t, result.Recipient)
	assert.True(t, strings.HasPrefix(result.Recipient.SMS, "sms:919876543210?body="))
}

func TestQRCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qr.png")

	out, err := run(t, "qr", "-o", path, "--size", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestLocalesCheckCommand(t *testing.T) {
	out, err := run(t, "locales", "check")
	require.NoError(t, err)

	assert.Contains(t, out, "en: ok")
	assert.Contains(t, out, "kn: ok")
}
