package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapu/digital-card-go/internal/i18n"
	"github.com/kapu/digital-card-go/internal/prompt"
)

func testLocalizer(t *testing.T) *i18n.Localizer {
	t.Helper()
	fsys := fstest.MapFS{
		"messages.en.toml": {Data: []byte("share = \"Share\"\nsend = \"Send\"\ncancel = \"Cancel\"\n")},
		"messages.kn.toml": {Data: []byte("share = \"ಹಂಚಿಕೊಳ್ಳಿ\"\n")},
	}
	loc, err := i18n.Load(fsys, ".", i18n.English, i18n.Kannada)
	require.NoError(t, err)
	return loc
}

func TestPendingEntries(t *testing.T) {
	loc := testLocalizer(t)

	entries := pendingEntries(loc, i18n.Kannada, false)
	assert.Equal(t, []prompt.LocaleEntry{
		{Key: "cancel", Text: "Cancel"},
		{Key: "send", Text: "Send"},
	}, entries)

	assert.Len(t, pendingEntries(loc, i18n.Kannada, true), 3)
}

func TestMerge(t *testing.T) {
	existing := map[string]string{"share": "ಹಂಚಿಕೊಳ್ಳಿ"}
	requested := []prompt.LocaleEntry{{Key: "send", Text: "Send"}, {Key: "cancel", Text: "Cancel"}}
	translated := map[string]string{"send": " ಕಳುಹಿಸಿ ", "cancel": "", "bogus": "x"}

	merged, applied := merge(existing, requested, translated)

	assert.Equal(t, 1, applied)
	assert.Equal(t, map[string]string{"share": "ಹಂಚಿಕೊಳ್ಳಿ", "send": "ಕಳುಹಿಸಿ"}, merged)
	assert.Len(t, existing, 1)
}

func TestTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.kn.toml")

	table, err := readTable(path)
	require.NoError(t, err)
	assert.Empty(t, table)

	require.NoError(t, writeTable(path, map[string]string{"photoAlt": "{{.Name}} ಅವರ ಭಾವಚಿತ್ರ"}))

	table, err = readTable(path)
	require.NoError(t, err)
	assert.Equal(t, "{{.Name}} ಅವರ ಭಾವಚಿತ್ರ", table["photoAlt"])

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestIsRecoverableError(t *testing.T) {
	assert.True(t, isRecoverableError(errors.New("Error 503: model is overloaded")))
	assert.True(t, isRecoverableError(errors.New("AI service is temporarily unavailable")))
	assert.False(t, isRecoverableError(errors.New("Error 400: bad request")))
	assert.False(t, isRecoverableError(nil))
}
