package sauce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAllowed = []string{"saucenao.com", "i.pximg.net"}

func TestParseHostURL_Allowed(t *testing.T) {
	h, err := ParseHostURL("https://saucenao.com/img/sample.jpg", testAllowed)
	require.NoError(t, err)
	assert.Equal(t, "saucenao.com", h.Hostname())
	assert.Equal(t, "https://saucenao.com/img/sample.jpg", h.String())
}

func TestParseHostURL_CaseInsensitiveHost(t *testing.T) {
	h, err := ParseHostURL("https://SauceNAO.com/img/sample.jpg", testAllowed)
	require.NoError(t, err)
	assert.Equal(t, "saucenao.com", h.Hostname())
}

func TestParseHostURL_DisallowedHost(t *testing.T) {
	_, err := ParseHostURL("https://evil.example.com/img.png", testAllowed)
	assert.ErrorIs(t, err, ErrHostNotAllowed)
}

func TestParseHostURL_DisallowedScheme(t *testing.T) {
	_, err := ParseHostURL("ftp://saucenao.com/img.png", testAllowed)
	assert.ErrorIs(t, err, ErrHostNotAllowed)
}

func TestParseHostURL_EmptyAllowList(t *testing.T) {
	_, err := ParseHostURL("https://saucenao.com/img.png", nil)
	assert.ErrorIs(t, err, ErrHostNotAllowed)
}
