package qrcode

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGGenerator_DataURL(t *testing.T) {
	g := NewPNGGenerator(128)

	url, err := g.DataURL("http://localhost:5173/signup/123456")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, dataURLPrefix))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, dataURLPrefix))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestPNGGenerator_DataURL_empty(t *testing.T) {
	_, err := NewPNGGenerator(0).DataURL("")
	assert.Error(t, err)
}
