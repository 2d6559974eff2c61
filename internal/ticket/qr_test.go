package ticket

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePNG(t *testing.T) {
	png, err := encodePNG("2VQ02T1yT0Hc2QTkd6c0aE1S9mSI1lVSU5Vl0KQmnRk", 400)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG\r\n\x1a\n", string(png[:8]))
}

func TestDataURL(t *testing.T) {
	png, err := encodePNG("payload-under-test", 64)
	require.NoError(t, err)

	url := DataURL(png)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))
	assert.Greater(t, len(url), len("data:image/png;base64,"))
}
