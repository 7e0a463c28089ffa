package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocator_WithoutDatabase(t *testing.T) {
	l, err := Open("")
	require.NoError(t, err)
	defer l.Close()

	for _, ip := range []string{"8.8.8.8", "127.0.0.1", "::1", "", "garbage"} {
		_, ok := l.Lookup(ip)
		assert.False(t, ok, ip)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("/nonexistent/GeoLite2-City.mmdb")
	assert.Error(t, err)
}

func TestLocator_NilSafe(t *testing.T) {
	var l *Locator
	_, ok := l.Lookup("8.8.8.8")
	assert.False(t, ok)
	assert.NoError(t, l.Close())
}
