package shortlink_test

import (
	"testing"

	"github.com/linkcut/linkcut/internal/shortlink"
	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	t.Run("joins base url and code", func(t *testing.T) {
		assert.Equal(t, "https://lnk.example/abc123", shortlink.PublicURL("https://lnk.example", "abc123"))
	})
}

func TestQRCodeURL(t *testing.T) {
	t.Run("encodes the short url into the query string", func(t *testing.T) {
		got := shortlink.QRCodeURL("https://lnk.example/abc123", 220)

		assert.Equal(
			t,
			"https://api.qrserver.com/v1/create-qr-code/?size=220x220&data=https%3A%2F%2Flnk.example%2Fabc123",
			got,
		)
	})
}
