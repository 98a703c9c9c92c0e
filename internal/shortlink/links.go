package shortlink

import (
	"fmt"
	"net/url"
)

// qrEndpoint is the external QR rendering service. Rendering is fully
// delegated; we only build the reference URL.
const qrEndpoint = "https://api.qrserver.com/v1/create-qr-code/"

// PublicURL builds the fully-qualified short URL for a code.
func PublicURL(baseURL string, code Code) string {
	return fmt.Sprintf("%s/%s", baseURL, code)
}

// QRCodeURL builds a reference URL that renders a QR code for the given
// short URL at size x size pixels.
func QRCodeURL(fullShortURL string, size int) string {
	return fmt.Sprintf("%s?size=%dx%d&data=%s", qrEndpoint, size, size, url.QueryEscape(fullShortURL))
}
