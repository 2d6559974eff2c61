package ticket

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

// encodePNG renders the raw secret (not the hash) as a square QR PNG.
// The verifier re-derives the hash from whatever the scanner reads, so the
// image must carry the secret itself.
func encodePNG(payload string, size int) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, size)
}

// DataURL wraps a PNG as a data URI suitable for an <img> src.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
