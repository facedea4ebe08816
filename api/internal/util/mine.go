package util

import (
	"net/http"
	"strings"
)

func isJPEG(b []byte) bool { return len(b) >= 2 && b[0] == 0xFF && b[1] == 0xD8 }

func isPNG(b []byte) bool {
	return len(b) >= 8 &&
		b[0] == 0x89 && b[1] == 0x50 && b[2] == 0x4E && b[3] == 0x47 &&
		b[4] == 0x0D && b[5] == 0x0A && b[6] == 0x1A && b[7] == 0x0A
}

// SniffImageMIME detects the image type by signature, falling back to
// http.DetectContentType and then image/jpeg (Telegram photos are JPEG).
func SniffImageMIME(b []byte) string {
	switch {
	case isJPEG(b):
		return "image/jpeg"
	case isPNG(b):
		return "image/png"
	}
	if len(b) > 0 {
		if ct := http.DetectContentType(b); strings.HasPrefix(ct, "image/") {
			return ct
		}
	}
	return "image/jpeg"
}

// ExtForMIME returns a file extension without the dot.
func ExtForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/bmp":
		return "bmp"
	default:
		return "jpg"
	}
}
