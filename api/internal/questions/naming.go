// Package questions knows how stored question files are named and how the
// /list and /pdf commands pick them out of the folder tree.
package questions

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"
)

// FileName builds "<code>.<seq>_<submitter>_<HH-MM>.<ext>".
func FileName(code string, seq int, submitter string, at time.Time, ext string) string {
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s.%d_%s_%s.%s", code, seq, SanitizeSubmitter(submitter), at.Format("15-04"), ext)
}

// SanitizeSubmitter keeps the name from breaking the underscore-delimited
// file name layout.
func SanitizeSubmitter(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "anonim"
	}
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '/' || r == '\\' || unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, name)
}

// Label is the "<code>.<seq>" part of a stored file name.
func Label(name string) string {
	if head, _, ok := strings.Cut(name, "_"); ok {
		return head
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

// Submitter is the second-to-last underscore-delimited segment, or "".
func Submitter(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-2]
}

// SelectionMarker is the substring identifying question seq of code.
func SelectionMarker(code string, seq int) string {
	return fmt.Sprintf("%s.%d_", code, seq)
}
