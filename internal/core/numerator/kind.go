// Package numerator provides domain contracts for document numbering:
// document kinds, the per-(kind, carrier) sequence key, the sequencer
// contract and the external number format.
package numerator

import (
	"fmt"
	"strings"
)

// DocumentKind identifies which counter family a number is drawn from.
type DocumentKind string

const (
	// KindPrimary is the international road transport waybill (CRT).
	KindPrimary DocumentKind = "PRIMARY"
	// KindManifest is the customs transit manifest (MIC/DTA).
	KindManifest DocumentKind = "MANIFEST"
)

// Kinds lists every supported document kind.
var Kinds = []DocumentKind{KindPrimary, KindManifest}

// Label returns the customs name printed on the document.
func (k DocumentKind) Label() string {
	switch k {
	case KindPrimary:
		return "CRT"
	case KindManifest:
		return "MIC/DTA"
	default:
		return string(k)
	}
}

// Valid reports whether k is a known kind.
func (k DocumentKind) Valid() bool {
	return k == KindPrimary || k == KindManifest
}

// ParseKind accepts the canonical names as well as the customs labels
// (CRT, MIC, MIC/DTA), case-insensitively.
func ParseKind(s string) (DocumentKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PRIMARY", "CRT":
		return KindPrimary, nil
	case "MANIFEST", "MIC", "MIC/DTA", "MICDTA":
		return KindManifest, nil
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}
