// Package locale routes narrative text through gettext catalogues.
// With no catalogue installed every string passes through unchanged.
package locale

import (
	"github.com/leonelquinteros/gotext"
)

// Domain is the gettext domain holding station prose and labels.
const Domain = "outpost31"

// Configure points the global catalogue at dir/<lang>/LC_MESSAGES/outpost31.{po,mo}.
func Configure(dir, lang string) {
	gotext.Configure(dir, lang, Domain)
}

// T translates s. When args are given, s is a format string applied after lookup.
func T(s string, args ...interface{}) string {
	return gotext.Get(s, args...)
}
