package parser

import "path/filepath"

// PathResolver turns a known source alias (desktop, downloads,
// documents — in either language) into an absolute path. Smart file
// operations resolve against it instead of touching the filesystem
// directly during parsing, keeping Parse pure (spec §4.2: "no network
// or filesystem access").
type PathResolver interface {
	Resolve(alias string) (string, error)
}

// sourceAliases maps the closed set of recognised source aliases (both
// languages, spec §4.2) to the subdirectory under the user's home
// directory.
var sourceAliases = map[string]string{
	"desktop":   "Desktop",
	"downloads": "Downloads",
	"documents": "Documents",
	"바탕화면":      "Desktop",
	"다운로드":      "Downloads",
	"문서":        "Documents",
}

// HomeResolver resolves aliases relative to a fixed home directory.
type HomeResolver struct {
	Home string
}

// Resolve implements PathResolver.
func (r HomeResolver) Resolve(alias string) (string, error) {
	sub, ok := sourceAliases[alias]
	if !ok {
		sub = "Desktop" // unrecognised source defaults to desktop, per spec §4.2
	}
	return filepath.Join(r.Home, sub), nil
}
