package seed

import (
	"strconv"
	"strings"

	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// Component is one segment of a derivation path: an index plus whether it
// is hardened.
type Component struct {
	Index    uint32
	Hardened bool
}

// Path is a parsed BIP32/BIP44-style derivation path.
type Path []Component

// String renders the path back to its canonical "m/a'/b/c'" form.
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('m')
	for _, c := range p {
		b.WriteByte('/')
		b.WriteString(strconv.FormatUint(uint64(c.Index), 10))
		if c.Hardened {
			b.WriteByte('\'')
		}
	}
	return b.String()
}

// ParsePath parses a path of the form "m/a'/b/c'". Each component is an
// unsigned integer with an optional "'" or "h" hardening marker. Empty
// components (m//0), a missing leading "m", a trailing separator, and
// integer overflow are all rejected — never silently skipped.
func ParsePath(s string) (Path, error) {
	if !strings.HasPrefix(s, "m") {
		return nil, vaulterr.New(vaulterr.KindPathInvalid, "derivation path must start with \"m\"")
	}
	rest := s[1:]
	if rest == "" {
		return Path{}, nil
	}
	if !strings.HasPrefix(rest, "/") {
		return nil, vaulterr.New(vaulterr.KindPathInvalid, "malformed derivation path %q", s)
	}
	rest = rest[1:]
	if rest == "" || strings.HasSuffix(rest, "/") {
		return nil, vaulterr.New(vaulterr.KindPathInvalid, "derivation path %q has a trailing separator", s)
	}

	segments := strings.Split(rest, "/")
	path := make(Path, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			return nil, vaulterr.New(vaulterr.KindPathInvalid, "empty path component in %q", s)
		}

		hardened := false
		numeric := seg
		if strings.HasSuffix(seg, "'") || strings.HasSuffix(seg, "h") || strings.HasSuffix(seg, "H") {
			hardened = true
			numeric = seg[:len(seg)-1]
		}
		if numeric == "" {
			return nil, vaulterr.New(vaulterr.KindPathInvalid, "missing index in component %q", seg)
		}

		n, err := strconv.ParseUint(numeric, 10, 32)
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindPathInvalid, err, "bad index in component %q", seg)
		}

		path = append(path, Component{Index: uint32(n), Hardened: hardened})
	}

	return path, nil
}
