package cli

import (
	sanitize "github.com/mrz1836/go-sanitize"

	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// sanitizeIdentifier rejects any wallet, account, or group id that isn't a
// plain alphanumeric token before it reaches store paths built by joining
// the id directly onto a directory (see filestore.Store.path): an id like
// "../../etc/passwd" must never survive to that join.
func sanitizeIdentifier(kind, raw string) (string, error) {
	clean := sanitize.AlphaNumeric(raw, false)
	if clean == "" || clean != raw {
		return "", vaulterr.New(vaulterr.KindInvalidInput, "%s id %q must be alphanumeric", kind, raw)
	}
	return clean, nil
}
