package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/duskvault/duskvault/internal/mnemonic"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// out is a helper for CLI output that ignores write errors (standard
// pattern for CLI tools writing to stdout/stderr).
//
//nolint:errcheck
func out(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// outln is out with a trailing newline.
//
//nolint:errcheck
func outln(w io.Writer, args ...interface{}) {
	fmt.Fprintln(w, args...)
}

// zeroBytes overwrites b with zeros in place.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// promptPassword prompts for a password with hidden input. The caller is
// responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return password, nil
}

// promptNewPassword prompts for a new password with confirmation. The
// caller is responsible for zeroing the returned bytes after use.
func promptNewPassword() ([]byte, error) {
	password, err := promptPassword("Enter encryption password: ")
	if err != nil {
		return nil, err
	}

	if len(password) < 8 {
		zeroBytes(password)
		return nil, vaulterr.New(vaulterr.KindInvalidInput, "password must be at least 8 characters")
	}

	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		zeroBytes(password)
		return nil, err
	}
	defer zeroBytes(confirm)

	if string(password) != string(confirm) {
		zeroBytes(password)
		return nil, vaulterr.New(vaulterr.KindInvalidInput, "passwords do not match")
	}

	return password, nil
}

// promptPassphrase prompts for an optional BIP39 passphrase.
func promptPassphrase() (string, error) {
	outln(os.Stderr, "\nBIP39 passphrase (optional extra security layer):")
	outln(os.Stderr, "WARNING: if you lose this passphrase, the wallet cannot be recovered.")

	passphrase, err := promptPassword("Enter passphrase (blank for none): ")
	if err != nil {
		return "", err
	}
	if len(passphrase) == 0 {
		return "", nil
	}

	confirm, err := promptPassword("Confirm passphrase: ")
	if err != nil {
		zeroBytes(passphrase)
		return "", err
	}
	defer zeroBytes(confirm)

	if string(passphrase) != string(confirm) {
		zeroBytes(passphrase)
		return "", vaulterr.New(vaulterr.KindInvalidInput, "passphrases do not match")
	}

	result := string(passphrase)
	zeroBytes(passphrase)
	return result, nil
}

// promptConfirmation asks the user a yes/no question before an irreversible
// step; only "y" or "yes" (any case) counts as a yes.
func promptConfirmation(question string) bool {
	out(os.Stderr, "\n%s [y/N]: ", question)

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// promptMnemonic reads a multi-word recovery phrase from stdin, accepting
// as soon as the running word count matches a valid BIP39 length and the
// phrase decodes cleanly.
func promptMnemonic() (string, error) {
	outln(os.Stderr, "Enter your recovery phrase (all words on one line):")

	var words []string
	for i := 0; i < 24; i++ {
		var word string
		if _, err := fmt.Scan(&word); err != nil {
			break
		}
		words = append(words, word)

		if _, err := mnemonic.Decode(words); err == nil {
			return strings.Join(words, " "), nil
		}
	}

	if len(words) > 0 {
		return strings.Join(words, " "), nil
	}
	return "", vaulterr.New(vaulterr.KindInvalidInput, "no input provided")
}
