package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Reason   string `json:"reason,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// Exit codes for the CLI's process return value, grouped by failure class
// so scripts driving the CLI can branch without parsing message text.
const (
	ExitGeneral    = 1
	ExitWalletLock = 2
	ExitInvalid    = 3
	ExitNotFound   = 4
)

// exitCodeFor maps a vaulterr.Kind to a process exit code.
func exitCodeFor(kind vaulterr.Kind) int {
	switch kind {
	case vaulterr.KindWalletLocked, vaulterr.KindWrongPassword:
		return ExitWalletLock
	case vaulterr.KindNotFound:
		return ExitNotFound
	case vaulterr.KindMnemonicInvalid, vaulterr.KindPathInvalid,
		vaulterr.KindDerivationInvalid, vaulterr.KindDerivationOutOfRange,
		vaulterr.KindAddressChecksumMismatch, vaulterr.KindAddressMalformed,
		vaulterr.KindInvalidInput, vaulterr.KindUnknownConfigKey:
		return ExitInvalid
	default:
		return ExitGeneral
	}
}

// FormatError formats an error for display.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	if format == FormatJSON {
		return formatErrorJSON(w, err)
	}
	return formatErrorText(w, err)
}

// formatErrorJSON outputs error in JSON format.
func formatErrorJSON(w io.Writer, err error) error {
	var ve *vaulterr.Error
	var output ErrorOutput
	if errors.As(err, &ve) {
		output = ErrorOutput{
			Error: ErrorDetail{
				Code:     string(ve.Kind),
				Message:  ve.Message,
				Reason:   ve.Reason,
				ExitCode: exitCodeFor(ve.Kind),
			},
		}
	} else {
		output = ErrorOutput{
			Error: ErrorDetail{
				Code:     "GENERAL_ERROR",
				Message:  err.Error(),
				ExitCode: ExitGeneral,
			},
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// formatErrorText outputs error in text format.
func formatErrorText(w io.Writer, err error) error {
	var sb strings.Builder

	var ve *vaulterr.Error
	if errors.As(err, &ve) {
		sb.WriteString(fmt.Sprintf("Error: %s\n", ve.Message))
		if ve.Reason != "" {
			sb.WriteString(fmt.Sprintf("Reason: %s\n", ve.Reason))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %s\n", err.Error()))
	}

	_, writeErr := w.Write([]byte(sb.String()))
	return writeErr
}

// FormatSuccess formats a success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		output := map[string]string{"status": "success", "message": message}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
