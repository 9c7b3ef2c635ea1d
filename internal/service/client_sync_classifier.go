package service

import (
	"strings"

	"github.com/MKhiriev/go-money-keeper/models"
)

// recordErrorClass tells the push engine what to do with a record the remote
// store reported in its error map.
type recordErrorClass int

const (
	// errorRetryable leaves the record pending for the next cycle.
	errorRetryable recordErrorClass = iota
	// errorTerminal parks the record as a conflict.
	errorTerminal
)

func (c recordErrorClass) String() string {
	if c == errorTerminal {
		return "terminal"
	}
	return "retryable"
}

// terminalMessageFragments mark server messages that retrying cannot fix.
// Matched case-insensitively. Only consulted when the server sent no
// structured code.
var terminalMessageFragments = []string{
	"violates not-null constraint",
	"violates foreign key constraint",
	"violates check constraint",
	"violates unique constraint",
	"invalid input syntax",
	"invalid payload",
	"unknown table",
	"malformed",
}

// retryableMessageFragments mark server messages that describe a passing
// condition.
var retryableMessageFragments = []string{
	"timeout",
	"deadlock",
	"connection",
	"temporarily unavailable",
	"too many connections",
	"could not serialize",
}

// ClassifyRecordError decides whether a per-record push error is worth
// retrying. The structured code wins; the message is only inspected for
// servers that do not send one. Unrecognized errors are retryable, the push
// engine escalates them after enough consecutive failures.
func ClassifyRecordError(code models.ErrorCode, message string) recordErrorClass {
	switch code {
	case models.ErrorCodeConstraintViolation, models.ErrorCodeInvalidPayload:
		return errorTerminal
	case models.ErrorCodeTransient:
		return errorRetryable
	}

	return classifyErrorMessage(message)
}

// classifyErrorMessage matches terminal fragments first and ignores quoted
// identifiers, so a constraint or column name never decides the class.
func classifyErrorMessage(message string) recordErrorClass {
	msg := stripQuoted(strings.ToLower(message))

	for _, fragment := range terminalMessageFragments {
		if strings.Contains(msg, fragment) {
			return errorTerminal
		}
	}
	for _, fragment := range retryableMessageFragments {
		if strings.Contains(msg, fragment) {
			return errorRetryable
		}
	}

	return errorRetryable
}

// stripQuoted blanks out "double quoted" identifiers. An unterminated quote
// runs to the end of the message.
func stripQuoted(msg string) string {
	var b strings.Builder
	b.Grow(len(msg))

	quoted := false
	for _, r := range msg {
		if r == '"' {
			quoted = !quoted
			b.WriteRune(' ')
			continue
		}
		if !quoted {
			b.WriteRune(r)
		}
	}
	return b.String()
}
