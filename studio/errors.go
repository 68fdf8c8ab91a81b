package studio

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"podcast_studio/generator"
)

// Kind is the error taxonomy surfaced to callers.
type Kind string

const (
	// KindConfiguration needs an operator fix; retrying does not help.
	KindConfiguration Kind = "configuration"
	// KindValidation is bad or missing user input.
	KindValidation Kind = "validation"
	// KindUpstream is a generation, upload, resolution or persistence failure.
	KindUpstream Kind = "upstream"
	// KindAuth means the caller must sign in again.
	KindAuth Kind = "auth"
	// KindState is an action attempted from a state that does not allow it.
	KindState Kind = "state"
)

// Codes carried by Error.
const (
	CodeEmptyInput        = "EmptyInput"
	CodeInvalidPrompt     = "InvalidPrompt"
	CodeInvalidVoice      = "InvalidVoice"
	CodeNoVoiceSelected   = "NoVoiceSelected"
	CodeIncompleteAssets  = "IncompleteAssets"
	CodeValidationFailed  = "ValidationFailed"
	CodeUnauthenticated   = "Unauthenticated"
	CodeUnknownUser       = "UnknownUser"
	CodeIllegalTransition = "IllegalTransition"
	CodeUnknownAction     = "UnknownAction"
	CodeBusy              = "Busy"
	CodeSessionClosed     = "SessionClosed"
	CodeMissingCredential = "MissingCredential"
	CodeGenerationFailed  = "GenerationFailed"
	CodeEnhanceFailed     = "EnhanceFailed"
	CodeUploadFailed      = "UploadFailed"
	CodeResolveFailed     = "ResolveFailed"
	CodePersistFailed     = "PersistFailed"
	CodeInvalidDuration   = "InvalidDuration"
)

// Error is the typed failure returned by every studio operation. Message
// is short and safe to show to the user; Err keeps the underlying cause.
type Error struct {
	Kind    Kind              `json:"kind"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s: %s", e.Kind, e.Code, e.Message)
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "; %s: %s", k, e.Fields[k])
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind implements the classifier interface used by the HTTP layer.
func (e *Error) ErrorKind() string { return string(e.Kind) }

// KindOf returns the kind of a studio error, or "" for other errors.
func KindOf(err error) Kind {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Kind
	}
	return ""
}

// CodeOf returns the code of a studio error, or "" for other errors.
func CodeOf(err error) string {
	var serr *Error
	if errors.As(err, &serr) {
		return serr.Code
	}
	return ""
}

func newError(kind Kind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Err: cause}
}

func stateError(code, msg string) *Error {
	return newError(KindState, code, msg, nil)
}

// fromGeneration maps an adapter failure onto the studio taxonomy.
func fromGeneration(code, msg string, err error) *Error {
	switch generator.KindOf(err) {
	case generator.KindMissingCredential:
		return newError(KindConfiguration, CodeMissingCredential,
			"The generation service is not configured. Contact the administrator.", err)
	case generator.KindInvalidInput:
		return newError(KindValidation, CodeInvalidPrompt, "Please check the prompt and voice.", err)
	default:
		return newError(KindUpstream, code, msg, err)
	}
}
