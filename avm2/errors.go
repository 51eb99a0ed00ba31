package avm2

import "fmt"

// Runtime error codes surfaced to scripts. The numbers are part of the
// observable behavior and are reproduced exactly.
const (
	CodeTypeCoercionFailed  = 1034
	CodeWriteSealed         = 1056
	CodeConvertToPrimitive  = 1050
	CodeVariableNotDefined  = 1065
	CodePropertyNotFound    = 1069
	CodeWriteOnly           = 1077
	CodeReadOnly            = 1074
	CodeVectorOutOfRange    = 1125
	CodeVectorFixed         = 1126
	CodeCyclicStructure     = 1129
	CodeRecursionExhausted  = 1023
	CodeConstructNonCreator = 1007
	CodeCallNonFunction     = 1006
	CodeNullAccess          = 1009
	CodeIllegalOpcode       = 1011
)

// Error is a typed runtime error catchable by script code once it
// crosses into interpreted frames.
type Error struct {
	Kind    string // ReferenceError, TypeError, RangeError
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: Error #%d: %s", e.Kind, e.Code, e.Message)
}

func referenceError(code int, format string, args ...any) *Error {
	return &Error{Kind: "ReferenceError", Code: code, Message: fmt.Sprintf(format, args...)}
}

func typeError(code int, format string, args ...any) *Error {
	return &Error{Kind: "TypeError", Code: code, Message: fmt.Sprintf(format, args...)}
}

func rangeError(code int, format string, args ...any) *Error {
	return &Error{Kind: "RangeError", Code: code, Message: fmt.Sprintf(format, args...)}
}

// propertyNotFound is the sealed-read failure.
func propertyNotFound(m Multiname, cls string) *Error {
	return referenceError(CodePropertyNotFound,
		"Property %s not found on %s and there is no default value", m, cls)
}

// writeSealed is the sealed-write failure.
func writeSealed(m Multiname, cls string) *Error {
	return referenceError(CodeWriteSealed,
		"Cannot create property %s on %s", m, cls)
}
