package errors

// ErrorCode is a machine-readable error code returned to API clients.
type ErrorCode string

const (
	CodeInvalidInput         ErrorCode = "INVALID_INPUT"
	CodeInvalidEvent         ErrorCode = "INVALID_EVENT"
	CodeInvalidConfig        ErrorCode = "INVALID_CONFIG"
	CodeNoteSourceFailed     ErrorCode = "NOTE_SOURCE_FAILED"
	CodeNotesFileInvalid     ErrorCode = "NOTES_FILE_INVALID"
	CodeDynamoDBError        ErrorCode = "DYNAMODB_ERROR"
	CodeEventBridgeError     ErrorCode = "EVENTBRIDGE_ERROR"
	CodeLLMResponseInvalid   ErrorCode = "LLM_RESPONSE_INVALID"
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable   ErrorCode = "SERVICE_UNAVAILABLE"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}
