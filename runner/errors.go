package runner

import "fmt"

// ToolError is the failure of one external-tool invocation. Launch failures
// and non-zero exits share this type and differ only in message.
type ToolError struct {
	Op      string
	Err     error
	Message string
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func newToolError(op string, err error, message string) *ToolError {
	return &ToolError{
		Op:      op,
		Err:     err,
		Message: message,
	}
}
