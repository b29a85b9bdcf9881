package sprinkler

import (
	"errors"
	"fmt"
)

// ReturnCode is the numeric result reported by mutation endpoints.
type ReturnCode int

const (
	ReturnSuccess         ReturnCode = 1
	ReturnUnauthorized    ReturnCode = 2
	ReturnMismatch        ReturnCode = 3
	ReturnDataMissing     ReturnCode = 16
	ReturnOutOfRange      ReturnCode = 17
	ReturnDataFormatError ReturnCode = 18
	ReturnRFCodeError     ReturnCode = 19
	ReturnPageNotFound    ReturnCode = 32
	ReturnNotPermitted    ReturnCode = 48
)

var returnCodeMessages = map[ReturnCode]string{
	ReturnSuccess:         "Success",
	ReturnUnauthorized:    "Unauthorized (missing password or password is incorrect)",
	ReturnMismatch:        "Mismatch (new password and confirmation password do not match)",
	ReturnDataMissing:     "Data Missing (missing required parameters)",
	ReturnOutOfRange:      "Out of Range (value exceeds the acceptable range)",
	ReturnDataFormatError: "Data Format Error (provided data does not match required format)",
	ReturnRFCodeError:     "RF code error (RF code does not match required format)",
	ReturnPageNotFound:    "Page Not Found (page not found or requested file missing)",
	ReturnNotPermitted:    "Not Permitted (cannot operate on the requested station)",
}

var returnCodeNames = map[ReturnCode]string{
	ReturnSuccess:         "Success",
	ReturnUnauthorized:    "Unauthorized",
	ReturnMismatch:        "Mismatch",
	ReturnDataMissing:     "DataMissing",
	ReturnOutOfRange:      "OutOfRange",
	ReturnDataFormatError: "DataFormatError",
	ReturnRFCodeError:     "RFCodeError",
	ReturnPageNotFound:    "PageNotFound",
	ReturnNotPermitted:    "NotPermitted",
}

// Message returns the documented description of the code, or
// "Unknown error" for codes the firmware is not known to send.
func (rc ReturnCode) Message() string {
	if msg, ok := returnCodeMessages[rc]; ok {
		return msg
	}
	return "Unknown error"
}

// Known reports whether rc is one of the documented codes.
func (rc ReturnCode) Known() bool {
	_, ok := returnCodeMessages[rc]
	return ok
}

func (rc ReturnCode) String() string {
	if name, ok := returnCodeNames[rc]; ok {
		return name
	}
	return fmt.Sprintf("ReturnCode(%d)", int(rc))
}

// CommandResult wraps the {"result": n} body returned by every mutation
// endpoint. Codes outside the documented set are kept as-is.
type CommandResult struct {
	Code ReturnCode `json:"result"`
}

// NewCommandResult creates a result from a raw code.
func NewCommandResult(code int) *CommandResult {
	return &CommandResult{Code: ReturnCode(code)}
}

// IsSuccess reports whether the controller accepted the command.
func (r *CommandResult) IsSuccess() bool {
	return r.Code == ReturnSuccess
}

// Message returns the description of the result code.
func (r *CommandResult) Message() string {
	return r.Code.Message()
}

// Err returns nil on success and a *CommandError otherwise.
func (r *CommandResult) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return &CommandError{Code: r.Code}
}

func (r *CommandResult) String() string {
	return fmt.Sprintf("%d: %s", int(r.Code), r.Message())
}

// CommandError is a rejected command in error form.
type CommandError struct {
	Code ReturnCode
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("controller rejected command (result %d): %s", int(e.Code), e.Code.Message())
}

// IsUnauthorized checks if err is a command rejected for a bad password
func IsUnauthorized(err error) bool {
	var cErr *CommandError
	return errors.As(err, &cErr) && cErr.Code == ReturnUnauthorized
}

// IsCommandError checks if err is a rejected command of any code
func IsCommandError(err error) bool {
	var cErr *CommandError
	return errors.As(err, &cErr)
}
