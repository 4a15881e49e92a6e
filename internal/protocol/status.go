package protocol

import (
	"encoding/json"
	"fmt"
)

// Status is a Response frame's outcome: either Ok, or Error carrying a
// diagnostic message. It mirrors the source's `enum Status { Ok,
// Error(String) }`, serialized the same way serde would externally tag it:
// the bare string "Ok", or {"Error": "..."}.
type Status struct {
	isError bool
	errMsg  string
}

// StatusOK is the Ok status.
func StatusOK() Status { return Status{} }

// StatusError builds an Error status carrying msg.
func StatusError(msg string) Status { return Status{isError: true, errMsg: msg} }

// IsOK reports whether the status is Ok.
func (s Status) IsOK() bool { return !s.isError }

// ErrorMessage returns the wrapped message; empty if the status is Ok.
func (s Status) ErrorMessage() string { return s.errMsg }

func (s Status) MarshalJSON() ([]byte, error) {
	if !s.isError {
		return json.Marshal("Ok")
	}
	return json.Marshal(map[string]string{"Error": s.errMsg})
}

// Equal reports whether two Status values are equivalent. Defined so
// go-cmp (used in roundtrip tests) can compare Status without needing
// cmp.AllowUnexported.
func (s Status) Equal(other Status) bool {
	return s.isError == other.isError && s.errMsg == other.errMsg
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if asString != "Ok" {
			return fmt.Errorf("protocol: unknown status %q", asString)
		}
		*s = StatusOK()
		return nil
	}

	var asObject map[string]string
	if err := json.Unmarshal(data, &asObject); err != nil {
		return fmt.Errorf("protocol: invalid status: %w", err)
	}
	msg, ok := asObject["Error"]
	if !ok {
		return fmt.Errorf("protocol: status object missing Error key")
	}
	*s = StatusError(msg)
	return nil
}
