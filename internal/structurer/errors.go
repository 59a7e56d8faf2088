package structurer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStructuring matches every failure returned by Structure.
var ErrStructuring = errors.New("structuring failed")

// ErrUnparseable means the payload could not be parsed even after repair.
var ErrUnparseable = fmt.Errorf("%w: unparseable payload", ErrStructuring)

// InvalidError lists the record-level fields that are missing or invalid.
// Fields are sorted paths such as "personal.email".
type InvalidError struct {
	Fields []string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("%v: invalid record: %s", ErrStructuring, strings.Join(e.Fields, ", "))
}

func (e *InvalidError) Unwrap() error {
	return ErrStructuring
}
