package repositories

import (
	"fmt"

	"github.com/pkg/errors"

	"weather-server/gateway"
)

// ErrDuplicate matches every *DuplicateError under errors.Is.
var ErrDuplicate = errors.New("record already exists")

// DuplicateError is returned by Insert when the natural key is already
// present. Nothing has been written when it is returned.
type DuplicateError struct {
	Table gateway.Table
	Key   string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %s already exists", e.Table, e.Key)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}
