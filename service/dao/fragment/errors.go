package fragment

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError is returned when an outline references a topic with no
// registered fragment source.  It is fatal to the build of the referencing
// outline: composition must not silently skip entries.
type NotFoundError struct {
	Topic    string
	Searched []string
}

// Error formats as "missing fragment: <topic>" so that authors can identify
// the offending outline entry at a glance.
func (e *NotFoundError) Error() string {
	if len(e.Searched) == 0 {
		return fmt.Sprintf("missing fragment: %s", e.Topic)
	}
	return fmt.Sprintf("missing fragment: %s (searched %s)", e.Topic, strings.Join(e.Searched, ", "))
}

// IsNotFound reports whether err wraps a missing-fragment condition.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
