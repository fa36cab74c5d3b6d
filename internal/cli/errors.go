package cli

import (
	"errors"
	"fmt"

	"coursekit/internal/mutate"
	"coursekit/internal/store"
)

func courseErr(err error, courseID string) error {
	if errors.Is(err, store.ErrCourseNotFound) {
		return mutate.NotFoundError{Kind: "course", ID: courseID}
	}
	return err
}

func errMissingFlag(name string) error {
	return fmt.Errorf("missing --%s", name)
}
