package cache

import "fmt"

type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidCapacity is returned by New when Options.Capacity is not positive.
const ErrInvalidCapacity = constError("cache: invalid capacity")

func capacityError(capacity int) error {
	return fmt.Errorf("%w: must be > 0 but %d was requested", ErrInvalidCapacity, capacity)
}
