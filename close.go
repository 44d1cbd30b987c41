package pak

// Freer is implemented by every container.
type Freer interface {
	Free() error
}

// FreeAll frees each container in order and returns the first error.
// Nil entries and containers that were already freed are skipped.
func FreeAll(cs ...Freer) error {
	var firstErr error
	for _, c := range cs {
		if c == nil {
			continue
		}
		if v, ok := c.(interface{ IsValid() bool }); ok && !v.IsValid() {
			continue
		}
		if err := c.Free(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
