package workload

type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrDegenerateKeySpace is returned by NewKeyGen when the capacity and
	// hit rate do not describe a key space of at least one key.
	ErrDegenerateKeySpace = constError("workload: degenerate key space")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = constError("workload: invalid config")
)
