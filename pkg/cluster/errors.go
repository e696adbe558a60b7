package cluster

// InvalidInputError reports observations that cannot be clustered:
// fewer than two of them, mismatched feature lengths, or non-finite
// feature values. These are caller errors and never retried.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "cluster: invalid input: " + e.Reason
}
