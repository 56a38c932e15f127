package provider

// Outcome tags how a stage or a whole pipeline run finished.
type Outcome string

const (
	// OutcomeSuccess means every step produced its normal result.
	OutcomeSuccess Outcome = "success"
	// OutcomeDegraded means a fallback value replaced a failed or missing
	// capability and processing continued.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeError means processing stopped with an error result.
	OutcomeError Outcome = "error"
)

func (o Outcome) String() string { return string(o) }

func (o Outcome) rank() int {
	switch o {
	case OutcomeDegraded:
		return 1
	case OutcomeError:
		return 2
	}
	return 0
}

// Worst returns the most severe of the given outcomes, or success when
// none are given.
func Worst(outcomes ...Outcome) Outcome {
	out := OutcomeSuccess
	for _, o := range outcomes {
		if o.rank() > out.rank() {
			out = o
		}
	}
	return out
}
