package similarity

import "fmt"

const (
	defaultRatingMin  = 0.0
	defaultRatingMax  = 5.0
	defaultMinSupport = 1
	defaultWorkers    = 4
)

// Options bounds the input ratings and tunes the pair computation.
type Options struct {
	RatingMin float64
	RatingMax float64

	// MinSupport is the number of common raters a pair needs before it is
	// scored at all. Values below 1 are raised to 1.
	MinSupport int

	// Workers splits the pair loop; the result does not depend on it.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		RatingMin:  defaultRatingMin,
		RatingMax:  defaultRatingMax,
		MinSupport: defaultMinSupport,
		Workers:    defaultWorkers,
	}
}

func (o Options) normalized() (Options, error) {
	if o.RatingMin >= o.RatingMax {
		return o, fmt.Errorf("rating range [%v, %v] is empty", o.RatingMin, o.RatingMax)
	}
	if o.MinSupport < 1 {
		o.MinSupport = 1
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return o, nil
}
