package shapley

// Option applies a configuration option to a computation.
type Option func(*computation)

// WithNormalize rescales the resulting allocation so its values sum to 1.
// A raw sum of exactly zero fails with ErrDegenerateInput rather than
// silently dividing by zero.
func WithNormalize() Option {
	return func(c *computation) {
		c.normalize = true
	}
}

// WithStrictLookup makes a coalition with no recorded value an error
// instead of defaulting it to zero. The empty coalition is exempt: by
// convention it is worth 0 whether or not a value was recorded.
//
// The permissive default silently treats absent coalitions as worth 0,
// which can mask data errors; opt into strict mode when the value mapping
// is expected to be total.
func WithStrictLookup() Option {
	return func(c *computation) {
		c.strict = true
	}
}
