package observation

import "github.com/okian/fairshare/internal/domain/coalition"

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithInitialCapacity pre-sizes the internal coalition map for callers
// that know roughly how many distinct coalitions to expect.
func WithInitialCapacity(capacity int) Option {
	return func(m *Model) {
		if capacity > 0 {
			m.counts = make(map[coalition.Key]int64, capacity)
		}
	}
}
