package olaaf

import "fmt"

// Batched splits keys into chunks of at most size keys, calls fetch once per
// chunk and concatenates the results. Lookups never depend on a storage
// engine's own limit on bound parameters.
func Batched[K, V any](keys []K, size int, fetch func([]K) ([]V, error)) ([]V, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}

	var results []V
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		batch, err := fetch(keys[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetching keys %d-%d: %w", start, end-1, err)
		}
		results = append(results, batch...)
	}
	return results, nil
}
