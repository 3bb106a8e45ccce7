package provider

import "fmt"

// batch is a half-open range [From, To) of pool positions.
type batch struct {
	From int
	To   int
}

// splitBatches splits n items into consecutive batches of at most size items.
func splitBatches(n, size int) ([]batch, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if n < 0 {
		return nil, fmt.Errorf("item count must be >= 0")
	}

	batches := make([]batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		batches = append(batches, batch{From: start, To: end})
	}
	return batches, nil
}
