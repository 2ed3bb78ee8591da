package analysis

import "sort"

// FindPeaks returns the indices of local maxima in data, ascending. Peaks
// closer than minDistance samples to a higher peak are dropped. A flat top
// reports its middle sample.
func FindPeaks(data []float64, minDistance int) []int {
	var peaks []int
	for i := 1; i < len(data)-1; i++ {
		if data[i] <= data[i-1] {
			continue
		}
		j := i
		for j+1 < len(data) && data[j+1] == data[i] {
			j++
		}
		if j+1 < len(data) && data[j+1] < data[i] {
			peaks = append(peaks, (i+j)/2)
		}
		i = j
	}
	if minDistance <= 1 || len(peaks) < 2 {
		return peaks
	}

	byHeight := make([]int, len(peaks))
	copy(byHeight, peaks)
	sort.SliceStable(byHeight, func(a, b int) bool { return data[byHeight[a]] > data[byHeight[b]] })

	removed := make(map[int]bool)
	for _, p := range byHeight {
		if removed[p] {
			continue
		}
		for _, q := range peaks {
			if q != p && !removed[q] && abs(q-p) < minDistance {
				removed[q] = true
			}
		}
	}

	kept := peaks[:0]
	for _, p := range peaks {
		if !removed[p] {
			kept = append(kept, p)
		}
	}
	return kept
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
