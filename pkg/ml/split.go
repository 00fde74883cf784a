package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Split holds row indices of a train/test partition
type Split struct {
	Train []int
	Test  []int
}

// TestSize returns ceil(fraction*n), the number of rows held out
func TestSize(n int, fraction float64) int {
	return int(math.Ceil(fraction * float64(n)))
}

// TrainTestSplit shuffles n rows with seed and holds out ceil(fraction*n) of them
func TrainTestSplit(n int, fraction float64, seed int64) (*Split, error) {
	nTest := TestSize(n, fraction)
	if nTest < 1 || nTest >= n {
		return nil, fmt.Errorf("%w: %d rows for a %.2f test fraction", ErrTooFewSamples, n, fraction)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible split

	split := &Split{
		Test:  append([]int(nil), perm[:nTest]...),
		Train: append([]int(nil), perm[nTest:]...),
	}

	sort.Ints(split.Test)
	sort.Ints(split.Train)

	return split, nil
}

// StratifiedSplit holds out ceil(fraction*n) rows keeping class proportions
func StratifiedSplit(y []int, fraction float64, seed int64) (*Split, error) {
	n := len(y)

	nTest := TestSize(n, fraction)
	if nTest < 1 || nTest >= n {
		return nil, fmt.Errorf("%w: %d rows for a %.2f test fraction", ErrTooFewSamples, n, fraction)
	}

	classes, members := groupByClass(y)
	alloc := allocate(classes, members, nTest, n)
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible split

	split := &Split{}

	for _, c := range classes {
		idx := append([]int(nil), members[c]...)
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })

		split.Test = append(split.Test, idx[:alloc[c]]...)
		split.Train = append(split.Train, idx[alloc[c]:]...)
	}

	sort.Ints(split.Test)
	sort.Ints(split.Train)

	return split, nil
}

// allocate spreads nTest over classes proportionally, largest remainders first
func allocate(classes []int, members map[int][]int, nTest, n int) map[int]int {
	type share struct {
		class int
		frac  float64
	}

	alloc := make(map[int]int, len(classes))
	shares := make([]share, 0, len(classes))
	given := 0

	for _, c := range classes {
		exact := float64(nTest) * float64(len(members[c])) / float64(n)
		alloc[c] = int(math.Floor(exact))
		given += alloc[c]
		shares = append(shares, share{class: c, frac: exact - math.Floor(exact)})
	}

	sort.SliceStable(shares, func(a, b int) bool { return shares[a].frac > shares[b].frac })

	for i := 0; given < nTest && i < len(shares); i++ {
		c := shares[i].class
		if alloc[c] < len(members[c]) {
			alloc[c]++
			given++
		}
	}

	return alloc
}

func groupByClass(y []int) ([]int, map[int][]int) {
	members := make(map[int][]int)
	for i, v := range y {
		members[v] = append(members[v], i)
	}

	classes := make([]int, 0, len(members))
	for c := range members {
		classes = append(classes, c)
	}

	sort.Ints(classes)

	return classes, members
}

// KFold partitions n rows into k contiguous folds without shuffling
func KFold(n, k int) ([]Split, error) {
	if k < 2 || n < k {
		return nil, fmt.Errorf("%w: %d rows for %d folds", ErrTooFewSamples, n, k)
	}

	folds := make([]Split, 0, k)
	start := 0

	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}

		folds = append(folds, complement(n, rangeOf(start, start+size)))
		start += size
	}

	return folds, nil
}

// StratifiedKFold partitions rows into k folds, spreading each class evenly in order
func StratifiedKFold(y []int, k int) ([]Split, error) {
	n := len(y)
	if k < 2 || n < k {
		return nil, fmt.Errorf("%w: %d rows for %d folds", ErrTooFewSamples, n, k)
	}

	classes, members := groupByClass(y)
	tests := make([][]int, k)

	for _, c := range classes {
		idx := members[c]
		start := 0

		for f := 0; f < k; f++ {
			size := len(idx) / k
			if f < len(idx)%k {
				size++
			}

			tests[f] = append(tests[f], idx[start:start+size]...)
			start += size
		}
	}

	folds := make([]Split, 0, k)

	for _, test := range tests {
		if len(test) == 0 {
			return nil, fmt.Errorf("%w: empty fold for %d rows", ErrTooFewSamples, n)
		}

		sort.Ints(test)
		folds = append(folds, complement(n, test))
	}

	return folds, nil
}

func rangeOf(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}

	return out
}

func complement(n int, test []int) Split {
	held := make(map[int]struct{}, len(test))
	for _, i := range test {
		held[i] = struct{}{}
	}

	train := make([]int, 0, n-len(test))

	for i := 0; i < n; i++ {
		if _, ok := held[i]; !ok {
			train = append(train, i)
		}
	}

	return Split{Train: train, Test: test}
}

// Rows selects rows of x by index
func Rows(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = x[j]
	}

	return out
}

// Floats selects values by index
func Floats(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}

	return out
}

// Ints selects values by index
func Ints(values []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}

	return out
}
