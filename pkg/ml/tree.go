package ml

import (
	"math"
	"math/rand"
	"sort"
)

// Node is a tree node. Leaves have Left == -1.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Samples   int     `json:"samples"`
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// Tree is a CART regression tree stored as a flat node list, root first
type Tree struct {
	Nodes []Node `json:"nodes"`
}

type treeBuilder struct {
	x          [][]float64
	y          []float64
	maxDepth   int
	rng        *rand.Rand
	nFeatures  int
	importance []float64
	tree       *Tree
	// leafOf records the leaf each training sample lands in
	leafOf []int
}

// fitTree grows a squared-error tree over the rows in samples
func fitTree(x [][]float64, y []float64, samples []int, maxDepth int, rng *rand.Rand) (*Tree, []float64, []int) {
	b := &treeBuilder{
		x:          x,
		y:          y,
		maxDepth:   maxDepth,
		rng:        rng,
		nFeatures:  len(x[samples[0]]),
		importance: make([]float64, len(x[samples[0]])),
		tree:       &Tree{},
		leafOf:     make([]int, len(x)),
	}

	b.grow(samples, 0)

	return b.tree, b.importance, b.leafOf
}

func (b *treeBuilder) grow(samples []int, depth int) int {
	sum, sumSq := 0.0, 0.0
	for _, i := range samples {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}

	n := float64(len(samples))
	mean := sum / n

	id := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{Left: -1, Right: -1, Value: mean, Samples: len(samples)})

	if depth >= b.maxDepth || len(samples) < 2 {
		b.markLeaf(id, samples)
		return id
	}

	nodeImpurity := sumSq - sum*sum/n
	// rounding noise on a pure node must not produce splits
	eps := 1e-10 * math.Max(1, sumSq)

	if nodeImpurity <= eps {
		b.markLeaf(id, samples)
		return id
	}

	feature, threshold, gain, ok := b.bestSplit(samples, sum, nodeImpurity)
	if !ok || gain <= eps {
		b.markLeaf(id, samples)
		return id
	}

	left := make([]int, 0, len(samples))
	right := make([]int, 0, len(samples))

	for _, i := range samples {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	b.importance[feature] += gain

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)

	b.tree.Nodes[id].Feature = feature
	b.tree.Nodes[id].Threshold = threshold
	b.tree.Nodes[id].Left = l
	b.tree.Nodes[id].Right = r

	return id
}

func (b *treeBuilder) markLeaf(id int, samples []int) {
	for _, i := range samples {
		b.leafOf[i] = id
	}
}

// bestSplit returns the split with the largest decrease of the summed squared error
func (b *treeBuilder) bestSplit(samples []int, total, nodeImpurity float64) (int, float64, float64, bool) {
	var (
		bestFeature   int
		bestThreshold float64
		bestGain      float64
		found         bool
	)

	order := make([]int, len(samples))
	n := float64(len(samples))

	for _, f := range b.rng.Perm(b.nFeatures) {
		copy(order, samples)
		sort.SliceStable(order, func(a, c int) bool { return b.x[order[a]][f] < b.x[order[c]][f] })

		leftSum, leftSq := 0.0, 0.0
		totalSq := nodeImpurity + total*total/n

		for k := 0; k < len(order)-1; k++ {
			v := b.y[order[k]]
			leftSum += v
			leftSq += v * v

			cur, next := b.x[order[k]][f], b.x[order[k+1]][f]
			if cur == next {
				continue
			}

			nl := float64(k + 1)
			nr := n - nl
			rightSum := total - leftSum
			rightSq := totalSq - leftSq

			impurity := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			gain := nodeImpurity - impurity

			if !found || gain > bestGain {
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
				bestGain = gain
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, bestGain, found
}

// Predict returns the leaf value for row
func (t *Tree) Predict(row []float64) float64 {
	return t.Nodes[t.leaf(row)].Value
}

func (t *Tree) leaf(row []float64) int {
	id := 0
	for !t.Nodes[id].IsLeaf() {
		node := &t.Nodes[id]
		if row[node.Feature] <= node.Threshold {
			id = node.Left
		} else {
			id = node.Right
		}
	}

	return id
}
