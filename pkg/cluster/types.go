package cluster

import "fmt"

// Observation is a labeled, standardized feature vector. Labels are
// carried through to the merge tree for rendering; the algorithm itself
// only looks at Features.
type Observation struct {
	Label    string
	Features []float64
}

// Linkage selects how inter-cluster distance is derived from
// member-pairwise distances.
type Linkage int

const (
	// Complete linkage: distance between clusters is the maximum
	// pairwise distance between their members.
	Complete Linkage = iota
	// Single linkage: distance between clusters is the minimum
	// pairwise distance between their members.
	Single
)

func (l Linkage) String() string {
	switch l {
	case Complete:
		return "complete"
	case Single:
		return "single"
	}
	return fmt.Sprintf("linkage(%d)", int(l))
}

// ParseLinkage converts a config/flag string into a Linkage.
func ParseLinkage(s string) (Linkage, error) {
	switch s {
	case "complete":
		return Complete, nil
	case "single":
		return Single, nil
	}
	return 0, fmt.Errorf("unknown linkage %q (want complete or single)", s)
}

// MergeEvent records one agglomeration step. Node IDs follow the usual
// convention: leaves are 0..n-1 and the i-th merge creates node n+i.
// Left always holds the cluster containing the lower original
// observation index.
type MergeEvent struct {
	Left   int
	Right  int
	Height float64
	ID     int
}

// MergeTree is the full dendrogram: the ordered n-1 merge events over n
// observations, plus the leaf labels.
type MergeTree struct {
	Events []MergeEvent
	Labels []string
}

// NumLeaves returns the number of original observations.
func (t *MergeTree) NumLeaves() int {
	return len(t.Events) + 1
}

// Heights returns the merge heights in event order.
func (t *MergeTree) Heights() []float64 {
	hs := make([]float64, len(t.Events))
	for i, e := range t.Events {
		hs[i] = e.Height
	}
	return hs
}

// Members returns the original observation indices under node id, in
// ascending order.
func (t *MergeTree) Members(id int) []int {
	n := t.NumLeaves()
	if id < n {
		return []int{id}
	}
	e := t.Events[id-n]
	left := t.Members(e.Left)
	right := t.Members(e.Right)
	out := make([]int, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		if left[i] < right[j] {
			out = append(out, left[i])
			i++
		} else {
			out = append(out, right[j])
			j++
		}
	}
	out = append(out, left[i:]...)
	out = append(out, right[j:]...)
	return out
}

// Cut flattens the tree into k clusters by undoing the last k-1 merges.
// The returned slice maps each observation index to a cluster number in
// 0..k-1, numbered by order of first appearance.
func (t *MergeTree) Cut(k int) ([]int, error) {
	n := t.NumLeaves()
	if k < 1 || k > n {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("cut into %d clusters impossible with %d observations", k, n)}
	}

	parent := make([]int, 2*n-1)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	// Apply all but the last k-1 merges.
	for _, e := range t.Events[:n-k] {
		parent[find(e.Left)] = e.ID
		parent[find(e.Right)] = e.ID
	}

	assign := make([]int, n)
	seen := map[int]int{}
	for i := 0; i < n; i++ {
		root := find(i)
		c, ok := seen[root]
		if !ok {
			c = len(seen)
			seen[root] = c
		}
		assign[i] = c
	}
	return assign, nil
}
