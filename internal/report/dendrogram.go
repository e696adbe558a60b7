package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/rgreene/envreports/pkg/cluster"
)

// RenderDendrogram draws the merge tree as a horizontal ASCII
// dendrogram: leaf labels on the left, merge junctions at columns
// proportional to merge height, and a height axis underneath. Leaf
// order follows the tree structure so branches never cross.
func RenderDendrogram(tree *cluster.MergeTree, width int) string {
	n := tree.NumLeaves()
	labels := leafLabels(tree)

	labelW := 0
	for _, l := range labels {
		if len(l) > labelW {
			labelW = len(l)
		}
	}
	if width < labelW+12 {
		width = labelW + 12
	}
	plotW := width - labelW - 1

	maxH := tree.Events[len(tree.Events)-1].Height
	if maxH <= 0 {
		maxH = 1
	}
	xcol := func(h float64) int {
		return labelW + 1 + int(math.Round(h/maxH*float64(plotW-1)))
	}

	// Display row per leaf, from a left-to-right walk of the root.
	order := leafOrder(tree)
	rowOf := make([]int, n)
	for row, leaf := range order {
		rowOf[leaf] = row
	}

	grid := make([][]rune, n)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}
	for leaf, row := range rowOf {
		copy(grid[row], []rune(labels[leaf]))
	}

	// Track each node's spine row and rightmost drawn column.
	type tip struct{ row, col int }
	tips := make([]tip, 2*n-1)
	for leaf := 0; leaf < n; leaf++ {
		tips[leaf] = tip{row: rowOf[leaf], col: labelW}
	}

	for _, e := range tree.Events {
		l, r := tips[e.Left], tips[e.Right]
		x := xcol(e.Height)
		if x <= l.col {
			x = l.col + 1
		}
		if x <= r.col {
			x = r.col + 1
		}
		if x > width-1 {
			x = width - 1 // equal-height merge chains share the last column
		}

		for c := l.col + 1; c < x; c++ {
			grid[l.row][c] = '-'
		}
		for c := r.col + 1; c < x; c++ {
			grid[r.row][c] = '-'
		}
		top, bottom := l.row, r.row
		if top > bottom {
			top, bottom = bottom, top
		}
		grid[top][x] = '+'
		grid[bottom][x] = '+'
		for row := top + 1; row < bottom; row++ {
			grid[row][x] = '|'
		}

		tips[e.ID] = tip{row: (top + bottom) / 2, col: x}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteString("\n")
	}

	// Height axis under the plot area.
	maxStr := fmt.Sprintf("%.3g", maxH)
	pad := width - labelW - 2 - len(maxStr)
	if pad < 1 {
		pad = 1
	}
	fmt.Fprintf(&b, "%s0%s%s\n", strings.Repeat(" ", labelW+1), strings.Repeat(" ", pad), maxStr)
	return b.String()
}

func leafLabels(tree *cluster.MergeTree) []string {
	labels := make([]string, tree.NumLeaves())
	for i := range labels {
		if i < len(tree.Labels) && tree.Labels[i] != "" {
			labels[i] = tree.Labels[i]
		} else {
			labels[i] = fmt.Sprintf("obs %d", i)
		}
	}
	return labels
}

// leafOrder walks the final tree left-first and returns leaf ids in
// display order.
func leafOrder(tree *cluster.MergeTree) []int {
	n := tree.NumLeaves()
	root := tree.Events[len(tree.Events)-1].ID

	order := make([]int, 0, n)
	var walk func(id int)
	walk = func(id int) {
		if id < n {
			order = append(order, id)
			return
		}
		e := tree.Events[id-n]
		walk(e.Left)
		walk(e.Right)
	}
	walk(root)
	return order
}
