// SPDX-License-Identifier: MIT

package birch

// node is a CF-tree node. Leaf subclusters summarize samples directly;
// non-leaf subclusters summarize their child node.
type node struct {
	leaf        bool
	subclusters []*feature
}

// tree is a CF-tree built by inserting samples one at a time.
type tree struct {
	root      *node
	threshold float64
	branching int
}

func newTree(threshold float64, branching int) *tree {
	return &tree{
		root:      &node{leaf: true},
		threshold: threshold,
		branching: branching,
	}
}

// add inserts the sample x, growing a new root when the old one overflows.
func (t *tree) add(x []float64) {
	if !t.insert(t.root, newFeature(x)) {
		return
	}
	a, b := t.split(t.root)
	t.root = &node{subclusters: []*feature{a, b}}
}

// insert places f below nd and reports whether nd now holds more than
// branching subclusters and must be split by its parent.
//
// Stage 1: descend to the subcluster with the nearest centroid.
// Stage 2: at a leaf, absorb f when the merged radius stays within the
// threshold, otherwise append f as a new subcluster.
// Stage 3: on the way back up, replace an overflowing child by its two
// halves or fold f into the summary of the child it went to.
func (t *tree) insert(nd *node, f *feature) bool {
	if len(nd.subclusters) == 0 {
		nd.subclusters = append(nd.subclusters, f)

		return false
	}

	i := closest(nd.subclusters, f.centroid)
	c := nd.subclusters[i]

	if c.child != nil {
		if !t.insert(c.child, f) {
			c.merge(f)

			return false
		}
		a, b := t.split(c.child)
		nd.subclusters[i] = a
		nd.subclusters = append(nd.subclusters, b)

		return len(nd.subclusters) > t.branching
	}

	if c.mergedRadius(f) <= t.threshold {
		c.merge(f)

		return false
	}
	nd.subclusters = append(nd.subclusters, f)

	return len(nd.subclusters) > t.branching
}

// split distributes the subclusters of nd over two new nodes seeded by the
// farthest pair of centroids and returns the features summarizing them.
// Every other subcluster joins the nearer seed, ties going to the first.
//
// Complexity: O(m²·d) for m subclusters of dimension d.
func (t *tree) split(nd *node) (*feature, *feature) {
	subs := nd.subclusters

	var (
		si, sj = 0, 1
		best   = -1.0
		d      float64
		i, j   int
	)
	for i = 0; i < len(subs); i++ {
		for j = i + 1; j < len(subs); j++ {
			if d = dist(subs[i].centroid, subs[j].centroid); d > best {
				si, sj, best = i, j, d
			}
		}
	}

	left := &node{leaf: nd.leaf}
	right := &node{leaf: nd.leaf}
	for i = range subs {
		switch {
		case i == si:
			left.subclusters = append(left.subclusters, subs[i])
		case i == sj:
			right.subclusters = append(right.subclusters, subs[i])
		case dist(subs[i].centroid, subs[si].centroid) <= dist(subs[i].centroid, subs[sj].centroid):
			left.subclusters = append(left.subclusters, subs[i])
		default:
			right.subclusters = append(right.subclusters, subs[i])
		}
	}

	return summarize(left), summarize(right)
}

// leaves returns every leaf subcluster in depth-first order.
func (t *tree) leaves() []*feature {
	var out []*feature
	var walk func(nd *node)
	walk = func(nd *node) {
		if nd.leaf {
			out = append(out, nd.subclusters...)

			return
		}
		for _, s := range nd.subclusters {
			walk(s.child)
		}
	}
	walk(t.root)

	return out
}
