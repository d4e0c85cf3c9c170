package gomx

import (
	"github.com/pkg/errors"
)

// CanonizeOpts configures the canonicalization search.
type CanonizeOpts struct {
	// MaxNodes caps how many partial relabelings the search may expand
	// before giving up; 0 means unbounded. When the cap is hit, Canonize
	// returns the best indicator found so far along with ErrSearchBudget,
	// and that result must not be treated as canonical.
	MaxNodes int64
}

// Canonize returns the canonical representative of this Matroid's isomorphism
// class: the lexicographically maximal indicator string over all relabelings
// of the ground set (BASIS ranking above NON_BASIS, position 0 first).
//
// The search assigns preimages to canonical labels n-1 downward, since the
// indicator's most significant positions are the subsets made of the highest
// labels. A branch is discarded only when its optimistic completion (every
// still-undetermined position taken as BASIS) cannot exceed the incumbent, so
// the result is the certified global maximum, not a local optimum.
//
// Multiple relabelings may achieve the maximum (the automorphism group is its
// stabilizer); no witness permutation is reported.
func (m *Matroid) Canonize(opts CanonizeOpts) (Indicator, error) {
	cs := canonSearch{
		m:        m,
		tab:      m.tab,
		cur:      NewIndicator(m.tab.Len),
		best:     m.Encode(), // identity relabeling seeds the incumbent
		maxNodes: opts.MaxNodes,
	}
	cs.descend(0)

	if cs.budgetHit {
		return cs.best, errors.Wrapf(ErrSearchBudget,
			"gave up after %d nodes; result is best-so-far only", cs.nodes)
	}
	return cs.best, nil
}

type canonSearch struct {
	m         *Matroid
	tab       *RankTable
	cur       Indicator // positions determined by the partial relabeling so far
	best      Indicator // incumbent maximum (always an achieved encoding)
	preimage  [MaxGroundSize]int8
	used      Subset // original elements already assigned a canonical label
	nodes     int64
	maxNodes  int64
	budgetHit bool
}

// descend extends a partial relabeling in which canonical labels
// n-1 .. n-depth already have preimages.
func (cs *canonSearch) descend(depth int32) {
	n := cs.tab.N
	if depth == n {
		if cs.cur.Compare(cs.best) > 0 {
			cs.best = cs.cur.Clone()
		}
		return
	}

	label := n - 1 - depth
	for e := n - 1; e >= 0; e-- {
		if cs.used.Contains(int(e)) {
			continue
		}
		cs.nodes++
		if cs.maxNodes > 0 && cs.nodes > cs.maxNodes {
			cs.budgetHit = true
			return
		}

		cs.preimage[label] = int8(e)
		cs.used |= SingleElem(int(e))
		cs.applyNewly(depth + 1)
		if !cs.pruned(depth + 1) {
			cs.descend(depth + 1)
		}
		cs.undoNewly(depth + 1)
		cs.used &^= SingleElem(int(e))

		if cs.budgetHit {
			return
		}
	}
}

// applyNewly fixes the indicator positions first determined at this depth:
// the subsets of assigned labels that include the label just mapped.
func (cs *canonSearch) applyNewly(depth int32) {
	for _, rs := range cs.tab.newlyAt[depth] {
		pre := Subset(0)
		for e := rs.mask; e != 0; e &= e - 1 {
			pre |= SingleElem(int(cs.preimage[trailingElem(e)]))
		}
		if cs.m.HasBasis(pre) {
			cs.cur.setAt(rs.rank)
		}
	}
}

// undoNewly clears the positions applyNewly may have set at this depth.
// The newlyAt sets partition the positions, so no other depth is disturbed.
func (cs *canonSearch) undoNewly(depth int32) {
	for _, rs := range cs.tab.newlyAt[depth] {
		cs.cur.clearAt(rs.rank)
	}
}

// pruned reports whether the current branch provably cannot beat the
// incumbent: its optimistic completion compares <= best.
func (cs *canonSearch) pruned(depth int32) bool {
	undet := cs.tab.undetMask[depth]
	for w, bw := range cs.best.words {
		ow := cs.cur.words[w] | undet[w]
		if ow != bw {
			return ow < bw
		}
	}
	return true // optimistic tie cannot strictly improve
}
