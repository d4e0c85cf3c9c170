package libmx

import (
	"bufio"
	"fmt"
	"io"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/matroid-systems/gomx/gomx"
	"github.com/pkg/errors"
)

// IndexBuilder assigns incoming matroids to isomorphism classes and emits a
// RevLex database file holding one canonical representative per class, in
// ascending canonical order.
type IndexBuilder struct {
	N   int
	R   int
	Tag string

	// Provenance lines are written as a leading '#' comment block.
	Provenance []string

	tree *redblacktree.Tree // canonical Indicator -> class population
}

func NewIndexBuilder(n, r int, tag string) (*IndexBuilder, error) {
	if _, err := gomx.GetRankTable(n, r); err != nil {
		return nil, err
	}
	return &IndexBuilder{
		N:   n,
		R:   r,
		Tag: tag,
		tree: redblacktree.NewWith(func(a, b interface{}) int {
			return a.(gomx.Indicator).Compare(b.(gomx.Indicator))
		}),
	}, nil
}

// AddMatroid canonicalizes m and records its isomorphism class.
// Returns true if the class was not seen before.
func (b *IndexBuilder) AddMatroid(m *gomx.Matroid) (bool, error) {
	if m == nil {
		return false, gomx.ErrNilMatroid
	}
	if m.GroundSize() != b.N || m.Rank() != b.R {
		return false, errors.Wrapf(gomx.ErrBadCatalogParam,
			"matroid is (n=%d, r=%d), builder is (n=%d, r=%d)", m.GroundSize(), m.Rank(), b.N, b.R)
	}

	rep, err := m.Canonize(gomx.CanonizeOpts{})
	if err != nil {
		return false, err
	}

	if count, found := b.tree.Get(rep); found {
		b.tree.Put(rep, count.(int64)+1)
		return false, nil
	}
	b.tree.Put(rep, int64(1))
	return true, nil
}

// NumClasses returns the number of distinct isomorphism classes added so far.
func (b *IndexBuilder) NumClasses() int {
	return b.tree.Size()
}

// WriteTo emits the database file: the provenance comment block followed by
// "<index>: <indicator>" lines in ascending canonical order.
func (b *IndexBuilder) WriteTo(out io.Writer) error {
	w := bufio.NewWriter(out)

	for _, line := range b.Provenance {
		fmt.Fprintf(w, "# %s\n", line)
	}

	idx := 0
	it := b.tree.Iterator()
	for it.Next() {
		fmt.Fprintf(w, "%d: %s\n", idx, it.Key().(gomx.Indicator).String())
		idx++
	}

	return w.Flush()
}
