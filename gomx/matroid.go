package gomx

import (
	"strings"

	"github.com/pkg/errors"
)

// Matroid is a minimal (n, r, bases) triple: a set of r-subsets of {0..n-1}.
//
// A Matroid holds its shared *RankTable by reference, so encoding and
// canonicalization never re-derive the (n,r) enumeration. Construction does
// not check the exchange axiom; callers accepting untrusted basis sets must
// call Validate explicitly.
type Matroid struct {
	tab   *RankTable
	memb  []uint64 // membership bitset indexed by Subset mask
	bases []Subset // in insertion order
}

// NewMatroid returns an empty Matroid over ground set {0..n-1} with rank r.
func NewMatroid(n, r int) (*Matroid, error) {
	tab, err := GetRankTable(n, r)
	if err != nil {
		return nil, err
	}
	return &Matroid{
		tab:  tab,
		memb: make([]uint64, ((1<<n)+63)>>6),
	}, nil
}

// GroundSize returns n, the number of ground set elements.
func (m *Matroid) GroundSize() int {
	return int(m.tab.N)
}

// Rank returns r, the common size of all bases.
func (m *Matroid) Rank() int {
	return int(m.tab.R)
}

// NumBases returns the number of bases.
func (m *Matroid) NumBases() int {
	return len(m.bases)
}

// Bases returns the basis subsets in insertion order. The returned slice is
// owned by the Matroid and must not be mutated.
func (m *Matroid) Bases() []Subset {
	return m.bases
}

// HasBasis returns true if the given Subset is a basis of this Matroid.
func (m *Matroid) HasBasis(sub Subset) bool {
	return m.memb[sub>>6]&(1<<(uint(sub)&63)) != 0
}

// AddBasis adds the given Subset as a basis. Adding a Subset already present
// has no effect.
func (m *Matroid) AddBasis(sub Subset) error {
	if sub.Count() != m.Rank() {
		return errors.Wrapf(ErrRankMismatch, "%v has %d elements, rank is %d", sub, sub.Count(), m.Rank())
	}
	if uint32(sub) >= 1<<uint32(m.tab.N) {
		return errors.Wrapf(ErrBadRange, "%v is not a subset of {0..%d}", sub, m.tab.N-1)
	}
	if m.HasBasis(sub) {
		return nil
	}
	m.memb[sub>>6] |= 1 << (uint(sub) & 63)
	m.bases = append(m.bases, sub)
	return nil
}

// Equal returns true if both Matroids have the same (n, r) and basis set.
func (m *Matroid) Equal(oth *Matroid) bool {
	if m.tab != oth.tab || len(m.bases) != len(oth.bases) {
		return false
	}
	for w, ww := range m.memb {
		if ww != oth.memb[w] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (m *Matroid) Clone() *Matroid {
	cp := &Matroid{
		tab:   m.tab,
		memb:  make([]uint64, len(m.memb)),
		bases: make([]Subset, len(m.bases)),
	}
	copy(cp.memb, m.memb)
	copy(cp.bases, m.bases)
	return cp
}

// Permute returns the relabeled Matroid whose bases are {σ(B)} for the given
// permutation σ of {0..n-1}, where perm[i] is the image of element i.
func (m *Matroid) Permute(perm []int) (*Matroid, error) {
	n := m.GroundSize()
	if len(perm) != n {
		return nil, errors.Wrapf(ErrBadRange, "permutation has %d entries, ground size is %d", len(perm), n)
	}
	seen := Subset(0)
	for _, img := range perm {
		if img < 0 || img >= n || seen.Contains(img) {
			return nil, errors.Wrapf(ErrBadRange, "%v is not a permutation of {0..%d}", perm, n-1)
		}
		seen |= SingleElem(img)
	}

	out, _ := NewMatroid(n, m.Rank())
	for _, sub := range m.bases {
		img := Subset(0)
		for e := sub; e != 0; e &= e - 1 {
			img |= SingleElem(perm[trailingElem(e)])
		}
		out.AddBasis(img)
	}
	return out, nil
}

// Encode returns this Matroid's basis indicator string: position i is BASIS
// iff the subset of revlex rank i is a basis. Encode is total and performs no
// validity checking; codec correctness is independent of the exchange axiom.
func (m *Matroid) Encode() Indicator {
	ind := NewIndicator(m.tab.Len)
	for i, sub := range m.tab.byRank {
		if m.HasBasis(sub) {
			ind.setAt(int32(i))
		}
	}
	return ind
}

// DecodeMatroid parses an indicator text string for (n,r) into a Matroid.
// This is a lossless structural parse only: no axiom checking is performed.
func DecodeMatroid(s string, n, r int) (*Matroid, error) {
	ind, err := ParseIndicator(s, n, r)
	if err != nil {
		return nil, err
	}
	return NewMatroidFromIndicator(ind, n, r)
}

// NewMatroidFromIndicator builds the Matroid whose bases are the subsets at
// the BASIS positions of the given Indicator.
func NewMatroidFromIndicator(ind Indicator, n, r int) (*Matroid, error) {
	m, err := NewMatroid(n, r)
	if err != nil {
		return nil, err
	}
	if int32(ind.Count()) != m.tab.Len {
		return nil, errors.Wrapf(ErrBadFormat,
			"indicator length is %d, want C(%d,%d) = %d", ind.Count(), n, r, m.tab.Len)
	}
	for i := int32(0); i < m.tab.Len; i++ {
		if ind.IsBasisAt(i) {
			m.AddBasis(m.tab.byRank[i])
		}
	}
	return m, nil
}

// Validate checks that the basis set is nonempty and satisfies the basis
// exchange axiom: for bases B1, B2 and any x in B1\B2 there is some y in
// B2\B1 with (B1 - x) + y also a basis.
//
// Validation is advisory: decode never auto-validates, and already
// canonicalized database content may skip it.
func (m *Matroid) Validate() error {
	if len(m.bases) == 0 {
		return errors.Wrap(ErrInvalidMatroid, "matroid has no bases")
	}

	for _, b1 := range m.bases {
		for _, b2 := range m.bases {
			if b1 == b2 {
				continue
			}
			for rem := b1 &^ b2; rem != 0; rem &= rem - 1 {
				x := trailingElem(rem)
				if !m.hasExchange(b1, b2, x) {
					return errors.Wrapf(ErrInvalidMatroid,
						"no exchange partner for element %d in basis pair (%v, %v)", x, b1, b2)
				}
			}
		}
	}
	return nil
}

func (m *Matroid) hasExchange(b1, b2 Subset, x int) bool {
	reduced := b1 &^ SingleElem(x)
	for add := b2 &^ b1; add != 0; add &= add - 1 {
		if m.HasBasis(reduced | SingleElem(trailingElem(add))) {
			return true
		}
	}
	return false
}

func (m *Matroid) String() string {
	var b strings.Builder
	for i, sub := range m.bases {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(sub.String())
	}
	return b.String()
}
