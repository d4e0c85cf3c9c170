package gomx

import (
	"fmt"
	"math/bits"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	// MaxGroundSize is the max supported ground set size.
	// Cataloged databases stay at or below 12; the headroom keeps a Subset inside a uint16.
	MaxGroundSize = 15
)

// Subset is the characteristic bitmask of a subset of the ground set {0..n-1}:
// bit i is set iff element i is present.
type Subset uint16

// SingleElem returns the Subset containing only the given element.
func SingleElem(elem int) Subset {
	return Subset(1) << elem
}

// Count returns the number of elements in this Subset.
func (s Subset) Count() int {
	return bits.OnesCount16(uint16(s))
}

// Contains returns true if the given element is in this Subset.
func (s Subset) Contains(elem int) bool {
	return s&SingleElem(elem) != 0
}

// trailingElem returns the lowest element present in s (s must be nonempty).
func trailingElem(s Subset) int {
	return bits.TrailingZeros16(uint16(s))
}

// Elems appends the elements of this Subset to the given slice in ascending order.
func (s Subset) Elems(in []int) []int {
	for e := s; e != 0; e &= e - 1 {
		in = append(in, bits.TrailingZeros16(uint16(e)))
	}
	return in
}

func (s Subset) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, e := 0, s; e != 0; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", bits.TrailingZeros16(uint16(e)))
		e &= e - 1
	}
	b.WriteByte('}')
	return b.String()
}

// gChoose[n][r] is the binomial coefficient C(n,r), zero outside 0 <= r <= n.
var gChoose [MaxGroundSize + 1][MaxGroundSize + 1]int64

func init() {
	for n := 0; n <= MaxGroundSize; n++ {
		gChoose[n][0] = 1
		for r := 1; r <= n; r++ {
			gChoose[n][r] = gChoose[n-1][r-1] + gChoose[n-1][r]
		}
	}
}

// Choose returns C(n,r), or 0 when (n,r) is outside 0 <= r <= n <= MaxGroundSize.
func Choose(n, r int) int64 {
	if n < 0 || n > MaxGroundSize || r < 0 || r > n {
		return 0
	}
	return gChoose[n][r]
}

// rankedSubset pairs a Subset (over canonical labels) with its revlex rank.
type rankedSubset struct {
	rank int32
	mask Subset
}

// RankTable is the immutable per-(n,r) enumeration cache: the revlex ordering
// of all r-subsets of {0..n-1} plus the auxiliary masks the canonize search uses.
//
// A RankTable is published exactly once per (n,r) and never mutated afterward,
// so concurrent readers need no locking.
type RankTable struct {
	N   int32 // ground set size
	R   int32 // subset size
	Len int32 // C(n,r), the indicator length

	byRank []Subset // rank -> subset, in revlex order

	// undetMask[k] masks (in indicator word layout) the positions still
	// undetermined after canonical labels n-1..n-k have been assigned;
	// newlyAt[k] lists the positions first determined at that depth.
	undetMask [][]uint64
	newlyAt   [][]rankedSubset
}

var gRankTables sync.Map // (n << 8 | r) -> *RankTable

// GetRankTable returns the shared enumeration table for (n,r), building and
// publishing it on first use.
func GetRankTable(n, r int) (*RankTable, error) {
	if r <= 0 || n > MaxGroundSize || r > n {
		return nil, errors.Wrapf(ErrBadRange, "no subset enumeration for (n=%d, r=%d)", n, r)
	}
	key := uint32(n)<<8 | uint32(r)
	if v, ok := gRankTables.Load(key); ok {
		return v.(*RankTable), nil
	}
	tab := buildRankTable(int32(n), int32(r))
	v, _ := gRankTables.LoadOrStore(key, tab)
	return v.(*RankTable), nil
}

func buildRankTable(n, r int32) *RankTable {
	tab := &RankTable{
		N:   n,
		R:   r,
		Len: int32(gChoose[n][r]),
	}

	// Revlex order is decreasing characteristic value, so a descending mask
	// walk yields the sequence directly.
	tab.byRank = make([]Subset, 0, tab.Len)
	for v := int32(1<<n) - 1; v >= 0; v-- {
		if bits.OnesCount16(uint16(v)) == int(r) {
			tab.byRank = append(tab.byRank, Subset(v))
		}
	}

	// Positions become determined as the canonize search assigns preimages to
	// labels n-1 downward: after k labels the subsets inside {n-k..n-1} are fixed.
	words := tab.Words()
	tab.undetMask = make([][]uint64, n+1)
	tab.newlyAt = make([][]rankedSubset, n+1)

	det := make([]uint64, words)
	for k := int32(0); k <= n; k++ {
		if k > 0 {
			label := n - k
			topMask := Subset((1<<n)-1) &^ (SingleElem(int(label)) - 1)
			for i, sub := range tab.byRank {
				if sub.Contains(int(label)) && sub&^topMask == 0 {
					tab.newlyAt[k] = append(tab.newlyAt[k], rankedSubset{rank: int32(i), mask: sub})
					det[i>>6] |= 1 << (63 - uint(i&63))
				}
			}
		}
		undet := make([]uint64, words)
		for w := range undet {
			undet[w] = ^det[w]
		}
		clearTailBits(undet, tab.Len)
		tab.undetMask[k] = undet
	}

	return tab
}

// Words returns the number of uint64 words an Indicator for this table spans.
func (tab *RankTable) Words() int {
	return int(tab.Len+63) >> 6
}

// SubsetAt returns the Subset at the given revlex rank.
func (tab *RankTable) SubsetAt(rank int32) (Subset, error) {
	if rank < 0 || rank >= tab.Len {
		return 0, errors.Wrapf(ErrBadRange, "rank %d not in [0, %d)", rank, tab.Len)
	}
	return tab.byRank[rank], nil
}

// RankOf returns the revlex rank of the given Subset in O(r) time via
// combinatorial number system arithmetic.
func (tab *RankTable) RankOf(sub Subset) (int32, error) {
	if sub.Count() != int(tab.R) || uint32(sub) >= 1<<uint32(tab.N) {
		return 0, errors.Wrapf(ErrBadRange, "%v is not an %d-subset of {0..%d}", sub, tab.R, tab.N-1)
	}

	// Colex rank of sub, then reflect: revlex runs the colex sequence backward.
	colex := int64(0)
	i := int64(1)
	for e := sub; e != 0; e &= e - 1 {
		colex += Choose(bits.TrailingZeros16(uint16(e)), int(i))
		i++
	}
	return int32(int64(tab.Len) - 1 - colex), nil
}

// UnrankSubset computes the Subset at the given revlex rank for (n,r) in
// closed form, without consulting a materialized table.
func UnrankSubset(n, r int, rank int64) (Subset, error) {
	nck := Choose(n, r)
	if nck == 0 {
		return 0, errors.Wrapf(ErrBadRange, "no subset enumeration for (n=%d, r=%d)", n, r)
	}
	if rank < 0 || rank >= nck {
		return 0, errors.Wrapf(ErrBadRange, "rank %d not in [0, %d)", rank, nck)
	}

	remain := nck - 1 - rank // colex rank
	sub := Subset(0)
	m := n - 1
	for k := r; k >= 1; k-- {
		for Choose(m, k) > remain {
			m--
		}
		sub |= SingleElem(m)
		remain -= Choose(m, k)
		m--
	}
	return sub, nil
}

// Enumerate walks all r-subsets in revlex order, stopping early if onSubset returns false.
func (tab *RankTable) Enumerate(onSubset func(rank int32, sub Subset) bool) {
	for i, sub := range tab.byRank {
		if !onSubset(int32(i), sub) {
			return
		}
	}
}
