package gomx

import (
	"github.com/pkg/errors"
)

const (
	// BasisChar marks an indicator position whose subset is a basis.
	BasisChar = byte('*')

	// NonBasisChar marks an indicator position whose subset is not a basis.
	NonBasisChar = byte('0')
)

// Indicator is a fixed-length basis indicator string for some (n,r): position i
// tells whether the subset of revlex rank i is a basis.
//
// Positions are packed most-significant first, so word-wise comparison of two
// same-length Indicators is lexicographic comparison with BASIS > NON_BASIS.
// Note that this is *not* byte order of the text form ('*' < '0' in ASCII).
type Indicator struct {
	count int32
	words []uint64
}

// NewIndicator returns an all-NON_BASIS Indicator with the given position count.
func NewIndicator(numPositions int32) Indicator {
	return Indicator{
		count: numPositions,
		words: make([]uint64, (numPositions+63)>>6),
	}
}

// Count returns the number of positions (C(n,r) for the declared (n,r)).
func (ind Indicator) Count() int {
	return int(ind.count)
}

// IsBasisAt returns true if position i is marked BASIS.
func (ind Indicator) IsBasisAt(i int32) bool {
	return ind.words[i>>6]&(1<<(63-uint(i&63))) != 0
}

func (ind Indicator) setAt(i int32) {
	ind.words[i>>6] |= 1 << (63 - uint(i&63))
}

func (ind Indicator) clearAt(i int32) {
	ind.words[i>>6] &^= 1 << (63 - uint(i&63))
}

// Compare is the single comparison authority for indicator strings: position 0
// is most significant and BASIS ranks above NON_BASIS.
func (ind Indicator) Compare(oth Indicator) int {
	for w, ww := range ind.words {
		if w >= len(oth.words) {
			break
		}
		if ww != oth.words[w] {
			if ww > oth.words[w] {
				return 1
			}
			return -1
		}
	}
	if ind.count != oth.count {
		if ind.count > oth.count {
			return 1
		}
		return -1
	}
	return 0
}

// Equal returns true if both Indicators have identical length and positions.
func (ind Indicator) Equal(oth Indicator) bool {
	return ind.Compare(oth) == 0
}

// Clone returns an independent copy.
func (ind Indicator) Clone() Indicator {
	cp := Indicator{
		count: ind.count,
		words: make([]uint64, len(ind.words)),
	}
	copy(cp.words, ind.words)
	return cp
}

// CopyFrom overwrites this Indicator's positions with src's (equal lengths assumed).
func (ind *Indicator) CopyFrom(src Indicator) {
	ind.count = src.count
	if cap(ind.words) < len(src.words) {
		ind.words = make([]uint64, len(src.words))
	}
	ind.words = ind.words[:len(src.words)]
	copy(ind.words, src.words)
}

// AppendTo appends the text form ('*' / '0') to the given buffer.
func (ind Indicator) AppendTo(buf []byte) []byte {
	for i := int32(0); i < ind.count; i++ {
		if ind.IsBasisAt(i) {
			buf = append(buf, BasisChar)
		} else {
			buf = append(buf, NonBasisChar)
		}
	}
	return buf
}

func (ind Indicator) String() string {
	var scrap [128]byte
	return string(ind.AppendTo(scrap[:0]))
}

// AppendLSM appends a packed big-endian byte encoding whose unsigned byte
// order matches Compare, making it usable as an ordered LSM db key.
func (ind Indicator) AppendLSM(buf []byte) []byte {
	numBytes := int(ind.count+7) >> 3
	for b := 0; b < numBytes; b++ {
		shift := 56 - uint(b&7)<<3
		buf = append(buf, byte(ind.words[b>>3]>>shift))
	}
	return buf
}

// ParseIndicator parses the text form of an indicator string for (n,r),
// requiring length exactly C(n,r) and characters in {'*', '0'}.
func ParseIndicator(s string, n, r int) (Indicator, error) {
	tab, err := GetRankTable(n, r)
	if err != nil {
		return Indicator{}, err
	}
	if int32(len(s)) != tab.Len {
		return Indicator{}, errors.Wrapf(ErrBadFormat,
			"indicator length is %d, want C(%d,%d) = %d", len(s), n, r, tab.Len)
	}
	ind := NewIndicator(tab.Len)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case BasisChar:
			ind.setAt(int32(i))
		case NonBasisChar:
		default:
			return Indicator{}, errors.Wrapf(ErrBadFormat,
				"unknown indicator character %q at position %d", s[i], i)
		}
	}
	return ind, nil
}

// clearTailBits zeroes the bits past the given position count in the last word.
func clearTailBits(words []uint64, count int32) {
	if tail := uint(count) & 63; tail != 0 && len(words) > 0 {
		words[len(words)-1] &= ^uint64(0) << (64 - tail)
	}
}
