package libmx

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/matroid-systems/gomx/gomx"
)

var gT *testing.T

const u24Indicator = "******"

func uniform24() *gomx.Matroid {
	m, err := gomx.DecodeMatroid(u24Indicator, 4, 2)
	if err != nil {
		gT.Fatal(err)
	}
	return m
}

func TestLoadIndexBasics(t *testing.T) {
	gT = t

	src := strings.NewReader(
		"# RevLex matroid database, n=4 r=2\n" +
			"# source: local test fixture\n" +
			"\n" +
			"0: ******\n")
	x, err := LoadIndex(src, 4, 2, "all")
	if err != nil {
		t.Fatal(err)
	}
	if x.Len() != 1 {
		t.Fatalf("got %d entries", x.Len())
	}
	if len(x.Provenance) != 2 || !strings.Contains(x.Provenance[1], "local test fixture") {
		t.Fatalf("provenance not preserved: %v", x.Provenance)
	}

	m, err := x.Lookup(0)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Equal(uniform24()) {
		t.Fatalf("entry 0 decoded to %v", m)
	}
	if err = m.Validate(); err != nil {
		t.Fatal(err)
	}

	if _, err = x.Lookup(1); !errors.Is(err, gomx.ErrNotFound) {
		t.Fatalf("lookup past end gave %v", err)
	}
	if _, err = x.Lookup(-1); !errors.Is(err, gomx.ErrNotFound) {
		t.Fatalf("negative lookup gave %v", err)
	}
}

func TestExclusions(t *testing.T) {
	gT = t

	for _, tag := range []string{"all", "unorientable"} {
		_, err := LoadIndex(strings.NewReader(""), 12, 3, tag)
		if !errors.Is(err, gomx.ErrExcluded) {
			t.Fatalf("(12,3,%q) gave %v", tag, err)
		}
	}
	if IsExcluded(12, 4, "all") {
		t.Fatal("(12,4,all) should not be excluded")
	}
}

func TestLoadFormatErrors(t *testing.T) {
	gT = t

	cases := []struct {
		desc string
		src  string
	}{
		{"missing separator", "0 ******\n"},
		{"bad entry index", "zero: ******\n"},
		{"index not starting at 0", "1: ******\n"},
		{"index gap", "0: 0*****\n2: ******\n"},
		{"duplicate index", "0: 0*****\n0: ******\n"},
		{"wrong length", "0: *****\n"},
		{"unknown character", "0: **x***\n"},
		{"indicators out of order", "0: ******\n1: 0*****\n"},
	}
	for _, tc := range cases {
		_, err := LoadIndex(strings.NewReader(tc.src), 4, 2, "all")
		if !errors.Is(err, gomx.ErrBadFormat) {
			gT.Fatalf("%s: gave %v", tc.desc, err)
		}
	}
}

func TestIndexStream(t *testing.T) {
	gT = t

	src := "0: 0*****\n1: ******\n"
	x, err := LoadIndex(strings.NewReader(src), 4, 2, "all")
	if err != nil {
		t.Fatal(err)
	}

	// Each Stream call is a fresh, restartable enumeration.
	for pass := 0; pass < 2; pass++ {
		if total := x.Stream().PullAll(); total != 2 {
			t.Fatalf("pass %d: streamed %d matroids", pass, total)
		}
	}

	// A consumer may stop partway; Halt lets the producer wind down.
	s := x.Stream()
	first := s.PullMatroid()
	if first.NumBases() != 5 {
		t.Fatalf("first streamed matroid has %d bases", first.NumBases())
	}
	s.Halt()
	for range s.Outlet {
	}
}

func TestIndexBuilderRoundTrip(t *testing.T) {
	gT = t

	b, err := NewIndexBuilder(4, 2, "all")
	if err != nil {
		t.Fatal(err)
	}
	b.Provenance = []string{"built by TestIndexBuilderRoundTrip"}

	added, err := b.AddMatroid(uniform24())
	if err != nil || !added {
		t.Fatalf("first add: %v %v", added, err)
	}
	added, err = b.AddMatroid(uniform24())
	if err != nil || added {
		t.Fatalf("repeat add: %v %v", added, err)
	}

	// Relabelings of one matroid all land in the same class.
	m, _ := gomx.NewMatroid(4, 2)
	m.AddBasis(0b0011)
	m.AddBasis(0b0101)
	m.AddBasis(0b0110)
	for i, perm := range [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}} {
		p, err := m.Permute(perm)
		if err != nil {
			t.Fatal(err)
		}
		added, err = b.AddMatroid(p)
		if err != nil {
			t.Fatal(err)
		}
		if wantNew := i == 0; added != wantNew {
			t.Fatalf("perm %d: added = %v", i, added)
		}
	}

	if b.NumClasses() != 2 {
		t.Fatalf("builder holds %d classes", b.NumClasses())
	}

	var out bytes.Buffer
	if err = b.WriteTo(&out); err != nil {
		t.Fatal(err)
	}

	x, err := LoadIndex(&out, 4, 2, "all")
	if err != nil {
		t.Fatal(err)
	}
	if x.Len() != 2 {
		t.Fatalf("reloaded %d entries", x.Len())
	}
	r0, _ := x.RepAt(0)
	r1, _ := x.RepAt(1)
	if r0.Compare(r1) >= 0 {
		t.Fatalf("reloaded entries out of order: %s, %s", r0, r1)
	}
}

func TestBuilderParamMismatch(t *testing.T) {
	gT = t

	b, _ := NewIndexBuilder(4, 2, "all")
	m, _ := gomx.NewMatroid(5, 2)
	m.AddBasis(0b00011)
	if _, err := b.AddMatroid(m); !errors.Is(err, gomx.ErrBadCatalogParam) {
		t.Fatalf("mismatched matroid gave %v", err)
	}
	if _, err := b.AddMatroid(nil); !errors.Is(err, gomx.ErrNilMatroid) {
		t.Fatalf("nil matroid gave %v", err)
	}
}
