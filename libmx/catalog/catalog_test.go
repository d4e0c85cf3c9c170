package catalog_test

import (
	"os"
	"path"
	"testing"

	"github.com/matroid-systems/gomx/gomx"
	"github.com/matroid-systems/gomx/libmx"
	"github.com/matroid-systems/gomx/libmx/catalog"
)

var (
	gT *testing.T

	gWorkspace = &libmx.Workspace{
		CatalogCtx: libmx.NewCatalogContext(),
	}
)

func decode(s string, n, r int) *gomx.Matroid {
	m, err := gomx.DecodeMatroid(s, n, r)
	if err != nil {
		gT.Fatal(err)
	}
	return m
}

func TestBasics(t *testing.T) {

	gT = t
	dir, err := os.MkdirTemp("", "junk*")
	if err != nil {
		gT.Fatal(err)
	}
	defer os.RemoveAll(dir)

	opts := gomx.CatalogOpts{
		DbPathName: path.Join(dir, "TestBasics"),
		GroundMax:  8,
	}
	cat, err := catalog.OpenCatalog(gWorkspace.CatalogCtx, opts)
	if err != nil {
		gT.Fatal(err)
	}

	u24 := decode("******", 4, 2)
	if added := cat.TryAddMatroid(u24); !added {
		t.Fatal("nope")
	}
	if added := cat.TryAddMatroid(u24); added {
		t.Fatal("nope")
	}

	// A relabeling lands in the same class and must not be re-added.
	m, _ := gomx.NewMatroid(4, 2)
	m.AddBasis(0b0011)
	m.AddBasis(0b0101)
	m.AddBasis(0b0110)
	if added := cat.TryAddMatroid(m); !added {
		t.Fatal("nope")
	}
	p, err := m.Permute([]int{3, 1, 0, 2})
	if err != nil {
		t.Fatal(err)
	}
	if added := cat.TryAddMatroid(p); added {
		t.Fatal("relabeled matroid was treated as a new class")
	}

	// A different (n, r) keeps its own counters.
	u25 := decode("**********", 5, 2)
	if added := cat.TryAddMatroid(u25); !added {
		t.Fatal("nope")
	}

	if num := cat.NumClasses(4, 2); num != 2 {
		t.Fatalf("NumClasses(4,2) = %d", num)
	}
	if num := cat.NumClasses(5, 2); num != 1 {
		t.Fatalf("NumClasses(5,2) = %d", num)
	}
	if num := cat.NumClasses(9, 2); num != 0 {
		t.Fatalf("NumClasses past GroundMax = %d", num)
	}

	// Select -- all classes, in ascending canonical order per (n, r)
	{
		total := 0
		var prev *gomx.Matroid
		onHit := make(chan *gomx.Matroid)
		go func() {
			cat.Select(gomx.DefaultSelector, onHit)
			close(onHit)
		}()
		for hit := range onHit {
			if prev != nil && prev.GroundSize() == hit.GroundSize() {
				if prev.Encode().Compare(hit.Encode()) >= 0 {
					t.Fatal("Select order is not ascending")
				}
			}
			prev = hit
			total++
		}
		if total != 3 {
			t.Fatalf("Select visited %d classes", total)
		}
	}

	// Selecting a single rank
	{
		sel := gomx.MatroidSelector{MinGround: 5, Rank: 2}
		onHit := make(chan *gomx.Matroid)
		go func() {
			cat.Select(sel, onHit)
			close(onHit)
		}()
		total := 0
		for range onHit {
			total++
		}
		if total != 1 {
			t.Fatalf("rank select visited %d classes", total)
		}
	}

	if err = cat.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopen read-only: state and entries persist.
	opts.ReadOnly = true
	cat, err = catalog.OpenCatalog(gWorkspace.CatalogCtx, opts)
	if err != nil {
		gT.Fatal(err)
	}
	defer cat.Close()

	if !cat.IsReadOnly() {
		t.Fatal("catalog should be read-only")
	}
	if num := cat.NumClasses(4, 2); num != 2 {
		t.Fatalf("NumClasses(4,2) after reopen = %d", num)
	}
	if added := cat.TryAddMatroid(u24); added {
		t.Fatal("read-only catalog accepted a write")
	}
}

func TestInMemoryCatalog(t *testing.T) {
	gT = t

	cat, err := catalog.OpenCatalog(gWorkspace.CatalogCtx, gomx.CatalogOpts{})
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	stream := gomx.StreamMatroid(decode("******", 4, 2)).AddTo(cat)
	if total := stream.PullAll(); total != 1 {
		t.Fatalf("AddTo forwarded %d matroids", total)
	}
	if num := cat.NumClasses(4, 2); num != 1 {
		t.Fatalf("NumClasses(4,2) = %d", num)
	}
}
