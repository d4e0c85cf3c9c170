package catalog

import (
	"testing"

	"github.com/gogo/protobuf/proto"
)

func TestCatalogStateCodec(t *testing.T) {
	state := CatalogState{
		MajorVers:  2024,
		MinorVers:  1,
		GroundMax:  8,
		NumClasses: []uint64{0, 0, 3, 0, 7, 1 << 40},
	}

	buf, err := state.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var back CatalogState
	if err = back.Unmarshal(buf); err != nil {
		t.Fatal(err)
	}
	if !proto.Equal(&state, &back) {
		t.Fatalf("state round trip changed:\n     %v\ngot:\n    %v", &state, &back)
	}

	// Zero state encodes to nothing and decodes back to zero.
	var zero CatalogState
	buf, err = zero.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != 0 {
		t.Fatalf("zero state marshaled to %d bytes", len(buf))
	}
}
