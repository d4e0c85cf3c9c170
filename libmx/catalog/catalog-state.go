package catalog

import (
	"github.com/gogo/protobuf/proto"
)

// CatalogState is the persisted header of a canonical matroid catalog,
// stored under gCatalogStateKey in proto wire format (see catalog.proto).
type CatalogState struct {
	MajorVers  uint32   `protobuf:"varint,1,opt,name=MajorVers,proto3" json:"MajorVers,omitempty"`
	MinorVers  uint32   `protobuf:"varint,2,opt,name=MinorVers,proto3" json:"MinorVers,omitempty"`
	GroundMax  int32    `protobuf:"varint,3,opt,name=GroundMax,proto3" json:"GroundMax,omitempty"`
	NumClasses []uint64 `protobuf:"varint,4,rep,packed,name=NumClasses,proto3" json:"NumClasses,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *CatalogState) Reset()         { *m = CatalogState{} }
func (m *CatalogState) String() string { return proto.CompactTextString(m) }
func (*CatalogState) ProtoMessage()    {}

// Marshal encodes this state in proto wire format.
func (m *CatalogState) Marshal() ([]byte, error) {
	return proto.Marshal(m)
}

// Unmarshal decodes proto wire format, retaining unknown fields.
func (m *CatalogState) Unmarshal(data []byte) error {
	return proto.Unmarshal(data, m)
}
