package native

import (
	"encoding/binary"
	"testing"

	"github.com/gogpu/vtex"
)

func TestRequestRecordLayout(t *testing.T) {
	if requestRecordSize != 108 {
		t.Fatalf("requestRecordSize = %d, want 108", requestRecordSize)
	}

	req := vtex.TileRequest{
		ID:        7,
		Level:     2,
		X:         5,
		Y:         -3,
		Width:     1,
		Height:    1,
		NumLayers: 2,
	}
	req.Layers[1] = vtex.TileRequestLayer{
		DestX:   272,
		DestY:   544,
		Enabled: true,
		Target:  vtex.SurfaceID(0x0301),
	}

	record := encodeRequestRecord(&req)
	le := binary.LittleEndian

	if got := int32(le.Uint32(record[0:])); got != 7 {
		t.Errorf("id at offset 0 = %d, want 7", got)
	}
	if got := int32(le.Uint32(record[12:])); got != -3 {
		t.Errorf("y at offset 12 = %d, want -3 (two's complement)", got)
	}
	if got := int32(le.Uint32(record[24:])); got != 2 {
		t.Errorf("numLayers at offset 24 = %d, want 2", got)
	}

	// Layer 1 starts at header + one layer stride.
	off := requestHeaderSize + requestLayerSize
	if got := int32(le.Uint32(record[off:])); got != 272 {
		t.Errorf("layer 1 destX = %d, want 272", got)
	}
	if got := le.Uint32(record[off+8:]); got != 1 {
		t.Errorf("layer 1 enabled = %d, want 1", got)
	}
	if got := le.Uint64(record[off+12:]); got != 0x0301 {
		t.Errorf("layer 1 target = %#x, want 0x0301", got)
	}

	// Layer 0 was never set: present in the record but zeroed.
	if got := le.Uint32(record[requestHeaderSize+8:]); got != 0 {
		t.Errorf("layer 0 enabled = %d, want 0", got)
	}
}

func TestRequestRecordRoundTrip(t *testing.T) {
	req := vtex.TileRequest{
		ID:        42,
		Level:     1,
		X:         12,
		Y:         9,
		Width:     2,
		Height:    3,
		NumLayers: 4,
	}
	for i := 0; i < vtex.MaxLayers; i++ {
		req.Layers[i] = vtex.TileRequestLayer{
			DestX:   int32(i * 272),
			DestY:   int32(i * 100),
			Enabled: i%2 == 0,
			Target:  vtex.SurfaceID(uint64(0x200 | i)),
		}
	}

	record := encodeRequestRecord(&req)
	got := decodeRequestRecord(record[:])
	if got != req {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, req)
	}
}
