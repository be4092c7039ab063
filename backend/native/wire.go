package native

import (
	"encoding/binary"

	"github.com/gogpu/vtex"
)

// Fixed tile request record layout, little-endian:
//
//	id:int32 level:int32 x:int32 y:int32 width:int32 height:int32
//	numLayers:int32
//	4 x { destX:int32 destY:int32 enabled:int32 target:uint64 }
//
// Layer slots beyond numLayers are present but semantically ignored.
const (
	requestHeaderSize = 7 * 4
	requestLayerSize  = 3*4 + 8
	requestRecordSize = requestHeaderSize + vtex.MaxLayers*requestLayerSize
)

// encodeRequestRecord serializes a tile request into its fixed native
// layout for upload into the request buffer.
func encodeRequestRecord(req *vtex.TileRequest) [requestRecordSize]byte {
	var out [requestRecordSize]byte
	le := binary.LittleEndian

	le.PutUint32(out[0:], uint32(req.ID))
	le.PutUint32(out[4:], uint32(req.Level))
	le.PutUint32(out[8:], uint32(req.X))
	le.PutUint32(out[12:], uint32(req.Y))
	le.PutUint32(out[16:], uint32(req.Width))
	le.PutUint32(out[20:], uint32(req.Height))
	le.PutUint32(out[24:], uint32(req.NumLayers))

	for i := 0; i < vtex.MaxLayers; i++ {
		off := requestHeaderSize + i*requestLayerSize
		layer := &req.Layers[i]
		le.PutUint32(out[off:], uint32(layer.DestX))
		le.PutUint32(out[off+4:], uint32(layer.DestY))
		var enabled uint32
		if layer.Enabled {
			enabled = 1
		}
		le.PutUint32(out[off+8:], enabled)
		le.PutUint64(out[off+12:], uint64(layer.Target))
	}
	return out
}

// decodeRequestRecord deserializes a fixed-layout record. Inverse of
// encodeRequestRecord; used by readback paths and tests.
func decodeRequestRecord(data []byte) vtex.TileRequest {
	le := binary.LittleEndian
	var req vtex.TileRequest

	req.ID = int32(le.Uint32(data[0:]))
	req.Level = int32(le.Uint32(data[4:]))
	req.X = int32(le.Uint32(data[8:]))
	req.Y = int32(le.Uint32(data[12:]))
	req.Width = int32(le.Uint32(data[16:]))
	req.Height = int32(le.Uint32(data[20:]))
	req.NumLayers = int32(le.Uint32(data[24:]))

	for i := 0; i < vtex.MaxLayers; i++ {
		off := requestHeaderSize + i*requestLayerSize
		req.Layers[i] = vtex.TileRequestLayer{
			DestX:   int32(le.Uint32(data[off:])),
			DestY:   int32(le.Uint32(data[off+4:])),
			Enabled: le.Uint32(data[off+8:]) != 0,
			Target:  vtex.SurfaceID(le.Uint64(data[off+12:])),
		}
	}
	return req
}
