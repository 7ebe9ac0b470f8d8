package wsbridge

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// FrameCodec compresses and decompresses the byte frames relayed over a
// bridged WebSocket connection, chosen by size exactly like the teacher's
// replay.Writer picks snappy for its high-frequency event stream and zstd
// for its bulkier frame stream.
type FrameCodec struct {
	// SmallThreshold is the payload size, in bytes, at or below which
	// frames are snappy-compressed. Larger frames use zstd. Zero selects
	// a sensible default.
	SmallThreshold int

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

const defaultSmallThreshold = 1024

// wireTag is prefixed to every compressed frame so the peer knows which
// codec to reverse, since the two compressors produce payloads neither
// self-describes.
type wireTag byte

const (
	tagSnappy wireTag = 's'
	tagZstd   wireTag = 'z'
)

// NewFrameCodec builds a FrameCodec with a reusable zstd encoder/decoder
// pair (construction is the expensive part; Encode/Decode calls are cheap).
func NewFrameCodec() (*FrameCodec, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("wsbridge: zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("wsbridge: zstd decoder: %w", err)
	}
	return &FrameCodec{encoder: encoder, decoder: decoder}, nil
}

// Close releases the zstd encoder/decoder's background resources.
func (c *FrameCodec) Close() {
	if c == nil {
		return
	}
	if c.encoder != nil {
		c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
}

// Encode compresses payload, choosing snappy for frames at or below
// SmallThreshold and zstd above it, and prefixes the result with a one-byte
// tag identifying the codec used.
func (c *FrameCodec) Encode(payload []byte) []byte {
	threshold := c.SmallThreshold
	if threshold <= 0 {
		threshold = defaultSmallThreshold
	}
	if len(payload) <= threshold {
		return append([]byte{byte(tagSnappy)}, snappy.Encode(nil, payload)...)
	}
	compressed := c.encoder.EncodeAll(payload, make([]byte, 0, len(payload)))
	return append([]byte{byte(tagZstd)}, compressed...)
}

// Decode reverses Encode, dispatching on the leading tag byte.
func (c *FrameCodec) Decode(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("wsbridge: empty frame")
	}
	tag, body := wireTag(frame[0]), frame[1:]
	switch tag {
	case tagSnappy:
		return snappy.Decode(nil, body)
	case tagZstd:
		return c.decoder.DecodeAll(body, nil)
	default:
		return nil, fmt.Errorf("wsbridge: unknown frame tag %q", tag)
	}
}
