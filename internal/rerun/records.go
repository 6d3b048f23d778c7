// Package rerun is a minimal client for the Rerun-style telemetry sink used
// by the rerunsink element. It exposes the narrow capability surface the
// sink needs: open a named recording, bind exactly one destination (file,
// remote endpoint, or spawned viewer), declare a codec once, and append
// timestamped image and video-sample records.
package rerun

// PixelFormat tags chroma-subsampled image records whose layout a packed
// channel count cannot describe.
type PixelFormat uint8

const (
	// PixelFormatNone marks packed images described by a channel count
	PixelFormatNone PixelFormat = iota
	// PixelFormatNV12 is YUV 4:2:0 semi-planar
	PixelFormatNV12
	// PixelFormatYUV420Limited is YUV 4:2:0 planar, limited range
	PixelFormatYUV420Limited
)

// Image is a raw-image record. Packed images carry a channel count; planar
// and semi-planar images carry a pixel format tag instead.
type Image struct {
	PixelFormat PixelFormat
	Channels    int
	Width       int
	Height      int
	Data        []byte
}

// ImageFromRGB24 builds a packed 3-channel image record.
func ImageFromRGB24(data []byte, width, height int) Image {
	return Image{Channels: 3, Width: width, Height: height, Data: data}
}

// ImageFromRGBA32 builds a packed 4-channel image record.
func ImageFromRGBA32(data []byte, width, height int) Image {
	return Image{Channels: 4, Width: width, Height: height, Data: data}
}

// ImageFromGrayscale8 builds a packed single-channel image record.
func ImageFromGrayscale8(data []byte, width, height int) Image {
	return Image{Channels: 1, Width: width, Height: height, Data: data}
}

// ImageFromPixelFormat builds a pixel-format-tagged image record.
func ImageFromPixelFormat(data []byte, width, height int, pf PixelFormat) Image {
	return Image{PixelFormat: pf, Width: width, Height: height, Data: data}
}

// VideoCodec identifies the codec of a video stream record.
type VideoCodec uint8

const (
	VideoCodecH264 VideoCodec = 1
	VideoCodecH265 VideoCodec = 2
)

// VideoStreamCodec is the one-time static codec declaration of an encoded
// stream. It carries metadata only, never sample bytes.
type VideoStreamCodec struct {
	Codec VideoCodec
}

// VideoSample is one compressed access unit. Data may be a borrowed view
// into caller-owned memory; it is consumed before Log returns.
type VideoSample struct {
	Data []byte
}

// NewVideoStreamCodec builds a codec declaration record.
func NewVideoStreamCodec(c VideoCodec) VideoStreamCodec {
	return VideoStreamCodec{Codec: c}
}

// NewVideoSample builds a video-sample record.
func NewVideoSample(data []byte) VideoSample {
	return VideoSample{Data: data}
}

// Record is any loggable record type.
type Record interface {
	kind() recordKind
	appendPayload(b []byte) []byte
}
