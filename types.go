package rerunsink

import "time"

// GStreamer media type names accepted on the sink pad.
const (
	MediaTypeRaw  = "video/x-raw"
	MediaTypeH264 = "video/x-h264"
	MediaTypeH265 = "video/x-h265"
)

// PixelFormat identifies the layout of a raw video frame.
type PixelFormat int

const (
	// FormatUnknown is any format outside the supported set. Frames with
	// an unknown format are still classified and extracted so their
	// dimensions can be reported, but building a sink record fails.
	FormatUnknown PixelFormat = iota
	// FormatRGB is packed 8-bit RGB, 3 bytes per pixel
	FormatRGB
	// FormatRGBA is packed 8-bit RGBA, 4 bytes per pixel
	FormatRGBA
	// FormatGray8 is single-plane 8-bit grayscale
	FormatGray8
	// FormatNV12 is YUV 4:2:0 semi-planar (Y plane + interleaved UV plane)
	FormatNV12
	// FormatI420 is YUV 4:2:0 planar (Y + U + V planes)
	FormatI420
)

// ParsePixelFormat maps a GStreamer format string (the "format" caps field)
// to a PixelFormat. Unrecognized strings map to FormatUnknown.
func ParsePixelFormat(s string) PixelFormat {
	switch s {
	case "RGB":
		return FormatRGB
	case "RGBA":
		return FormatRGBA
	case "GRAY8":
		return FormatGray8
	case "NV12":
		return FormatNV12
	case "I420":
		return FormatI420
	default:
		return FormatUnknown
	}
}

// String returns the GStreamer name of the format.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGB:
		return "RGB"
	case FormatRGBA:
		return "RGBA"
	case FormatGray8:
		return "GRAY8"
	case FormatNV12:
		return "NV12"
	case FormatI420:
		return "I420"
	default:
		return "unknown"
	}
}

// FrameSize returns the byte length of a pitch-free frame of this format,
// or 0 for FormatUnknown.
func (f PixelFormat) FrameSize(width, height int) int {
	px := width * height
	switch f {
	case FormatRGB:
		return px * 3
	case FormatRGBA:
		return px * 4
	case FormatGray8:
		return px
	case FormatNV12, FormatI420:
		return px + px/2
	default:
		return 0
	}
}

// Codec identifies an encoded video bitstream.
type Codec int

const (
	CodecNone Codec = iota
	CodecH264
	CodecH265
)

// String returns a human-readable codec name.
func (c Codec) String() string {
	switch c {
	case CodecH264:
		return "H.264"
	case CodecH265:
		return "H.265"
	default:
		return "none"
	}
}

// Caps is the immutable description of a negotiated stream, extracted from
// the GStreamer caps structure by the glue layer.
type Caps struct {
	// MediaType is the structure name, e.g. "video/x-raw" or "video/x-h264"
	MediaType string
	// Format is the raw pixel format string; empty for encoded media
	Format string
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// StreamFormat is the encoded container hint (e.g. "byte-stream", "hvc1")
	StreamFormat string
}

// MemoryKind distinguishes where a raw buffer's backing memory lives.
type MemoryKind int

const (
	// MemoryHost is ordinary CPU-accessible memory
	MemoryHost MemoryKind = iota
	// MemoryAccelerator is device (NVMM) memory that must be mapped and
	// synced before the CPU can read it
	MemoryAccelerator
)

// ClassKind is the top-level classification of an incoming buffer.
type ClassKind int

const (
	// ClassRawHost is a raw frame in host memory
	ClassRawHost ClassKind = iota
	// ClassRawAccelerator is a raw frame in accelerator memory
	ClassRawAccelerator
	// ClassEncoded is a compressed access unit
	ClassEncoded
)

// FrameClass is the result of classifying a buffer against its caps.
type FrameClass struct {
	Kind   ClassKind
	Codec  Codec       // set for ClassEncoded
	Format PixelFormat // set for raw classes; may be FormatUnknown
}

// NormalizedFrame is a contiguous, pitch-free, host-memory copy of a raw
// frame. It is created per render call and discarded once logged; nothing
// retains it across frames.
type NormalizedFrame struct {
	Format PixelFormat
	Width  int
	Height int
	Data   []byte
}

// EncodedSample is one compressed access unit ready for logging. Data is a
// borrowed view into mapped buffer memory, valid only until the buffer is
// unmapped; it is consumed synchronously by the log call.
type EncodedSample struct {
	Codec Codec
	DTS   time.Duration
	Data  []byte
}

// Buffer is the narrow surface the core needs from a host-framework buffer.
// Map and Unmap must be paired exactly once per successful Map; the core
// guarantees the pairing on every exit path, including errors.
type Buffer interface {
	// Map exposes the buffer bytes for reading
	Map() ([]byte, error)
	// Unmap releases a successful Map
	Unmap()
	// Allocator returns the name of the allocator backing the buffer,
	// or "" when unknown (treated as host memory)
	Allocator() string
	// DTS is the decode timestamp of the buffer
	DTS() time.Duration
}

// SurfacePlane is one plane of a mapped accelerator surface. Pitch is the
// stride in bytes between row starts and is frequently larger than the
// logical row width due to alignment.
type SurfacePlane struct {
	Data  []byte
	Pitch int
	Size  int
}

// Surface is a CPU-mapped view of a semi-planar accelerator surface.
type Surface struct {
	Width  int
	Height int
	Luma   SurfacePlane
	Chroma SurfacePlane
}

// SurfaceMapper gives the core CPU access to accelerator-resident buffers.
// Installing a mapper (see Sink.SetSurfaceMapper) is what enables the
// accelerator extraction path; without one, accelerator buffers are treated
// as an unsupported format instead of attempting a doomed extraction.
type SurfaceMapper interface {
	// MapSurface interprets the host-mapped bytes of an accelerator
	// buffer as a surface descriptor and maps its planes for CPU reads
	MapSurface(raw []byte) (*Surface, error)
	// SyncForCPU flushes device caches so CPU reads observe frame data
	SyncForCPU(s *Surface) error
	// UnmapSurface releases a successful MapSurface
	UnmapSurface(s *Surface) error
}

// FlowReturn is the per-frame render result, mirroring the host framework's
// flow-return semantics.
type FlowReturn int

const (
	// FlowOK means the frame was handled (logged or deliberately skipped)
	FlowOK FlowReturn = iota
	// FlowError means the frame failed; the session continues
	FlowError
	// FlowNotNegotiated means the negotiated format is unsupported
	FlowNotNegotiated
)

// String returns a human-readable flow return name.
func (f FlowReturn) String() string {
	switch f {
	case FlowOK:
		return "ok"
	case FlowError:
		return "error"
	case FlowNotNegotiated:
		return "not-negotiated"
	default:
		return "unknown"
	}
}

// Defaults for Config fields, matching the element's property defaults.
const (
	// DefaultRecordingID is used when no recording identifier is set
	DefaultRecordingID = "gst-rerun"
	// DefaultGRPCAddress is the sentinel meaning "no custom endpoint
	// requested"; only a different value selects the remote destination
	DefaultGRPCAddress = "127.0.0.1:9876"
)

// Config is the sink's property surface. It is read when a session starts;
// changes made while a session is active take effect on the next Start.
type Config struct {
	// RecordingID names the recording/session; empty selects
	// DefaultRecordingID
	RecordingID string
	// ImagePath is the entity path for raw frames (e.g. "camera/front/frame");
	// empty skips raw-frame logging
	ImagePath string
	// VideoPath is the entity path for encoded video; empty skips
	// encoded-stream logging
	VideoPath string
	// SpawnViewer spawns a local viewer when no file or remote destination
	// is configured
	SpawnViewer bool
	// OutputFile persists the recording to this path when set
	OutputFile string
	// GRPCAddress connects to this endpoint when set to a non-default
	// value
	GRPCAddress string
}

// DefaultConfig returns the element's property defaults: spawn a viewer,
// no file, no custom remote endpoint, no entity paths.
func DefaultConfig() Config {
	return Config{
		RecordingID: DefaultRecordingID,
		SpawnViewer: true,
		GRPCAddress: DefaultGRPCAddress,
	}
}

// normalized fills defaulted fields so the zero Config behaves like an
// element whose string properties were never set.
func (c Config) normalized() Config {
	if c.RecordingID == "" {
		c.RecordingID = DefaultRecordingID
	}
	if c.GRPCAddress == "" {
		c.GRPCAddress = DefaultGRPCAddress
	}
	return c
}
