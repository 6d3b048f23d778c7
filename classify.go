package rerunsink

import "fmt"

// acceleratorAllocators is the set of allocator names that mark a buffer as
// NVMM (accelerator) memory. The names are stable identifiers assigned by
// the NVIDIA DeepStream elements.
var acceleratorAllocators = map[string]struct{}{
	"nvfiltermemoryallocator0": {},
	"nvdsmemoryallocator0":     {},
}

// Classify labels an incoming buffer from its negotiated caps: an encoded
// access unit, a raw frame in host memory, or a raw frame in accelerator
// memory. Raw formats outside the supported set are not rejected here; they
// classify as raw with FormatUnknown so dimensions can still be reported,
// and the frame builder flags them later.
//
// acceleratorEnabled reports whether an accelerator extraction path is
// available (a SurfaceMapper is installed). Without one, buffers backed by
// accelerator allocators are an unsupported format: no extraction is
// attempted, since the mapped bytes are a surface descriptor, not pixels.
func Classify(caps Caps, buf Buffer, acceleratorEnabled bool) (FrameClass, error) {
	switch caps.MediaType {
	case MediaTypeH264, MediaTypeH265:
		if caps.Width <= 0 || caps.Height <= 0 {
			return FrameClass{}, fmt.Errorf("%w: %s %dx%d",
				ErrMissingDimensions, caps.MediaType, caps.Width, caps.Height)
		}
		codec := CodecH264
		if caps.MediaType == MediaTypeH265 {
			codec = CodecH265
		}
		return FrameClass{Kind: ClassEncoded, Codec: codec}, nil
	}

	class := FrameClass{Kind: ClassRawHost, Format: ParsePixelFormat(caps.Format)}
	if isAcceleratorMemory(buf) {
		if !acceleratorEnabled {
			return FrameClass{}, fmt.Errorf("%w: buffer in accelerator memory (%s) with no surface mapper installed",
				ErrUnsupportedFormat, buf.Allocator())
		}
		class.Kind = ClassRawAccelerator
	}
	return class, nil
}

// isAcceleratorMemory checks the buffer's backing allocator identity against
// the known accelerator allocator names.
func isAcceleratorMemory(buf Buffer) bool {
	if buf == nil {
		return false
	}
	_, ok := acceleratorAllocators[buf.Allocator()]
	return ok
}
