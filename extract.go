package rerunsink

import "fmt"

// extractHost normalizes a raw frame residing in host memory. The supported
// source layouts are pitch-free, so the normalized frame is a byte-for-byte
// copy of the mapped region; no row de-striding is performed in this path.
func extractHost(buf Buffer, format PixelFormat, width, height int) (*NormalizedFrame, error) {
	data, err := buf.Map()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBufferMap, err)
	}
	defer buf.Unmap()

	out := make([]byte, len(data))
	copy(out, data)

	return &NormalizedFrame{
		Format: format,
		Width:  width,
		Height: height,
		Data:   out,
	}, nil
}

// extractAccelerator normalizes a raw frame residing in accelerator memory.
// Only semi-planar NV12 surfaces are supported. The luma and chroma planes
// are copied row by row using the surface pitch as stride and the logical
// width as the consumed row length: surface row pitch is frequently larger
// than the width due to alignment, and a bulk copy would embed the padding
// bytes and corrupt the image.
//
// The buffer mapping and the surface mapping are both released on every
// exit path.
func extractAccelerator(buf Buffer, mapper SurfaceMapper, format PixelFormat, width, height int) (*NormalizedFrame, error) {
	if format != FormatNV12 {
		return nil, fmt.Errorf("%w: accelerator memory carries %s, only NV12 is supported",
			ErrUnsupportedFormat, format)
	}

	raw, err := buf.Map()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBufferMap, err)
	}
	defer buf.Unmap()

	surface, err := mapper.MapSurface(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSurfaceMap, err)
	}
	defer mapper.UnmapSurface(surface)

	if err := mapper.SyncForCPU(surface); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSurfaceSync, err)
	}

	// Surface dimensions are authoritative; caps may lag the device.
	w, h := surface.Width, surface.Height
	if w <= 0 || h <= 0 {
		w, h = width, height
	}

	if err := checkPlane("luma", surface.Luma, w, h); err != nil {
		return nil, err
	}
	if err := checkPlane("chroma", surface.Chroma, w, h/2); err != nil {
		return nil, err
	}

	out := make([]byte, 0, w*h+w*(h/2))
	out = appendPlaneRows(out, surface.Luma, w, h)
	out = appendPlaneRows(out, surface.Chroma, w, h/2)

	return &NormalizedFrame{
		Format: format,
		Width:  w,
		Height: h,
		Data:   out,
	}, nil
}

// checkPlane verifies a mapped plane is present and large enough for the
// row-wise copy.
func checkPlane(name string, p SurfacePlane, width, rows int) error {
	if p.Data == nil {
		return fmt.Errorf("%w: %s plane has no mapped data", ErrNilSurface, name)
	}
	if p.Pitch < width {
		return fmt.Errorf("%w: %s plane pitch %d smaller than width %d",
			ErrNilSurface, name, p.Pitch, width)
	}
	if need := (rows-1)*p.Pitch + width; len(p.Data) < need {
		return fmt.Errorf("%w: %s plane has %d bytes, need %d",
			ErrNilSurface, name, len(p.Data), need)
	}
	return nil
}

// appendPlaneRows copies rows of `width` bytes from a pitched plane,
// dropping the per-row padding.
func appendPlaneRows(dst []byte, p SurfacePlane, width, rows int) []byte {
	for i := 0; i < rows; i++ {
		start := i * p.Pitch
		dst = append(dst, p.Data[start:start+width]...)
	}
	return dst
}
