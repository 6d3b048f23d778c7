package rerunsink

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHostCopies(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	buf := &memBuffer{data: data}

	frame, err := extractHost(buf, FormatRGB, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, data, frame.Data)
	assert.Equal(t, FormatRGB, frame.Format)
	assert.Equal(t, 2, frame.Width)
	assert.Equal(t, 1, frame.Height)
	assert.True(t, buf.balanced(), "map/unmap must be paired")

	// The normalized frame owns its bytes: mutating the source after
	// extraction must not leak through.
	data[0] = 99
	assert.EqualValues(t, 1, frame.Data[0])
}

func TestExtractHostMapFailure(t *testing.T) {
	buf := &memBuffer{mapErr: errMock}
	_, err := extractHost(buf, FormatRGB, 2, 1)
	assert.ErrorIs(t, err, ErrBufferMap)
	assert.True(t, buf.balanced())
}

func TestExtractAcceleratorDropsPitchPadding(t *testing.T) {
	const width, height, pitch = 8, 4, 24

	surface := newPitchedSurface(width, height, pitch)
	buf := &memBuffer{data: []byte("surface-handle")}
	mapper := &memMapper{surface: surface}

	frame, err := extractAccelerator(buf, mapper, FormatNV12, width, height)
	require.NoError(t, err)

	// Luma: height rows of exactly `width` bytes, no 0xFF padding.
	want := make([]byte, 0, width*height+width*height/2)
	for r := 0; r < height; r++ {
		want = append(want, bytes.Repeat([]byte{0x10 + byte(r)}, width)...)
	}
	// Chroma: height/2 rows of `width` bytes.
	for r := 0; r < height/2; r++ {
		want = append(want, bytes.Repeat([]byte{0x80 + byte(r)}, width)...)
	}

	assert.Equal(t, want, frame.Data)
	assert.Len(t, frame.Data, FormatNV12.FrameSize(width, height))
	assert.NotContains(t, frame.Data, byte(0xFF), "pitch padding leaked into the frame")
	assert.Equal(t, width, frame.Width)
	assert.Equal(t, height, frame.Height)

	assert.True(t, buf.balanced(), "buffer map/unmap must be paired")
	assert.True(t, mapper.balanced(), "surface map/unmap must be paired")
	assert.Equal(t, 1, mapper.syncs)
}

func TestExtractAcceleratorPitchFree(t *testing.T) {
	// pitch == width is valid: the copy degenerates to a straight
	// concatenation.
	const width, height = 8, 4
	surface := newPitchedSurface(width, height, width)
	mapper := &memMapper{surface: surface}
	buf := &memBuffer{data: []byte("surface-handle")}

	frame, err := extractAccelerator(buf, mapper, FormatNV12, width, height)
	require.NoError(t, err)
	assert.Len(t, frame.Data, FormatNV12.FrameSize(width, height))
}

func TestExtractAcceleratorErrors(t *testing.T) {
	const width, height, pitch = 8, 4, 24

	testCases := []struct {
		name    string
		buf     *memBuffer
		mapper  *memMapper
		format  PixelFormat
		wantErr error
	}{
		{
			name:    "non_nv12_unsupported",
			buf:     &memBuffer{},
			mapper:  &memMapper{surface: newPitchedSurface(width, height, pitch)},
			format:  FormatI420,
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "buffer_map_failure",
			buf:     &memBuffer{mapErr: errMock},
			mapper:  &memMapper{surface: newPitchedSurface(width, height, pitch)},
			format:  FormatNV12,
			wantErr: ErrBufferMap,
		},
		{
			name:    "surface_map_failure",
			buf:     &memBuffer{},
			mapper:  &memMapper{mapErr: errMock},
			format:  FormatNV12,
			wantErr: ErrSurfaceMap,
		},
		{
			name:    "sync_failure",
			buf:     &memBuffer{},
			mapper:  &memMapper{surface: newPitchedSurface(width, height, pitch), syncErr: errMock},
			format:  FormatNV12,
			wantErr: ErrSurfaceSync,
		},
		{
			name: "nil_luma_plane",
			buf:  &memBuffer{},
			mapper: &memMapper{surface: &Surface{
				Width: width, Height: height,
				Chroma: SurfacePlane{Data: make([]byte, pitch*height/2), Pitch: pitch},
			}},
			format:  FormatNV12,
			wantErr: ErrNilSurface,
		},
		{
			name: "short_chroma_plane",
			buf:  &memBuffer{},
			mapper: &memMapper{surface: &Surface{
				Width: width, Height: height,
				Luma:   SurfacePlane{Data: make([]byte, pitch*height), Pitch: pitch},
				Chroma: SurfacePlane{Data: make([]byte, 4), Pitch: pitch},
			}},
			format:  FormatNV12,
			wantErr: ErrNilSurface,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := extractAccelerator(tc.buf, tc.mapper, tc.format, width, height)
			assert.ErrorIs(t, err, tc.wantErr)

			// Mappings must be released along every error path.
			assert.True(t, tc.buf.balanced(), "buffer map/unmap must be paired")
			assert.True(t, tc.mapper.balanced(), "surface map/unmap must be paired")
		})
	}
}
