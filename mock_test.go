package rerunsink

import (
	"errors"
	"time"
)

// memBuffer is an in-memory Buffer that counts map/unmap calls so tests can
// verify every successful map is paired with a release, including along
// error paths.
type memBuffer struct {
	data      []byte
	allocator string
	dts       time.Duration
	mapErr    error

	maps   int
	unmaps int
}

func (b *memBuffer) Map() ([]byte, error) {
	if b.mapErr != nil {
		return nil, b.mapErr
	}
	b.maps++
	return b.data, nil
}

func (b *memBuffer) Unmap()            { b.unmaps++ }
func (b *memBuffer) Allocator() string { return b.allocator }
func (b *memBuffer) DTS() time.Duration {
	return b.dts
}

func (b *memBuffer) balanced() bool { return b.maps == b.unmaps }

// memMapper is a SurfaceMapper over a synthetic surface, with the same
// pairing accounting as memBuffer.
type memMapper struct {
	surface *Surface
	mapErr  error
	syncErr error

	maps   int
	unmaps int
	syncs  int
}

func (m *memMapper) MapSurface(raw []byte) (*Surface, error) {
	if m.mapErr != nil {
		return nil, m.mapErr
	}
	m.maps++
	return m.surface, nil
}

func (m *memMapper) SyncForCPU(s *Surface) error {
	if m.syncErr != nil {
		return m.syncErr
	}
	m.syncs++
	return nil
}

func (m *memMapper) UnmapSurface(s *Surface) error {
	m.unmaps++
	return nil
}

func (m *memMapper) balanced() bool { return m.maps == m.unmaps }

// newPitchedSurface builds an NV12 surface with the given pitch. Luma bytes
// are row-indexed (0x10+row), chroma bytes 0x80+row; padding bytes are 0xFF
// so a copy that embeds padding is caught immediately.
func newPitchedSurface(width, height, pitch int) *Surface {
	fill := func(rows int, base byte) SurfacePlane {
		data := make([]byte, rows*pitch)
		for r := 0; r < rows; r++ {
			for c := 0; c < pitch; c++ {
				if c < width {
					data[r*pitch+c] = base + byte(r)
				} else {
					data[r*pitch+c] = 0xFF
				}
			}
		}
		return SurfacePlane{Data: data, Pitch: pitch, Size: rows * pitch}
	}
	return &Surface{
		Width:  width,
		Height: height,
		Luma:   fill(height, 0x10),
		Chroma: fill(height/2, 0x80),
	}
}

var errMock = errors.New("mock failure")
