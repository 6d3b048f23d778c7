package rerunsink

import (
	"fmt"

	"github.com/RidgeRun/gst-rerunsink/internal/rerun"
)

// buildImage maps a normalized frame to the sink's native image record.
// The three packed 8-bit formats use the packed-image constructors; the two
// chroma-subsampled formats use the pixel-format-tagged constructor.
// Formats outside the supported set fail with ErrUnsupportedFormat so the
// render call can report not-negotiated instead of logging garbage, and a
// byte length that disagrees with the format fails with ErrFrameSize.
func buildImage(f *NormalizedFrame) (rerun.Image, error) {
	want := f.Format.FrameSize(f.Width, f.Height)
	if want == 0 {
		return rerun.Image{}, fmt.Errorf("%w: %s %dx%d",
			ErrUnsupportedFormat, f.Format, f.Width, f.Height)
	}
	if len(f.Data) != want {
		return rerun.Image{}, fmt.Errorf("%w: %s %dx%d has %d bytes, want %d",
			ErrFrameSize, f.Format, f.Width, f.Height, len(f.Data), want)
	}

	switch f.Format {
	case FormatRGB:
		return rerun.ImageFromRGB24(f.Data, f.Width, f.Height), nil
	case FormatRGBA:
		return rerun.ImageFromRGBA32(f.Data, f.Width, f.Height), nil
	case FormatGray8:
		return rerun.ImageFromGrayscale8(f.Data, f.Width, f.Height), nil
	case FormatNV12:
		return rerun.ImageFromPixelFormat(f.Data, f.Width, f.Height, rerun.PixelFormatNV12), nil
	case FormatI420:
		return rerun.ImageFromPixelFormat(f.Data, f.Width, f.Height, rerun.PixelFormatYUV420Limited), nil
	default:
		return rerun.Image{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.Format)
	}
}

// codecToRerun maps the classifier's codec tag to the sink SDK's codec
// component.
func codecToRerun(c Codec) rerun.VideoCodec {
	switch c {
	case CodecH265:
		return rerun.VideoCodecH265
	default:
		return rerun.VideoCodecH264
	}
}
