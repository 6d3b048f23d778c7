// Package gstglue binds the rerunsink core to a GStreamer appsink. It is
// the only package in the repository that links against the GStreamer
// runtime; the core stays testable without one.
package gstglue

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	rerunsink "github.com/RidgeRun/gst-rerunsink"
)

// Attach wires an appsink's new-sample callback to the core sink. The
// appsink delivers samples on the streaming thread; lifecycle calls
// (sink.Start/Stop) stay with the caller, matching the element state-change
// protocol.
func Attach(appsink *app.Sink, sink *rerunsink.Sink) {
	appsink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(as *app.Sink) gst.FlowReturn {
			return onNewSample(as, sink)
		},
	})
}

// onNewSample pulls one sample, translates caps and buffer, and renders it.
// Malformed samples degrade gracefully: the frame is skipped instead of
// terminating the stream.
func onNewSample(as *app.Sink, sink *rerunsink.Sink) gst.FlowReturn {
	sample := as.PullSample()
	if sample == nil {
		slog.Warn("gstglue: failed to pull sample from appsink, skipping frame")
		return gst.FlowOK
	}

	buffer := sample.GetBuffer()
	if buffer == nil {
		slog.Warn("gstglue: sample has no buffer, skipping frame")
		return gst.FlowOK
	}

	caps, err := ParseCaps(sample.GetCaps())
	if err != nil {
		slog.Warn("gstglue: failed to parse sample caps, skipping frame", "error", err)
		return gst.FlowOK
	}

	switch sink.Render(&gstBuffer{buf: buffer}, caps) {
	case rerunsink.FlowOK:
		return gst.FlowOK
	case rerunsink.FlowNotNegotiated:
		return gst.FlowNotNegotiated
	default:
		return gst.FlowError
	}
}

// ParseCaps extracts the fields the core needs from negotiated caps.
func ParseCaps(caps *gst.Caps) (rerunsink.Caps, error) {
	if caps == nil || caps.GetSize() == 0 {
		return rerunsink.Caps{}, fmt.Errorf("gstglue: no caps on sample")
	}

	s := caps.GetStructureAt(0)
	if s == nil {
		return rerunsink.Caps{}, fmt.Errorf("gstglue: caps have no structure")
	}

	out := rerunsink.Caps{MediaType: s.Name()}
	if v, err := s.GetValue("format"); err == nil {
		if str, ok := v.(string); ok {
			out.Format = str
		}
	}
	if v, err := s.GetValue("stream-format"); err == nil {
		if str, ok := v.(string); ok {
			out.StreamFormat = str
		}
	}
	if v, err := s.GetValue("width"); err == nil {
		if i, ok := v.(int); ok {
			out.Width = i
		}
	}
	if v, err := s.GetValue("height"); err == nil {
		if i, ok := v.(int); ok {
			out.Height = i
		}
	}
	return out, nil
}

// gstBuffer adapts *gst.Buffer to the core's Buffer surface.
type gstBuffer struct {
	buf *gst.Buffer
}

func (b *gstBuffer) Map() ([]byte, error) {
	info := b.buf.Map(gst.MapRead)
	if info == nil {
		return nil, fmt.Errorf("gstglue: buffer map failed")
	}
	data := info.Bytes()
	if len(data) == 0 {
		b.buf.Unmap()
		return nil, fmt.Errorf("gstglue: empty buffer")
	}
	return data, nil
}

func (b *gstBuffer) Unmap() {
	b.buf.Unmap()
}

// Allocator returns "" because go-gst does not expose the backing
// allocator's name; accelerator (NVMM) pipelines are expected to install a
// SurfaceMapper and an embedder-specific Buffer implementation.
func (b *gstBuffer) Allocator() string {
	return ""
}

func (b *gstBuffer) DTS() time.Duration {
	return b.buf.DecodingTimestamp()
}
