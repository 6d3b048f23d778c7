package rerunsink

import (
	"log/slog"

	"github.com/RidgeRun/gst-rerunsink/internal/rerun"
)

// renderEncoded forwards one compressed access unit to the video entity
// path. The codec is declared with a static record exactly once per session
// before the first sample; the sink's data model treats codec metadata as a
// declaration, not something repeated per sample. Every sample carrying a
// valid decode timestamp advances the session's logical clock.
//
// Caller holds s.mu.
func (s *Sink) renderEncoded(buf Buffer, codec Codec, streamFormat string) FlowReturn {
	if s.active.VideoPath == "" {
		slog.Warn("rerunsink: video-path not set, skipping frame logging")
		return FlowOK
	}

	if s.codecSent && codec != s.codec {
		// A stream that switches codec mid-session is an unsupported
		// transition: the announced codec is immutable.
		slog.Error("rerunsink: dropping encoded frame",
			"error", ErrCodecChanged,
			"announced", s.codec.String(),
			"got", codec.String(),
		)
		return FlowError
	}

	if !s.codecSent {
		decl := rerun.NewVideoStreamCodec(codecToRerun(codec))
		if err := s.rec.LogStatic(s.active.VideoPath, decl); err != nil {
			slog.Error("rerunsink: failed to declare codec",
				"error", err,
				"codec", codec.String(),
				"video_path", s.active.VideoPath,
			)
			return FlowError
		}
		s.codec = codec
		s.codecSent = true
		slog.Info("rerunsink: codec declared",
			"codec", codec.String(),
			"stream_format", streamFormat,
			"video_path", s.active.VideoPath,
		)
	}

	data, err := buf.Map()
	if err != nil {
		slog.Error("rerunsink: failed to map encoded buffer", "error", err)
		return FlowError
	}
	// The sample borrows the mapped bytes; the log call consumes them
	// synchronously, so the mapping is released right after.
	defer buf.Unmap()

	sample := EncodedSample{Codec: codec, DTS: buf.DTS(), Data: data}

	// An unset decode timestamp (GST_CLOCK_TIME_NONE) surfaces as a
	// negative duration; the logical clock keeps its previous value.
	if sample.DTS >= 0 {
		s.rec.SetTimeNanos("time", sample.DTS.Nanoseconds())
	}
	if err := s.rec.Log(s.active.VideoPath, rerun.NewVideoSample(sample.Data)); err != nil {
		slog.Error("rerunsink: failed to log video sample",
			"error", err,
			"size_bytes", len(sample.Data),
		)
		return FlowError
	}

	return FlowOK
}
