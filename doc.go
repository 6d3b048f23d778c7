// Package rerunsink logs video frames from a GStreamer pipeline to a Rerun
// viewer for visualization and telemetry.
//
// The package is the pure-Go core of the sink: it classifies incoming
// buffers (raw pixels vs encoded bitstream, host vs accelerator memory),
// normalizes raw frames into contiguous host-memory buffers, announces the
// codec of encoded streams once per session, and resolves exactly one output
// destination per session (spawned viewer, file on disk, or remote address).
// The GStreamer-facing glue lives in internal/gstglue and is the only part
// of the repository that links against the GStreamer runtime.
//
// # Quick Start
//
// Wire the sink to an appsink at the end of a decode pipeline:
//
//	cfg := rerunsink.DefaultConfig()
//	cfg.RecordingID = "camera-1"
//	cfg.ImagePath = "camera/front/frame"
//
//	sink := rerunsink.New(cfg)
//	if err := sink.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer sink.Stop()
//
//	gstglue.Attach(appsink, sink)
//
// Each negotiated caps change is passed alongside the buffer on every render
// call, so the sink always interprets a buffer with the capabilities that
// were current when it was produced.
//
// # Destinations
//
// Exactly one destination is active per session, resolved at Start:
//
//   - OutputFile set: the recording is persisted to that path.
//   - GRPCAddress set to a non-default value: the recording is streamed to
//     that remote endpoint.
//   - Both set: Start fails; the two options are mutually exclusive.
//   - Neither set and SpawnViewer true (the default): a local viewer process
//     is spawned and fed the recording.
//   - Neither set and SpawnViewer false: the session is valid but inert;
//     every log call is silently skipped.
//
// # Supported formats
//
// Raw: RGB, RGBA, GRAY8, NV12, I420 in host memory; NV12 in accelerator
// (NVMM) memory when a SurfaceMapper is installed. Encoded: H.264 and H.265
// access units, forwarded without transcoding.
//
// # Threading
//
// GStreamer delivers render calls on the streaming thread and start/stop on
// a control thread, serialized by the state-change protocol. The sink does
// not rely on that contract alone: session state is guarded by an internal
// mutex, so a render racing a stop degrades to a rejected frame instead of
// undefined behavior.
package rerunsink
