package rerunsink

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RidgeRun/gst-rerunsink/internal/rerun"
)

// Sink is one sink instance: it owns the recording-stream handle and the
// per-session state. The host framework serializes render calls on one
// streaming thread and lifecycle calls on a control thread; the internal
// mutex makes the sink robust even when that contract is violated, turning
// a racing render into a rejected frame.
type Sink struct {
	mu sync.Mutex

	// property surface; read at Start, snapshotted into active
	cfg Config

	// session state, valid while initialized
	active      Config
	rec         *rerun.RecordingStream
	initialized bool
	codecSent   bool
	codec       Codec

	mapper SurfaceMapper
}

// New creates a sink with the given configuration. String properties left
// empty take their defaults (see DefaultConfig). Destination conflicts are
// not checked here: the destination is resolved once per session at Start,
// so property writes between sessions can fix a conflicting configuration.
func New(cfg Config) *Sink {
	return &Sink{cfg: cfg.normalized()}
}

// SetConfig replaces the property surface. An active session is unaffected;
// the new values take effect on the next Start.
func (s *Sink) SetConfig(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg.normalized()
}

// Config returns the current property surface.
func (s *Sink) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// SetSurfaceMapper installs the accelerator extraction capability. With a
// mapper installed, buffers backed by known accelerator allocators go
// through the pitch-corrected surface extraction path; without one they are
// treated as unsupported. Install before Start.
func (s *Sink) SetSurfaceMapper(m SurfaceMapper) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapper = m
}

// Start opens the session and resolves its single destination:
//
//  1. output-file and a custom grpc-address together are a configuration
//     error; nothing is opened or connected
//  2. output-file persists the recording to disk
//  3. a custom grpc-address connects to the remote endpoint
//  4. spawn-viewer spawns a local viewer process
//  5. none of the above is a valid inert session: log calls are skipped
//
// Start is idempotent: when a session is already initialized it returns nil
// without re-resolving the destination. On any resolver failure the partial
// session is discarded and the sink stays stopped.
func (s *Sink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	active := s.cfg
	rec := rerun.NewRecordingStream(active.RecordingID)

	hasOutputFile := active.OutputFile != ""
	hasCustomRemote := active.GRPCAddress != "" && active.GRPCAddress != DefaultGRPCAddress

	switch {
	case hasOutputFile && hasCustomRemote:
		slog.Error("rerunsink: conflicting output options, use only one output method at a time",
			"output_file", active.OutputFile,
			"grpc_address", active.GRPCAddress,
		)
		return ErrConflictingDestinations

	case hasOutputFile:
		slog.Info("rerunsink: saving to disk", "output_file", active.OutputFile)
		if err := rec.Save(active.OutputFile); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrDestinationOpen, active.OutputFile, err)
		}

	case hasCustomRemote:
		slog.Info("rerunsink: connecting to remote viewer", "grpc_address", active.GRPCAddress)
		if err := rec.Connect(active.GRPCAddress); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrDestinationConnect, active.GRPCAddress, err)
		}

	case active.SpawnViewer:
		slog.Info("rerunsink: spawning viewer")
		if err := rec.Spawn(); err != nil {
			return fmt.Errorf("%w: %v", ErrSpawnFailed, err)
		}

	default:
		// Valid: a session without a visible sink. Worth a warning
		// because every frame will be silently discarded.
		slog.Warn("rerunsink: no output method enabled: spawn-viewer is false and no output-file or custom grpc-address specified")
	}

	s.active = active
	s.rec = rec
	s.codecSent = false
	s.codec = CodecNone
	s.initialized = true

	slog.Info("rerunsink: session started", "recording_id", active.RecordingID)
	return nil
}

// Stop ends the session. It always succeeds: the destination handle is
// released and per-session flags are reset unconditionally, even if no
// destination was ever resolved.
func (s *Sink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec != nil {
		if err := s.rec.Close(); err != nil {
			slog.Warn("rerunsink: error closing recording stream", "error", err)
		}
		slog.Info("rerunsink: session stopped", "recording_id", s.active.RecordingID)
	}
	s.rec = nil
	s.initialized = false
	s.codecSent = false
	s.codec = CodecNone
	return nil
}

// SetCaps accepts newly negotiated capabilities. Informational: the glue
// passes the current caps with every render call, so nothing is cached here.
func (s *Sink) SetCaps(caps Caps) error {
	slog.Info("rerunsink: caps negotiated",
		"media_type", caps.MediaType,
		"format", caps.Format,
		"width", caps.Width,
		"height", caps.Height,
	)
	return nil
}

// Render handles one buffer: classify, then either forward the encoded
// sample or extract, build, and log the raw frame. Per-frame failures drop
// the frame and leave the session running; only the flow return tells the
// host something went wrong.
func (s *Sink) Render(buf Buffer, caps Caps) FlowReturn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || s.rec == nil {
		slog.Warn("rerunsink: render on a stopped sink, dropping frame")
		return FlowError
	}

	class, err := Classify(caps, buf, s.mapper != nil)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			slog.Warn("rerunsink: unsupported format", "error", err)
			return FlowNotNegotiated
		}
		slog.Error("rerunsink: failed to classify buffer", "error", err)
		return FlowError
	}

	if class.Kind == ClassEncoded {
		return s.renderEncoded(buf, class.Codec, caps.StreamFormat)
	}

	var frame *NormalizedFrame
	switch class.Kind {
	case ClassRawAccelerator:
		frame, err = extractAccelerator(buf, s.mapper, class.Format, caps.Width, caps.Height)
	default:
		frame, err = extractHost(buf, class.Format, caps.Width, caps.Height)
	}
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			slog.Warn("rerunsink: unsupported format", "error", err)
			return FlowNotNegotiated
		}
		slog.Error("rerunsink: failed to extract frame", "error", err)
		return FlowError
	}

	slog.Debug("rerunsink: frame extracted",
		"format", frame.Format.String(),
		"width", frame.Width,
		"height", frame.Height,
		"size_bytes", len(frame.Data),
	)

	image, err := buildImage(frame)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			slog.Warn("rerunsink: unsupported format",
				"error", err,
				"width", frame.Width,
				"height", frame.Height,
			)
			return FlowNotNegotiated
		}
		slog.Error("rerunsink: failed to build image record", "error", err)
		return FlowError
	}

	if s.active.ImagePath == "" {
		slog.Warn("rerunsink: image-path not set, skipping frame logging")
		return FlowOK
	}

	if err := s.rec.Log(s.active.ImagePath, image); err != nil {
		slog.Error("rerunsink: failed to log image",
			"error", err,
			"image_path", s.active.ImagePath,
		)
		return FlowError
	}

	return FlowOK
}
