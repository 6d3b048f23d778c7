package rerunsink

import "errors"

// Per-frame errors. The frame is dropped and the session continues.
var (
	// ErrMissingDimensions is returned when encoded caps lack a positive
	// width or height.
	ErrMissingDimensions = errors.New("rerunsink: encoded caps missing width or height")

	// ErrUnsupportedFormat is returned for pixel formats outside the
	// supported set; render reports not-negotiated.
	ErrUnsupportedFormat = errors.New("rerunsink: unsupported pixel format")

	// ErrFrameSize is returned when a frame's byte length does not match
	// its format and dimensions.
	ErrFrameSize = errors.New("rerunsink: frame size does not match format")

	// ErrBufferMap is returned when a host buffer cannot be mapped.
	ErrBufferMap = errors.New("rerunsink: failed to map buffer")

	// ErrSurfaceMap is returned when an accelerator surface cannot be
	// mapped for CPU access.
	ErrSurfaceMap = errors.New("rerunsink: failed to map accelerator surface")

	// ErrSurfaceSync is returned when a device-to-host cache sync fails.
	ErrSurfaceSync = errors.New("rerunsink: failed to sync accelerator surface for CPU")

	// ErrNilSurface is returned when a mapped surface lacks required
	// plane data.
	ErrNilSurface = errors.New("rerunsink: accelerator surface plane is absent")

	// ErrCodecChanged is returned when an encoded stream switches codec
	// after the session's codec was announced.
	ErrCodecChanged = errors.New("rerunsink: codec changed mid-session")
)

// Session-start errors. The session never becomes running and any partially
// constructed state is discarded.
var (
	// ErrConflictingDestinations is returned when both an output file and
	// a custom remote address are configured.
	ErrConflictingDestinations = errors.New("rerunsink: conflicting destinations: both output-file and custom grpc-address are set")

	// ErrDestinationOpen is returned when the output file cannot be opened.
	ErrDestinationOpen = errors.New("rerunsink: failed to open output file")

	// ErrDestinationConnect is returned when the remote endpoint cannot
	// be reached.
	ErrDestinationConnect = errors.New("rerunsink: failed to connect to remote endpoint")

	// ErrSpawnFailed is returned when the local viewer process cannot be
	// spawned.
	ErrSpawnFailed = errors.New("rerunsink: failed to spawn viewer")
)
