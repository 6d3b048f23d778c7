package rerun

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"sync"

	"github.com/google/uuid"
)

// viewerBinary is the viewer executable looked up on PATH by Spawn. The
// viewer reads a recording stream from stdin when invoked with "-".
const viewerBinary = "rerun"

// RecordingStream is a live recording session. A fresh stream has no
// destination: log calls are accepted and silently discarded until exactly
// one of Save, Connect, or Spawn binds one. Binding a destination writes the
// stream header immediately.
//
// The stream is written from both the control thread (lifecycle) and the
// streaming thread (per-frame records); an internal mutex serializes all
// writes.
type RecordingStream struct {
	recordingID string
	storeID     string

	mu       sync.Mutex
	w        io.WriteCloser
	timeline string
	nanos    int64
	hasTime  bool
}

// NewRecordingStream creates a recording session with a fresh store ID.
func NewRecordingStream(recordingID string) *RecordingStream {
	return &RecordingStream{
		recordingID: recordingID,
		storeID:     uuid.NewString(),
	}
}

// RecordingID returns the session's recording identifier.
func (r *RecordingStream) RecordingID() string { return r.recordingID }

// StoreID returns the unique identifier of this stream instance.
func (r *RecordingStream) StoreID() string { return r.storeID }

// Save binds the stream to a file on disk.
func (r *RecordingStream) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rerun: create %s: %w", path, err)
	}
	return r.bind(f)
}

// Connect binds the stream to a remote endpoint over TCP. The dial blocks
// until it resolves or fails; no timeout is applied.
func (r *RecordingStream) Connect(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("rerun: connect %s: %w", addr, err)
	}
	return r.bind(conn)
}

// Spawn starts a local viewer process reading the stream from stdin. The
// viewer deliberately outlives the recording: Close only closes the pipe.
func (r *RecordingStream) Spawn() error {
	bin, err := exec.LookPath(viewerBinary)
	if err != nil {
		return fmt.Errorf("rerun: viewer binary %q not found on PATH: %w", viewerBinary, err)
	}

	cmd := exec.Command(bin, "-")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("rerun: viewer stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("rerun: start viewer: %w", err)
	}
	// Reap the viewer whenever it exits so it cannot linger as a zombie.
	go func() { _ = cmd.Wait() }()

	return r.bind(stdin)
}

// bind installs the destination writer and emits the stream header.
func (r *RecordingStream) bind(w io.WriteCloser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w != nil {
		w.Close()
		return fmt.Errorf("rerun: recording stream already has a destination")
	}

	header := appendHeader(nil, r.recordingID, r.storeID)
	if _, err := w.Write(header); err != nil {
		w.Close()
		return fmt.Errorf("rerun: write stream header: %w", err)
	}
	r.w = w
	return nil
}

// SetTimeNanos sets the stream's logical clock. Subsequent non-static
// records carry this timestamp until it is set again. Negative timestamps
// are ignored; the clock keeps its previous value.
func (r *RecordingStream) SetTimeNanos(timeline string, nanos int64) {
	if nanos < 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeline = timeline
	r.nanos = nanos
	r.hasTime = true
}

// Log appends a record at the given entity path. Without a destination the
// call is a no-op.
func (r *RecordingStream) Log(entity string, rec Record) error {
	return r.log(entity, rec, false)
}

// LogStatic appends a static (timeless) record at the given entity path.
func (r *RecordingStream) LogStatic(entity string, rec Record) error {
	return r.log(entity, rec, true)
}

func (r *RecordingStream) log(entity string, rec Record, static bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return nil
	}

	hasTime := r.hasTime && !static
	frame := appendEnvelope(nil, entity, rec, static, r.timeline, r.nanos, hasTime)
	if _, err := r.w.Write(frame); err != nil {
		return fmt.Errorf("rerun: write record: %w", err)
	}
	return nil
}

// Close releases the destination. Idempotent; a stream with no destination
// closes successfully.
func (r *RecordingStream) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return nil
	}
	err := r.w.Close()
	r.w = nil
	if err != nil {
		return fmt.Errorf("rerun: close destination: %w", err)
	}
	return nil
}
