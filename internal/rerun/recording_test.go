package rerun

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.rrl")

	rec := NewRecordingStream("test-recording")
	require.NoError(t, rec.Save(path))

	require.NoError(t, rec.LogStatic("camera/video", NewVideoStreamCodec(VideoCodecH264)))
	rec.SetTimeNanos("time", 42_000_000)
	require.NoError(t, rec.Log("camera/video", NewVideoSample([]byte{0, 0, 0, 1, 0x65})))
	require.NoError(t, rec.Log("camera/frame", ImageFromRGB24(make([]byte, 2*2*3), 2, 2)))
	require.NoError(t, rec.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	hdr, envs, err := DecodeStream(f)
	require.NoError(t, err)
	assert.Equal(t, "test-recording", hdr.RecordingID)
	assert.Equal(t, rec.StoreID(), hdr.StoreID)
	assert.EqualValues(t, streamVersion, hdr.Version)
	require.Len(t, envs, 3)

	// Static codec declaration carries no timestamp.
	assert.True(t, envs[0].Static)
	assert.Empty(t, envs[0].Timeline)
	decl, ok := envs[0].Record.(VideoStreamCodec)
	require.True(t, ok)
	assert.Equal(t, VideoCodecH264, decl.Codec)

	// The sample carries the logical clock set before it.
	assert.False(t, envs[1].Static)
	assert.Equal(t, "time", envs[1].Timeline)
	assert.EqualValues(t, 42_000_000, envs[1].TimeNanos)
	sample, ok := envs[1].Record.(VideoSample)
	require.True(t, ok)
	assert.Equal(t, []byte{0, 0, 0, 1, 0x65}, sample.Data)

	img, ok := envs[2].Record.(Image)
	require.True(t, ok)
	assert.Equal(t, 3, img.Channels)
	assert.Equal(t, PixelFormatNone, img.PixelFormat)
}

func TestConnectStreamsRecords(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			received <- nil
			return
		}
		defer conn.Close()
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(conn)
		received <- buf.Bytes()
	}()

	rec := NewRecordingStream("remote-recording")
	require.NoError(t, rec.Connect(ln.Addr().String()))
	require.NoError(t, rec.Log("camera/frame", ImageFromGrayscale8(make([]byte, 4), 2, 2)))
	require.NoError(t, rec.Close())

	data := <-received
	require.NotNil(t, data)

	hdr, envs, err := DecodeStream(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "remote-recording", hdr.RecordingID)
	require.Len(t, envs, 1)
	img, ok := envs[0].Record.(Image)
	require.True(t, ok)
	assert.Equal(t, 1, img.Channels)
}

func TestConnectRefused(t *testing.T) {
	// Reserve a port and close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	rec := NewRecordingStream("r")
	assert.Error(t, rec.Connect(addr))
}

func TestSpawnViewerNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	rec := NewRecordingStream("r")
	assert.Error(t, rec.Spawn())
}

func TestNegativeTimeIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.rrl")
	rec := NewRecordingStream("r")
	require.NoError(t, rec.Save(path))

	// A negative clock value (an unset upstream timestamp) must not
	// disturb the stream; the record goes out untimed.
	rec.SetTimeNanos("time", -1)
	require.NoError(t, rec.Log("e", NewVideoSample([]byte{1})))
	require.NoError(t, rec.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, envs, err := DecodeStream(f)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	assert.Empty(t, envs[0].Timeline)
	assert.Zero(t, envs[0].TimeNanos)
}

func TestInertStream(t *testing.T) {
	// Without a destination all operations succeed and do nothing.
	rec := NewRecordingStream("inert")
	rec.SetTimeNanos("time", 1)
	assert.NoError(t, rec.Log("e", NewVideoSample([]byte{1})))
	assert.NoError(t, rec.LogStatic("e", NewVideoStreamCodec(VideoCodecH265)))
	assert.NoError(t, rec.Close())
	assert.NoError(t, rec.Close())
}

func TestBindRejectsSecondDestination(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecordingStream("r")
	require.NoError(t, rec.Save(filepath.Join(dir, "a.rrl")))
	assert.Error(t, rec.Save(filepath.Join(dir, "b.rrl")))
	require.NoError(t, rec.Close())
}

func TestSaveBadPath(t *testing.T) {
	rec := NewRecordingStream("r")
	assert.Error(t, rec.Save(filepath.Join(t.TempDir(), "missing", "recording.rrl")))
}

func TestFreshStoreIDs(t *testing.T) {
	a := NewRecordingStream("same-id")
	b := NewRecordingStream("same-id")
	assert.Equal(t, "same-id", a.RecordingID())
	assert.NotEqual(t, a.StoreID(), b.StoreID())
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, _, err := DecodeStream(bytes.NewReader([]byte("NOPE....")))
	assert.Error(t, err)
}

func TestDecodeEmptyStream(t *testing.T) {
	rec := NewRecordingStream("empty")
	path := filepath.Join(t.TempDir(), "empty.rrl")
	require.NoError(t, rec.Save(path))
	require.NoError(t, rec.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	hdr, envs, err := DecodeStream(f)
	require.NoError(t, err)
	assert.Equal(t, "empty", hdr.RecordingID)
	assert.Empty(t, envs)
}
