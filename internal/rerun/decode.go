package rerun

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/quic-go/quic-go/quicvarint"
)

// Header is the decoded stream header.
type Header struct {
	Version     uint64
	RecordingID string
	StoreID     string
}

// Envelope is one decoded record with its logging context.
type Envelope struct {
	Entity    string
	Static    bool
	Timeline  string
	TimeNanos int64
	Record    Record
}

// DecodeStream reads back a full recording stream, header and all records,
// until EOF. Used to inspect persisted recordings and by the receiving side
// of a remote destination.
func DecodeStream(r io.Reader) (Header, []Envelope, error) {
	br := bufio.NewReader(r)

	hdr, err := decodeHeader(br)
	if err != nil {
		return Header{}, nil, err
	}

	var envs []Envelope
	for {
		env, err := decodeEnvelope(br)
		if errors.Is(err, io.EOF) {
			return hdr, envs, nil
		}
		if err != nil {
			return hdr, envs, err
		}
		envs = append(envs, env)
	}
}

func decodeHeader(br *bufio.Reader) (Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return Header{}, fmt.Errorf("rerun: read stream magic: %w", err)
	}
	if magic != streamMagic {
		return Header{}, fmt.Errorf("rerun: bad stream magic %q", magic[:])
	}

	version, err := quicvarint.Read(br)
	if err != nil {
		return Header{}, fmt.Errorf("rerun: read version: %w", err)
	}
	if version != streamVersion {
		return Header{}, fmt.Errorf("rerun: unsupported stream version %d", version)
	}

	recID, err := readString(br)
	if err != nil {
		return Header{}, fmt.Errorf("rerun: read recording id: %w", err)
	}
	storeID, err := readString(br)
	if err != nil {
		return Header{}, fmt.Errorf("rerun: read store id: %w", err)
	}

	return Header{Version: version, RecordingID: recID, StoreID: storeID}, nil
}

func decodeEnvelope(br *bufio.Reader) (Envelope, error) {
	bodyLen, err := quicvarint.Read(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Envelope{}, io.EOF
		}
		return Envelope{}, fmt.Errorf("rerun: read envelope length: %w", err)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(br, body); err != nil {
		return Envelope{}, fmt.Errorf("rerun: read envelope body: %w", err)
	}

	bb := bufio.NewReader(bytes.NewReader(body))
	kindByte, err := bb.ReadByte()
	if err != nil {
		return Envelope{}, fmt.Errorf("rerun: read record kind: %w", err)
	}
	flags, err := bb.ReadByte()
	if err != nil {
		return Envelope{}, fmt.Errorf("rerun: read record flags: %w", err)
	}

	var env Envelope
	env.Static = flags&flagStatic != 0

	if flags&flagHasTime != 0 {
		if env.Timeline, err = readString(bb); err != nil {
			return Envelope{}, fmt.Errorf("rerun: read timeline: %w", err)
		}
		nanos, err := quicvarint.Read(bb)
		if err != nil {
			return Envelope{}, fmt.Errorf("rerun: read time: %w", err)
		}
		env.TimeNanos = int64(nanos)
	}

	if env.Entity, err = readString(bb); err != nil {
		return Envelope{}, fmt.Errorf("rerun: read entity path: %w", err)
	}

	if env.Record, err = decodePayload(recordKind(kindByte), bb); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

func decodePayload(kind recordKind, br *bufio.Reader) (Record, error) {
	switch kind {
	case kindImage:
		pf, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("rerun: read pixel format: %w", err)
		}
		channels, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("rerun: read channels: %w", err)
		}
		width, err := quicvarint.Read(br)
		if err != nil {
			return nil, fmt.Errorf("rerun: read width: %w", err)
		}
		height, err := quicvarint.Read(br)
		if err != nil {
			return nil, fmt.Errorf("rerun: read height: %w", err)
		}
		data, err := readBytes(br)
		if err != nil {
			return nil, fmt.Errorf("rerun: read image data: %w", err)
		}
		return Image{
			PixelFormat: PixelFormat(pf),
			Channels:    int(channels),
			Width:       int(width),
			Height:      int(height),
			Data:        data,
		}, nil

	case kindVideoCodec:
		codec, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("rerun: read codec: %w", err)
		}
		return VideoStreamCodec{Codec: VideoCodec(codec)}, nil

	case kindVideoSample:
		data, err := readBytes(br)
		if err != nil {
			return nil, fmt.Errorf("rerun: read sample data: %w", err)
		}
		return VideoSample{Data: data}, nil

	default:
		return nil, fmt.Errorf("rerun: unknown record kind %d", kind)
	}
}

func readString(br *bufio.Reader) (string, error) {
	b, err := readBytes(br)
	return string(b), err
}

func readBytes(br *bufio.Reader) ([]byte, error) {
	n, err := quicvarint.Read(br)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(br, b); err != nil {
		return nil, err
	}
	return b, nil
}
