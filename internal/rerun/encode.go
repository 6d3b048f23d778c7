package rerun

import (
	"github.com/quic-go/quic-go/quicvarint"
)

// Wire format of a recording stream. All destinations (file, remote
// endpoint, spawned viewer stdin) receive the same byte stream:
//
//	header:   magic "RRLG" | varint version | string recording-id | string store-id
//	envelope: varint body-length | body
//	body:     kind byte | flags byte |
//	          [string timeline | varint time-nanos]   (flagHasTime)
//	          string entity-path | payload
//
// Strings are varint-length-prefixed. Integers use QUIC variable-length
// encoding throughout.
var streamMagic = [4]byte{'R', 'R', 'L', 'G'}

const streamVersion = 1

type recordKind uint8

const (
	kindImage       recordKind = 1
	kindVideoCodec  recordKind = 2
	kindVideoSample recordKind = 3
)

const (
	flagStatic  = 0x01
	flagHasTime = 0x02
)

func appendString(b []byte, s string) []byte {
	b = quicvarint.Append(b, uint64(len(s)))
	return append(b, s...)
}

func appendBytes(b, data []byte) []byte {
	b = quicvarint.Append(b, uint64(len(data)))
	return append(b, data...)
}

// appendHeader encodes the stream header written once per destination.
func appendHeader(b []byte, recordingID, storeID string) []byte {
	b = append(b, streamMagic[:]...)
	b = quicvarint.Append(b, streamVersion)
	b = appendString(b, recordingID)
	b = appendString(b, storeID)
	return b
}

// appendEnvelope encodes one record envelope, length prefix included.
func appendEnvelope(b []byte, entity string, rec Record, static bool, timeline string, timeNanos int64, hasTime bool) []byte {
	var body []byte
	body = append(body, byte(rec.kind()))

	var flags byte
	if static {
		flags |= flagStatic
	}
	if hasTime {
		flags |= flagHasTime
	}
	body = append(body, flags)

	if hasTime {
		body = appendString(body, timeline)
		body = quicvarint.Append(body, uint64(timeNanos))
	}

	body = appendString(body, entity)
	body = rec.appendPayload(body)

	b = quicvarint.Append(b, uint64(len(body)))
	return append(b, body...)
}

func (i Image) kind() recordKind { return kindImage }

func (i Image) appendPayload(b []byte) []byte {
	b = append(b, byte(i.PixelFormat))
	b = append(b, byte(i.Channels))
	b = quicvarint.Append(b, uint64(i.Width))
	b = quicvarint.Append(b, uint64(i.Height))
	return appendBytes(b, i.Data)
}

func (v VideoStreamCodec) kind() recordKind { return kindVideoCodec }

func (v VideoStreamCodec) appendPayload(b []byte) []byte {
	return append(b, byte(v.Codec))
}

func (v VideoSample) kind() recordKind { return kindVideoSample }

func (v VideoSample) appendPayload(b []byte) []byte {
	return appendBytes(b, v.Data)
}
