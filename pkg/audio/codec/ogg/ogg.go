// Package ogg reads and writes Ogg encapsulated Opus streams.
//
// Page synchronization and packet reassembly use libogg through cgo.
// Writing is done in Go and produces one packet per page.
package ogg

/*
#cgo pkg-config: ogg
#include <ogg/ogg.h>
#include <stdlib.h>
#include <string.h>

static ogg_sync_state* alloc_sync_state() {
    ogg_sync_state* state = (ogg_sync_state*)calloc(1, sizeof(ogg_sync_state));
    if (state) {
        ogg_sync_init(state);
    }
    return state;
}

static void free_sync_state(ogg_sync_state* state) {
    if (state) {
        ogg_sync_clear(state);
        free(state);
    }
}

static ogg_stream_state* alloc_stream_state(int serialno) {
    ogg_stream_state* state = (ogg_stream_state*)calloc(1, sizeof(ogg_stream_state));
    if (state) {
        ogg_stream_init(state, serialno);
    }
    return state;
}

static void free_stream_state(ogg_stream_state* state) {
    if (state) {
        ogg_stream_clear(state);
        free(state);
    }
}

static void copy_packet_data(ogg_packet *packet, unsigned char *dst) {
    memcpy(dst, packet->packet, packet->bytes);
}
*/
import "C"
import (
	"errors"
	"fmt"
	"io"
	"unsafe"
)

// Page header type flags.
const (
	Continued = 0x01
	BOS       = 0x02
	EOS       = 0x04
)

var (
	// ErrSync is returned when the input contains no Ogg pages.
	ErrSync = errors.New("ogg: no pages found")

	// ErrHole is returned when a stream is missing pages.
	ErrHole = errors.New("ogg: hole in data")
)

// Packet is one reassembled Ogg packet.
type Packet struct {
	Data []byte

	// Granule is the granule position of the page that completed the
	// packet, or -1 when no page ended on this packet.
	Granule int64

	SerialNo int32
	BOS      bool
	EOS      bool
}

// Reader extracts packets from a multiplexed or chained Ogg stream.
// Close must be called to release the native state.
type Reader struct {
	r       io.Reader
	sync    *C.ogg_sync_state
	streams map[int32]*C.ogg_stream_state
	page    C.ogg_page
	packet  C.ogg_packet
	buf     []byte
	current *C.ogg_stream_state
	serial  int32
	pages   int
	eof     bool
}

// NewReader creates a packet reader over r.
func NewReader(r io.Reader) (*Reader, error) {
	s := C.alloc_sync_state()
	if s == nil {
		return nil, errors.New("ogg: failed to allocate sync state")
	}
	return &Reader{
		r:       r,
		sync:    s,
		streams: make(map[int32]*C.ogg_stream_state),
		buf:     make([]byte, 4096),
	}, nil
}

// Close releases all native state. It is safe to call more than once.
func (r *Reader) Close() error {
	for serial, s := range r.streams {
		C.free_stream_state(s)
		delete(r.streams, serial)
	}
	if r.sync != nil {
		C.free_sync_state(r.sync)
		r.sync = nil
	}
	r.current = nil
	return nil
}

// ReadPacket returns the next packet in stream order. It returns io.EOF
// after the last packet, or ErrSync if the input held no pages at all.
func (r *Reader) ReadPacket() (*Packet, error) {
	if r.sync == nil {
		return nil, errors.New("ogg: reader is closed")
	}
	for {
		if r.current != nil {
			switch C.ogg_stream_packetout(r.current, &r.packet) {
			case 1:
				return r.takePacket(), nil
			case -1:
				return nil, fmt.Errorf("%w: stream %d", ErrHole, r.serial)
			}
		}
		if err := r.nextPage(); err != nil {
			return nil, err
		}
	}
}

func (r *Reader) takePacket() *Packet {
	p := &Packet{
		Data:     make([]byte, int(r.packet.bytes)),
		Granule:  int64(r.packet.granulepos),
		SerialNo: r.serial,
		BOS:      r.packet.b_o_s != 0,
		EOS:      r.packet.e_o_s != 0,
	}
	if len(p.Data) > 0 {
		C.copy_packet_data(&r.packet, (*C.uchar)(unsafe.Pointer(&p.Data[0])))
	}
	return p
}

func (r *Reader) nextPage() error {
	for {
		switch C.ogg_sync_pageout(r.sync, &r.page) {
		case 1:
			r.pages++
			return r.submitPage()
		case -1:
			// Skipped unsynced bytes; keep scanning.
			continue
		}

		if r.eof {
			if r.pages == 0 {
				return ErrSync
			}
			return io.EOF
		}
		n, err := r.r.Read(r.buf)
		if n > 0 {
			dst := C.ogg_sync_buffer(r.sync, C.long(n))
			if dst == nil {
				return errors.New("ogg: sync buffer allocation failed")
			}
			copy(unsafe.Slice((*byte)(unsafe.Pointer(dst)), n), r.buf[:n])
			if C.ogg_sync_wrote(r.sync, C.long(n)) != 0 {
				return errors.New("ogg: sync buffer overflow")
			}
		}
		if errors.Is(err, io.EOF) {
			r.eof = true
		} else if err != nil {
			return err
		}
	}
}

func (r *Reader) submitPage() error {
	serial := int32(C.ogg_page_serialno(&r.page))
	s := r.streams[serial]
	if C.ogg_page_bos(&r.page) != 0 && s != nil {
		C.free_stream_state(s)
		s = nil
	}
	if s == nil {
		s = C.alloc_stream_state(C.int(serial))
		if s == nil {
			return errors.New("ogg: failed to allocate stream state")
		}
		r.streams[serial] = s
	}
	if C.ogg_stream_pagein(s, &r.page) != 0 {
		return fmt.Errorf("ogg: stream %d rejected page", serial)
	}
	r.current = s
	r.serial = serial
	return nil
}
