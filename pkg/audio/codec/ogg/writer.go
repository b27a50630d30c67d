package ogg

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
)

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = errors.New("ogg: writer is closed")

var crcTable = func() *[256]uint32 {
	var t [256]uint32
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return &t
}()

func crc32(b []byte) uint32 {
	var crc uint32
	for _, v := range b {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^v]
	}
	return crc
}

// OpusWriter writes an Ogg Opus stream with one packet per page.
type OpusWriter struct {
	mu      sync.Mutex
	w       io.Writer
	serial  uint32
	seq     uint32
	pending []byte
	granule int64
	closed  bool
}

// NewOpusWriter writes the OpusHead and OpusTags pages and returns a writer
// for audio packets.
func NewOpusWriter(w io.Writer, serial uint32, head OpusHead) (*OpusWriter, error) {
	hb, err := head.MarshalBinary()
	if err != nil {
		return nil, err
	}
	ow := &OpusWriter{w: w, serial: serial}
	if err := ow.writePage(hb, 0, BOS); err != nil {
		return nil, err
	}

	vendor := "meetnote"
	tags := make([]byte, 8+4+len(vendor)+4)
	copy(tags, opusTagsMagic)
	binary.LittleEndian.PutUint32(tags[8:], uint32(len(vendor)))
	copy(tags[12:], vendor)
	if err := ow.writePage(tags, 0, 0); err != nil {
		return nil, err
	}
	return ow, nil
}

// WritePacket queues an audio packet whose last sample ends at granule
// (48 kHz samples, pre-skip included). The packet is written when the next
// one arrives or on Close, which marks it end-of-stream.
func (w *OpusWriter) WritePacket(frame []byte, granule int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWriterClosed
	}
	if w.pending != nil {
		if err := w.writePage(w.pending, w.granule, 0); err != nil {
			return err
		}
	}
	w.pending = append([]byte(nil), frame...)
	w.granule = granule
	return nil
}

// Close writes the last packet with the end-of-stream flag.
func (w *OpusWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	data := w.pending
	if data == nil {
		data = []byte{}
	}
	return w.writePage(data, w.granule, EOS)
}

func (w *OpusWriter) writePage(packet []byte, granule int64, flags byte) error {
	var lacing []byte
	n := len(packet)
	for n >= 255 {
		lacing = append(lacing, 255)
		n -= 255
	}
	lacing = append(lacing, byte(n))
	if len(lacing) > 255 {
		return errors.New("ogg: packet too large for one page")
	}

	page := make([]byte, 27+len(lacing)+len(packet))
	copy(page, "OggS")
	page[5] = flags
	binary.LittleEndian.PutUint64(page[6:], uint64(granule))
	binary.LittleEndian.PutUint32(page[14:], w.serial)
	binary.LittleEndian.PutUint32(page[18:], w.seq)
	page[26] = byte(len(lacing))
	copy(page[27:], lacing)
	copy(page[27+len(lacing):], packet)
	binary.LittleEndian.PutUint32(page[22:], crc32(page))

	w.seq++
	_, err := w.w.Write(page)
	return err
}
