package decode

import (
	"bytes"

	"github.com/JhonEdwinVR/Meet-recording-Notes/pkg/audio/codec/mp3"
)

func isWAV(head []byte) bool {
	return len(head) >= 12 && string(head[:4]) == "RIFF" && string(head[8:12]) == "WAVE"
}

func isMP3(head []byte) bool {
	if bytes.HasPrefix(head, []byte("ID3")) {
		return true
	}
	_, err := mp3.ParseFrameHeader(head)
	return err == nil
}

func isOgg(head []byte) bool {
	return bytes.HasPrefix(head, []byte("OggS"))
}

func isPlatform(head []byte) bool {
	switch {
	case bytes.HasPrefix(head, []byte{0x1A, 0x45, 0xDF, 0xA3}): // EBML (WebM, Matroska)
		return true
	case bytes.HasPrefix(head, []byte("fLaC")):
		return true
	case len(head) >= 8 && string(head[4:8]) == "ftyp": // ISO BMFF (MP4, M4A, 3GP)
		return true
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xF6 == 0xF0: // AAC ADTS
		return true
	case bytes.HasPrefix(head, []byte("FORM")) && len(head) >= 12 &&
		(string(head[8:12]) == "AIFF" || string(head[8:12]) == "AIFC"):
		return true
	case bytes.HasPrefix(head, []byte("caff")):
		return true
	}
	return false
}

// Sniff returns the name of the codec whose magic matches head in the
// default registry, or "" if none does.
func Sniff(head []byte) string {
	r := Default()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c := r.sniffLocked(head); c != nil {
		return c.Name
	}
	return ""
}
