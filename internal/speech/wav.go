package speech

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
)

// Format describes linear PCM samples.
type Format struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
}

// GeminiFormat is what the TTS models return: mono 24 kHz 16-bit.
var GeminiFormat = Format{Channels: 1, SampleRate: 24000, BitsPerSample: 16}

// EncodeWAV prefixes pcm with a 44-byte RIFF/WAVE header.
func EncodeWAV(pcm []byte, f Format) []byte {
	blockAlign := f.Channels * f.BitsPerSample / 8
	var b bytes.Buffer
	b.Grow(44 + len(pcm))
	w := func(v interface{}) { _ = binary.Write(&b, binary.LittleEndian, v) }

	b.WriteString("RIFF")
	w(uint32(36 + len(pcm)))
	b.WriteString("WAVE")

	b.WriteString("fmt ")
	w(uint32(16))
	w(uint16(1)) // PCM
	w(uint16(f.Channels))
	w(uint32(f.SampleRate))
	w(uint32(f.SampleRate * blockAlign))
	w(uint16(blockAlign))
	w(uint16(f.BitsPerSample))

	b.WriteString("data")
	w(uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
