package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMalformed is wrapped by every Decode failure.
var ErrMalformed = errors.New("audio: malformed wav")

const (
	formatPCM        = 1
	formatFloat      = 3
	formatExtensible = 0xFFFE

	riffHeaderSize = 12
	chunkHeader    = 8
	minFmtSize     = 16
)

type wavFormat struct {
	tag           uint16
	channels      int
	sampleRate    int
	bitsPerSample int
	blockAlign    int
}

// Decode parses a RIFF/WAVE buffer into a normalized mono Waveform.
func Decode(data []byte) (Waveform, error) {
	if len(data) < riffHeaderSize || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Waveform{}, fmt.Errorf("%w: missing RIFF/WAVE header", ErrMalformed)
	}

	var (
		format  *wavFormat
		payload []byte
	)
	for off := riffHeaderSize; off+chunkHeader <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := data[off+chunkHeader:]
		if size > len(body) {
			// Streaming writers leave the size unset; take what is there.
			size = len(body)
		}
		body = body[:size]

		switch id {
		case "fmt ":
			f, err := parseFormat(body)
			if err != nil {
				return Waveform{}, err
			}
			format = f
		case "data":
			payload = body
		}
		off += chunkHeader + size + size%2
		if payload != nil && format != nil {
			break
		}
	}

	if format == nil {
		return Waveform{}, fmt.Errorf("%w: no fmt chunk", ErrMalformed)
	}
	if payload == nil {
		return Waveform{}, fmt.Errorf("%w: no data chunk", ErrMalformed)
	}

	samples, err := decodeSamples(*format, payload)
	if err != nil {
		return Waveform{}, err
	}
	return Waveform{Samples: Normalize(samples), SampleRate: format.sampleRate}, nil
}

// DecodeOrEmpty substitutes an empty 16 kHz waveform when data cannot be
// decoded. The decode error is still returned for logging.
func DecodeOrEmpty(data []byte) (Waveform, error) {
	w, err := Decode(data)
	if err != nil {
		return Empty(DefaultSampleRate), err
	}
	return w, nil
}

// Encode writes w as a mono 32-bit float WAV. A zero sample rate is written
// as DefaultSampleRate.
func Encode(w Waveform) ([]byte, error) {
	rate := w.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	const (
		bits     = 32
		channels = 1
		align    = channels * bits / 8
	)
	dataSize := len(w.Samples) * align

	var buf bytes.Buffer
	buf.Grow(44 + dataSize)
	buf.WriteString("RIFF")
	le := binary.LittleEndian
	write := func(v any) { _ = binary.Write(&buf, le, v) }

	write(uint32(36 + dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	write(uint32(minFmtSize))
	write(uint16(formatFloat))
	write(uint16(channels))
	write(uint32(rate))
	write(uint32(rate * align))
	write(uint16(align))
	write(uint16(bits))
	buf.WriteString("data")
	write(uint32(dataSize))

	sample := make([]byte, 4)
	for _, s := range w.Samples {
		le.PutUint32(sample, math.Float32bits(s))
		buf.Write(sample)
	}
	return buf.Bytes(), nil
}

func parseFormat(body []byte) (*wavFormat, error) {
	if len(body) < minFmtSize {
		return nil, fmt.Errorf("%w: fmt chunk too short", ErrMalformed)
	}
	le := binary.LittleEndian
	f := &wavFormat{
		tag:           le.Uint16(body[0:2]),
		channels:      int(le.Uint16(body[2:4])),
		sampleRate:    int(le.Uint32(body[4:8])),
		blockAlign:    int(le.Uint16(body[12:14])),
		bitsPerSample: int(le.Uint16(body[14:16])),
	}
	// WAVE_FORMAT_EXTENSIBLE carries the real tag in the first two bytes of
	// the sub-format GUID.
	if f.tag == formatExtensible && len(body) >= 26 {
		f.tag = le.Uint16(body[24:26])
	}
	if f.channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrMalformed, f.channels)
	}
	if f.sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrMalformed, f.sampleRate)
	}
	switch {
	case f.tag == formatPCM && (f.bitsPerSample == 8 || f.bitsPerSample == 16 || f.bitsPerSample == 24 || f.bitsPerSample == 32):
	case f.tag == formatFloat && f.bitsPerSample == 32:
	default:
		return nil, fmt.Errorf("%w: unsupported encoding (format %d, %d bits)", ErrMalformed, f.tag, f.bitsPerSample)
	}
	f.blockAlign = f.channels * f.bitsPerSample / 8
	return f, nil
}

func decodeSamples(f wavFormat, payload []byte) ([]float32, error) {
	width := f.bitsPerSample / 8
	frames := len(payload) / f.blockAlign
	if frames == 0 {
		return []float32{}, nil
	}

	read := sampleReader(f.tag, f.bitsPerSample)
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		frame := payload[i*f.blockAlign:]
		var sum float64
		for ch := 0; ch < f.channels; ch++ {
			sum += read(frame[ch*width:])
		}
		v := sum / float64(f.channels)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite sample at frame %d", ErrMalformed, i)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func sampleReader(tag uint16, bits int) func([]byte) float64 {
	le := binary.LittleEndian
	if tag == formatFloat {
		return func(b []byte) float64 { return float64(math.Float32frombits(le.Uint32(b))) }
	}
	switch bits {
	case 8:
		// 8-bit PCM is unsigned.
		return func(b []byte) float64 { return (float64(b[0]) - 128) / 128 }
	case 16:
		return func(b []byte) float64 { return float64(int16(le.Uint16(b))) / 32768 }
	case 24:
		return func(b []byte) float64 {
			v := int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16)
			if v&0x800000 != 0 {
				v |= ^0xFFFFFF
			}
			return float64(v) / 8388608
		}
	default:
		return func(b []byte) float64 { return float64(int32(le.Uint32(b))) / 2147483648 }
	}
}
