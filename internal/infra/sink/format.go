package sink

import "bytes"

// Format is an audio container detected from its leading bytes.
type Format string

const (
	FormatUnknown Format = "unknown"
	FormatMP3     Format = "mp3"
	FormatWAV     Format = "wav"
	FormatFLAC    Format = "flac"
	FormatOgg     Format = "ogg"
	FormatMP4     Format = "mp4" // AAC in an MP4 container; no decoder
	FormatADTS    Format = "aac" // Raw AAC; no decoder
)

// DetectFormat sniffs the container of data. Stored payloads carry no file
// extension, so the header is the only reliable hint.
func DetectFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatOgg
	case len(data) >= 8 && bytes.Equal(data[4:8], []byte("ftyp")):
		return FormatMP4
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		// MPEG frame sync; layer bits 00 mark ADTS rather than an MP3 frame
		if (data[1]>>1)&0x03 == 0 {
			return FormatADTS
		}
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// Decodable reports whether the sink has a decoder for f.
func (f Format) Decodable() bool {
	switch f {
	case FormatMP3, FormatWAV, FormatFLAC, FormatOgg:
		return true
	default:
		return false
	}
}
