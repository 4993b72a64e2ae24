package sink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{name: "id3 tagged mp3", data: []byte("ID3\x04\x00\x00"), want: FormatMP3},
		{name: "bare mp3 frame", data: []byte{0xFF, 0xFB, 0x90, 0x00}, want: FormatMP3},
		{name: "adts aac", data: []byte{0xFF, 0xF1, 0x50, 0x80}, want: FormatADTS},
		{name: "wav", data: []byte("RIFF\x24\x00\x00\x00WAVEfmt "), want: FormatWAV},
		{name: "riff without wave", data: []byte("RIFF\x24\x00\x00\x00AVI "), want: FormatUnknown},
		{name: "flac", data: []byte("fLaC\x00\x00"), want: FormatFLAC},
		{name: "ogg", data: []byte("OggS\x00\x02"), want: FormatOgg},
		{name: "m4a", data: []byte("\x00\x00\x00\x20ftypM4A "), want: FormatMP4},
		{name: "text", data: []byte("hello world"), want: FormatUnknown},
		{name: "empty", data: nil, want: FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.data))
		})
	}
}

func TestFormat_Decodable(t *testing.T) {
	assert.True(t, FormatMP3.Decodable())
	assert.True(t, FormatWAV.Decodable())
	assert.True(t, FormatFLAC.Decodable())
	assert.True(t, FormatOgg.Decodable())
	assert.False(t, FormatMP4.Decodable())
	assert.False(t, FormatADTS.Decodable())
	assert.False(t, FormatUnknown.Decodable())
}

func TestFetcher_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.audio")
	require.NoError(t, os.WriteFile(path, []byte("ID3data"), 0o600))

	f := newFetcher(time.Second, 0)
	data, err := f.fetch(context.Background(), "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3data"), data)

	_, err = f.fetch(context.Background(), "file://"+filepath.ToSlash(path)+".missing")
	assert.Error(t, err)
}

func TestFetcher_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("OggS"))
	}))
	defer server.Close()

	f := newFetcher(time.Second, 0)
	data, err := f.fetch(context.Background(), server.URL+"/preview")
	require.NoError(t, err)
	assert.Equal(t, []byte("OggS"), data)

	_, err = f.fetch(context.Background(), server.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetcher_UnsupportedScheme(t *testing.T) {
	f := newFetcher(time.Second, 0)
	_, err := f.fetch(context.Background(), "ftp://example.com/a.mp3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source scheme")
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{RetryMax: -1}.withDefaults()
	assert.Equal(t, DefaultTimeUpdateInterval, cfg.TimeUpdateInterval)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 0, cfg.RetryMax)
}
