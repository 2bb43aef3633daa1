package profile

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/moffa90/go-picboot/bootloader"
	"github.com/moffa90/go-picboot/ihex"
	"github.com/moffa90/go-picboot/protocol"
	"github.com/moffa90/go-picboot/simulator"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	p := Default()
	require.NoError(t, p.Validate())
	assert.Equal(t, 2*time.Second, p.ReadTimeout())
	assert.Equal(t, protocol.MarkerHandshakeAck, p.Ack())

	cfg := p.SerialConfig()
	assert.Equal(t, 115200, cfg.BaudRate)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	input := `
name = "PIC16F15213"
app_end = 0x1000
handshake_ack = "e"
load_complete_address = 0x0FFE
`
	p, err := Decode(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "PIC16F15213", p.Name)
	assert.Equal(t, uint32(0x1000), p.AppEnd)
	assert.Equal(t, protocol.MarkerHandshakeAckAlt, p.Ack())

	// untouched keys keep their defaults
	assert.Equal(t, uint32(0x0300), p.AppStart)
	assert.Equal(t, uint16(0x3FFF), p.FillWord)
	assert.Equal(t, 64, p.PageSize)
	assert.Equal(t, uint16(0x14B7), p.LoadCompleteWord)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{
			name:   "unknown key",
			input:  `page_sise = 32`,
			errMsg: "failed to unmarshal profile",
		},
		{
			name:   "malformed toml",
			input:  `name = `,
			errMsg: "failed to unmarshal profile",
		},
		{
			name:   "empty name",
			input:  `name = ""`,
			errMsg: "name is required",
		},
		{
			name:   "odd page size",
			input:  `page_size = 33`,
			errMsg: "page_size must be a whole number of words",
		},
		{
			name:   "end below start",
			input:  "app_start = 0x2000\napp_end = 0x0300",
			errMsg: "app_end must be above app_start",
		},
		{
			name:   "unaligned start",
			input:  `app_start = 0x0310`,
			errMsg: "app_start 0x310 must be a multiple of page_size",
		},
		{
			name:   "load-complete word outside area",
			input:  `load_complete_address = 0x2000`,
			errMsg: "load_complete_address 0x2000 must be a word address inside the application area",
		},
		{
			name:   "long ack",
			input:  `handshake_ack = "EE"`,
			errMsg: "handshake_ack must be exactly 1 character",
		},
		{
			name:   "zero timeout",
			input:  `read_timeout_ms = 0`,
			errMsg: "read_timeout_ms must be greater than 0",
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidationErrorFields(t *testing.T) {
	t.Parallel()

	p := Default()
	p.Name = ""
	p.BaudRate = 0

	err := p.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "name", verr.Fields[0].Field)
	assert.Equal(t, "baud_rate", verr.Fields[1].Field)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/picboot/board.toml", []byte(`page_size = 32`), 0o644))

	p, err := LoadFile(fs, "/etc/picboot/board.toml")
	require.NoError(t, err)
	assert.Equal(t, 32, p.PageSize)

	_, err = LoadFile(fs, "/missing.toml")
	assert.ErrorContains(t, err, "failed to read profile")

	require.NoError(t, afero.WriteFile(fs, "/bad.toml", []byte(`page_size = 3`), 0o644))
	_, err = LoadFile(fs, "/bad.toml")
	assert.ErrorContains(t, err, "/bad.toml")
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	want := Default()
	want.Name = "custom"
	want.PageSize = 32

	var buf bytes.Buffer
	require.NoError(t, want.Encode(&buf))
	assert.Contains(t, buf.String(), "page_size = 32")

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	p := Default()

	img := ihex.New()
	img.Set(0x0000, 0xAA) // reset vector area, bootloader owned
	img.Set(0x0300, 0x80)
	img.Set(0x0301, 0x31)
	img.Set(0x0304, 0x12) // low byte only
	img.Set(0x1FFE, 0xB7)
	img.Set(0x1FFF, 0x14)
	img.Set(0x2000, 0xFF)  // past the application area
	img.Set(0x1000E, 0x0F) // configuration words

	warnings := p.Prepare(img)
	assert.Empty(t, warnings)

	low, high, err := img.Bounds()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0300), low)
	assert.Equal(t, uint32(0x1FFF), high)
	assert.Equal(t, 0x2000-0x0300-1, img.Len())

	v, _ := img.Get(0x0300)
	assert.Equal(t, byte(0x80), v)
	v, _ = img.Get(0x0302)
	assert.Equal(t, byte(0xFF), v)
	v, _ = img.Get(0x0303)
	assert.Equal(t, byte(0x3F), v)
	v, _ = img.Get(0x0304)
	assert.Equal(t, byte(0x12), v)
	_, ok := img.Get(0x0305)
	assert.False(t, ok, "word with a defined low byte is left alone")
}

func TestPrepareWarnings(t *testing.T) {
	t.Parallel()

	p := Default()

	warnings := p.Prepare(ihex.New())
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "no data in the application area")
	assert.Contains(t, warnings[1], "load-complete word 0x14B7 not found at 0x1FFE")

	p.LoadCompleteWord = 0
	img := ihex.New()
	img.Set(0x0300, 0x01)
	assert.Empty(t, p.Prepare(img))
}

func TestPropertyPreparedImageIsPageAligned(t *testing.T) {
	t.Parallel()

	p := Default()
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOf(rapid.Uint32Range(0, 0x1800)).Draw(t, "words")

		img := ihex.New()
		for _, w := range words {
			img.Set(2*w, byte(w))
			img.Set(2*w+1, byte(w>>8)&0x3F)
		}
		p.Prepare(img)

		low, high, err := img.Bounds()
		if err != nil {
			t.Fatalf("prepared image is empty: %v", err)
		}
		if low != p.AppStart || high != p.AppEnd-1 {
			t.Fatalf("bounds 0x%X-0x%X, want 0x%X-0x%X", low, high, p.AppStart, p.AppEnd-1)
		}
		if (high-low+1)%uint32(p.PageSize) != 0 {
			t.Fatalf("span 0x%X is not a whole number of pages", high-low+1)
		}
		if _, err := img.SubArray(low, high-low+1); err != nil {
			t.Fatalf("prepared image has a gap: %v", err)
		}
	})
}

func TestProfileDrivesDownload(t *testing.T) {
	t.Parallel()

	p := Default()
	p.Name = "small"
	p.AppEnd = 0x0400
	p.PageSize = 32
	p.LoadCompleteAddress = 0x03FE
	p.HandshakeAck = "e"
	require.NoError(t, p.Validate())

	img := ihex.New()
	img.Set(0x0300, 0x80)
	img.Set(0x0301, 0x31)
	img.Set(0x03FE, 0xB7)
	img.Set(0x03FF, 0x14)
	require.Empty(t, p.Prepare(img))

	dev := simulator.New(p.SimulatorOptions()...)
	sess := bootloader.New(dev, p.SessionOptions()...)
	require.NoError(t, sess.Download(context.Background(), img))

	assert.Equal(t, 8, dev.PagesWritten())
	flash, err := dev.Flash().SubArray(0x0300, 0x100)
	require.NoError(t, err)
	want, err := img.SubArray(0x0300, 0x100)
	require.NoError(t, err)
	assert.Equal(t, want, flash)
}
