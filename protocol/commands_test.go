package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHandshake(t *testing.T) {
	t.Parallel()

	frame := BuildHandshake()
	assert.Equal(t, []byte{0x52, 0xA3, 0x4D, 0xF6}, frame)

	// callers may not corrupt the shared sequence
	frame[0] = 0
	assert.Equal(t, byte(0x52), HandshakeSequence[0])
}

func TestBuildPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		pageSize int
		errMsg   string
	}{
		{
			name:     "full page",
			data:     bytes.Repeat([]byte{0xFF, 0x3F}, 32),
			pageSize: DefaultPageSize,
		},
		{
			name:     "short page",
			data:     []byte{0x80, 0x31},
			pageSize: DefaultPageSize,
			errMsg:   "page must be exactly 64 bytes, got 2",
		},
		{
			name:     "nil data",
			data:     nil,
			pageSize: DefaultPageSize,
			errMsg:   "page must be exactly 64 bytes, got 0",
		},
		{
			name:     "zero page size",
			data:     []byte{},
			pageSize: 0,
			errMsg:   "page size must be between 1 and 4096",
		},
		{
			name:     "oversized page",
			data:     make([]byte, MaxPageSize+2),
			pageSize: MaxPageSize + 2,
			errMsg:   "page size must be between 1 and 4096",
		},
		{
			name:     "odd page size",
			data:     make([]byte, 3),
			pageSize: 3,
			errMsg:   "whole number of words",
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			frame, err := BuildPage(tt.data, tt.pageSize)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, frame)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.data, frame)
		})
	}
}

func TestBuildPageCopiesData(t *testing.T) {
	t.Parallel()

	data := make([]byte, 4)
	frame, err := BuildPage(data, 4)
	require.NoError(t, err)

	data[0] = 0xAA
	assert.Equal(t, byte(0), frame[0])
}
