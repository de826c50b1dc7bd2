package securebuf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duskvault/duskvault/internal/keyring/securebuf"
)

func TestNewAllocatesZeroedBuf(t *testing.T) {
	t.Parallel()
	b := securebuf.New(32)
	defer b.Destroy()

	assert.NotNil(t, b.Bytes())
	assert.Len(t, b.Bytes(), 32)
	assert.Equal(t, make([]byte, 32), b.Bytes())
}

func TestDestroyZeroesAndClears(t *testing.T) {
	t.Parallel()
	b := securebuf.New(32)

	data := b.Bytes()
	for i := range data {
		data[i] = byte(i + 1)
	}
	assert.Equal(t, byte(1), data[0])

	b.Destroy()

	assert.Nil(t, b.Bytes())
	assert.Equal(t, 0, b.Len())
}

func TestDoubleDestroyDoesNotPanic(t *testing.T) {
	t.Parallel()
	b := securebuf.New(16)
	b.Destroy()
	assert.NotPanics(t, func() { b.Destroy() })
}

func TestFromBytesCopies(t *testing.T) {
	t.Parallel()
	original := []byte("a 64 byte seed would normally go here as raw bytes")
	b := securebuf.FromBytes(original)
	defer b.Destroy()

	assert.Equal(t, original, b.Bytes())

	// Mutating the Buf must not alias the source slice.
	b.Bytes()[0] = 0xFF
	assert.NotEqual(t, original[0], b.Bytes()[0])
}

func TestZeroSizeBuf(t *testing.T) {
	t.Parallel()
	b := securebuf.New(0)
	defer b.Destroy()
	assert.Empty(t, b.Bytes())
}
