package flash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myriadhero/tea-shop/pkg/view"
)

func TestCodecRoundTrip(t *testing.T) {
	c := NewCodec([]byte("0123456789abcdef"), "flash", false)
	v, err := c.Encode(view.Flash{Kind: view.FlashSuccess, Message: "Added to cart."})
	require.NoError(t, err)

	f, err := c.Decode(v)
	require.NoError(t, err)
	assert.Equal(t, view.FlashSuccess, f.Kind)
	assert.Equal(t, "Added to cart.", f.Message)
}

func TestCodecRejects(t *testing.T) {
	c := NewCodec([]byte("0123456789abcdef"), "flash", false)

	blank, err := c.Encode(view.Flash{Kind: view.FlashInfo, Message: "  "})
	require.NoError(t, err)
	_, err = c.Decode(blank)
	assert.ErrorIs(t, err, ErrInvalid)

	other := NewCodec([]byte("another-secret!!"), "flash", false)
	v, err := other.Encode(view.Flash{Kind: view.FlashInfo, Message: "hi"})
	require.NoError(t, err)
	_, err = c.Decode(v)
	assert.ErrorIs(t, err, ErrInvalid)
}
