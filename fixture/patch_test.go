package fixture

import (
	"testing"

	"github.com/robmorgan/stagehand/cuelist"
	"github.com/robmorgan/stagehand/dmx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPatchIsValid(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultPatch().Validate())
	require.Len(t, DefaultPatch(), 24)
}

func TestValidateRejectsBadEntries(t *testing.T) {
	t.Parallel()

	testCases := []Patch{
		{{"CC", 24}},
		{{"CC", -1}},
		{{"", 3}},
	}

	for _, p := range testCases {
		require.ErrorIs(t, p.Validate(), ErrInvalidPatch)
	}
}

func TestEncodeFrameScaling(t *testing.T) {
	t.Parallel()

	p := Patch{{"CC", 0}}

	full := p.EncodeFrame(cuelist.Lights{"CC": 100})
	assert.Equal(t, byte(255), full.Channels()[0])

	half := p.EncodeFrame(cuelist.Lights{"CC": 50})
	assert.Equal(t, byte(127), half.Channels()[0])

	none := p.EncodeFrame(cuelist.Lights{})
	assert.Equal(t, make([]byte, 24), none.Channels())
}

func TestEncodeFrameCombinesByMaximum(t *testing.T) {
	t.Parallel()

	lights := cuelist.Lights{"RS": 40, "RAMP": 90, "BSR": 75, "BSL": 10, "CC": 100}
	frame := DefaultPatch().EncodeFrame(lights)

	require.True(t, frame.Valid())
	require.Len(t, frame, dmx.FrameSize)

	channels := frame.Channels()
	require.Len(t, channels, 24)
	assert.Equal(t, byte(229), channels[14])
	assert.Equal(t, byte(191), channels[9])
	assert.Equal(t, byte(255), channels[0])
	assert.Equal(t, byte(255), channels[18])
	assert.Equal(t, byte(0), channels[17])
}

func TestNamesAreUnique(t *testing.T) {
	t.Parallel()

	names := DefaultPatch().Names()
	assert.Len(t, names, 21)
	assert.Equal(t, "CC", names[0])
}
