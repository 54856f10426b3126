package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint64(DefaultMaxStreamsBidi), cfg.Transport.InitialMaxStreamsBidi)
	assert.Equal(t, uint64(DefaultStreamLimitWindowingFraction), cfg.Transport.StreamLimitWindowingFraction)
}

func TestTransportSettingsValidate(t *testing.T) {
	s := DefaultTransportSettings()
	require.NoError(t, s.Validate())

	s.StreamLimitWindowingFraction = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidConfig)

	s = DefaultTransportSettings()
	s.PriorityQueueWritesPerStream = 0
	assert.ErrorIs(t, s.Validate(), ErrInvalidConfig)

	s = DefaultTransportSettings()
	s.AdvertisedInitialBidirectionalStreamGroupsCount = 129
	assert.ErrorIs(t, s.Validate(), ErrInvalidConfig)

	s = DefaultTransportSettings()
	s.AdvertisedInitialUnidirectionalStreamGroupsCount = 128
	assert.NoError(t, s.Validate(), "128 是上限内的合法值")
}

func TestXskConfigValidate(t *testing.T) {
	c := DefaultXskConfig()
	require.NoError(t, c.Validate())

	c.NumFrames = 1000 // 非 2 的幂
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	c = DefaultXskConfig()
	c.FrameSize = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	c = DefaultXskConfig()
	c.BatchSize = c.NumFrames + 1
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}
