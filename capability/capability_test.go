package capability_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferrous-networks/asicman"
	"github.com/ferrous-networks/asicman/capability"
)

var allFamilies = []capability.ChipFamily{
	capability.ChipTrident2,
	capability.ChipTomahawk,
	capability.ChipTomahawk3,
}

func TestParseChipFamily(t *testing.T) {
	for _, family := range allFamilies {
		parsed, err := capability.ParseChipFamily(family.String())
		require.NoError(t, err)
		assert.Equal(t, family, parsed)
	}

	parsed, err := capability.ParseChipFamily("  Tomahawk3 ")
	require.NoError(t, err)
	assert.Equal(t, capability.ChipTomahawk3, parsed)

	_, err = capability.ParseChipFamily("trident9")
	require.Error(t, err)
}

func TestFeatureMatrix(t *testing.T) {
	td2 := capability.ProfileFor(capability.ChipTrident2)
	assert.True(t, td2.Supports(capability.FeatureSpan))
	assert.True(t, td2.Supports(capability.FeatureWarmBoot))
	assert.False(t, td2.Supports(capability.FeatureECN))
	assert.False(t, td2.Supports(capability.FeatureMPLS))

	th := capability.ProfileFor(capability.ChipTomahawk)
	assert.True(t, th.Supports(capability.FeatureECN))
	assert.True(t, th.Supports(capability.FeatureQueueWatermarks))
	assert.False(t, th.Supports(capability.FeatureMPLS))

	th3 := capability.ProfileFor(capability.ChipTomahawk3)
	assert.True(t, th3.Supports(capability.FeatureMPLS))
}

func TestFixedConstants(t *testing.T) {
	td2 := capability.ProfileFor(capability.ChipTrident2)
	assert.Equal(t, capability.Speed40G, td2.MaxPortSpeed())
	assert.Equal(t, uint32(2), td2.MaxLabelStackDepth())
	assert.Equal(t, uint64(16*1024*1024), td2.MMUSizeBytes())
	assert.Equal(t, capability.LoopbackPHY, td2.PreferredLoopbackMode())

	th3 := capability.ProfileFor(capability.ChipTomahawk3)
	assert.Equal(t, capability.Speed400G, th3.MaxPortSpeed())
	assert.Equal(t, uint32(9), th3.MaxLabelStackDepth())
	assert.Equal(t, uint64(64*1024*1024), th3.MMUSizeBytes())
	assert.Equal(t, capability.LoopbackMAC, th3.PreferredLoopbackMode())
}

func TestQueueStreamTypesByPortKind(t *testing.T) {
	for _, family := range allFamilies {
		p := capability.ProfileFor(family)

		assert.Equal(t, []capability.StreamType{capability.StreamTypeUnicast}, p.QueueStreamTypes(false))
		assert.Equal(t, []capability.StreamType{capability.StreamTypeMulticast}, p.QueueStreamTypes(true))

		assert.True(t, p.SupportsStreamType(capability.StreamTypeUnicast, false))
		assert.False(t, p.SupportsStreamType(capability.StreamTypeMulticast, false))
		assert.True(t, p.SupportsStreamType(capability.StreamTypeMulticast, true))
		assert.False(t, p.SupportsStreamType(capability.StreamTypeUnicast, true))
	}
}

func TestQueueStreamTypesReturnsCopy(t *testing.T) {
	p := capability.ProfileFor(capability.ChipTomahawk)
	got := p.QueueStreamTypes(false)
	got[0] = capability.StreamTypeAll
	assert.Equal(t, []capability.StreamType{capability.StreamTypeUnicast}, p.QueueStreamTypes(false))
}

func TestDefaultQueueCounts(t *testing.T) {
	cases := []struct {
		family capability.ChipFamily
		uc, mc int
	}{
		{capability.ChipTrident2, 0, 0},
		{capability.ChipTomahawk, 8, 10},
		{capability.ChipTomahawk3, 8, 4},
	}
	for _, tc := range cases {
		p := capability.ProfileFor(tc.family)
		uc, err := p.DefaultQueueCount(capability.StreamTypeUnicast)
		require.NoError(t, err)
		assert.Equal(t, tc.uc, uc, tc.family.String())
		mc, err := p.DefaultQueueCount(capability.StreamTypeMulticast)
		require.NoError(t, err)
		assert.Equal(t, tc.mc, mc, tc.family.String())
	}
}

// The umbrella stream type has no single default queue count on any
// chip generation; asking for one is always a configuration error.
func TestDefaultQueueCountAllStreamTypeAlwaysFails(t *testing.T) {
	for _, family := range allFamilies {
		_, err := capability.ProfileFor(family).DefaultQueueCount(capability.StreamTypeAll)
		var cfgErr asicman.ConfigurationError
		require.True(t, errors.As(err, &cfgErr), family.String())
	}
}

func TestProfileForUnknownFamilyPanics(t *testing.T) {
	require.Panics(t, func() {
		capability.ProfileFor(capability.ChipFamily(99))
	})
}
