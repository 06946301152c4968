package capability

// profiles is the closed profile table. Exactly one entry exists per
// chip family; ProfileFor hands out pointers into it and nothing
// mutates an entry after init.
var profiles = map[ChipFamily]*Profile{
	ChipTrident2: {
		family: ChipTrident2,
		features: map[Feature]bool{
			FeatureSpan:     true,
			FeatureWarmBoot: true,
		},
		maxPortSpeed:    Speed40G,
		cpuStreamTypes:  []StreamType{StreamTypeMulticast},
		portStreamTypes: []StreamType{StreamTypeUnicast},
		defaultQueueCounts: map[StreamType]int{
			StreamTypeUnicast:   0,
			StreamTypeMulticast: 0,
		},
		maxLabelStackDepth: 2,
		mmuSizeBytes:       16 * 1024 * 1024,
		// MAC loopback on a 40G port drops the speed to 10G on this
		// chip, so loop at the PHY instead.
		loopbackMode: LoopbackPHY,
	},

	ChipTomahawk: {
		family: ChipTomahawk,
		features: map[Feature]bool{
			FeatureSpan:            true,
			FeatureECN:             true,
			FeatureL3QoS:           true,
			FeatureWarmBoot:        true,
			FeatureQueueWatermarks: true,
		},
		maxPortSpeed:    Speed100G,
		cpuStreamTypes:  []StreamType{StreamTypeMulticast},
		portStreamTypes: []StreamType{StreamTypeUnicast},
		defaultQueueCounts: map[StreamType]int{
			StreamTypeUnicast:   8,
			StreamTypeMulticast: 10,
		},
		maxLabelStackDepth: 3,
		mmuSizeBytes:       16 * 1024 * 1024,
		loopbackMode:       LoopbackMAC,
	},

	ChipTomahawk3: {
		family: ChipTomahawk3,
		features: map[Feature]bool{
			FeatureSpan:            true,
			FeatureECN:             true,
			FeatureL3QoS:           true,
			FeatureWarmBoot:        true,
			FeatureQueueWatermarks: true,
			FeatureMPLS:            true,
		},
		maxPortSpeed:    Speed400G,
		cpuStreamTypes:  []StreamType{StreamTypeMulticast},
		portStreamTypes: []StreamType{StreamTypeUnicast},
		defaultQueueCounts: map[StreamType]int{
			StreamTypeUnicast:   8,
			StreamTypeMulticast: 4,
		},
		maxLabelStackDepth: 9,
		mmuSizeBytes:       64 * 1024 * 1024,
		loopbackMode:       LoopbackMAC,
	},
}

// ProfileFor returns the immutable profile for a chip family.
func ProfileFor(family ChipFamily) *Profile {
	p, ok := profiles[family]
	if !ok {
		panic("capability: no profile for " + family.String())
	}
	return p
}
