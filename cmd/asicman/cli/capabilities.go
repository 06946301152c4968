package cli

import (
	"fmt"

	"github.com/ferrous-networks/asicman/capability"
)

// CapabilitiesCmd prints the capability profile of the configured chip
// family.
type CapabilitiesCmd struct {
	OutputFlags
}

type capabilityReport struct {
	Family             string   `json:"family"`
	Features           []string `json:"features"`
	MaxPortSpeedMbps   uint32   `json:"max_port_speed_mbps"`
	UnicastQueues      int      `json:"default_unicast_queues"`
	MulticastQueues    int      `json:"default_multicast_queues"`
	MaxLabelStackDepth uint32   `json:"max_label_stack_depth"`
	MMUSizeBytes       uint64   `json:"mmu_size_bytes"`
	LoopbackMode       string   `json:"preferred_loopback_mode"`
}

// Run executes the capabilities command.
func (c *CapabilitiesCmd) Run(cli *CLI) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	family, err := cfg.ChipFamily()
	if err != nil {
		return err
	}
	profile := capability.ProfileFor(family)

	allFeatures := []capability.Feature{
		capability.FeatureSpan,
		capability.FeatureECN,
		capability.FeatureL3QoS,
		capability.FeatureWarmBoot,
		capability.FeatureQueueWatermarks,
		capability.FeatureMPLS,
	}
	var features []string
	for _, f := range allFeatures {
		if profile.Supports(f) {
			features = append(features, f.String())
		}
	}

	uc, err := profile.DefaultQueueCount(capability.StreamTypeUnicast)
	if err != nil {
		return err
	}
	mc, err := profile.DefaultQueueCount(capability.StreamTypeMulticast)
	if err != nil {
		return err
	}

	report := capabilityReport{
		Family:             profile.Family().String(),
		Features:           features,
		MaxPortSpeedMbps:   uint32(profile.MaxPortSpeed()),
		UnicastQueues:      uc,
		MulticastQueues:    mc,
		MaxLabelStackDepth: profile.MaxLabelStackDepth(),
		MMUSizeBytes:       profile.MMUSizeBytes(),
		LoopbackMode:       profile.PreferredLoopbackMode().String(),
	}

	if c.JSON() {
		return printJSON(report)
	}

	fmt.Printf("family:               %s\n", report.Family)
	fmt.Printf("features:             %v\n", report.Features)
	fmt.Printf("max port speed:       %d Mbps\n", report.MaxPortSpeedMbps)
	fmt.Printf("default queues:       %d unicast / %d multicast\n", report.UnicastQueues, report.MulticastQueues)
	fmt.Printf("max label stack:      %d\n", report.MaxLabelStackDepth)
	fmt.Printf("mmu size:             %d bytes\n", report.MMUSizeBytes)
	fmt.Printf("preferred loopback:   %s\n", report.LoopbackMode)
	return nil
}
