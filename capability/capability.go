// Package capability models per-chip-family feature support and fixed
// constants. Managers query a Profile instead of branching on chip
// identity, so one manager implementation adapts across chip
// generations.
//
// Profiles are immutable: each is selected from a fixed table keyed by
// chip family at construction time, and every query is a pure function
// of the selected profile.
package capability

import (
	"fmt"
	"strings"

	"github.com/ferrous-networks/asicman"
)

// ChipFamily identifies one ASIC generation.
type ChipFamily int

const (
	ChipTrident2 ChipFamily = iota
	ChipTomahawk
	ChipTomahawk3
)

func (c ChipFamily) String() string {
	switch c {
	case ChipTrident2:
		return "trident2"
	case ChipTomahawk:
		return "tomahawk"
	case ChipTomahawk3:
		return "tomahawk3"
	default:
		return fmt.Sprintf("chip(%d)", int(c))
	}
}

// ParseChipFamily parses a chip family name, case-insensitively.
func ParseChipFamily(s string) (ChipFamily, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trident2":
		return ChipTrident2, nil
	case "tomahawk":
		return ChipTomahawk, nil
	case "tomahawk3":
		return ChipTomahawk3, nil
	default:
		return ChipTrident2, fmt.Errorf("unknown chip family: %q", s)
	}
}

// Feature is a chip capability managers probe before constructing
// attribute sets that depend on it.
type Feature int

const (
	FeatureSpan Feature = iota
	FeatureECN
	FeatureL3QoS
	FeatureWarmBoot
	FeatureQueueWatermarks
	FeatureMPLS
)

func (f Feature) String() string {
	switch f {
	case FeatureSpan:
		return "span"
	case FeatureECN:
		return "ecn"
	case FeatureL3QoS:
		return "l3-qos"
	case FeatureWarmBoot:
		return "warm-boot"
	case FeatureQueueWatermarks:
		return "queue-watermarks"
	case FeatureMPLS:
		return "mpls"
	default:
		return fmt.Sprintf("feature(%d)", int(f))
	}
}

// StreamType classifies a queue's traffic stream.
type StreamType int

const (
	StreamTypeUnicast StreamType = iota
	StreamTypeMulticast
	// StreamTypeAll is the umbrella value covering both stream types.
	// It is valid in queue-type queries but has no single default
	// queue count.
	StreamTypeAll
)

func (s StreamType) String() string {
	switch s {
	case StreamTypeUnicast:
		return "unicast"
	case StreamTypeMulticast:
		return "multicast"
	case StreamTypeAll:
		return "all"
	default:
		return fmt.Sprintf("stream-type(%d)", int(s))
	}
}

// PortSpeed is a port speed in Mbps.
type PortSpeed uint32

const (
	Speed1G   PortSpeed = 1_000
	Speed10G  PortSpeed = 10_000
	Speed25G  PortSpeed = 25_000
	Speed40G  PortSpeed = 40_000
	Speed50G  PortSpeed = 50_000
	Speed100G PortSpeed = 100_000
	Speed400G PortSpeed = 400_000
)

// LoopbackMode is a port loopback point.
type LoopbackMode int

const (
	LoopbackNone LoopbackMode = iota
	LoopbackPHY
	LoopbackMAC
)

func (m LoopbackMode) String() string {
	switch m {
	case LoopbackNone:
		return "none"
	case LoopbackPHY:
		return "phy"
	case LoopbackMAC:
		return "mac"
	default:
		return fmt.Sprintf("loopback(%d)", int(m))
	}
}

// Profile is one chip family's capability table. All fields are fixed
// at construction; queries never mutate.
type Profile struct {
	family             ChipFamily
	features           map[Feature]bool
	maxPortSpeed       PortSpeed
	cpuStreamTypes     []StreamType
	portStreamTypes    []StreamType
	defaultQueueCounts map[StreamType]int
	maxLabelStackDepth uint32
	mmuSizeBytes       uint64
	loopbackMode       LoopbackMode
}

// Family returns the chip family the profile describes.
func (p *Profile) Family() ChipFamily { return p.family }

// Supports reports whether the chip implements a feature.
func (p *Profile) Supports(f Feature) bool { return p.features[f] }

// MaxPortSpeed returns the fastest configurable port speed.
func (p *Profile) MaxPortSpeed() PortSpeed { return p.maxPortSpeed }

// QueueStreamTypes returns the stream types supported on a port's
// queues. CPU-facing ports differ from front-panel ports.
func (p *Profile) QueueStreamTypes(cpu bool) []StreamType {
	var src []StreamType
	if cpu {
		src = p.cpuStreamTypes
	} else {
		src = p.portStreamTypes
	}
	out := make([]StreamType, len(src))
	copy(out, src)
	return out
}

// SupportsStreamType reports whether a stream type is available on the
// given port kind.
func (p *Profile) SupportsStreamType(st StreamType, cpu bool) bool {
	for _, have := range p.QueueStreamTypes(cpu) {
		if have == st {
			return true
		}
	}
	return false
}

// DefaultQueueCount returns the default number of port queues for a
// stream type. StreamTypeAll has no single default and is always a
// configuration error.
func (p *Profile) DefaultQueueCount(st StreamType) (int, error) {
	if st == StreamTypeAll {
		return 0, asicman.NewConfigurationError("%s: no default queue count for stream type %s", p.family, st)
	}
	n, ok := p.defaultQueueCounts[st]
	if !ok {
		return 0, asicman.NewConfigurationError("%s: unknown stream type %s", p.family, st)
	}
	return n, nil
}

// MaxLabelStackDepth returns the deepest MPLS label stack the chip can
// push.
func (p *Profile) MaxLabelStackDepth() uint32 { return p.maxLabelStackDepth }

// MMUSizeBytes returns the packet-buffer memory size.
func (p *Profile) MMUSizeBytes() uint64 { return p.mmuSizeBytes }

// PreferredLoopbackMode returns the loopback point managers should
// configure when a port is administratively looped.
func (p *Profile) PreferredLoopbackMode() LoopbackMode { return p.loopbackMode }
