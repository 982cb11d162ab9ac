// internal/ade9000/registers.go

// Package ade9000 implements the SPI register protocol of the Analog Devices
// ADE9000 three-phase energy metering IC and a small driver on top of it.
package ade9000

import "fmt"

// Address is a 12-bit register address (CMD_HDR[15:4]).
type Address uint16

// MaxAddress is the highest address a command header can carry.
const MaxAddress Address = 0xFFF

// Register map. Addresses 0x480..0x4FE are 16-bit registers, everything
// else is 32-bit.
const (
	// Common
	VERSION  Address = 0x4FE
	RUN      Address = 0x480 // write 1 to start measurements
	ACCMODE  Address = 0x492 // bit 8 SELFREQ: 0 = 50 Hz, 1 = 60 Hz
	NIRMS    Address = 0x266 // neutral current rms
	EP_CFG   Address = 0x4B0 // energy and power accumulation configuration
	EGY_TIME Address = 0x4B2 // energy accumulation update time
	STATUS0  Address = 0x402
	MASK0    Address = 0x405

	// Phase A
	AIRMS      Address = 0x20C
	AVRMS      Address = 0x20D
	AWATT      Address = 0x210
	AVAR       Address = 0x211
	AVA        Address = 0x212
	APF        Address = 0x216
	AWATTHR_HI Address = 0x2E7

	// Phase B
	BIRMS      Address = 0x22C
	BVRMS      Address = 0x22D
	BWATT      Address = 0x230
	BVAR       Address = 0x231
	BVA        Address = 0x232
	BPF        Address = 0x236
	BWATTHR_HI Address = 0x323

	// Phase C
	CIRMS      Address = 0x24C
	CVRMS      Address = 0x24D
	CWATT      Address = 0x250
	CVAR       Address = 0x251
	CVA        Address = 0x252
	CPF        Address = 0x256
	CWATTHR_HI Address = 0x35F
)

// STATUS0 / MASK0 bits.
const (
	EGYRDY uint32 = 1 << 0
)

// ACCMODE bits.
const (
	accmodeSelFreq60 uint32 = 1 << 8
)

var registerNames = map[Address]string{
	VERSION:    "VERSION",
	RUN:        "RUN",
	ACCMODE:    "ACCMODE",
	NIRMS:      "NIRMS",
	EP_CFG:     "EP_CFG",
	EGY_TIME:   "EGY_TIME",
	STATUS0:    "STATUS0",
	MASK0:      "MASK0",
	AIRMS:      "AIRMS",
	AVRMS:      "AVRMS",
	AWATT:      "AWATT",
	AVAR:       "AVAR",
	AVA:        "AVA",
	APF:        "APF",
	AWATTHR_HI: "AWATTHR_HI",
	BIRMS:      "BIRMS",
	BVRMS:      "BVRMS",
	BWATT:      "BWATT",
	BVAR:       "BVAR",
	BVA:        "BVA",
	BPF:        "BPF",
	BWATTHR_HI: "BWATTHR_HI",
	CIRMS:      "CIRMS",
	CVRMS:      "CVRMS",
	CWATT:      "CWATT",
	CVAR:       "CVAR",
	CVA:        "CVA",
	CPF:        "CPF",
	CWATTHR_HI: "CWATTHR_HI",
}

// Known reports whether addr is part of the documented register map.
func Known(addr Address) bool {
	_, ok := registerNames[addr]
	return ok
}

func (a Address) String() string {
	if n, ok := registerNames[a]; ok {
		return n
	}
	return fmt.Sprintf("0x%03X", uint16(a))
}

// ---- CHANNELS ----

// Channel is one of the three measurement ports.
type Channel int

const (
	ChannelA Channel = iota
	ChannelB
	ChannelC
)

// NumChannels is the number of measurement ports.
const NumChannels = 3

// Channels lists the ports in sampling order.
var Channels = [NumChannels]Channel{ChannelA, ChannelB, ChannelC}

func (c Channel) String() string {
	switch c {
	case ChannelA:
		return "A"
	case ChannelB:
		return "B"
	case ChannelC:
		return "C"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// Valid reports whether c is A, B or C.
func (c Channel) Valid() bool {
	return c >= ChannelA && c <= ChannelC
}

// ChannelRegisters are the measurement registers of one port.
type ChannelRegisters struct {
	IRMS   Address
	VRMS   Address
	WATT   Address
	VAR    Address
	VA     Address
	WATTHR Address
}

var channelRegisters = [NumChannels]ChannelRegisters{
	{IRMS: AIRMS, VRMS: AVRMS, WATT: AWATT, VAR: AVAR, VA: AVA, WATTHR: AWATTHR_HI},
	{IRMS: BIRMS, VRMS: BVRMS, WATT: BWATT, VAR: BVAR, VA: BVA, WATTHR: BWATTHR_HI},
	{IRMS: CIRMS, VRMS: CVRMS, WATT: CWATT, VAR: CVAR, VA: CVA, WATTHR: CWATTHR_HI},
}

// Registers returns the register set of c. It panics on an invalid channel.
func (c Channel) Registers() ChannelRegisters {
	if !c.Valid() {
		panic(fmt.Sprintf("ade9000: invalid channel %d", int(c)))
	}
	return channelRegisters[c]
}
