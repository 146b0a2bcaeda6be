package iso7816

import "fmt"

// swRange gives a meaning to SW2 values lo..hi. When counter is set the
// low nibble of SW2 is appended as a counter value.
type swRange struct {
	lo, hi  byte
	meaning string
	counter bool
}

// swGroup holds every meaning sharing one SW1. A group without fallback
// only describes the SW2 values it lists.
type swGroup struct {
	state    ProcessingState
	exact    map[byte]string
	ranges   []swRange
	fallback string
}

// residual covers status words no group describes (e.g. proprietary '9XYZ').
var residual = swGroup{
	state:    CheckingError,
	fallback: "Functions in CLA not supported (further qualification in SW2)",
}

// statusTable is ISO/IEC 7816-4:2013 tables 5 and 6, keyed by SW1.
var statusTable = map[byte]swGroup{
	0x90: {
		state: Normal,
		exact: map[byte]string{0x00: "No further qualification"},
	},
	0x61: {
		state:    Normal,
		fallback: "SW2 encodes the number of data bytes still available",
	},
	0x62: {
		state: Warning,
		exact: map[byte]string{
			0x00: "No information given",
			0x81: "Part of returned data may be corrupted",
			0x82: "End of file or record reached before reading Ne bytes",
			0x83: "Selected file deactivated",
			0x84: "File control information not formatted according to ISO7816-4 5.3.3",
			0x85: "Selected file in termination state",
			0x86: "No input data available from a sensor on the card",
		},
		ranges:   []swRange{{lo: 0x02, hi: 0x80, meaning: "Triggering by the card"}},
		fallback: "State of non-volatile memory is unchanged (further qualification in SW2)",
	},
	0x63: {
		state: Warning,
		exact: map[byte]string{
			0x00: "No information given",
			0x81: "File filled up by the last write",
		},
		ranges:   []swRange{{lo: 0xC0, hi: 0xCF, meaning: "Counter", counter: true}},
		fallback: "State of non-volatile memory has changed (further qualification in SW2)",
	},
	0x64: {
		state: ExecutionError,
		exact: map[byte]string{
			0x00: "Execution error",
			0x01: "Immediate response required by the card",
		},
		ranges:   []swRange{{lo: 0x02, hi: 0x80, meaning: "Triggering by the card"}},
		fallback: "State of non-volatile memory is unchanged (further qualification in SW2)",
	},
	0x65: {
		state: ExecutionError,
		exact: map[byte]string{
			0x00: "No information given",
			0x81: "Memory failure",
		},
		fallback: "State of non-volatile memory has changed (further qualification in SW2)",
	},
	0x66: {
		state:    ExecutionError,
		fallback: "Security-related issues",
	},
	0x67: {
		state:    CheckingError,
		exact:    map[byte]string{0x00: "Wrong length; no further indication"},
		fallback: "Wrong length (further qualification in SW2)",
	},
	0x68: {
		state: CheckingError,
		exact: map[byte]string{
			0x00: "No information given",
			0x81: "Logical channel not supported",
			0x82: "Secure messaging not supported",
			0x83: "Last command of the chain expected",
			0x84: "Command chaining not supported",
		},
		fallback: "Functions in CLA not supported (further qualification in SW2)",
	},
	0x69: {
		state: CheckingError,
		exact: map[byte]string{
			0x00: "No information given",
			0x81: "Command incompatible with file structure",
			0x82: "Security status not satisfied",
			0x83: "Authentication method blocked",
			0x84: "Reference data not usable",
			0x85: "Conditions of use not satisfied",
			0x86: "Command not allowed (no current EF)",
			0x87: "Expected secure messaging data objects missing",
			0x88: "Incorrect secure messaging data objects",
		},
		fallback: "Command not allowed (further qualification in SW2)",
	},
	0x6A: {
		state: CheckingError,
		exact: map[byte]string{
			0x00: "No information given",
			0x80: "Incorrect parameters in the command data field",
			0x81: "Function not supported",
			0x82: "File or application not found",
			0x83: "Record not found",
			0x84: "Not enough memory space in the file",
			0x85: "Nc inconsistent with TLV structure",
			0x86: "Incorrect parameters P1-P2",
			0x87: "Nc inconsistent with parameters P1-P2",
			0x88: "Referenced data or reference data not found (exact meaning depending on the command)",
			0x89: "File already exists",
			0x8A: "DF name already exists",
		},
		fallback: "Wrong parameters P1-P2 (further qualification in SW2)",
	},
	0x6B: {
		state:    CheckingError,
		exact:    map[byte]string{0x00: "Wrong parameters P1-P2"},
		fallback: "Wrong parameters P1-P2 (further qualification in SW2)",
	},
	0x6C: {
		state:    CheckingError,
		fallback: "Wrong Le field; SW2 encodes the exact number of available data bytes",
	},
	0x6D: {
		state:    CheckingError,
		exact:    map[byte]string{0x00: "Instruction code not supported or invalid"},
		fallback: "Instruction code not supported or invalid (further qualification in SW2)",
	},
	0x6E: {
		state:    CheckingError,
		exact:    map[byte]string{0x00: "Class not supported"},
		fallback: "Class not supported (further qualification in SW2)",
	},
	0x6F: {
		state:    CheckingError,
		exact:    map[byte]string{0x00: "No precise diagnosis"},
		fallback: "No precise diagnosis (further qualification in SW2)",
	},
}

// classify looks sw up in statusTable. It is total: unknown values resolve
// to the residual group.
func classify(sw StatusWord) (ProcessingState, string) {
	group, ok := statusTable[sw.SW1()]
	if !ok {
		group = residual
	}

	sw2 := sw.SW2()
	if meaning, ok := group.exact[sw2]; ok {
		return group.state, meaning
	}
	for _, r := range group.ranges {
		if sw2 >= r.lo && sw2 <= r.hi {
			if r.counter {
				return group.state, fmt.Sprintf("%s = %d", r.meaning, sw2&0x0F)
			}
			return group.state, r.meaning
		}
	}
	if group.fallback == "" {
		return residual.state, residual.fallback
	}
	return group.state, group.fallback
}
