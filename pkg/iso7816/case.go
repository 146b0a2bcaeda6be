package iso7816

import "fmt"

// Case is the structural case of a command APDU (ISO/IEC 7816-3 section 12.1.3).
// It is derived from the presence of a data field and of Ne, and from the
// lengths involved; it is never set independently.
type Case uint8

const (
	Case1         Case = iota + 1 // no data, no Ne
	Case2Short                    // Ne in 1..256, 1-byte Le
	Case2Extended                 // Ne in 257..65536, 3-byte Le
	Case3Short                    // Nc in 1..255, 1-byte Lc
	Case3Extended                 // Nc in 256..65535, 3-byte Lc
	Case4Short                    // Nc <= 255 and Ne <= 256
	Case4Extended                 // Nc > 255 or Ne > 256, both fields extended
)

var caseNames = [...]string{
	Case1:         "Case 1",
	Case2Short:    "Case 2S",
	Case2Extended: "Case 2E",
	Case3Short:    "Case 3S",
	Case3Extended: "Case 3E",
	Case4Short:    "Case 4S",
	Case4Extended: "Case 4E",
}

func (c Case) String() string {
	if c >= Case1 && c <= Case4Extended {
		return caseNames[c]
	}
	return fmt.Sprintf("Case(%d)", uint8(c))
}

// HasData reports whether the case carries Lc and a data field.
func (c Case) HasData() bool {
	switch c {
	case Case3Short, Case3Extended, Case4Short, Case4Extended:
		return true
	}
	return false
}

// HasNe reports whether the case carries an Le field.
func (c Case) HasNe() bool {
	switch c {
	case Case2Short, Case2Extended, Case4Short, Case4Extended:
		return true
	}
	return false
}

// IsExtended reports whether the length fields use the extended form.
func (c Case) IsExtended() bool {
	switch c {
	case Case2Extended, Case3Extended, Case4Extended:
		return true
	}
	return false
}

// caseOf derives the case from the logical field lengths.
// nc = 0 means no data field and ne = 0 means no Le field.
func caseOf(nc, ne int) Case {
	extended := nc > MaxShortLc || ne > MaxShortLe

	switch {
	case nc == 0 && ne == 0:
		return Case1
	case nc == 0 && !extended:
		return Case2Short
	case nc == 0:
		return Case2Extended
	case ne == 0 && !extended:
		return Case3Short
	case ne == 0:
		return Case3Extended
	case !extended:
		return Case4Short
	default:
		return Case4Extended
	}
}
