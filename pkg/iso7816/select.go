package iso7816

import (
	"fmt"

	"github.com/gregLibert/apdu/pkg/bits"
)

// SELECT (INS 'A4'), ISO/IEC 7816-4 section 11.2.2.
//
// P1 tells how the target is designated: by file identifier, by DF name
// (AID) or by path. P2 combines two fields:
//
//	b4-b3  response content (FCI, FCP, FMD or none)
//	b2-b1  occurrence, when several files match a partial DF name

// SelectionMethod is the P1 of SELECT.
type SelectionMethod byte

const (
	SelectByFileID          SelectionMethod = 0x00
	SelectChildDF           SelectionMethod = 0x01
	SelectEFUnderCurrentDF  SelectionMethod = 0x02
	SelectParentDF          SelectionMethod = 0x03
	SelectByDFName          SelectionMethod = 0x04 // Select by AID
	SelectPathFromMF        SelectionMethod = 0x08
	SelectPathFromCurrentDF SelectionMethod = 0x09
)

var methodNames = map[SelectionMethod]string{
	SelectByFileID:          "Select by File ID",
	SelectChildDF:           "Select Child DF",
	SelectEFUnderCurrentDF:  "Select EF under current DF",
	SelectParentDF:          "Select Parent DF",
	SelectByDFName:          "Select by DF Name (AID)",
	SelectPathFromMF:        "Select Path from MF",
	SelectPathFromCurrentDF: "Select Path from Current DF",
}

func (s SelectionMethod) String() string {
	if name, ok := methodNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown Method (0x%02X)", byte(s))
}

// FileOccurrence is b2-b1 of P2.
type FileOccurrence byte

const (
	FirstOrOnlyOccurrence FileOccurrence = 0b00
	LastOccurrence        FileOccurrence = 0b01
	NextOccurrence        FileOccurrence = 0b10
	PreviousOccurrence    FileOccurrence = 0b11
)

var occurrenceNames = [...]string{"First/Only", "Last", "Next", "Previous"}

func (f FileOccurrence) String() string {
	if int(f) < len(occurrenceNames) {
		return occurrenceNames[f]
	}
	return "Unknown Occurrence"
}

// SelectionControl is b4-b3 of P2, already shifted into place.
type SelectionControl byte

const (
	ReturnFCI    SelectionControl = 0b0000
	ReturnFCP    SelectionControl = 0b0100
	ReturnFMD    SelectionControl = 0b1000
	ReturnNoData SelectionControl = 0b1100
)

var controlNames = map[SelectionControl]string{
	ReturnFCI:    "Return FCI",
	ReturnFCP:    "Return FCP",
	ReturnFMD:    "Return FMD",
	ReturnNoData: "No Response Data",
}

func (s SelectionControl) String() string {
	if name, ok := controlNames[s]; ok {
		return name
	}
	return "Unknown Control"
}

// NewSelectCommand creates a generic SELECT command.
//
// Unless ctrl is ReturnNoData the command asks for up to 256 bytes of
// response data, so it is Case 2S without data and Case 4S with data.
// On T=0 the exchange engine fetches the Case 4S response with GET RESPONSE.
func NewSelectCommand(
	cla Class,
	method SelectionMethod,
	occurrence FileOccurrence,
	ctrl SelectionControl,
	data []byte,
) (*CommandAPDU, error) {
	if _, ok := controlNames[ctrl]; !ok {
		return nil, fmt.Errorf("%w: SELECT control 0x%02X", ErrValue, byte(ctrl))
	}
	if occurrence > PreviousOccurrence {
		return nil, fmt.Errorf("%w: SELECT occurrence 0x%02X", ErrValue, byte(occurrence))
	}

	p2 := bits.SetRange(byte(ctrl), 2, 1, byte(occurrence))

	var opts []CommandOption
	if len(data) > 0 {
		opts = append(opts, WithData(data))
	}
	if ctrl != ReturnNoData {
		opts = append(opts, WithNe(MaxShortLe))
	}

	return NewCommandAPDU(cla, MustInstruction(INS_SELECT), byte(method), p2, opts...)
}

// SelectByAID selects an application by its DF name.
func SelectByAID(cla Class, aid []byte) (*CommandAPDU, error) {
	return NewSelectCommand(cla, SelectByDFName, FirstOrOnlyOccurrence, ReturnFCI, aid)
}

// SelectFile selects a file by its 2-byte identifier and asks for its FCP.
func SelectFile(cla Class, fid uint16) (*CommandAPDU, error) {
	return NewSelectCommand(cla, SelectByFileID, FirstOrOnlyOccurrence, ReturnFCP, []byte{byte(fid >> 8), byte(fid)})
}

// SelectMF selects the Master File.
func SelectMF(cla Class) (*CommandAPDU, error) {
	return NewSelectCommand(cla, SelectByFileID, FirstOrOnlyOccurrence, ReturnFCI, nil)
}
