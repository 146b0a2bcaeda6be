package iso7816

import (
	"fmt"

	"github.com/gregLibert/apdu/pkg/bits"
)

// READ RECORD (INS 'B2'), ISO/IEC 7816-4 section 11.4.3.
//
// P1 is a record number (00 = current record) or a record identifier,
// depending on b3 of P2:
//
//	b8-b4  short EF identifier (SFI), 0 for the current EF
//	b3     1: P1 is a record number, 0: P1 is a record identifier
//	b2-b1  which record(s): occurrence, or P1 only / from P1 onward

// ReadRecordMode is b3-b1 of P2.
type ReadRecordMode byte

const (
	// P1 is Record IDENTIFIER (Bit 3 = 0)
	RefByID_FirstOccurrence    ReadRecordMode = 0b000
	RefByID_LastOccurrence     ReadRecordMode = 0b001
	RefByID_NextOccurrence     ReadRecordMode = 0b010
	RefByID_PreviousOccurrence ReadRecordMode = 0b011

	// P1 is Record NUMBER (Bit 3 = 1)
	RefByNum_ReadP1              ReadRecordMode = 0b100
	RefByNum_ReadAllFromP1       ReadRecordMode = 0b101
	RefByNum_ReadAllFromLastToP1 ReadRecordMode = 0b110
)

// MaxSFI is the highest short EF identifier; 31 is RFU.
const MaxSFI = 30

var readModeNames = [...]string{
	RefByID_FirstOccurrence:      "Ref ID: First Occurrence",
	RefByID_LastOccurrence:       "Ref ID: Last Occurrence",
	RefByID_NextOccurrence:       "Ref ID: Next Occurrence",
	RefByID_PreviousOccurrence:   "Ref ID: Previous Occurrence",
	RefByNum_ReadP1:              "Ref Num: Read Record P1",
	RefByNum_ReadAllFromP1:       "Ref Num: Read All from P1",
	RefByNum_ReadAllFromLastToP1: "Ref Num: Read All from Last to P1",
}

func (m ReadRecordMode) String() string {
	if int(m) < len(readModeNames) {
		return readModeNames[m]
	}
	return fmt.Sprintf("Unknown Mode (0x%X)", byte(m))
}

// NewReadRecordCommand creates a raw READ RECORD command.
// READ RECORD is Case 2S and always asks for up to 256 bytes.
func NewReadRecordCommand(
	cla Class,
	sfi byte,
	p1 byte,
	mode ReadRecordMode,
) (*CommandAPDU, error) {
	if sfi > MaxSFI {
		return nil, fmt.Errorf("%w: SFI %d out of range 0..%d", ErrValue, sfi, MaxSFI)
	}
	if int(mode) >= len(readModeNames) {
		return nil, fmt.Errorf("%w: READ RECORD mode 0b%03b is RFU", ErrValue, byte(mode))
	}

	p2 := bits.SetRange(byte(mode), 8, 4, sfi)

	return NewCommandAPDU(cla, MustInstruction(INS_READ_RECORD), p1, p2, WithNe(MaxShortLe))
}

// ReadRecord reads a specific record by its Number (Mode '100').
func ReadRecord(cla Class, sfi byte, recordNumber byte) (*CommandAPDU, error) {
	return NewReadRecordCommand(cla, sfi, recordNumber, RefByNum_ReadP1)
}

// ReadAllRecords reads all records starting from startRecordNumber (Mode '101').
func ReadAllRecords(cla Class, sfi byte, startRecordNumber byte) (*CommandAPDU, error) {
	return NewReadRecordCommand(cla, sfi, startRecordNumber, RefByNum_ReadAllFromP1)
}
