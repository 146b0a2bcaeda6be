package iso7816

import (
	"fmt"

	"github.com/gregLibert/apdu/pkg/bits"
)

// Status words (SW1-SW2), ISO/IEC 7816-4 section 5.6.
//
// SW1 is always '6X' or '9X'. '60' is a T=0 procedure byte (NULL), never a
// status, so no '60XX' value is a valid status word.
//
// Some values carry a parameter in SW2:
//
//	'61XX'  process completed, XX bytes still available (00 means 256)
//	'6CXX'  wrong Le, XX is the exact number of available bytes (00 means 256)
//	'62XX'  '64XX' with XX in 02..80: triggering by the card
//	'63CX'  counter, X is the counter value (e.g. remaining PIN tries)

// StatusWord is a validated two-byte status.
type StatusWord uint16

// ProcessingState is the coarse outcome a status word reports.
type ProcessingState uint8

const (
	Normal ProcessingState = iota + 1
	Warning
	ExecutionError
	CheckingError
)

var stateNames = [...]string{
	Normal:         "Normal processing",
	Warning:        "Warning processing",
	ExecutionError: "Execution error",
	CheckingError:  "Checking error",
}

func (s ProcessingState) String() string {
	if s >= Normal && s <= CheckingError {
		return stateNames[s]
	}
	return fmt.Sprintf("ProcessingState(%d)", uint8(s))
}

// NewStatusWord validates SW1 and SW2.
func NewStatusWord(sw1, sw2 byte) (StatusWord, error) {
	switch hi := sw1 & 0xF0; {
	case hi != 0x60 && hi != 0x90:
		return 0, fmt.Errorf("%w: SW1 0x%02X is not 6X or 9X", ErrValue, sw1)
	case sw1 == 0x60:
		return 0, fmt.Errorf("%w: '60%02X' is a procedure byte, not a status word", ErrFormat, sw2)
	}
	return StatusWord(uint16(sw1)<<8 | uint16(sw2)), nil
}

// ParseStatusWord validates a status given as a single 16-bit value.
func ParseStatusWord(v uint16) (StatusWord, error) {
	return NewStatusWord(byte(v>>8), byte(v))
}

// SW1 returns the high byte.
func (sw StatusWord) SW1() byte {
	return byte(sw >> 8)
}

// SW2 returns the low byte.
func (sw StatusWord) SW2() byte {
	return byte(sw)
}

// State classifies the status word.
func (sw StatusWord) State() ProcessingState {
	state, _ := classify(sw)
	return state
}

// Meaning returns the ISO 7816-4 text for the status word.
func (sw StatusWord) Meaning() string {
	_, meaning := classify(sw)
	return meaning
}

// AvailableLength decodes SW2 of '61XX' and '6CXX' as a byte count, where
// 00 stands for 256. It returns false for any other status word.
func (sw StatusWord) AvailableLength() (int, bool) {
	if sw.SW1() != 0x61 && sw.SW1() != 0x6C {
		return 0, false
	}
	if sw.SW2() == 0x00 {
		return MaxShortLe, true
	}
	return int(sw.SW2()), true
}

// IsTriggeringByCard reports '6202'..'6280' and '6402'..'6480'.
func (sw StatusWord) IsTriggeringByCard() bool {
	sw1, sw2 := sw.SW1(), sw.SW2()
	if sw2 < 0x02 || sw2 > 0x80 {
		return false
	}
	return sw1 == 0x62 || sw1 == 0x64
}

// IsCounter reports '63CX'.
func (sw StatusWord) IsCounter() bool {
	return sw.SW1() == 0x63 && bits.GetRange(sw.SW2(), 8, 5) == 0x0C
}

// IsSuccess reports '9000' and '61XX'.
func (sw StatusWord) IsSuccess() bool {
	return sw == SW_NO_ERROR || sw.SW1() == 0x61
}

// IsWarning reports '62XX' and '63XX'.
func (sw StatusWord) IsWarning() bool {
	return sw.State() == Warning
}

// IsError reports execution and checking errors ('64XX' to '6FXX').
func (sw StatusWord) IsError() bool {
	sw1 := sw.SW1()
	return sw1 >= 0x64 && sw1 <= 0x6F
}

// String returns the four hex digits.
func (sw StatusWord) String() string {
	return fmt.Sprintf("%04X", uint16(sw))
}

// Verbose returns the status word with its state and meaning. Parametrized
// statuses spell out their parameter.
func (sw StatusWord) Verbose() string {
	sw2 := sw.SW2()
	detail := sw.Meaning()

	switch {
	case sw.SW1() == 0x61:
		n, _ := sw.AvailableLength()
		detail = fmt.Sprintf("Process completed, %d bytes available", n)
	case sw.SW1() == 0x6C:
		n, _ := sw.AvailableLength()
		detail = fmt.Sprintf("Wrong length, correct Le is %d", n)
	case sw.IsTriggeringByCard():
		detail = fmt.Sprintf("Triggering by the card, query of %d bytes expected", sw2)
	}

	return fmt.Sprintf("[%04X] %s: %s", uint16(sw), sw.State(), detail)
}

// Interindustry status words.
const (
	SW_NO_ERROR StatusWord = 0x9000

	SW_WARN_NO_INFO              StatusWord = 0x6200
	SW_WARN_TRIGGERING_BY_CARD   StatusWord = 0x6202
	SW_WARN_DATA_CORRUPTED       StatusWord = 0x6281
	SW_WARN_EOF_REACHED          StatusWord = 0x6282
	SW_WARN_FILE_DEACTIVATED     StatusWord = 0x6283
	SW_WARN_FCI_BAD_FORMAT       StatusWord = 0x6284
	SW_WARN_TERMINATION_STATE    StatusWord = 0x6285
	SW_WARN_NO_INPUT_FROM_SENSOR StatusWord = 0x6286

	SW_WARN_NV_CHANGED_NO_INFO StatusWord = 0x6300
	SW_WARN_FILE_FILLED        StatusWord = 0x6381
	SW_WARN_COUNTER_0          StatusWord = 0x63C0

	SW_ERR_EXEC_NO_INFO            StatusWord = 0x6400
	SW_ERR_EXEC_IMMEDIATE_RESPONSE StatusWord = 0x6401
	SW_ERR_EXEC_TRIGGERING_BY_CARD StatusWord = 0x6402

	SW_ERR_NV_CHANGED_NO_INFO StatusWord = 0x6500
	SW_ERR_MEMORY_FAILURE     StatusWord = 0x6581
	SW_ERR_SECURITY_ISSUE     StatusWord = 0x6600

	SW_ERR_WRONG_LENGTH              StatusWord = 0x6700
	SW_ERR_CHECKING_NO_INFO          StatusWord = 0x6800
	SW_ERR_LOGICAL_CHANNEL_NOT_SUPP  StatusWord = 0x6881
	SW_ERR_SECURE_MESSAGING_NOT_SUPP StatusWord = 0x6882
	SW_ERR_LAST_COMMAND_EXPECTED     StatusWord = 0x6883
	SW_ERR_CHAINING_NOT_SUPP         StatusWord = 0x6884

	SW_ERR_CMD_NOT_ALLOWED_NO_INFO StatusWord = 0x6900
	SW_ERR_CMD_INCOMPATIBLE_FILE   StatusWord = 0x6981
	SW_ERR_SECURITY_STATUS_NOT_SAT StatusWord = 0x6982
	SW_ERR_AUTH_METHOD_BLOCKED     StatusWord = 0x6983
	SW_ERR_REF_DATA_NOT_USABLE     StatusWord = 0x6984
	SW_ERR_COND_OF_USE_NOT_SAT     StatusWord = 0x6985
	SW_ERR_CMD_NOT_ALLOWED_NO_EF   StatusWord = 0x6986
	SW_ERR_SM_OBJ_MISSING          StatusWord = 0x6987
	SW_ERR_SM_OBJ_INCORRECT        StatusWord = 0x6988

	SW_ERR_WRONG_PARAMS_NO_INFO   StatusWord = 0x6A00
	SW_ERR_INCORRECT_PARAMS_DATA  StatusWord = 0x6A80
	SW_ERR_FUNC_NOT_SUPPORTED     StatusWord = 0x6A81
	SW_ERR_FILE_NOT_FOUND         StatusWord = 0x6A82
	SW_ERR_RECORD_NOT_FOUND       StatusWord = 0x6A83
	SW_ERR_NOT_ENOUGH_MEMORY      StatusWord = 0x6A84
	SW_ERR_NC_INCONSISTENT_TLV    StatusWord = 0x6A85
	SW_ERR_INCORRECT_PARAMS_P1P2  StatusWord = 0x6A86
	SW_ERR_NC_INCONSISTENT_P1P2   StatusWord = 0x6A87
	SW_ERR_REF_DATA_NOT_FOUND     StatusWord = 0x6A88
	SW_ERR_FILE_ALREADY_EXISTS    StatusWord = 0x6A89
	SW_ERR_DF_NAME_ALREADY_EXISTS StatusWord = 0x6A8A

	SW_ERR_WRONG_P1P2        StatusWord = 0x6B00
	SW_ERR_INS_INVALID       StatusWord = 0x6D00
	SW_ERR_CLA_NOT_SUPPORTED StatusWord = 0x6E00
	SW_ERR_UNKNOWN           StatusWord = 0x6F00
)
