package iso7816

import (
	"errors"
	"strings"
	"testing"
)

func mustSW(t *testing.T, v uint16) StatusWord {
	t.Helper()
	sw, err := ParseStatusWord(v)
	if err != nil {
		t.Fatalf("ParseStatusWord(%04X): %v", v, err)
	}
	return sw
}

func TestNewStatusWord_Validation(t *testing.T) {
	tests := []struct {
		sw1, sw2 byte
		wantErr  error
	}{
		{0x90, 0x00, nil},
		{0x6A, 0x82, nil},
		{0x9F, 0x10, nil},
		{0x61, 0x00, nil},
		{0x60, 0x00, ErrFormat}, // NULL procedure byte
		{0x60, 0x12, ErrFormat},
		{0x00, 0x00, ErrValue},
		{0x50, 0x00, ErrValue},
		{0xA0, 0x00, ErrValue},
		{0xFF, 0xFF, ErrValue},
	}

	for _, tt := range tests {
		sw, err := NewStatusWord(tt.sw1, tt.sw2)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("NewStatusWord(%02X, %02X) error = %v, want %v", tt.sw1, tt.sw2, err, tt.wantErr)
			continue
		}
		if err == nil && (sw.SW1() != tt.sw1 || sw.SW2() != tt.sw2) {
			t.Errorf("NewStatusWord(%02X, %02X) = %s", tt.sw1, tt.sw2, sw)
		}
	}
}

func TestStatusWord_Triggering(t *testing.T) {
	tests := []struct {
		sw     uint16
		isTrig bool
	}{
		{0x6202, true},  // Lower bound
		{0x6280, true},  // Upper bound
		{0x6410, true},  // Error triggering
		{0x6201, false}, // Invalid (< 02)
		{0x6281, false}, // Invalid (> 80)
		{0x6510, false},
	}

	for _, tt := range tests {
		if got := mustSW(t, tt.sw).IsTriggeringByCard(); got != tt.isTrig {
			t.Errorf("SW %04X IsTriggeringByCard = %v, want %v", tt.sw, got, tt.isTrig)
		}
	}
}

func TestStatusWord_Counter(t *testing.T) {
	tests := []struct {
		sw        uint16
		isCounter bool
	}{
		{0x63C0, true},  // Counter 0
		{0x63CF, true},  // Counter 15
		{0x6300, false}, // Not a counter
		{0x6381, false}, // File filled
	}

	for _, tt := range tests {
		if got := mustSW(t, tt.sw).IsCounter(); got != tt.isCounter {
			t.Errorf("SW %04X IsCounter = %v, want %v", tt.sw, got, tt.isCounter)
		}
	}
}

func TestStatusWord_Classification(t *testing.T) {
	tests := []struct {
		sw        StatusWord
		isSuccess bool
		isWarning bool
		isError   bool
	}{
		{SW_NO_ERROR, true, false, false},
		{0x6110, true, false, false}, // Bytes Available
		{SW_WARN_EOF_REACHED, false, true, false},
		{0x63C2, false, true, false}, // Counter
		{SW_ERR_WRONG_LENGTH, false, false, true},
		{SW_ERR_FILE_NOT_FOUND, false, false, true},
	}

	for _, tt := range tests {
		if got := tt.sw.IsSuccess(); got != tt.isSuccess {
			t.Errorf("SW %s IsSuccess = %v, want %v", tt.sw, got, tt.isSuccess)
		}
		if got := tt.sw.IsWarning(); got != tt.isWarning {
			t.Errorf("SW %s IsWarning = %v, want %v", tt.sw, got, tt.isWarning)
		}
		if got := tt.sw.IsError(); got != tt.isError {
			t.Errorf("SW %s IsError = %v, want %v", tt.sw, got, tt.isError)
		}
	}
}

func TestStatusWord_StateAndMeaning(t *testing.T) {
	tests := []struct {
		sw      uint16
		state   ProcessingState
		meaning string
	}{
		{0x9000, Normal, "No further qualification"},
		{0x6110, Normal, "SW2 encodes the number of data bytes still available"},
		{0x6200, Warning, "No information given"},
		{0x6202, Warning, "Triggering by the card"},
		{0x6281, Warning, "Part of returned data may be corrupted"},
		{0x62F0, Warning, "State of non-volatile memory is unchanged (further qualification in SW2)"},
		{0x6381, Warning, "File filled up by the last write"},
		{0x63C3, Warning, "Counter = 3"},
		{0x6401, ExecutionError, "Immediate response required by the card"},
		{0x6581, ExecutionError, "Memory failure"},
		{0x6612, ExecutionError, "Security-related issues"},
		{0x6700, CheckingError, "Wrong length; no further indication"},
		{0x6883, CheckingError, "Last command of the chain expected"},
		{0x6982, CheckingError, "Security status not satisfied"},
		{0x6A82, CheckingError, "File or application not found"},
		{0x6A88, CheckingError, "Referenced data or reference data not found (exact meaning depending on the command)"},
		{0x6B00, CheckingError, "Wrong parameters P1-P2"},
		{0x6C10, CheckingError, "Wrong Le field; SW2 encodes the exact number of available data bytes"},
		{0x6D00, CheckingError, "Instruction code not supported or invalid"},
		{0x6E00, CheckingError, "Class not supported"},
		{0x6F00, CheckingError, "No precise diagnosis"},
		// Unlisted values resolve to the residual group.
		{0x9001, CheckingError, "Functions in CLA not supported (further qualification in SW2)"},
		{0x9F10, CheckingError, "Functions in CLA not supported (further qualification in SW2)"},
		{0x6A95, CheckingError, "Wrong parameters P1-P2 (further qualification in SW2)"},
	}

	for _, tt := range tests {
		sw := mustSW(t, tt.sw)
		if got := sw.State(); got != tt.state {
			t.Errorf("SW %04X State = %s, want %s", tt.sw, got, tt.state)
		}
		if got := sw.Meaning(); got != tt.meaning {
			t.Errorf("SW %04X Meaning = %q, want %q", tt.sw, got, tt.meaning)
		}
	}
}

func TestStatusWord_TotalClassification(t *testing.T) {
	for v := 0; v <= 0xFFFF; v++ {
		sw, err := ParseStatusWord(uint16(v))
		if err != nil {
			continue
		}
		if sw.State() < Normal || sw.State() > CheckingError {
			t.Fatalf("SW %s has no processing state", sw)
		}
		if sw.Meaning() == "" {
			t.Fatalf("SW %s has no meaning", sw)
		}
	}
}

func TestStatusWord_AvailableLength(t *testing.T) {
	tests := []struct {
		sw   uint16
		n    int
		isOK bool
	}{
		{0x6105, 5, true},
		{0x6100, 256, true},
		{0x6C10, 16, true},
		{0x6C00, 256, true},
		{0x9000, 0, false},
		{0x6A82, 0, false},
	}

	for _, tt := range tests {
		n, ok := mustSW(t, tt.sw).AvailableLength()
		if n != tt.n || ok != tt.isOK {
			t.Errorf("SW %04X AvailableLength = (%d, %v), want (%d, %v)", tt.sw, n, ok, tt.n, tt.isOK)
		}
	}
}

func TestStatusWord_Verbose(t *testing.T) {
	tests := []struct {
		sw       uint16
		contains string
	}{
		{0x6210, "query of 16 bytes"},
		{0x63C3, "Counter = 3"},
		{0x6120, "32 bytes available"},
		{0x6100, "256 bytes available"},
		{0x6C05, "correct Le is 5"},
		{0x6202, "query of 2 bytes"},
		{0x6A82, "[6A82] Checking error: File or application not found"},
		{0x9000, "[9000] Normal processing"},
	}

	for _, tt := range tests {
		got := mustSW(t, tt.sw).Verbose()
		if !strings.Contains(got, tt.contains) {
			t.Errorf("Verbose(%04X) = %q; want containing %q", tt.sw, got, tt.contains)
		}
	}
}

func TestProcessingState_String(t *testing.T) {
	if got := ExecutionError.String(); got != "Execution error" {
		t.Errorf("ExecutionError.String() = %q", got)
	}
	if got := ProcessingState(9).String(); got != "ProcessingState(9)" {
		t.Errorf("ProcessingState(9).String() = %q", got)
	}
}
