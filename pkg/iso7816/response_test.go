package iso7816

import (
	"errors"
	"testing"

	"github.com/gregLibert/apdu/pkg/octet"
)

func TestParseResponseAPDU(t *testing.T) {
	// Raw: 01 02 03 (Data) | 90 00 (SW)
	resp, err := ParseResponseAPDU([]byte{0x01, 0x02, 0x03, 0x90, 0x00})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if !resp.HasBody() {
		t.Fatal("expected a body")
	}
	body, err := resp.Body()
	if err != nil || body.String() != "010203" {
		t.Errorf("Body = %s, %v", body, err)
	}
	if len(resp.Data()) != 3 {
		t.Errorf("Wrong data length: got %d, want 3", len(resp.Data()))
	}
	if resp.Trailer().String() != "9000" {
		t.Errorf("Trailer = %s", resp.Trailer())
	}
	sw, err := resp.Status()
	if err != nil || sw != SW_NO_ERROR {
		t.Errorf("Wrong status: got %s (%v), want %s", sw, err, SW_NO_ERROR)
	}
}

func TestParseResponseAPDU_TrailerOnly(t *testing.T) {
	resp, err := NewResponseAPDU(octet.MustHex("6A82"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.HasBody() {
		t.Error("trailer-only response reports a body")
	}
	if _, err := resp.Body(); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("Body() error = %v, want ErrInvalidOperation", err)
	}
	if resp.Data() != nil {
		t.Errorf("Data() = %X, want nil", resp.Data())
	}
	if resp.SW1() != 0x6A || resp.SW2() != 0x82 {
		t.Errorf("SW1 SW2 = %02X %02X", resp.SW1(), resp.SW2())
	}
}

func TestParseResponseAPDU_TooShort(t *testing.T) {
	for _, raw := range [][]byte{nil, {0x90}} {
		if _, err := ParseResponseAPDU(raw); !errors.Is(err, ErrLength) {
			t.Errorf("ParseResponseAPDU(%X) error = %v, want ErrLength", raw, err)
		}
	}
}

func TestResponseAPDU_InvalidTrailer(t *testing.T) {
	resp, err := ParseResponseAPDU([]byte{0x01, 0x60, 0x00})
	if err != nil {
		t.Fatalf("length-valid response rejected: %v", err)
	}
	if _, err := resp.Status(); !errors.Is(err, ErrFormat) {
		t.Errorf("Status() error = %v, want ErrFormat", err)
	}
}
