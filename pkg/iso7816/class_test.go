package iso7816

import (
	"errors"
	"testing"
)

func TestParseClass(t *testing.T) {
	tests := []struct {
		name    string
		cla     byte
		wantErr bool
		check   func(Class) bool
	}{
		{
			name:    "Reserved FF",
			cla:     0xFF,
			wantErr: true,
		},
		{
			name: "First Interindustry - Ch 0, No SM",
			// 0b0(Prop)_0(First)_0_0(NoChain)_00(NoSM)_00(Ch0)
			cla: 0b0_0_0_0_00_00,
			check: func(c Class) bool {
				return !c.Proprietary && c.Channel == 0 && c.SecureMessaging == SMNone
			},
		},
		{
			name: "First Interindustry - Ch 3, Chaining, SM Auth",
			// 0b0(Prop)_0(First)_0_1(Chain)_11(SMAuth)_11(Ch3)
			cla: 0b0_0_0_1_11_11,
			check: func(c Class) bool {
				return c.Chained && c.Channel == 3 && c.SecureMessaging == SMHeaderAuth
			},
		},
		{
			name: "Further Interindustry - Ch 4, No SM",
			// 0b0(Prop)_1(Further)_0(NoSM)_0(NoChain)_0000(Offset 0 -> Ch 4)
			cla: 0b0_1_0_0_0000,
			check: func(c Class) bool {
				return !c.Proprietary && c.Channel == 4 && c.SecureMessaging == SMNone
			},
		},
		{
			name: "Further Interindustry - Ch 19, SM, Chaining",
			// 0b0(Prop)_1(Further)_1(SM)_1(Chain)_1111(Offset 15 -> Ch 19)
			cla: 0b0_1_1_1_1111,
			check: func(c Class) bool {
				return c.Chained && c.Channel == 19 && c.SecureMessaging == SMHeaderNoProc
			},
		},
		{
			name: "Proprietary Class (GlobalPlatform 80)",
			cla:  0x80,
			check: func(c Class) bool {
				return c.Proprietary && c.Raw == 0x80
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseClass(tt.cla)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClass() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrValue) {
					t.Errorf("ParseClass() error = %v, want ErrValue", err)
				}
				return
			}
			if !tt.check(c) {
				t.Errorf("ParseClass(%08b) failed validation: %+v", tt.cla, c)
			}
		})
	}
}

func TestNewInterindustryClass_Validation(t *testing.T) {
	t.Run("Unsupported SM for Further Interindustry", func(t *testing.T) {
		if _, err := NewInterindustryClass(false, SMHeaderAuth, 5); !errors.Is(err, ErrValue) {
			t.Errorf("want ErrValue for SMHeaderAuth on channel 5, got %v", err)
		}
	})

	t.Run("Channel Out of Range", func(t *testing.T) {
		if _, err := NewInterindustryClass(false, SMNone, 20); !errors.Is(err, ErrValue) {
			t.Errorf("want ErrValue for channel 20, got %v", err)
		}
	})

	t.Run("Valid Construction", func(t *testing.T) {
		c, err := NewInterindustryClass(true, SMHeaderNoProc, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 10 = 4 + 6 -> 0(Prop)_1(Further)_1(SM)_1(Chain)_0110
		if want := byte(0b0_1_1_1_0110); c.Raw != want {
			t.Errorf("Raw = %08b, want %08b", c.Raw, want)
		}
	})
}

func TestClass_Byte_RoundTrip(t *testing.T) {
	for _, cla := range []byte{
		0b0000_0000,
		0b0001_1111,
		0b0100_0000,
		0b0111_1111,
		0x84,
	} {
		c, err := ParseClass(cla)
		if err != nil {
			t.Fatalf("ParseClass(%08b): %v", cla, err)
		}
		got, err := c.Byte()
		if err != nil {
			t.Fatalf("Byte(): %v", err)
		}
		if got != cla {
			t.Errorf("round trip: got %08b, want %08b", got, cla)
		}
	}
}

func TestParseClass_RFU(t *testing.T) {
	for _, cla := range []byte{0x20, 0x3F} {
		if _, err := ParseClass(cla); !errors.Is(err, ErrValue) {
			t.Errorf("ParseClass(%02X) error = %v, want ErrValue", cla, err)
		}
	}
}
