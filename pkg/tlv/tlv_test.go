package tlv

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// PSE directory record: 70 { 61 { 4F AID, 50 label, 87 priority } }
var pseRecord = Hex(
	"70 18",
	"61 16",
	"4F 07 A0 00 00 00 03 10 10",
	"50 04 56 49 53 41",
	"87 01 01",
	"9F 12 01 41",
)

func TestFind(t *testing.T) {
	tests := []struct {
		name  string
		tag   string
		want  []byte
		found bool
	}{
		{"Nested primitive", "4F", Hex("A0 00 00 00 03 10 10"), true},
		{"Lower case tag", "9f12", Hex("41"), true},
		{"Constructed returns children", "61", Hex("4F 07 A0 00 00 00 03 10 10", "50 04 56 49 53 41", "87 01 01", "9F 12 01 41"), true},
		{"Missing", "88", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := Find(pseRecord, tt.tag)
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFind_Malformed(t *testing.T) {
	if _, _, err := Find(Hex("4F 05 01"), "4F"); err == nil {
		t.Error("expected an error for truncated TLV")
	}
}

func TestFindAll(t *testing.T) {
	data := Hex(
		"61 09 4F 07 A0 00 00 00 03 10 10",
		"61 09 4F 07 A0 00 00 00 04 10 10",
	)

	got, err := FindAll(data, "4F")
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	want := [][]byte{
		Hex("A0 00 00 00 03 10 10"),
		Hex("A0 00 00 00 04 10 10"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe(t *testing.T) {
	got, err := Describe(pseRecord, "  ")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	expectedLines := []string{
		"  70",
		"    61",
		"      4F: A0000000031010",
		`      50: 56495341 ("VISA")`,
		"      87: 01",
		`      9F12: 41 ("A")`,
	}
	if diff := cmp.Diff(expectedLines, strings.Split(got, "\n")); diff != "" {
		t.Errorf("Mismatch (-want +got):\n%s", diff)
	}
}

func TestDescribe_NotTLV(t *testing.T) {
	if _, err := Describe([]byte("Hi\x01"), ""); err == nil {
		t.Error("expected an error for non-TLV data")
	}
}

func TestMakeSafeASCII(t *testing.T) {
	input := []byte{0x41, 0x42, 0x00, 0x1F, 0x7F, 0x43} // AB, null, US, DEL, C
	want := "AB...C"                                    // 0x7F (127) is > 126, so it becomes dot

	got := MakeSafeASCII(input)
	if got != want {
		t.Errorf("MakeSafeASCII() = %q, want %q", got, want)
	}
}
