// Package tlv inspects BER-TLV (Basic Encoding Rules, Tag-Length-Value)
// data carried in response bodies.
package tlv

import (
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"
)

// Decode parses data as a sequence of BER-TLV objects.
func Decode(data []byte) ([]bertlv.TLV, error) {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("bertlv decode failed: %w", err)
	}
	return packets, nil
}

// Find returns the payload of the first object tagged tag, searching
// constructed objects depth first. Tags are hex strings ("4F", "9F38").
// The payload of a constructed object is its re-encoded children.
func Find(data []byte, tag string) ([]byte, bool, error) {
	packets, err := Decode(data)
	if err != nil {
		return nil, false, err
	}
	for _, p := range walk(packets, nil) {
		if strings.EqualFold(p.Tag, tag) {
			v, err := value(p)
			return v, err == nil, err
		}
	}
	return nil, false, nil
}

// FindAll returns the payloads of every object tagged tag, in document order.
func FindAll(data []byte, tag string) ([][]byte, error) {
	packets, err := Decode(data)
	if err != nil {
		return nil, err
	}

	var out [][]byte
	for _, p := range walk(packets, nil) {
		if !strings.EqualFold(p.Tag, tag) {
			continue
		}
		v, err := value(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// walk flattens the tree, parents before children.
func walk(packets []bertlv.TLV, acc []bertlv.TLV) []bertlv.TLV {
	for _, p := range packets {
		acc = append(acc, p)
		acc = walk(p.TLVs, acc)
	}
	return acc
}

func value(p bertlv.TLV) ([]byte, error) {
	if len(p.TLVs) > 0 {
		return bertlv.Encode(p.TLVs)
	}
	return p.Value, nil
}

// Describe renders data as an indented tag tree, one object per line.
// Primitive values are printed in hex, with their printable form when all
// bytes are printable. Every line starts with indent.
func Describe(data []byte, indent string) (string, error) {
	packets, err := Decode(data)
	if err != nil {
		return "", err
	}
	if len(packets) == 0 {
		return "", fmt.Errorf("no TLV object in %d bytes", len(data))
	}

	var lines []string
	describe(&lines, packets, indent)
	return strings.Join(lines, "\n"), nil
}

func describe(lines *[]string, packets []bertlv.TLV, indent string) {
	for _, p := range packets {
		tag := strings.ToUpper(p.Tag)
		if len(p.TLVs) > 0 {
			*lines = append(*lines, fmt.Sprintf("%s%s", indent, tag))
			describe(lines, p.TLVs, indent+"  ")
			continue
		}

		line := fmt.Sprintf("%s%s: %X", indent, tag, p.Value)
		if len(p.Value) > 0 && isPrintable(p.Value) {
			line += fmt.Sprintf(" (%q)", string(p.Value))
		}
		*lines = append(*lines, line)
	}
}

func isPrintable(data []byte) bool {
	for _, b := range data {
		if b < 32 || b > 126 {
			return false
		}
	}
	return true
}

// MakeSafeASCII replaces every non-printable byte with a dot.
func MakeSafeASCII(data []byte) string {
	return strings.Map(func(r rune) rune {
		if r >= 32 && r <= 126 {
			return r
		}
		return '.'
	}, string(data))
}
