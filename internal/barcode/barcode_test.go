package barcode

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		barcode  string
		itemCode string
		lotCode  string
		quantity int64
	}{
		{"10A0001L5251114001500", "10A0001", "10A0001-L5-251114001", 500},
		{"10A5000P525093000120", "10A5000", "10A5000-P5-250930001", 20},
		{"  10A0001L5251114001500  ", "10A0001", "10A0001-L5-251114001", 500},
		// Single quantity digit is the minimum.
		{"10A0001L52511140017", "10A0001", "10A0001-L5-251114001", 7},
		// No upper bound on trailing digits.
		{"10A0001L5251114001123456789", "10A0001", "10A0001-L5-251114001", 123456789},
	}

	for _, tt := range tests {
		scan, err := Decode(tt.barcode)
		if err != nil {
			t.Errorf("Decode(%q): %v", tt.barcode, err)
			continue
		}
		if scan.ItemCode != tt.itemCode {
			t.Errorf("Decode(%q): item code %q, want %q", tt.barcode, scan.ItemCode, tt.itemCode)
		}
		if scan.LotCode != tt.lotCode {
			t.Errorf("Decode(%q): lot code %q, want %q", tt.barcode, scan.LotCode, tt.lotCode)
		}
		if scan.Quantity != tt.quantity {
			t.Errorf("Decode(%q): quantity %d, want %d", tt.barcode, scan.Quantity, tt.quantity)
		}
	}
}

func TestDecodeLotCodeLength(t *testing.T) {
	scan, err := Decode("10A0001L5251114001500")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(scan.LotCode) != 20 {
		t.Errorf("lot code %q has length %d, want 20", scan.LotCode, len(scan.LotCode))
	}
}

func TestDecodeTooShort(t *testing.T) {
	inputs := []string{
		"",
		"10A0001",
		"10A0001L5251114001", // 18 chars, no quantity
		"   10A0001L5251114001   ",
	}
	for _, in := range inputs {
		if _, err := Decode(in); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Decode(%q): got %v, want ErrInvalidFormat", in, err)
		}
	}
}

func TestDecodeBadQuantity(t *testing.T) {
	inputs := []string{
		"10A0001L525111400150X",
		"10A0001L5251114001+50",
		"10A0001L5251114001-50",
		"10A0001L5251114001" + strings.Repeat("9", 30), // overflows int64
		"10A0001L52511140010",                          // zero quantity
		"10A0001L5251114001000",
	}
	for _, in := range inputs {
		if _, err := Decode(in); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("Decode(%q): got %v, want ErrInvalidFormat", in, err)
		}
	}
}
