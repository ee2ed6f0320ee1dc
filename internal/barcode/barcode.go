// Package barcode decodes the fixed-width PDA barcodes printed on lot labels.
//
// A barcode is 18 fixed positions followed by the quantity:
//
//	10A0001 L5 251114001 500
//	item(7) mid(2) tail(9) quantity(rest)
//
// The lot number is reassembled as item-mid-tail, e.g. 10A0001-L5-251114001.
package barcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFormat is returned for barcodes that don't follow the label layout.
var ErrInvalidFormat = errors.New("invalid barcode format")

// Lot layout: item code (7) + mid segment (2) + tail segment (9).
const (
	itemLen = 7
	midLen  = 2
	tailLen = 9
	lotLen  = itemLen + midLen + tailLen
)

// Scan is one decoded barcode.
type Scan struct {
	ItemCode string
	LotCode  string
	Quantity int64
}

// Decode parses a raw barcode into its item code, lot number and quantity.
// Surrounding whitespace is ignored. Everything after the 18 lot positions
// is the quantity, however many digits it has.
func Decode(raw string) (Scan, error) {
	code := strings.TrimSpace(raw)

	// Lot (18 positions) plus at least one quantity digit.
	if len(code) < lotLen+1 {
		return Scan{}, fmt.Errorf("%w: %d characters, need at least %d", ErrInvalidFormat, len(code), lotLen+1)
	}

	item := code[:itemLen]
	mid := code[itemLen : itemLen+midLen]
	tail := code[itemLen+midLen : lotLen]

	qtyStr := code[lotLen:]
	for i := 0; i < len(qtyStr); i++ {
		if qtyStr[i] < '0' || qtyStr[i] > '9' {
			return Scan{}, fmt.Errorf("%w: quantity %q is not a number", ErrInvalidFormat, qtyStr)
		}
	}
	qty, err := strconv.ParseInt(qtyStr, 10, 64)
	if err != nil {
		return Scan{}, fmt.Errorf("%w: quantity %q out of range", ErrInvalidFormat, qtyStr)
	}
	if qty == 0 {
		return Scan{}, fmt.Errorf("%w: quantity must be positive", ErrInvalidFormat)
	}

	return Scan{
		ItemCode: item,
		LotCode:  item + "-" + mid + "-" + tail,
		Quantity: qty,
	}, nil
}
