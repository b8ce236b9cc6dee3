// Package skinid packs a champion id and a champion-local skin id into the
// flat numeric identifier used by the metadata feed, the live client and the
// organised repository.
//
// The flat id is the decimal concatenation of the champion id and the skin id,
// each zero padded to three digits. Neither direction validates its input:
// values outside 0..999 produce well defined but meaningless results, which
// matches the feed's own scheme. Use InRange before encoding untrusted input.
package skinid

import (
	"fmt"
	"strconv"
)

const (
	// Width is the number of decimal digits of a flat id.
	Width = 6
	split = 3
	limit = 1000
)

// Encode packs championID and skinID into a flat id.
func Encode(championID, skinID int) int {
	flat, _ := strconv.Atoi(fmt.Sprintf("%0*d%0*d", split, championID, Width-split, skinID))
	return flat
}

// Decode splits a flat id into its champion id and champion-local skin id.
func Decode(flat int) (championID, skinID int) {
	padded := fmt.Sprintf("%0*d", Width, flat)
	championID, _ = strconv.Atoi(padded[:split])
	skinID, _ = strconv.Atoi(padded[split:])
	return championID, skinID
}

// InRange reports whether the pair survives an Encode/Decode round trip.
func InRange(championID, skinID int) bool {
	return championID >= 0 && championID < limit && skinID >= 0 && skinID < limit
}

// EncodeChecked is Encode with the range check applied.
func EncodeChecked(championID, skinID int) (int, error) {
	if !InRange(championID, skinID) {
		return 0, fmt.Errorf("skin id pair (%d, %d) out of range", championID, skinID)
	}
	return Encode(championID, skinID), nil
}
