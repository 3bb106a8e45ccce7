package model

import (
	"fmt"
	"strings"
)

// SwapKind selects which side of a swap is fixed.
type SwapKind uint8

const (
	GivenIn SwapKind = iota
	GivenOut
)

func (k SwapKind) String() string {
	if k == GivenOut {
		return "GivenOut"
	}
	return "GivenIn"
}

// ParseSwapKind accepts "givenIn"/"exactIn" and "givenOut"/"exactOut" in any case.
func ParseSwapKind(input string) (SwapKind, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "givenin", "exactin", "in", "":
		return GivenIn, nil
	case "givenout", "exactout", "out":
		return GivenOut, nil
	default:
		return GivenIn, fmt.Errorf("unknown swap kind: %s", input)
	}
}
