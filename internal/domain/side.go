package domain

import (
	"fmt"
	"strings"
)

// Side represents the direction of a leveraged position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// ParseSide converts a user-supplied side string ("long"/"short", any case)
// into a Side.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG", "BUY":
		return SideLong, nil
	case "SHORT", "SELL":
		return SideShort, nil
	default:
		return "", fmt.Errorf("invalid side %q (expected long or short)", s)
	}
}

// IsValid reports whether the side is one of the two known directions.
func (s Side) IsValid() bool {
	return s == SideLong || s == SideShort
}
