package domain

import (
	"fmt"
	"strings"
)

// Mode selects how a fixture is treated when its expectation is missing or
// does not match.
type Mode string

// Supported run modes.
const (
	// ModeVerify compares only. Missing or mismatching expectations fail.
	ModeVerify Mode = "verify"
	// ModeInsert records the actual value when no expectation exists yet.
	// Mismatches still fail.
	ModeInsert Mode = "insert"
	// ModeOverwrite records the actual value whenever the expectation is
	// missing or does not match.
	ModeOverwrite Mode = "overwrite"
)

// ParseMode parses a mode name. "accept" and "update" are accepted as
// aliases of insert and overwrite. An empty string yields ModeVerify.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeVerify):
		return ModeVerify, nil
	case string(ModeInsert), "accept":
		return ModeInsert, nil
	case string(ModeOverwrite), "update":
		return ModeOverwrite, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want verify, insert or overwrite)", s)
	}
}

// Writes reports whether the mode may record a missing expectation.
func (m Mode) Writes() bool {
	return m == ModeInsert || m == ModeOverwrite
}
