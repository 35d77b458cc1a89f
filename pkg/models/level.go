package models

import (
	"fmt"
	"strings"
)

// Level is a criticality tier assigned to a card
type Level string

const (
	LevelHigh   Level = "HIGH"
	LevelMedium Level = "MEDIUM"
	LevelLow    Level = "LOW"
)

// ParseLevel converts a raw token into a Level
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelHigh:
		return LevelHigh, nil
	case LevelMedium:
		return LevelMedium, nil
	case LevelLow:
		return LevelLow, nil
	}
	return "", fmt.Errorf("unknown criticality level: %q", s)
}

// Valid reports whether the level is one of the known tiers
func (l Level) Valid() bool {
	switch l {
	case LevelHigh, LevelMedium, LevelLow:
		return true
	}
	return false
}
