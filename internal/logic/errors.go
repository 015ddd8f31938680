package logic

import (
	"errors"
	"fmt"
)

var (
	// ErrCharacterNotFound is returned when a canonical name has no profile.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrAttributeMissing is returned when a profile lacks a schema attribute.
	ErrAttributeMissing = errors.New("attribute missing")
	// ErrMalformedRecord marks a raw record that cannot be aggregated.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidProbabilities is returned when a classifier answers with
	// probabilities that cannot be normalized.
	ErrInvalidProbabilities = errors.New("invalid class probabilities")
)

// CharacterNotFoundError names the input and the canonical form that
// failed the profile lookup.
type CharacterNotFoundError struct {
	Input     string
	Canonical string
}

func (e *CharacterNotFoundError) Error() string {
	if e.Input != "" && e.Input != e.Canonical {
		return fmt.Sprintf("character not found: %q (from %q)", e.Canonical, e.Input)
	}
	return fmt.Sprintf("character not found: %q", e.Canonical)
}

func (e *CharacterNotFoundError) Unwrap() error { return ErrCharacterNotFound }

// AttributeMissingError names the character and attribute that were absent.
type AttributeMissingError struct {
	Character string
	Attribute string
}

func (e *AttributeMissingError) Error() string {
	if e.Character == "" {
		return fmt.Sprintf("attribute missing: %q", e.Attribute)
	}
	return fmt.Sprintf("attribute missing: %q has no %q", e.Character, e.Attribute)
}

func (e *AttributeMissingError) Unwrap() error { return ErrAttributeMissing }

// SkipReason classifies records dropped during aggregation.
type SkipReason string

const (
	SkipMissingCharacter SkipReason = "missing_character"
	SkipInvalidWinner    SkipReason = "invalid_winner"
	SkipMirrorMatch      SkipReason = "mirror_match"
)

// MalformedRecordError describes why a raw record was skipped.
type MalformedRecordError struct {
	SetID  string
	Reason SkipReason
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %q: %s", e.SetID, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// ErrMatchupNotFound is returned by stores when a pair has no row in the
// current matchup table.
var ErrMatchupNotFound = errors.New("matchup not found")
