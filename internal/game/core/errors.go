package core

import "errors"

var (
	// ErrSetNotFound is returned when no action set is registered under a key,
	// or when an operation needs an active set and none is active.
	ErrSetNotFound = errors.New("action set not found")
	// ErrSetMisconfigured is returned for a set with a missing table, a
	// missing scorer class, or a table of the wrong variant.
	ErrSetMisconfigured = errors.New("action set misconfigured")
	// ErrUnknownScorer is returned when a set names an unregistered scorer class.
	ErrUnknownScorer = errors.New("unknown scorer class")
	// ErrNoCandidate is returned when selection found no eligible row.
	ErrNoCandidate = errors.New("no eligible candidate")
	// ErrComboClosed is returned when a continuation is requested outside an
	// open combo window or with no allowed follow-ups.
	ErrComboClosed = errors.New("combo window closed")
	// ErrNoParryWindow is returned by TryParry without an open parry window
	// and a valid threat.
	ErrNoParryWindow = errors.New("no parry window")
	// ErrNotFacing is returned by TryParry when the defender is not facing the threat.
	ErrNotFacing = errors.New("not facing threat")
	// ErrNoDefenseWindow is returned by TryDefense without an open defense window.
	ErrNoDefenseWindow = errors.New("no defense window")
)
