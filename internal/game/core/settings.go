package core

import (
	"time"

	"github.com/cory-johannsen/motioncombat/internal/config"
)

// Settings holds the tunables the core reads outside of scoring.
type Settings struct {
	// ComboBlendCeiling caps both blends of an action started while the combo window is open.
	ComboBlendCeiling time.Duration
	// TargetRange bounds the closest-target query used for action events and parry threats.
	TargetRange float64
	// FacingThreshold is the minimum facing dot product for a parry.
	FacingThreshold float64
	// InputDeadzone is the per-axis magnitude below which movement input means Omni.
	InputDeadzone float64
	// DirectionThreshold is the dot product a direction must exceed to be chosen.
	DirectionThreshold float64
}

// SettingsFromConfig extracts core settings from combat configuration.
func SettingsFromConfig(c config.CombatConfig) Settings {
	return Settings{
		ComboBlendCeiling:  c.ComboBlendCeiling,
		TargetRange:        c.TargetRange,
		FacingThreshold:    c.FacingThreshold,
		InputDeadzone:      c.InputDeadzone,
		DirectionThreshold: c.DirectionThreshold,
	}
}

// DefaultSettings returns the stock settings.
func DefaultSettings() Settings { return SettingsFromConfig(config.DefaultCombat()) }
