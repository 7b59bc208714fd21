package playback

import "math"

// Volume defaults.
const (
	DefaultVolume     = 0.5
	DefaultVolumeStep = 0.1
)

// Clamp limits level to [0.0, 1.0].
func Clamp(level float64) float64 {
	if math.IsNaN(level) || level < 0.0 {
		return 0.0
	}
	if level > 1.0 {
		return 1.0
	}
	return level
}

// Adjust returns currentLevel+delta clamped to [0.0, 1.0].
func Adjust(currentLevel, delta float64) float64 {
	return Clamp(currentLevel + delta)
}

// ToPercent converts a level to a percentage rounded half away from zero.
func ToPercent(level float64) int {
	return int(math.Round(Clamp(level) * 100))
}

// VolumeManager holds the current volume level and the step used by VolumeUp/VolumeDown.
type VolumeManager struct {
	level float64
	step  float64
}

// NewVolumeManager creates a volume manager. A non-positive step selects DefaultVolumeStep.
func NewVolumeManager(level, step float64) *VolumeManager {
	if step <= 0 || math.IsNaN(step) {
		step = DefaultVolumeStep
	}
	return &VolumeManager{level: Clamp(level), step: step}
}

// Level returns the current level.
func (v *VolumeManager) Level() float64 {
	return v.level
}

// Percent returns the current level as a percentage.
func (v *VolumeManager) Percent() int {
	return ToPercent(v.level)
}

// Step returns the configured step.
func (v *VolumeManager) Step() float64 {
	return v.step
}

// Set stores level clamped to [0.0, 1.0] and returns the stored value.
func (v *VolumeManager) Set(level float64) float64 {
	v.level = Clamp(level)
	return v.level
}

// Up returns the level one step above the current one.
func (v *VolumeManager) Up() float64 {
	return Adjust(v.level, v.step)
}

// Down returns the level one step below the current one.
func (v *VolumeManager) Down() float64 {
	return Adjust(v.level, -v.step)
}
