package core

// UnitRange holds a normalized value in [0, 1]
type UnitRange struct {
	value float32
}

// NewUnitRange creates a holder with an initial value
func NewUnitRange(initial float32) UnitRange {
	var u UnitRange
	u.value = 0.5
	u.Set(initial)
	return u
}

// Set stores v clamped to [0, 1]. NaN is ignored.
func (u *UnitRange) Set(v float32) {
	if v != v {
		return
	}
	u.value = Clamp01(v)
}

// Get returns the stored value
func (u *UnitRange) Get() float32 {
	return u.value
}

// Clamp01 limits v to [0, 1]
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
