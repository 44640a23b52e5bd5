package block

import "math"

// FacingFromYaw buckets a yaw angle (degrees) into a cardinal facing.
// Yaw is normalized into [0, 360); the sectors are 90 degrees wide with
// boundaries at 45/135/225/315, south covering the wrap-around.
func FacingFromYaw(yaw float64) PropValue {
	y := math.Mod(yaw, 360)
	if y < 0 {
		y += 360
	}
	switch {
	case y >= 45 && y < 135:
		return West
	case y >= 135 && y < 225:
		return North
	case y >= 225 && y < 315:
		return East
	default:
		return South
	}
}
