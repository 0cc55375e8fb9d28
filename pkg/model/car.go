package model

// Input is the discrete input state sampled once per tick.
// If neither Forward nor Backward is set the vehicle coasts.
type Input struct {
	TurnLeft  bool
	TurnRight bool
	Forward   bool
	Backward  bool
}

// Pose is the vehicle position in track pixels and its heading in degrees.
// Heading 0 points up, positive values rotate counter-clockwise.
type Pose struct {
	X       float64
	Y       float64
	Heading float64
}
