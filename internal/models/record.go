package models

// Record is one scenario row: an agent or obstacle with its start and
// destination cells.
type Record struct {
	Class Class  `json:"class" yaml:"class"`
	ID    string `json:"id" yaml:"id"`
	Start Point  `json:"start" yaml:"start"`
	Dest  Point  `json:"dest" yaml:"dest"`
}

// Step is one entry of an agent's movement log. A step whose From equals
// its To is a self-loop: the agent stayed put.
type Step struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Moved reports whether the step changed cells.
func (s Step) Moved() bool {
	return s.From != s.To
}

// TrajectoryRow is the per-turn position of one active agent.
type TrajectoryRow struct {
	Turn   int    `json:"turn"`
	Symbol string `json:"class"`
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	DestX  int    `json:"dest_x"`
	DestY  int    `json:"dest_y"`
}
