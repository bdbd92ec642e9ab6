package delivery

// Shift selects the courier provider family for a job.
type Shift int

const (
	Daytime Shift = iota
	Nighttime
)

func (s Shift) String() string {
	if s == Daytime {
		return "daytime"
	}
	return "nighttime"
}
