package model

// ProblemInput is the full inbound problem: the people, the horizon
// configuration, any preassignments, and the objective weights.
type ProblemInput struct {
	Persons        []Person
	Config         Config
	Preassignments []Preassignment
	Weights        Weights
}
