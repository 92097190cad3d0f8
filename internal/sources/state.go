package sources

import "fmt"

// State is the position of one adapter search in its lifecycle.
type State int

const (
	Uninitialized State = iota
	QueryBuilt
	ResultPageFetched
	NoResults
	ResultsEnumerated
	ResultsParsed
)

var stateNames = [...]string{
	Uninitialized:     "uninitialized",
	QueryBuilt:        "query-built",
	ResultPageFetched: "result-page-fetched",
	NoResults:         "no-results",
	ResultsEnumerated: "results-enumerated",
	ResultsParsed:     "results-parsed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// transitions lists the only legal successor states.
var transitions = map[State][]State{
	Uninitialized:     {QueryBuilt},
	QueryBuilt:        {ResultPageFetched},
	ResultPageFetched: {NoResults, ResultsEnumerated},
	ResultsEnumerated: {ResultsParsed},
}

// machine tracks the state of a single search.
type machine struct {
	source string
	state  State
}

// advance moves to next, or reports an error if next does not follow the
// current state.
func (m *machine) advance(next State) error {
	for _, allowed := range transitions[m.state] {
		if allowed == next {
			m.state = next
			return nil
		}
	}
	return fmt.Errorf("%s: illegal transition %s -> %s", m.source, m.state, next)
}
