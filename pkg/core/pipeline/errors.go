package pipeline

import (
	"fmt"
)

// SearchError is a whole-search failure. Kind is one of the errs sentinels and Stats
// tells "nothing found" apart from "documents failed".
type SearchError struct {
	Kind  error
	Stats Stats
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%v (%d tasks: %d ok, %d no entities, %d short, %d transport, %d other)",
		e.Kind, e.Stats.Total, e.Stats.Succeeded, e.Stats.NoEntities, e.Stats.Short, e.Stats.Transport, e.Stats.Other)
}

func (e *SearchError) Unwrap() error {
	return e.Kind
}
