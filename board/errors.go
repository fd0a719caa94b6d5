package board

import "fmt"

// ValidationError reports a rejected input field. The operation performs
// no store write when validation fails.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// DuplicateNameError reports a pre-write name collision inside the
// operation's scope (project for tasks, owner for projects).
type DuplicateNameError struct {
	Kind string
	Name string
}

func (e DuplicateNameError) Error() string {
	return fmt.Sprintf("a %s named %q already exists", e.Kind, e.Name)
}
