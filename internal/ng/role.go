// Package ng extends the generic lint walker with Angular-style role
// annotations: class decorators marking components, directives and pipes,
// member decorators marking inputs and outputs, and inline templates that
// are parsed as a second dialect and walked in place.
package ng

// Role is the domain role a decorator assigns to its target.
type Role int

const (
	None Role = iota
	Component
	Directive
	Pipe
	Input
	Output
)

var roleNames = map[string]Role{
	"Component": Component,
	"Directive": Directive,
	"Pipe":      Pipe,
	"Input":     Input,
	"Output":    Output,
}

// Classify maps a decorator callee name to its Role.
func Classify(name string) Role {
	return roleNames[name]
}

func (r Role) String() string {
	switch r {
	case Component:
		return "Component"
	case Directive:
		return "Directive"
	case Pipe:
		return "Pipe"
	case Input:
		return "Input"
	case Output:
		return "Output"
	default:
		return "None"
	}
}

// IsClassRole reports whether r applies to class declarations.
func (r Role) IsClassRole() bool {
	return r == Component || r == Directive || r == Pipe
}
