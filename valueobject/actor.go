package valueobject

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/kbukum/oswald/validation"
)

// ActorKind classifies who performs an action.
type ActorKind string

const (
	ActorHuman   ActorKind = "H"
	ActorSystem  ActorKind = "SYSTEM"
	ActorService ActorKind = "SERVICE"
)

var (
	actorKinds     = []string{string(ActorHuman), string(ActorSystem), string(ActorService)}
	actorNameChars = regexp.MustCompile(`^[A-Za-z0-9\s\-_.]+$`)
)

// Valid reports whether k is a known kind.
func (k ActorKind) Valid() bool { return slices.Contains(actorKinds, string(k)) }

// ActorProps is the raw input for NewActor. An empty ID generates one.
type ActorProps struct {
	ID   string
	Name string
	Kind ActorKind
}

// Actor identifies a human, system or service acting on the domain.
type Actor struct {
	id   UUID
	name string
	kind ActorKind
}

// NewActor validates props, checking name, kind and id in that order.
func NewActor(props ActorProps) (Actor, error) {
	name := validation.New().
		Length("name", props.Name, 2, 100).
		Matches("name", props.Name, actorNameChars)
	if name.HasErrors() {
		return Actor{}, invalid("name", fmt.Sprintf("Invalid actor name format: %s", props.Name))
	}
	kind := string(props.Kind)
	if validation.New().Required("kind", kind).OneOf("kind", kind, actorKinds...).HasErrors() {
		return Actor{}, invalid("kind", fmt.Sprintf("Invalid actor kind: %s", props.Kind))
	}
	id, err := NewUUID(props.ID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{id: id, name: props.Name, kind: props.Kind}, nil
}

func (a Actor) ID() UUID        { return a.id }
func (a Actor) Name() string    { return a.name }
func (a Actor) Kind() ActorKind { return a.kind }

// Equals reports whether both actors hold the same id, name and kind.
func (a Actor) Equals(other Actor) bool {
	return a.id.Equals(other.id) && a.name == other.name && a.kind == other.kind
}
