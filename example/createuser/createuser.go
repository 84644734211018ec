// Package createuser is an example feature module: a CreateUser command and a
// FindUser query served by handlers sharing one user store.
package createuser

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/kbukum/oswald/di"
	apperrors "github.com/kbukum/oswald/errors"
	"github.com/kbukum/oswald/feature"
	"github.com/kbukum/oswald/logger"
	"github.com/kbukum/oswald/validation"
	"github.com/kbukum/oswald/valueobject"
)

// Registration keys.
const (
	StoreKey             = "Store"
	RepositoryKey        = "Repository"
	CreateUserHandlerKey = "CreateUserHandler"
	FindUserHandlerKey   = "FindUserHandler"
)

// Error codes raised by the module.
const (
	ErrCodeUserExists   apperrors.ErrorCode = "USER_EXISTS"
	ErrCodeUserNotFound apperrors.ErrorCode = "USER_NOT_FOUND"
)

// CreateUserCommand asks for a new user.
type CreateUserCommand struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

func (CreateUserCommand) RequestType() string { return "CreateUserCommand" }

// FindUserQuery looks a user up by email.
type FindUserQuery struct {
	Email string `json:"email" validate:"required,email"`
}

func (FindUserQuery) RequestType() string { return "FindUserQuery" }

// User is a stored user.
type User struct {
	ID        valueobject.UUID `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	CreatedBy string           `json:"created_by"`
}

// Store keeps users in memory, keyed by email.
type Store struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{users: make(map[string]User)}
}

// Len returns the number of stored users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Repository persists users into the Store.
type Repository struct {
	store *Store
	log   *logger.Logger
}

// Save stores u, failing with USER_EXISTS when the email is taken.
func (r *Repository) Save(u User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[u.Email]; ok {
		return apperrors.New(ErrCodeUserExists, fmt.Sprintf("User %s already exists", u.Email), http.StatusConflict).
			WithDetail("email", u.Email)
	}
	r.store.users[u.Email] = u
	r.log.Debug("save", logger.Fields("email", u.Email, "id", u.ID.String()))
	return nil
}

// FindByEmail returns the user stored under email.
func (r *Repository) FindByEmail(email string) (User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[email]
	if !ok {
		return User{}, apperrors.New(ErrCodeUserNotFound, fmt.Sprintf("User %s not found", email), http.StatusNotFound).
			WithDetail("email", email)
	}
	return u, nil
}

// CreateUserHandler serves CreateUserCommand.
type CreateUserHandler struct {
	repository *Repository
	actor      valueobject.Actor
	log        *logger.Logger
}

func (h *CreateUserHandler) Execute(_ context.Context, cmd CreateUserCommand) error {
	id, err := valueobject.NewUUID("")
	if err != nil {
		return err
	}
	user := User{ID: id, Name: cmd.Name, Email: cmd.Email, CreatedBy: h.actor.Name()}
	if err := h.repository.Save(user); err != nil {
		return err
	}
	h.log.Info("User created", logger.Fields("id", id.String(), "email", cmd.Email))
	return nil
}

// FindUserHandler serves FindUserQuery.
type FindUserHandler struct {
	repository *Repository
}

func (h *FindUserHandler) Execute(_ context.Context, q FindUserQuery) (User, error) {
	if err := validation.New().Required("email", q.Email).Email("email", q.Email).Err(); err != nil {
		return User{}, err
	}
	return h.repository.FindByEmail(q.Email)
}

// Descriptors returns the supporting components of the module: the singleton
// Store and the transient Repository built on it.
func Descriptors() []di.Descriptor {
	log := logger.WithComponent("createuser")
	return []di.Descriptor{
		di.Describe(StoreKey, func(di.Args) (any, error) {
			return NewStore(), nil
		}).AsSingleton().Build(),
		di.Describe(RepositoryKey, func(args di.Args) (any, error) {
			store, err := di.Arg[*Store](args, 0)
			if err != nil {
				return nil, err
			}
			return &Repository{store: store, log: log}, nil
		}).DependsOn(StoreKey).Build(),
	}
}

// CreateUser is the feature serving CreateUserCommand.
func CreateUser() *feature.Slice {
	return feature.Command[CreateUserCommand]("CreateUser", feature.Metadata{
		Trigger: CreateUserCommand{}.RequestType(),
		Handler: di.Describe(CreateUserHandlerKey, func(args di.Args) (any, error) {
			repo, err := di.Arg[*Repository](args, 0)
			if err != nil {
				return nil, err
			}
			actor, err := valueobject.NewActor(valueobject.ActorProps{Name: "createuser", Kind: valueobject.ActorService})
			if err != nil {
				return nil, err
			}
			return &CreateUserHandler{repository: repo, actor: actor, log: logger.WithComponent("createuser")}, nil
		}).DependsOn(RepositoryKey).Build(),
	})
}

// FindUser is the feature serving FindUserQuery.
func FindUser() *feature.Slice {
	return feature.Query[FindUserQuery, User]("FindUser", feature.Metadata{
		Trigger: FindUserQuery{}.RequestType(),
		Handler: di.Describe(FindUserHandlerKey, func(args di.Args) (any, error) {
			repo, err := di.Arg[*Repository](args, 0)
			if err != nil {
				return nil, err
			}
			return &FindUserHandler{repository: repo}, nil
		}).DependsOn(RepositoryKey).Build(),
	})
}

// Provider registers descriptors.
type Provider interface {
	Provide(d di.Descriptor) error
}

// Install registers the module's components with c and its features with d.
func Install(c Provider, d *feature.Dispatcher) error {
	for _, desc := range Descriptors() {
		if err := c.Provide(desc); err != nil {
			return err
		}
	}
	for _, f := range []*feature.Slice{CreateUser(), FindUser()} {
		if err := d.RegisterFeature(f); err != nil {
			return err
		}
	}
	return nil
}
