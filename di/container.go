package di

import (
	stderrors "errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	apperrors "github.com/kbukum/oswald/errors"
	"github.com/kbukum/oswald/logger"
)

// Mode determines how a registration is resolved.
type Mode int

const (
	Transient Mode = iota // New instance on every resolve
	Singleton             // Constructed on first resolve, then cached
)

func (m Mode) String() string {
	if m == Singleton {
		return "singleton"
	}
	return "transient"
}

// RegistrationInfo describes a registered component for introspection.
type RegistrationInfo struct {
	Key          string   `json:"key"`
	Mode         Mode     `json:"-"`
	ModeName     string   `json:"mode"`
	Dependencies []string `json:"dependencies"`
	Initialized  bool     `json:"initialized"`
}

type registration struct {
	key        string
	descriptor Descriptor
	mode       Mode
}

// Container owns the registry and the singleton cache.
// It is safe for concurrent use; the resolution chain used for cycle
// detection is local to each top-level Get or Resolve call.
type Container struct {
	registrations map[string]*registration
	singletons    map[string]any
	mutex         sync.RWMutex
	log           *logger.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration and lifecycle events.
func WithLogger(l *logger.Logger) Option {
	return func(c *Container) {
		c.log = l.WithComponent("di")
	}
}

// New creates an independent container.
func New(opts ...Option) *Container {
	c := &Container{
		registrations: make(map[string]*registration),
		singletons:    make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	instance     *Container
	instanceOnce sync.Once
)

// GetInstance returns the process-wide container, creating it on first use.
func GetInstance() *Container {
	instanceOnce.Do(func() {
		instance = New()
	})
	return instance
}

// Register stores a transient factory for key. Every Get constructs a new
// instance. A previous registration for key is replaced.
func (c *Container) Register(key string, d Descriptor) error {
	return c.register(key, d, Transient)
}

// RegisterSingleton stores a factory for key that constructs once and then
// returns the cached instance.
func (c *Container) RegisterSingleton(key string, d Descriptor) error {
	return c.register(key, d, Singleton)
}

// Provide registers d under its own key, as singleton when d is flagged so.
func (c *Container) Provide(d Descriptor) error {
	if d.singleton {
		return c.RegisterSingleton(d.key, d)
	}
	return c.Register(d.key, d)
}

func (c *Container) register(key string, d Descriptor, mode Mode) error {
	if key == "" {
		return apperrors.InvalidDescriptor(d.key, "registration key is required")
	}
	if err := d.validate(); err != nil {
		return err
	}

	c.mutex.Lock()
	c.registrations[key] = &registration{key: key, descriptor: d, mode: mode}
	delete(c.singletons, key)
	c.mutex.Unlock()

	c.logger().Debug("Component registered", logger.Fields(
		logger.FieldKey, key,
		logger.FieldMode, mode.String(),
	))
	return nil
}

// Get returns an instance for key. It fails with NOT_REGISTERED when no
// factory exists.
func (c *Container) Get(key string) (any, error) {
	return c.get(key, &chain{})
}

// Has reports whether a factory exists for key.
func (c *Container) Has(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	_, ok := c.registrations[key]
	return ok
}

func (c *Container) get(key string, ch *chain) (any, error) {
	c.mutex.RLock()
	reg, ok := c.registrations[key]
	c.mutex.RUnlock()

	if !ok {
		return nil, apperrors.NotRegistered(key)
	}
	if reg.mode == Singleton {
		return c.singleton(reg, ch)
	}
	return c.resolve(reg.descriptor, ch)
}

// singleton returns the cached instance for reg, constructing it on a miss.
// Construction runs without the lock held; the first instance stored wins.
func (c *Container) singleton(reg *registration, ch *chain) (any, error) {
	c.mutex.RLock()
	cached, ok := c.singletons[reg.key]
	c.mutex.RUnlock()
	if ok {
		return cached, nil
	}

	built, err := c.resolve(reg.descriptor, ch)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if cached, ok := c.singletons[reg.key]; ok {
		return cached, nil
	}
	// Clear or re-registration while constructing: hand the instance to the
	// caller but keep it out of the cache.
	if c.registrations[reg.key] != reg {
		return built, nil
	}
	c.singletons[reg.key] = built

	c.logger().Debug("Singleton initialized", logger.Fields(logger.FieldKey, reg.key))
	return built, nil
}

// Clear discards all registrations and cached singletons.
func (c *Container) Clear() {
	c.mutex.Lock()
	c.registrations = make(map[string]*registration)
	c.singletons = make(map[string]any)
	c.mutex.Unlock()
}

// Registrations returns info about all registered components, sorted by key.
func (c *Container) Registrations() []RegistrationInfo {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]RegistrationInfo, 0, len(c.registrations))
	for key, reg := range c.registrations {
		_, initialized := c.singletons[key]
		result = append(result, RegistrationInfo{
			Key:          key,
			Mode:         reg.mode,
			ModeName:     reg.mode.String(),
			Dependencies: reg.descriptor.Dependencies(),
			Initialized:  initialized,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// Close closes every cached singleton that implements Close() error and
// drops it from the cache. Registrations are kept.
func (c *Container) Close() error {
	c.mutex.Lock()
	cached := c.singletons
	c.singletons = make(map[string]any)
	c.mutex.Unlock()

	keys := make([]string, 0, len(cached))
	for key := range cached {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var errs []error
	for _, key := range keys {
		if closer, ok := cached[key].(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing %s: %w", key, err))
			}
		}
	}
	return stderrors.Join(errs...)
}

func (c *Container) logger() *logger.Logger {
	if c.log != nil {
		return c.log
	}
	return logger.WithComponent("di")
}
