package di

import (
	stderrors "errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	apperrors "github.com/kbukum/oswald/errors"
)

type testService struct{ value float64 }

type dependencyService struct{ value string }

type consumer struct {
	first  any
	second any
}

func serviceDescriptor(key string) Descriptor {
	return Describe(key, func(Args) (any, error) {
		return &testService{value: rand.Float64()}, nil
	}).Build()
}

func globalContainer(t *testing.T) *Container {
	t.Helper()
	c := GetInstance()
	c.Clear()
	t.Cleanup(c.Clear)
	return c
}

func TestGetInstanceIsProcessWide(t *testing.T) {
	if GetInstance() != GetInstance() {
		t.Fatal("expected GetInstance to return the same container")
	}
}

func TestRegisterAndGet(t *testing.T) {
	c := New()
	if err := c.Register("TestService", serviceDescriptor("TestService")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	instance, err := c.Get("TestService")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, ok := instance.(*testService); !ok {
		t.Errorf("expected *testService, got %T", instance)
	}
}

func TestTransientReturnsNewInstanceEachCall(t *testing.T) {
	c := New()
	c.Register("TestService", serviceDescriptor("TestService"))

	first, _ := c.Get("TestService")
	second, _ := c.Get("TestService")
	if first == second {
		t.Error("expected transient registration to construct a new instance per Get")
	}
}

func TestSingletonReturnsSameInstance(t *testing.T) {
	c := New()
	c.RegisterSingleton("SingletonService", serviceDescriptor("SingletonService"))

	first, _ := c.Get("SingletonService")
	second, _ := c.Get("SingletonService")
	if first != second {
		t.Error("expected singleton registration to return the cached instance")
	}
}

func TestSingletonSharedAcrossHandles(t *testing.T) {
	c1 := globalContainer(t)
	c2 := GetInstance()

	c1.RegisterSingleton("SingletonService", serviceDescriptor("SingletonService"))

	first := MustResolve[*testService](c1, "SingletonService")
	second := MustResolve[*testService](c2, "SingletonService")
	if first != second || first.value != second.value {
		t.Error("expected both handles to observe the same singleton")
	}
}

func TestSingletonConcurrentFirstResolution(t *testing.T) {
	c := New()
	c.RegisterSingleton("SingletonService", serviceDescriptor("SingletonService"))

	const workers = 32
	results := make([]any, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = c.Get("SingletonService")
		}()
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("worker %d observed a different singleton", i)
		}
	}
}

func TestResolveInjectsDependencies(t *testing.T) {
	c := New()
	c.Register("DependencyService", Describe("DependencyService", func(Args) (any, error) {
		return &dependencyService{value: "dependency"}, nil
	}).Build())

	d := Describe("TestService", func(args Args) (any, error) {
		dep, err := Arg[*dependencyService](args, 0)
		if err != nil {
			return nil, err
		}
		return &consumer{first: dep}, nil
	}).DependsOn("DependencyService").Build()
	c.Register("TestService", d)

	instance := MustResolve[*consumer](c, "TestService")
	if instance.first.(*dependencyService).value != "dependency" {
		t.Errorf("expected injected dependency, got %v", instance.first)
	}
}

func TestResolveDependencyOrderAndOverride(t *testing.T) {
	c := New()
	for _, key := range []string{"First", "Second", "Replacement"} {
		c.Register(key, Describe(key, func(Args) (any, error) { return key, nil }).Build())
	}

	var received Args
	ctor := func(args Args) (any, error) {
		received = args
		return &consumer{first: args[0], second: args[1]}, nil
	}

	if _, err := c.Resolve(Describe("Consumer", ctor).DependsOn("First", "Second").Build()); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if received[0] != "First" || received[1] != "Second" {
		t.Errorf("expected dependencies in declared order, got %v", received)
	}

	overridden := Describe("Consumer", ctor).DependsOn("First", "Second").Inject(1, "Replacement").Build()
	if _, err := c.Resolve(overridden); err != nil {
		t.Fatalf("Resolve with override failed: %v", err)
	}
	if received[0] != "First" || received[1] != "Replacement" {
		t.Errorf("expected override at position 1 only, got %v", received)
	}
}

func TestResolveZeroDependencies(t *testing.T) {
	c := New()
	var got Args
	_, err := c.Resolve(Describe("Leaf", func(args Args) (any, error) {
		got = args
		return struct{}{}, nil
	}).Build())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty argument list, got %v", got)
	}
}

func TestGetNotRegistered(t *testing.T) {
	c := New()
	_, err := c.Get("UnregisteredService")
	if !apperrors.HasCode(err, apperrors.ErrCodeNotRegistered) {
		t.Fatalf("expected NOT_REGISTERED, got %v", err)
	}
	if !strings.Contains(err.Error(), "No registration found for UnregisteredService") {
		t.Errorf("expected key in message, got %q", err.Error())
	}
}

func TestClearRemovesRegistrations(t *testing.T) {
	c := globalContainer(t)
	c.Register("TestService", serviceDescriptor("TestService"))
	if _, err := c.Get("TestService"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	c.Clear()

	_, err := c.Get("TestService")
	if !apperrors.HasCode(err, apperrors.ErrCodeNotRegistered) {
		t.Errorf("expected NOT_REGISTERED after Clear, got %v", err)
	}
	c.Clear()
}

func TestClearDiscardsSingletons(t *testing.T) {
	c := New()
	c.RegisterSingleton("SingletonService", serviceDescriptor("SingletonService"))
	before, _ := c.Get("SingletonService")

	c.Clear()
	c.RegisterSingleton("SingletonService", serviceDescriptor("SingletonService"))
	after, _ := c.Get("SingletonService")

	if before == after {
		t.Error("expected a fresh singleton after Clear and re-registration")
	}
}

func TestReRegistrationReplacesFactory(t *testing.T) {
	c := New()
	c.RegisterSingleton("Value", Describe("Value", func(Args) (any, error) { return "old", nil }).Build())
	c.Get("Value")

	c.RegisterSingleton("Value", Describe("Value", func(Args) (any, error) { return "new", nil }).Build())
	if got := MustResolve[string](c, "Value"); got != "new" {
		t.Errorf("expected re-registration to replace the cached singleton, got %q", got)
	}
}

// cyclic registers A -> B -> A, counting constructor calls.
func cyclic(c *Container, singleton bool) *atomic.Int32 {
	var built atomic.Int32
	for _, pair := range [][2]string{{"A", "B"}, {"B", "A"}} {
		b := Describe(pair[0], func(Args) (any, error) {
			built.Add(1)
			return struct{}{}, nil
		}).DependsOn(pair[1])
		if singleton {
			b.AsSingleton()
		}
		c.Provide(b.Build())
	}
	return &built
}

func TestCircularDependencyDetected(t *testing.T) {
	c := New()
	built := cyclic(c, false)

	_, err := c.Get("A")
	if !apperrors.HasCode(err, apperrors.ErrCodeCircularDependency) {
		t.Fatalf("expected CIRCULAR_DEPENDENCY, got %v", err)
	}
	if !strings.Contains(err.Error(), "A -> B -> A") {
		t.Errorf("expected full cycle in message, got %q", err.Error())
	}
	if built.Load() != 0 {
		t.Errorf("expected no instance to be constructed, got %d", built.Load())
	}

	appErr, _ := apperrors.AsAppError(err)
	if chain := appErr.Details["chain"].([]string); len(chain) != 2 || chain[0] != "A" || chain[1] != "B" {
		t.Errorf("expected chain [A B], got %v", chain)
	}
}

func TestCircularDependencyThroughSingletonsCachesNothing(t *testing.T) {
	c := New()
	cyclic(c, true)

	if _, err := c.Get("B"); !apperrors.HasCode(err, apperrors.ErrCodeCircularDependency) {
		t.Fatalf("expected CIRCULAR_DEPENDENCY, got %v", err)
	}
	if !strings.Contains(fmt.Sprint(c.Get("B")), "B -> A -> B") {
		t.Error("expected chain to start at the requested key")
	}
	for _, info := range c.Registrations() {
		if info.Initialized {
			t.Errorf("expected %s not to be cached", info.Key)
		}
	}
}

func TestSelfDependency(t *testing.T) {
	c := New()
	c.Register("Self", Describe("Self", func(Args) (any, error) { return 1, nil }).DependsOn("Self").Build())

	_, err := c.Get("Self")
	if err == nil || !strings.Contains(err.Error(), "Self -> Self") {
		t.Errorf("expected self cycle, got %v", err)
	}
}

func TestDiamondIsNotACycle(t *testing.T) {
	c := New()
	var leaves atomic.Int32
	c.Register("D", Describe("D", func(Args) (any, error) {
		leaves.Add(1)
		return "d", nil
	}).Build())
	c.Register("B", Describe("B", func(a Args) (any, error) { return a[0], nil }).DependsOn("D").Build())
	c.Register("C", Describe("C", func(a Args) (any, error) { return a[0], nil }).DependsOn("D").Build())
	c.Register("A", Describe("A", func(a Args) (any, error) { return a, nil }).DependsOn("B", "C").Build())

	if _, err := c.Get("A"); err != nil {
		t.Fatalf("expected diamond graph to resolve, got %v", err)
	}
	if leaves.Load() != 2 {
		t.Errorf("expected transient D built once per path, got %d", leaves.Load())
	}
}

func TestContainerUsableAfterFailure(t *testing.T) {
	c := New()
	c.Register("Handler", Describe("Handler", func(a Args) (any, error) { return a[0], nil }).DependsOn("Missing").Build())

	_, err := c.Get("Handler")
	if !apperrors.HasCode(err, apperrors.ErrCodeNotRegistered) {
		t.Fatalf("expected NOT_REGISTERED for the dependency, got %v", err)
	}
	if appErr, _ := apperrors.AsAppError(err); appErr.Details["key"] != "Missing" {
		t.Errorf("expected the missing dependency key, got %v", appErr.Details["key"])
	}

	c.Register("Missing", Describe("Missing", func(Args) (any, error) { return "ok", nil }).Build())
	got, err := c.Get("Handler")
	if err != nil {
		t.Fatalf("expected resolution to succeed once the dependency exists, got %v", err)
	}
	if got != "ok" {
		t.Errorf("expected 'ok', got %v", got)
	}
}

func TestConstructorError(t *testing.T) {
	c := New()
	cause := stderrors.New("init failed")
	c.RegisterSingleton("Broken", Describe("Broken", func(Args) (any, error) { return nil, cause }).Build())

	_, err := c.Get("Broken")
	if !apperrors.HasCode(err, apperrors.ErrCodeConstructionFailed) {
		t.Fatalf("expected CONSTRUCTION_FAILED, got %v", err)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected constructor error to be wrapped")
	}
	if c.Registrations()[0].Initialized {
		t.Error("expected failed singleton not to be cached")
	}
}

func TestArgTypeMismatch(t *testing.T) {
	if _, err := Arg[string](Args{42}, 0); !apperrors.HasCode(err, apperrors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH, got %v", err)
	}
	if _, err := Arg[string](Args{}, 0); !apperrors.HasCode(err, apperrors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH for out of range, got %v", err)
	}
}

func TestRegisterInvalidDescriptor(t *testing.T) {
	c := New()
	tests := []struct {
		name string
		key  string
		d    Descriptor
	}{
		{"empty key", "", serviceDescriptor("x")},
		{"zero descriptor", "x", Descriptor{}},
		{"nil constructor", "x", Describe("x", nil).Build()},
		{"empty dependency", "x", Describe("x", func(Args) (any, error) { return nil, nil }).DependsOn("").Build()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := c.Register(tc.key, tc.d); !apperrors.HasCode(err, apperrors.ErrCodeInvalidDescriptor) {
				t.Errorf("expected INVALID_DESCRIPTOR, got %v", err)
			}
		})
	}
	if _, err := c.Resolve(Descriptor{}); !apperrors.HasCode(err, apperrors.ErrCodeInvalidDescriptor) {
		t.Errorf("expected Resolve to reject the zero descriptor, got %v", err)
	}
}

func TestProvideUsesSingletonFlag(t *testing.T) {
	c := New()
	c.Provide(Describe("Transient", func(Args) (any, error) { return &testService{}, nil }).Build())
	c.Provide(Describe("Shared", func(Args) (any, error) { return &testService{}, nil }).AsSingleton().Build())

	if a, b := MustResolve[*testService](c, "Transient"), MustResolve[*testService](c, "Transient"); a == b {
		t.Error("expected transient instances to differ")
	}
	if a, b := MustResolve[*testService](c, "Shared"), MustResolve[*testService](c, "Shared"); a != b {
		t.Error("expected singleton instances to match")
	}
}

func TestRegistrations(t *testing.T) {
	c := New()
	c.RegisterSingleton("b-singleton", serviceDescriptor("b-singleton"))
	c.Register("a-transient", Describe("a-transient", func(a Args) (any, error) { return a, nil }).
		DependsOn("b-singleton").Build())
	c.Get("a-transient")

	regs := c.Registrations()
	if len(regs) != 2 {
		t.Fatalf("expected 2 registrations, got %d", len(regs))
	}
	if regs[0].Key != "a-transient" || regs[0].Mode != Transient || regs[0].Initialized {
		t.Errorf("unexpected transient info: %+v", regs[0])
	}
	if len(regs[0].Dependencies) != 1 || regs[0].Dependencies[0] != "b-singleton" {
		t.Errorf("expected dependencies to be reported, got %v", regs[0].Dependencies)
	}
	if regs[1].Key != "b-singleton" || regs[1].ModeName != "singleton" || !regs[1].Initialized {
		t.Errorf("unexpected singleton info: %+v", regs[1])
	}
	if !c.Has("a-transient") || c.Has("missing") {
		t.Error("Has does not match registrations")
	}
}

type mockCloser struct {
	closed bool
	err    error
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}

func TestClose(t *testing.T) {
	c := New()
	ok := &mockCloser{}
	failing := &mockCloser{err: stderrors.New("flush failed")}
	c.RegisterSingleton("ok", Describe("ok", func(Args) (any, error) { return ok, nil }).Build())
	c.RegisterSingleton("failing", Describe("failing", func(Args) (any, error) { return failing, nil }).Build())
	c.Get("ok")
	c.Get("failing")

	err := c.Close()
	if !ok.closed || !failing.closed {
		t.Error("expected Close to close every cached singleton")
	}
	if err == nil || !strings.Contains(err.Error(), "closing failing") {
		t.Errorf("expected close error to be reported, got %v", err)
	}
	if c.Registrations()[0].Initialized {
		t.Error("expected closed singletons to leave the cache")
	}
}

func TestTypedHelpers(t *testing.T) {
	c := New()
	c.RegisterSingleton("num", Describe("num", func(Args) (any, error) { return 42, nil }).Build())

	if v, err := Resolve[int](c, "num"); err != nil || v != 42 {
		t.Errorf("expected 42, got %v (%v)", v, err)
	}
	if _, err := Resolve[string](c, "num"); !apperrors.HasCode(err, apperrors.ErrCodeTypeMismatch) {
		t.Errorf("expected TYPE_MISMATCH, got %v", err)
	}
	if _, ok := TryResolve[int](c, "missing"); ok {
		t.Error("expected TryResolve to fail for a missing key")
	}
	if v, ok := TryResolve[int](c, "num"); !ok || v != 42 {
		t.Error("expected TryResolve to succeed")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustResolve to panic for a missing key")
		}
	}()
	MustResolve[int](c, "missing")
}
