package di

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/inject/errors"
	"github.com/kbukum/inject/introspect"
	"github.com/kbukum/inject/logger"
	"github.com/kbukum/inject/marker"
	"github.com/kbukum/inject/typekey"
)

var (
	requestScope = marker.NewScope("request").Marker()
	taskScope    = marker.NewScope("task").Marker()
)

type wheel struct{ Position int }

type radio struct{ Station string }

type session struct {
	ID     int
	closed bool
}

func (s *session) Close() error {
	s.closed = true
	return nil
}

func newInjector(t *testing.T, types *introspect.Table, loaders ...LoaderFunc) *Injector {
	t.Helper()
	ls := make([]Loader, len(loaders))
	for i, l := range loaders {
		ls[i] = l
	}
	inj, err := New(ls, WithIntrospector(types), WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = inj.Close() })
	return inj
}

func strict(types ...typekey.Key) StrictOptions {
	return StrictOptions{Types: types}
}

func TestSingletonIsBuiltOnce(t *testing.T) {
	var built atomic.Int32
	types := introspect.NewTable()
	types.MustRegister(introspect.Describe[*dieselEngine]().
		Scope(marker.Singleton).
		Constructor(func() *dieselEngine {
			built.Add(1)
			return &dieselEngine{Power: 90}
		}))

	inj := newInjector(t, types, func(r *Registry) error {
		return Bind[*dieselEngine](r).AsStrict(strict(typekey.Of[motor](), typekey.Of[*dieselEngine]()))
	})

	const workers = 16
	got := make([]motor, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = MustGet[motor](inj)
		}(i)
	}
	wg.Wait()

	concrete := MustGet[*dieselEngine](inj)
	for i, m := range got {
		if m != motor(concrete) {
			t.Fatalf("worker %d got a different engine", i)
		}
	}
	if n := built.Load(); n != 1 {
		t.Errorf("engine built %d times, want 1", n)
	}
}

func TestTransientBuildsEveryTime(t *testing.T) {
	inj := newInjector(t, introspect.NewTable(), func(r *Registry) error {
		return Bind[*wheel](r).AsStrict(StrictOptions{})
	})
	a := MustGet[*wheel](inj)
	b := MustGet[*wheel](inj)
	if a == b {
		t.Error("transient binding returned the same wheel twice")
	}
}

func TestMultitonKeepsOneValuePerQualifier(t *testing.T) {
	type seat struct{ Row int }
	types := introspect.NewTable()
	types.MustRegister(introspect.Describe[*seat]().Scope(marker.Multiton))

	driver, passenger := marker.Named("driver"), marker.Named("passenger")
	inj := newInjector(t, types, func(r *Registry) error {
		if err := Bind[*seat](r).AsStrict(StrictOptions{Qualifier: driver}); err != nil {
			return err
		}
		return Bind[*seat](r).AsStrict(StrictOptions{Qualifier: passenger})
	})

	d1 := MustGet[*seat](inj, driver)
	d2 := MustGet[*seat](inj, driver)
	p := MustGet[*seat](inj, passenger)
	if d1 != d2 {
		t.Error("same qualifier produced two seats")
	}
	if d1 == p {
		t.Error("different qualifiers shared one seat")
	}
	if _, err := Get[*seat](inj); !errors.HasCode(err, errors.ErrCodeUnknownRequest) {
		t.Errorf("unqualified request: got %v, want UNKNOWN_REQUEST", err)
	}
}

func TestListOfFourTransientWheels(t *testing.T) {
	type garageCar struct {
		Wheels []*wheel
	}
	types := introspect.NewTable()
	types.MustRegister(introspect.Describe[*garageCar]().
		Constructor(func(w []*wheel) *garageCar { return &garageCar{Wheels: w} }))

	inj := newInjector(t, types, func(r *Registry) error {
		for i := 0; i < 4; i++ {
			if err := Bind[*wheel](r).AsListMember(CollectionOptions{ElementType: typekey.Of[*wheel]()}); err != nil {
				return err
			}
		}
		return Bind[*garageCar](r).AsStrict(StrictOptions{})
	})

	car := MustGet[*garageCar](inj)
	if len(car.Wheels) != 4 {
		t.Fatalf("car has %d wheels, want 4", len(car.Wheels))
	}
	seen := make(map[*wheel]bool)
	for _, w := range car.Wheels {
		if w == nil {
			t.Fatal("nil wheel")
		}
		seen[w] = true
	}
	if len(seen) != 4 {
		t.Errorf("got %d distinct wheels, want 4", len(seen))
	}

	again := MustGet[[]*wheel](inj)
	if again[0] == car.Wheels[0] {
		t.Error("unscoped list was reused across requests")
	}
}

func TestAggregates(t *testing.T) {
	strings := CollectionOptions{ElementType: typekey.Of[string]()}
	first := func(r *Registry) error {
		if err := r.AddInstance("front-left").AsListMember(strings); err != nil {
			return err
		}
		if err := r.AddInstance("front-right").AsListMember(strings); err != nil {
			return err
		}
		if err := r.AddInstance("spare").AsSetMember(strings); err != nil {
			return err
		}
		return r.AddInstance("spare").AsSetMember(strings)
	}
	second := func(r *Registry) error {
		if err := r.AddInstance("rear").AsListMember(strings); err != nil {
			return err
		}
		motors := MapMemberOptions{KeyType: typekey.Of[string](), ValueType: typekey.Of[motor]()}
		motors.Key = "diesel"
		if err := Bind[*dieselEngine](r).AsMapMember(motors); err != nil {
			return err
		}
		motors.Key = "electric"
		return r.AddInstance(&electricEngine{}).AsMapMember(motors)
	}
	inj := newInjector(t, introspect.NewTable(), first, second)

	t.Run("list keeps contribution order across loaders", func(t *testing.T) {
		got := MustGet[[]string](inj)
		want := []string{"front-left", "front-right", "rear"}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("set collapses equal members", func(t *testing.T) {
		got := MustGet[map[string]struct{}](inj)
		if _, ok := got["spare"]; !ok || len(got) != 1 {
			t.Errorf("got %v", got)
		}
	})

	t.Run("map keys members", func(t *testing.T) {
		got := MustGet[map[string]motor](inj)
		if len(got) != 2 {
			t.Fatalf("got %d motors", len(got))
		}
		if got["diesel"].Start() != "diesel" || got["electric"].Start() != "electric" {
			t.Errorf("got %v", got)
		}
	})
}

func TestScopedAggregateIsCached(t *testing.T) {
	inj := newInjector(t, introspect.NewTable(), func(r *Registry) error {
		return Bind[*wheel](r).AsListMember(CollectionOptions{
			ElementType: typekey.Of[*wheel](),
			Scope:       marker.Singleton,
		})
	})
	a := MustGet[[]*wheel](inj)
	b := MustGet[[]*wheel](inj)
	if &a[0] != &b[0] {
		t.Error("singleton list was rebuilt")
	}
}

func TestScopeHierarchy(t *testing.T) {
	var ids atomic.Int32
	types := introspect.NewTable()
	types.MustRegister(
		introspect.Describe[*session]().
			Scope(requestScope).
			Constructor(func() *session { return &session{ID: int(ids.Add(1))} }),
		introspect.Describe[*dieselEngine]().Scope(marker.Singleton),
	)
	inj := newInjector(t, types, func(r *Registry) error {
		if err := Bind[*session](r).AsStrict(StrictOptions{}); err != nil {
			return err
		}
		return Bind[*dieselEngine](r).AsStrict(StrictOptions{})
	})

	t.Run("inactive scope", func(t *testing.T) {
		_, err := Get[*session](inj)
		if !errors.HasCode(err, errors.ErrCodeScopeNotActive) {
			t.Fatalf("got %v, want SCOPE_NOT_ACTIVE", err)
		}
		if !errors.IsContractViolation(err) {
			t.Error("inactive scope is not a contract violation")
		}
	})

	first, err := inj.EnterScope(requestScope)
	if err != nil {
		t.Fatalf("EnterScope: %v", err)
	}
	second, err := inj.EnterScope(requestScope)
	if err != nil {
		t.Fatalf("EnterScope: %v", err)
	}
	defer second.Close()

	t.Run("one value per context", func(t *testing.T) {
		a := MustGet[*session](first)
		if b := MustGet[*session](first); a != b {
			t.Error("same context built two sessions")
		}
		if c := MustGet[*session](second); a == c {
			t.Error("sibling contexts shared a session")
		}
	})

	t.Run("nested context uses nearest owner", func(t *testing.T) {
		task, err := second.EnterScope(taskScope)
		if err != nil {
			t.Fatalf("EnterScope: %v", err)
		}
		defer task.Close()
		if MustGet[*session](task) != MustGet[*session](second) {
			t.Error("task context did not reuse the request session")
		}
		if MustGet[*dieselEngine](task) != MustGet[*dieselEngine](inj) {
			t.Error("singleton was not owned by the root")
		}
		if !task.IsActive(requestScope) || task.IsActive(marker.NewScope("other").Marker()) {
			t.Error("wrong active scopes")
		}
	})

	t.Run("close releases owned values", func(t *testing.T) {
		s := MustGet[*session](first)
		if err := first.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if !s.closed {
			t.Error("session was not closed")
		}
		_, err := Get[*session](first)
		if !errors.HasCode(err, errors.ErrCodeContextClosed) {
			t.Errorf("got %v, want CONTEXT_CLOSED", err)
		}
		if err := first.Close(); err != nil {
			t.Errorf("second Close: %v", err)
		}
	})

	t.Run("enter scope rejects qualifiers", func(t *testing.T) {
		if _, err := inj.EnterScope(marker.Named("x")); !errors.HasCode(err, errors.ErrCodeInvalidBinding) {
			t.Errorf("got %v, want INVALID_BINDING", err)
		}
	})
}

type closeRecorder struct {
	name string
	log  *[]string
}

func (c *closeRecorder) Close() error {
	*c.log = append(*c.log, c.name)
	return nil
}

type pump struct{ *closeRecorder }

type tank struct {
	*closeRecorder
	Pump *pump
}

func TestCloseReleasesNewestFirst(t *testing.T) {
	var order []string
	types := introspect.NewTable()
	types.MustRegister(
		introspect.Describe[*pump]().Scope(marker.Singleton).
			Constructor(func() *pump { return &pump{&closeRecorder{name: "pump", log: &order}} }),
		introspect.Describe[*tank]().Scope(marker.Singleton).
			Constructor(func(p *pump) *tank { return &tank{&closeRecorder{name: "tank", log: &order}, p} }),
	)
	inj, err := New([]Loader{LoaderFunc(func(r *Registry) error {
		if err := Bind[*pump](r).AsStrict(StrictOptions{}); err != nil {
			return err
		}
		return Bind[*tank](r).AsStrict(StrictOptions{})
	})}, WithIntrospector(types), WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	MustGet[*tank](inj)
	if err := inj.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if fmt.Sprint(order) != "[tank pump]" {
		t.Errorf("close order = %v", order)
	}
}

type tip struct{ ID int32 }
type leftArm struct{ Tip *tip }
type rightArm struct{ Tip *tip }
type diamond struct {
	Left  *leftArm
	Right *rightArm
}

func TestConcurrentDiamondDoesNotTripGuard(t *testing.T) {
	var built atomic.Int32
	types := introspect.NewTable()
	types.MustRegister(
		introspect.Describe[*tip]().Scope(marker.Singleton).
			Constructor(func() *tip { return &tip{ID: built.Add(1)} }),
		introspect.Describe[*leftArm]().Constructor(func(p *tip) *leftArm { return &leftArm{Tip: p} }),
		introspect.Describe[*rightArm]().Constructor(func(p *tip) *rightArm { return &rightArm{Tip: p} }),
		introspect.Describe[*diamond]().
			Constructor(func(l *leftArm, r *rightArm) *diamond { return &diamond{Left: l, Right: r} }),
	)
	inj := newInjector(t, types, func(r *Registry) error {
		for _, k := range []typekey.Key{
			typekey.Of[*tip](), typekey.Of[*leftArm](), typekey.Of[*rightArm](), typekey.Of[*diamond](),
		} {
			if err := r.AddImplementation(k).AsStrict(StrictOptions{}); err != nil {
				return err
			}
		}
		return nil
	})

	const workers = 64
	results := make([]*diamond, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = Get[*diamond](inj)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
	shared := results[0].Left.Tip
	for i, d := range results {
		if d.Left.Tip != shared || d.Right.Tip != shared {
			t.Fatalf("worker %d saw a different tip", i)
		}
	}
	if built.Load() != 1 {
		t.Errorf("tip built %d times", built.Load())
	}
}

type lantern struct{ *closeRecorder }

func TestCloseDuringConstructionReleasesTheValue(t *testing.T) {
	var (
		order []string
		trip  *Context
	)
	types := introspect.NewTable()
	types.MustRegister(introspect.Describe[*lantern]().Scope(requestScope).
		Constructor(func() *lantern {
			_ = trip.Close()
			return &lantern{&closeRecorder{name: "lantern", log: &order}}
		}))
	inj := newInjector(t, types, func(r *Registry) error {
		return Bind[*lantern](r).AsStrict(StrictOptions{})
	})

	var err error
	trip, err = inj.EnterScope(requestScope)
	if err != nil {
		t.Fatalf("EnterScope: %v", err)
	}
	if _, err := Get[*lantern](trip); !errors.HasCode(err, errors.ErrCodeContextClosed) {
		t.Fatalf("got %v, want CONTEXT_CLOSED", err)
	}
	if fmt.Sprint(order) != "[lantern]" {
		t.Errorf("released = %v", order)
	}
}

type chicken struct{ Egg *egg }
type egg struct{ Chicken *chicken }

type hen struct{ Nest Provider[*nest] }
type nest struct{ Hen *hen }

type rooster struct{ Coop *coop }
type coop struct{ Rooster *rooster }

func TestCycles(t *testing.T) {
	t.Run("direct cycle is detected", func(t *testing.T) {
		types := introspect.NewTable()
		types.MustRegister(
			introspect.Describe[*chicken]().Constructor(func(e *egg) *chicken { return &chicken{Egg: e} }),
			introspect.Describe[*egg]().Constructor(func(c *chicken) *egg { return &egg{Chicken: c} }),
		)
		inj := newInjector(t, types, func(r *Registry) error {
			if err := Bind[*chicken](r).AsStrict(StrictOptions{}); err != nil {
				return err
			}
			return Bind[*egg](r).AsStrict(StrictOptions{})
		})

		_, err := Get[*chicken](inj)
		appErr, ok := errors.AsAppError(err)
		if !ok || appErr.Code != errors.ErrCodeCycleDetected {
			t.Fatalf("got %v, want CYCLE_DETECTED", err)
		}
		chain := fmt.Sprint(appErr.Details["chain"])
		if chain != "[*di.chicken *di.egg *di.chicken]" {
			t.Errorf("chain = %s", chain)
		}
	})

	t.Run("deferred handle breaks the cycle", func(t *testing.T) {
		types := introspect.NewTable()
		types.MustRegister(
			introspect.Describe[*hen]().Scope(marker.Singleton).
				Constructor(func(p Provider[*nest]) *hen { return &hen{Nest: p} }),
			introspect.Describe[*nest]().Constructor(func(h *hen) *nest { return &nest{Hen: h} }),
		)
		inj := newInjector(t, types, func(r *Registry) error {
			if err := Bind[*hen](r).AsStrict(StrictOptions{}); err != nil {
				return err
			}
			return Bind[*nest](r).AsStrict(StrictOptions{})
		})

		h := MustGet[*hen](inj)
		n, err := h.Nest.Get()
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if n.Hen != h {
			t.Error("nest does not point back at the singleton hen")
		}
	})

	t.Run("deferred get on the running chain is a cycle", func(t *testing.T) {
		tests := []struct {
			name  string
			scope marker.Marker
		}{
			{"singleton", marker.Singleton},
			{"transient", marker.Marker{}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				d := introspect.Describe[*rooster]().
					Constructor(func(p Provider[*coop]) (*rooster, error) {
						c, err := p.Get()
						if err != nil {
							return nil, err
						}
						return &rooster{Coop: c}, nil
					})
				if !tt.scope.IsZero() {
					d.Scope(tt.scope)
				}
				types := introspect.NewTable()
				types.MustRegister(d,
					introspect.Describe[*coop]().Constructor(func(r *rooster) *coop { return &coop{Rooster: r} }))
				inj := newInjector(t, types, func(r *Registry) error {
					if err := Bind[*rooster](r).AsStrict(StrictOptions{}); err != nil {
						return err
					}
					return Bind[*coop](r).AsStrict(StrictOptions{})
				})

				done := make(chan error, 1)
				go func() {
					_, err := Get[*rooster](inj)
					done <- err
				}()
				var err error
				select {
				case err = <-done:
				case <-time.After(5 * time.Second):
					t.Fatal("resolution did not return")
				}

				appErr, ok := errors.AsAppError(err)
				if !ok || appErr.Code != errors.ErrCodeConstructionFailed {
					t.Fatalf("got %v, want CONSTRUCTION_FAILED", err)
				}
				if !errors.HasCode(appErr.Cause, errors.ErrCodeCycleDetected) {
					t.Errorf("cause = %v, want CYCLE_DETECTED", appErr.Cause)
				}
			})
		}
	})

	t.Run("cycle through a list member", func(t *testing.T) {
		type loop struct{ Members []*loop }
		types := introspect.NewTable()
		types.MustRegister(introspect.Describe[*loop]().
			Constructor(func(m []*loop) *loop { return &loop{Members: m} }))
		inj := newInjector(t, types, func(r *Registry) error {
			return Bind[*loop](r).AsListMember(CollectionOptions{ElementType: typekey.Of[*loop]()})
		})
		if _, err := Get[[]*loop](inj); !errors.HasCode(err, errors.ErrCodeCycleDetected) {
			t.Errorf("got %v, want CYCLE_DETECTED", err)
		}
	})
}

var (
	garageName  string
	staticCalls int
)

type baseShop struct{}

type workshop struct{ baseShop }

func TestStaticInjectionRunsOncePerChain(t *testing.T) {
	garageName, staticCalls = "", 0
	types := introspect.NewTable()
	types.MustRegister(
		introspect.Describe[*baseShop]().StaticFunc("CountStatics", func(name string) { staticCalls++ }),
		introspect.Describe[*workshop]().StaticVar("GarageName", &garageName),
	)
	newInjector(t, types, func(r *Registry) error {
		if err := r.AddInstance("Hammer & Sons").AsStrict(StrictOptions{}); err != nil {
			return err
		}
		if err := r.EnableStaticInjection(typekey.Of[*baseShop]()); err != nil {
			return err
		}
		return r.EnableStaticInjection(typekey.Of[*workshop]())
	})

	if garageName != "Hammer & Sons" {
		t.Errorf("garageName = %q", garageName)
	}
	if staticCalls != 1 {
		t.Errorf("static method ran %d times, want 1", staticCalls)
	}
}

type dashboard struct {
	Motor motor
	radio *radio
}

func dashboardTypes() *introspect.Table {
	types := introspect.NewTable()
	types.MustRegister(introspect.Describe[*dashboard]().Field("Motor").Field("radio"))
	return types
}

func dashboardBindings(r *Registry) error {
	if err := Bind[*dieselEngine](r).AsStrict(strict(typekey.Of[motor]())); err != nil {
		return err
	}
	return r.AddInstance(&radio{Station: "jazz"}).AsStrict(StrictOptions{})
}

func TestInjectMembers(t *testing.T) {
	inj := newInjector(t, dashboardTypes(), dashboardBindings)
	d := &dashboard{}
	if err := inj.InjectMembers(d); err != nil {
		t.Fatalf("InjectMembers: %v", err)
	}
	if d.Motor == nil || d.radio == nil || d.radio.Station != "jazz" {
		t.Errorf("dashboard = %+v", d)
	}
}

func TestInjectionPolicy(t *testing.T) {
	inj := newInjector(t, dashboardTypes(), dashboardBindings, func(r *Registry) error {
		return r.AllowInjections(introspect.PublicConstructor, introspect.PublicMemberField)
	})

	if !inj.IsSupported(introspect.PublicMemberField) {
		t.Error("public fields should be supported")
	}
	if inj.IsSupported(introspect.NonPublicMemberField) {
		t.Error("non-public fields should not be supported")
	}

	d := &dashboard{}
	if err := inj.InjectMembers(d); err != nil {
		t.Fatalf("InjectMembers: %v", err)
	}
	if d.Motor == nil {
		t.Error("public field was not injected")
	}
	if d.radio != nil {
		t.Error("non-public field was injected")
	}
}

func TestDefaultPolicyAllowsEverything(t *testing.T) {
	inj := newInjector(t, introspect.NewTable())
	for _, it := range introspect.AllInjectionTypes() {
		if !inj.IsSupported(it) {
			t.Errorf("%s is not supported", it)
		}
	}
}

func TestConstructionFailures(t *testing.T) {
	type gearbox struct{}
	type clutch struct{}
	var attempts atomic.Int32
	types := introspect.NewTable()
	types.MustRegister(
		introspect.Describe[*gearbox]().Scope(marker.Singleton).
			Constructor(func() (*gearbox, error) {
				if attempts.Add(1) == 1 {
					return nil, fmt.Errorf("gears stripped")
				}
				return &gearbox{}, nil
			}),
		introspect.Describe[*clutch]().Constructor(func() *clutch { panic("clutch slipped") }),
	)
	inj := newInjector(t, types, func(r *Registry) error {
		if err := Bind[*gearbox](r).AsStrict(StrictOptions{}); err != nil {
			return err
		}
		return Bind[*clutch](r).AsStrict(StrictOptions{})
	})

	_, err := Get[*gearbox](inj)
	if !errors.IsConstructionFailure(err) || errors.IsContractViolation(err) {
		t.Fatalf("got %v, want a construction failure", err)
	}
	if _, err := Get[*gearbox](inj); err != nil {
		t.Errorf("failed singleton was cached: %v", err)
	}

	_, err = Get[*clutch](inj)
	if !errors.HasCode(err, errors.ErrCodeConstructionFailed) {
		t.Errorf("panic: got %v, want CONSTRUCTION_FAILED", err)
	}
}

func TestBootFailures(t *testing.T) {
	type hybrid struct{}
	tests := []struct {
		name  string
		types func() *introspect.Table
		load  LoaderFunc
		code  errors.ErrorCode
	}{
		{
			name: "type with two scopes",
			types: func() *introspect.Table {
				types := introspect.NewTable()
				types.MustRegister(introspect.Describe[*hybrid]().Scope(marker.Singleton).Scope(requestScope))
				return types
			},
			load: func(r *Registry) error { return Bind[*hybrid](r).AsStrict(StrictOptions{}) },
			code: errors.ErrCodeMultipleScopes,
		},
		{
			name:  "loader error",
			types: introspect.NewTable,
			load:  func(r *Registry) error { return errors.InvalidConfig("bad manifest") },
			code:  errors.ErrCodeInvalidConfig,
		},
		{
			name:  "ambiguous binding",
			types: introspect.NewTable,
			load: func(r *Registry) error {
				_ = r.AddInstance(&radio{}).AsStrict(StrictOptions{})
				return r.AddInstance(&radio{}).AsStrict(StrictOptions{})
			},
			code: errors.ErrCodeAmbiguousBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]Loader{tt.load}, WithIntrospector(tt.types()), WithLogger(logger.NewNop()))
			if !errors.HasCode(err, tt.code) {
				t.Errorf("got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	inj := newInjector(t, introspect.NewTable(), func(r *Registry) error {
		return r.AddInstance(&radio{Station: "news"}).AsStrict(StrictOptions{})
	})

	if _, ok := TryGet[*wheel](inj); ok {
		t.Error("TryGet found an unbound type")
	}
	if _, err := Get[*wheel](inj); !errors.HasCode(err, errors.ErrCodeUnknownRequest) {
		t.Errorf("got %v, want UNKNOWN_REQUEST", err)
	}

	p := ProviderOf[*radio](inj)
	r, err := p.Get()
	if err != nil || r.Station != "news" {
		t.Errorf("provider: %v %v", r, err)
	}

	untyped, err := inj.Provider(typekey.Of[*radio](), marker.Marker{}).Get()
	if err != nil || untyped.(*radio) != r {
		t.Errorf("untyped provider: %v %v", untyped, err)
	}

	var unbound Provider[*radio]
	if unbound.IsBound() {
		t.Error("zero provider reports bound")
	}
	if _, err := unbound.Get(); !errors.HasCode(err, errors.ErrCodeInvalidBinding) {
		t.Errorf("zero provider: got %v, want INVALID_BINDING", err)
	}

	mismatched := Provider[*wheel]{get: func() (any, error) { return r, nil }}
	if _, err := mismatched.Get(); !errors.IsContractViolation(err) {
		t.Errorf("mismatched provider: got %v, want a contract violation", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustGet did not panic")
		}
	}()
	MustGet[*wheel](inj)
}

func TestBindingsDescribeTheGraph(t *testing.T) {
	inj := newInjector(t, introspect.NewTable(), func(r *Registry) error {
		if err := Bind[*dieselEngine](r).AsStrict(strict(typekey.Of[motor](), typekey.Of[*dieselEngine]())); err != nil {
			return err
		}
		for i := 0; i < 2; i++ {
			if err := Bind[*wheel](r).AsListMember(CollectionOptions{ElementType: typekey.Of[*wheel]()}); err != nil {
				return err
			}
		}
		return nil
	})

	bindings := inj.Bindings()
	if len(bindings) != 3 {
		t.Fatalf("got %d bindings, want 3", len(bindings))
	}
	if bindings[0].Provider != bindings[1].Provider {
		t.Error("requests bound to one implementation use different providers")
	}
	list := bindings[2]
	if list.Kind != KindList || len(list.Members) != 2 || list.Members[0].Provider != list.Members[1].Provider {
		t.Errorf("list binding = %+v", list)
	}
	if list.Strategy != StrategyTransient || list.Members[0].Strategy != StrategyTransient {
		t.Errorf("strategies = %s / %s", list.Strategy, list.Members[0].Strategy)
	}
}

func TestRootActivatesSingletonAndMultiton(t *testing.T) {
	inj := newInjector(t, introspect.NewTable(), func(r *Registry) error {
		return r.ActivateScopes(requestScope)
	})
	active := inj.ActiveScopes()
	for _, s := range []marker.Marker{marker.Singleton, marker.Multiton, requestScope} {
		if !active.Contains(s) {
			t.Errorf("%s is not active", s)
		}
	}
}
