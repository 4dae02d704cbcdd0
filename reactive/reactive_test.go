package reactive

import (
	"testing"
)

func TestDiamondRunsDerivedOnce(t *testing.T) {
	a := NewSignal(1, EqualityValue)
	b := NewDerived(func() int { return a.Get() + 1 })
	c := NewDerived(func() int { return a.Get() * 2 })
	dRuns := 0
	var dVal int
	d := NewDerived(func() int {
		dRuns++
		return b.Get() + c.Get()
	})

	scope := NewScope(EqualityValue, 0)
	Run(scope, func() {
		CreateEffect(scope, func() Cleanup {
			dVal = d.Get()
			return nil
		})
	})

	a.Set(3)
	if err := scope.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if dVal != 10 {
		t.Fatalf("d = %d, want 10", dVal)
	}
	if dRuns != 2 { // one on initial effect run, one after a changes
		t.Fatalf("d recomputed %d times, want 2", dRuns)
	}
}

func TestConditionalDependencyDrops(t *testing.T) {
	flag := NewSignal(true, EqualityValue)
	x := NewSignal(1, EqualityValue)
	y := NewSignal(100, EqualityValue)

	scope := NewScope(EqualityValue, 0)
	runs := 0
	var last int
	Run(scope, func() {
		CreateEffect(scope, func() Cleanup {
			runs++
			if flag.Get() {
				last = x.Get()
			} else {
				last = y.Get()
			}
			return nil
		})
	})

	flag.Set(false)
	scope.Flush()
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}

	x.Set(999) // no longer a dependency
	scope.Flush()
	if runs != 2 {
		t.Fatalf("runs after dropped-dep mutation = %d, want 2", runs)
	}
	if last != 100 {
		t.Fatalf("last = %d, want 100", last)
	}
}

func TestSetEqualValueIsNoop(t *testing.T) {
	s := NewSignal(5, EqualityValue)
	scope := NewScope(EqualityValue, 0)
	runs := 0
	Run(scope, func() {
		CreateEffect(scope, func() Cleanup {
			runs++
			s.Get()
			return nil
		})
	})

	s.Set(5)
	if scope.HasPending() {
		t.Fatalf("setting an equal value should not schedule any effect")
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1 (initial run only)", runs)
	}
}

func TestCycleAbort(t *testing.T) {
	a := NewSignal(0, EqualityValue)
	scope := NewScope(EqualityValue, 5)

	Run(scope, func() {
		CreateEffect(scope, func() Cleanup {
			v := a.Get()
			a.Set(v + 1)
			return nil
		})
	})

	a.Set(1)
	err := scope.Flush()
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	cycleErr, ok := err.(*CycleError)
	if !ok {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if cycleErr.EffectName != "" {
		t.Fatalf("EffectName = %q, want empty for an unnamed effect", cycleErr.EffectName)
	}
}

func TestCycleAbortReportsEffectName(t *testing.T) {
	a := NewSignal(0, EqualityValue)
	scope := NewScope(EqualityValue, 5)

	Run(scope, func() {
		CreateEffect(scope, func() Cleanup {
			v := a.Get()
			a.Set(v + 1)
			return nil
		}, WithName("incrementer"))
	})

	a.Set(1)
	err := scope.Flush()
	cycleErr, ok := err.(*CycleError)
	if !ok {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if cycleErr.EffectName != "incrementer" {
		t.Fatalf("EffectName = %q, want %q", cycleErr.EffectName, "incrementer")
	}
}

func TestDisposeStopsFutureRuns(t *testing.T) {
	s := NewSignal(1, EqualityValue)
	scope := NewScope(EqualityValue, 0)
	runs := 0
	var e *Effect
	Run(scope, func() {
		e = CreateEffect(scope, func() Cleanup {
			runs++
			s.Get()
			return nil
		})
	})

	e.Dispose()
	s.Set(2)
	scope.Flush()
	if runs != 1 {
		t.Fatalf("runs = %d, want 1 (no rerun after dispose)", runs)
	}
}

func TestUntrackSuppressesSubscription(t *testing.T) {
	s := NewSignal(1, EqualityValue)
	scope := NewScope(EqualityValue, 0)
	runs := 0
	Run(scope, func() {
		CreateEffect(scope, func() Cleanup {
			runs++
			Untrack(func() { s.Get() })
			return nil
		})
	})

	s.Set(2)
	scope.Flush()
	if runs != 1 {
		t.Fatalf("runs = %d, want 1 (untracked read should not subscribe)", runs)
	}
}

func TestIdentityEquality(t *testing.T) {
	type payload struct{ n int }
	p1 := &payload{n: 1}
	p2 := &payload{n: 1}

	s := NewSignal(p1, EqualityIdentity)
	runs := 0
	scope := NewScope(EqualityValue, 0)
	Run(scope, func() {
		CreateEffect(scope, func() Cleanup {
			runs++
			s.Get()
			return nil
		})
	})

	s.Set(p2) // different pointer, equal contents: identity mode treats as a change
	scope.Flush()
	if runs != 2 {
		t.Fatalf("runs = %d, want 2 under identity equality", runs)
	}
}
