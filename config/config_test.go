package config

import (
	"testing"

	"github.com/flowui-dev/flowui/reactive"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Equality != reactive.EqualityValue {
		t.Errorf("Equality = %v, want EqualityValue", c.Equality)
	}
	if c.MaxPropagationDepth != reactive.DefaultMaxPropagationDepth {
		t.Errorf("MaxPropagationDepth = %d, want %d", c.MaxPropagationDepth, reactive.DefaultMaxPropagationDepth)
	}
	if c.LayoutEpsilon != DefaultLayoutEpsilon {
		t.Errorf("LayoutEpsilon = %v, want %v", c.LayoutEpsilon, DefaultLayoutEpsilon)
	}
	if !c.ParallelLayout {
		t.Error("ParallelLayout = false, want true by default")
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	c := Normalize(Config{})
	if c.MaxPropagationDepth != reactive.DefaultMaxPropagationDepth {
		t.Errorf("MaxPropagationDepth = %d, want default", c.MaxPropagationDepth)
	}
	if c.LayoutEpsilon != DefaultLayoutEpsilon {
		t.Errorf("LayoutEpsilon = %v, want default", c.LayoutEpsilon)
	}
}

func TestNormalizePreservesExplicitValues(t *testing.T) {
	c := Normalize(Config{MaxPropagationDepth: 7, LayoutEpsilon: 0.5})
	if c.MaxPropagationDepth != 7 {
		t.Errorf("MaxPropagationDepth = %d, want 7", c.MaxPropagationDepth)
	}
	if c.LayoutEpsilon != 0.5 {
		t.Errorf("LayoutEpsilon = %v, want 0.5", c.LayoutEpsilon)
	}
}
