package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stub struct{ name string }

func (s *stub) Name() string                     { return s.name }
func (s *stub) IsAvailable(context.Context) bool { return true }

type deps struct{ prefix string }

func TestRegistryCreate(t *testing.T) {
	r := NewRegistry[*stub, deps]()
	r.RegisterFactory("b", func(d deps) (*stub, error) { return &stub{name: d.prefix + "b"}, nil })
	r.RegisterFactory("a", func(deps) (*stub, error) { return nil, errors.New("broken") })

	got, err := r.Create("b", deps{prefix: "x-"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Name() != "x-b" {
		t.Errorf("Name = %q", got.Name())
	}

	if _, err := r.Create("a", deps{}); err == nil || err.Error() != "broken" {
		t.Errorf("factory error not returned: %v", err)
	}

	_, err = r.Create("missing", deps{})
	if err == nil || !strings.Contains(err.Error(), "[a b]") {
		t.Errorf("expected not-registered error listing names, got %v", err)
	}
}

func TestRegistryListAndHas(t *testing.T) {
	r := NewRegistry[*stub, deps]()
	for _, n := range []string{"whispercpp", "sidecar"} {
		r.RegisterFactory(n, func(deps) (*stub, error) { return &stub{}, nil })
	}
	if got := strings.Join(r.List(), ","); got != "sidecar,whispercpp" {
		t.Errorf("List = %s", got)
	}
	if !r.Has("sidecar") || r.Has("openai") {
		t.Error("Has mismatch")
	}
}
