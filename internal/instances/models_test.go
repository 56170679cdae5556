package instances

import (
	"context"
	"errors"
	"testing"
)

func TestPromptSetMerge(t *testing.T) {
	p := PromptSet{Greeting: "Custom greeting."}
	out := p.Merge(DefaultPrompts)
	if out.Greeting != "Custom greeting." {
		t.Fatalf("expected override, got %q", out.Greeting)
	}
	if out.ReasonPrompt != DefaultPrompts.ReasonPrompt || out.Closing != DefaultPrompts.Closing {
		t.Fatalf("expected unset fields to keep defaults: %+v", out)
	}

	out = PromptSet{}.Merge(DefaultPrompts)
	if out != DefaultPrompts {
		t.Fatalf("expected full defaults for empty override: %+v", out)
	}
}

func TestMemoryRepo(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Put(Instance{ID: "inst-1", Name: "Front desk"})

	inst, err := repo.GetByID(context.Background(), "inst-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if inst.Name != "Front desk" {
		t.Fatalf("unexpected instance: %+v", inst)
	}

	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
