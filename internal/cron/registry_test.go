package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryStoresJobs(t *testing.T) {
	jobA := &stubJob{name: "a"}
	jobB := &stubJob{name: "b"}
	registry := NewRegistry(jobA, nil)
	registry.Register(jobB)
	registry.Register(nil)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != jobA || jobs[1] != jobB {
		t.Fatalf("jobs returned out of order")
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}

func TestRegistrySkipsDuplicateNames(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "archive"})
	if registry.Register(&stubJob{name: "archive"}) {
		t.Fatalf("duplicate job registered")
	}
	if !registry.Register(&stubJob{name: "purge"}) {
		t.Fatalf("expected purge job to register")
	}

	names := registry.Names()
	if len(names) != 2 || names[0] != "archive" || names[1] != "purge" {
		t.Fatalf("unexpected names %v", names)
	}
}
