package ignite

import (
	"context"
	stdErrors "errors"
	"testing"

	"github.com/ignitedb/ignitedb/pkg/errors"
	"github.com/ignitedb/ignitedb/pkg/options"
)

func newTestInstance(t *testing.T) *Instance {
	t.Helper()
	ctx := context.Background()
	inst, err := NewInstance(ctx, "test", options.WithDataDir(t.TempDir()))
	if err != nil {
		t.Fatalf("NewInstance() error = %v", err)
	}
	return inst
}

func TestInstanceSetGetDelete(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t)
	defer inst.Close(ctx)

	if err := inst.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, err := inst.Get(ctx, "k")
	if err != nil || string(value) != "v" {
		t.Fatalf("Get() = (%q, %v), want (v, nil)", value, err)
	}

	if err := inst.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := inst.Get(ctx, "k"); !stdErrors.Is(err, errors.ErrKeyNotFound) {
		t.Fatalf("Get() after Delete() error = %v, want ErrKeyNotFound", err)
	}
}

func TestInstanceDeleteUnknownKeyFails(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t)
	defer inst.Close(ctx)

	if err := inst.Delete(ctx, "absent"); !stdErrors.Is(err, errors.ErrKeyNotFound) {
		t.Fatalf("Delete() error = %v, want ErrKeyNotFound", err)
	}
}
