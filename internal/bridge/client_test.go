package bridge

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"logbridge/internal/errdesc"
	"logbridge/internal/level"
)

func TestClientHelpers(t *testing.T) {
	cl, _, reg := setup(t)
	c := NewClient(reg)
	ctx := context.Background()

	if err := c.Info(ctx, msgM, WithContext(ctxC), WithData(map[string]any{"n": 1})); err != nil {
		t.Fatalf("info: %v", err)
	}
	if err := c.Error(ctx, msgM, WithError(errors.New(errMessage))); err != nil {
		t.Fatalf("error: %v", err)
	}
	if err := c.Trace(ctx, msgM, WithError(nil)); err != nil {
		t.Fatalf("trace: %v", err)
	}
	calls := cl.snapshot()
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	if calls[0].level != level.Info || *calls[0].opts.Context != ctxC || calls[0].opts.Data["n"] != json.Number("1") {
		t.Fatalf("unexpected info call: %+v", calls[0])
	}
	var re *errdesc.Error
	if !errors.As(calls[1].opts.Err, &re) || re.Name != errdesc.DefaultName || re.Message != errMessage || re.Stack == "" {
		t.Fatalf("unexpected error call: %+v", calls[1].opts)
	}
	if calls[2].opts.Err != nil {
		t.Fatalf("nil error must stay absent")
	}
}

func TestClientLevels(t *testing.T) {
	_, _, reg := setup(t)
	c := NewClient(reg)
	ctx := context.Background()
	if err := c.SetLevel(ctx, level.Debug); err != nil {
		t.Fatalf("setLevel: %v", err)
	}
	got, err := c.GetLevel(ctx)
	if err != nil || got.Level != level.Debug || got.LevelName != "DEBUG" {
		t.Fatalf("getLevel: %+v %v", got, err)
	}
	if err := c.Log(ctx, level.Level(99), msgM); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestClientDescriptor(t *testing.T) {
	cl, _, reg := setup(t)
	stack := errStack
	if err := NewClient(reg).Warn(context.Background(), msgM, WithDescriptor(errdesc.Descriptor{Name: errName, Message: errMessage, Stack: &stack})); err != nil {
		t.Fatalf("warn: %v", err)
	}
	re := cl.snapshot()[0].opts.Err.(*errdesc.Error)
	if re.Name != errName || re.Stack != errStack {
		t.Fatalf("unexpected error: %+v", re)
	}
}
