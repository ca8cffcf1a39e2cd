package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "stages_recup/internal/adapters/redis"
	"stages_recup/internal/domain"
)

func newCache(t *testing.T) *redisad.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.New(mr.Addr(), "", 0)
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	in := domain.Stage{ID: "st-1", City: "PARIS", Price: 230}
	if err := c.Set(ctx, "stage:st-1", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out domain.Stage
	ok, err := c.Get(ctx, "stage:st-1", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected hit")
	}
	if out.ID != "st-1" || out.City != "PARIS" || out.Price != 230 {
		t.Fatalf("unexpected value: %+v", out)
	}
}

func TestCache_MissIsNotAnError(t *testing.T) {
	c := newCache(t)
	var out []string
	ok, err := c.Get(context.Background(), "stages:cities", &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected miss")
	}
}

func TestCache_Del(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "stages:cities", []string{"PARIS"}, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Del(ctx, "stages:cities"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	var out []string
	if ok, _ := c.Get(ctx, "stages:cities", &out); ok {
		t.Fatalf("expected key to be gone")
	}
}
