package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLoad(ctx, "stock-market", 9, 10, time.Millisecond, nil)
	p.OnRenderStart(ctx, "png")
	p.OnRenderComplete(ctx, "png", 1024, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "png")
	c.OnCacheMiss(ctx, "svg")
	c.OnCacheSet(ctx, "png", 1024)

	s := NoopServerHooks{}
	s.OnRequest(ctx, "GET", "/diagram.png")
	s.OnResponse(ctx, "GET", "/diagram.png", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	SetPipelineHooks(nil)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &testPipelineHooks{}
	SetPipelineHooks(h)

	ctx := context.Background()
	Pipeline().OnRenderStart(ctx, "svg")
	Pipeline().OnRenderComplete(ctx, "svg", 10, time.Millisecond, nil)

	if h.renderStarts != 1 || h.renderCompletes != 1 {
		t.Errorf("events = %d starts, %d completes", h.renderStarts, h.renderCompletes)
	}
}

type testPipelineHooks struct {
	NoopPipelineHooks
	renderStarts    int
	renderCompletes int
}

func (h *testPipelineHooks) OnRenderStart(context.Context, string) { h.renderStarts++ }
func (h *testPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {
	h.renderCompletes++
}

type testCacheHooks struct{ NoopCacheHooks }

type testServerHooks struct{ NoopServerHooks }
