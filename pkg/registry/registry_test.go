package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name       string
	configured bool
	health     Health
}

func (f *fakeProvider) Name() string { return f.name }
func (f *fakeProvider) Info() Info {
	return Info{Name: f.name, DisplayName: f.name, APIFormat: FormatGemini}
}
func (f *fakeProvider) IsConfigured() bool { return f.configured }
func (f *fakeProvider) SendRequest(ctx context.Context, req Request) (*Response, error) {
	return &Response{StatusCode: 200}, nil
}
func (f *fakeProvider) StreamRequest(ctx context.Context, req Request) (*Response, error) {
	return &Response{StatusCode: 200}, nil
}
func (f *fakeProvider) CheckHealth(ctx context.Context) Health { return f.health }

func TestRegistry_RegisterDuplicateNameFails(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&fakeProvider{name: "p"}, 0, 0))
	err := r.Register(&fakeProvider{name: "p"}, 0, 0)
	assert.Error(t, err)
}

func TestRegistry_ListHealthyFiltersByLastCheck(t *testing.T) {
	r := New()
	healthy := &fakeProvider{name: "healthy", health: Health{Status: StatusHealthy}}
	sick := &fakeProvider{name: "sick", health: Health{Status: StatusUnhealthy}}
	require.NoError(t, r.Register(healthy, 0, 0))
	require.NoError(t, r.Register(sick, 0, 0))

	r.CheckAll(context.Background())

	names := map[string]bool{}
	for _, p := range r.ListHealthy() {
		names[p.Name()] = true
	}
	assert.True(t, names["healthy"])
	assert.False(t, names["sick"])
}

func TestRegistry_ListConfigured(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&fakeProvider{name: "on", configured: true}, 0, 0))
	require.NoError(t, r.Register(&fakeProvider{name: "off", configured: false}, 0, 0))

	configured := r.ListConfigured()
	require.Len(t, configured, 1)
	assert.Equal(t, "on", configured[0].Name())
}

func TestRegistry_LimiterNilWhenUnlimited(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&fakeProvider{name: "p"}, 0, 0))
	assert.Nil(t, r.Limiter("p"))
}

func TestMonitor_StopWaitsForLoopExit(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&fakeProvider{name: "p", health: Health{Status: StatusHealthy}}, 0, 0))

	m := NewMonitor(r, 5*time.Millisecond)
	m.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	m.Stop()

	h, ok := r.HealthOf("p")
	require.True(t, ok)
	assert.Equal(t, StatusHealthy, h.Status)
}

func TestModelCatalog_OnlyListsConfiguredProviders(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&fakeProvider{name: "anthropic", configured: true}, 0, 0))
	require.NoError(t, r.Register(&fakeProvider{name: "antigravity", configured: false}, 0, 0))

	entries := r.ModelCatalog()
	for _, e := range entries {
		assert.Equal(t, "anthropic", e.Provider)
	}
	assert.NotEmpty(t, entries)
}

func TestRegistry_ConcurrentRegisterAndRead(t *testing.T) {
	r := New()
	done := make(chan struct{})

	for i := 0; i < 10; i++ {
		go func(i int) {
			_ = r.Register(&fakeProvider{name: string(rune('a' + i))}, 0, 0)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		go func() {
			r.List()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}
}
