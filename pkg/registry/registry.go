package registry

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Registry is a concurrency-safe set of named providers, each paired
// with an outbound rate limiter and a cached health record.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	limiters  map[string]*rate.Limiter
	health    map[string]Health
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		limiters:  make(map[string]*rate.Limiter),
		health:    make(map[string]Health),
	}
}

// Register adds p under its own name, guarding outbound calls with a
// token-bucket limiter of ratePerSecond (0 means unlimited). Returns an
// error if the name is already registered.
func (r *Registry) Register(p Provider, ratePerSecond float64, burst int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("registry: provider %q already registered", name)
	}
	r.providers[name] = p
	r.health[name] = Health{Status: StatusUnknown}
	if ratePerSecond > 0 {
		r.limiters[name] = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return nil
}

// Unregister removes a provider by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, name)
	delete(r.limiters, name)
	delete(r.health, name)
}

// Get returns the named provider, if registered.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// GetOrError returns the named provider or an error naming it.
func (r *Registry) GetOrError(name string) (Provider, error) {
	p, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("registry: no such provider %q", name)
	}
	return p, nil
}

// Limiter returns the outbound rate limiter for a provider, or nil if
// the provider is unlimited or unregistered. Callers should call
// Wait(ctx) on it before dispatching a request.
func (r *Registry) Limiter(name string) *rate.Limiter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.limiters[name]
}

// List returns every registered provider.
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p)
	}
	return out
}

// ListHealthy returns providers whose last recorded health is healthy.
func (r *Registry) ListHealthy() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.providers))
	for name, p := range r.providers {
		if r.health[name].Status == StatusHealthy {
			out = append(out, p)
		}
	}
	return out
}

// ListConfigured returns providers that report themselves configured.
func (r *Registry) ListConfigured() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.IsConfigured() {
			out = append(out, p)
		}
	}
	return out
}

// HealthOf returns the last recorded health for a provider.
func (r *Registry) HealthOf(name string) (Health, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.health[name]
	return h, ok
}

// CheckOne runs a live health check against one provider and records
// the result.
func (r *Registry) CheckOne(ctx context.Context, name string) (Health, error) {
	p, err := r.GetOrError(name)
	if err != nil {
		return Health{}, err
	}
	h := p.CheckHealth(ctx)
	r.mu.Lock()
	r.health[name] = h
	r.mu.Unlock()
	return h, nil
}

// CheckAll runs a health check against every registered provider
// concurrently and records each result.
func (r *Registry) CheckAll(ctx context.Context) map[string]Health {
	providers := r.List()
	results := make(map[string]Health, len(providers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, p := range providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			h := p.CheckHealth(ctx)
			mu.Lock()
			results[p.Name()] = h
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	r.mu.Lock()
	for name, h := range results {
		r.health[name] = h
	}
	r.mu.Unlock()

	return results
}
