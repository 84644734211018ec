package server

import (
	"context"

	"github.com/kbukum/oswald/observability"
)

// registryHealth reports the container as a health component.
type registryHealth struct {
	registry Registry
}

func (r registryHealth) CheckHealth(context.Context) observability.Health {
	regs := r.registry.Registrations()
	initialized := 0
	for _, reg := range regs {
		if reg.Initialized {
			initialized++
		}
	}
	return observability.Health{
		Name:   "container",
		Status: observability.HealthStatusUp,
		Details: map[string]any{
			"registrations": len(regs),
			"singletons":    initialized,
		},
	}
}
