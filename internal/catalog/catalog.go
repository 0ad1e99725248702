// Package catalog holds the static set of bookable services.
package catalog

import "fmt"

// Service is a bookable offering with a fixed duration.
type Service struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	DurationMinutes int    `json:"duration" yaml:"duration_minutes"`
}

// Catalog is an immutable, ordered collection of services.
type Catalog struct {
	services []Service
	byID     map[string]Service
}

// Default returns the built-in service set.
func Default() *Catalog {
	c, _ := New([]Service{
		{ID: "svc-doctor", Name: "Doctor Consultation", DurationMinutes: 30},
		{ID: "svc-salon", Name: "Salon Haircut", DurationMinutes: 45},
		{ID: "svc-restaurant", Name: "Restaurant Table", DurationMinutes: 120},
		{ID: "svc-yoga", Name: "Yoga Class", DurationMinutes: 60},
	})
	return c
}

// New builds a catalog from a service list, rejecting duplicates and
// non-positive durations.
func New(services []Service) (*Catalog, error) {
	if len(services) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one service")
	}
	byID := make(map[string]Service, len(services))
	for _, s := range services {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("service needs id and name: %+v", s)
		}
		if s.DurationMinutes <= 0 {
			return nil, fmt.Errorf("service %s: duration must be positive", s.ID)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate service id %s", s.ID)
		}
		byID[s.ID] = s
	}
	return &Catalog{services: append([]Service(nil), services...), byID: byID}, nil
}

// Get looks up a service by id.
func (c *Catalog) Get(id string) (Service, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// List returns services in catalog order.
func (c *Catalog) List() []Service {
	return append([]Service(nil), c.services...)
}
