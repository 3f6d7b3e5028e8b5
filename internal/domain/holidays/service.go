package holidays

import (
	"context"
	"strings"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// List filters the calendar by country and location. A specific location also
// matches wildcard entries; LocationAll returns the whole country.
func (s *Service) List(ctx context.Context, country, location string) (Listing, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		country = DefaultCountry
	}
	location = strings.TrimSpace(location)
	if location == "" {
		location = LocationAll
	}

	entries, err := s.Store.ListByCountry(ctx, country, location)
	if err != nil {
		return Listing{}, err
	}
	countries, err := s.Store.DistinctCountries(ctx)
	if err != nil {
		return Listing{}, err
	}
	locations, err := s.Store.DistinctLocations(ctx, country)
	if err != nil {
		return Listing{}, err
	}

	return Listing{
		Holidays:  entries,
		Countries: countries,
		Locations: locations,
		Country:   country,
		Location:  location,
	}, nil
}

func (s *Service) Add(ctx context.Context, country, location, name string, date time.Time) (string, error) {
	if strings.TrimSpace(country) == "" {
		country = DefaultCountry
	}
	if strings.TrimSpace(location) == "" {
		location = LocationAll
	}
	return s.Store.Create(ctx, country, location, name, date)
}
