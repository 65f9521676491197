package storefront

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storefront: not found")

type SocialMedia struct {
	Facebook  string `yaml:"facebook"`
	Instagram string `yaml:"instagram"`
	Twitter   string `yaml:"twitter"`
	LinkedIn  string `yaml:"linkedin"`
}

// OpeningHours holds one free-form entry per weekday, e.g. "08:00 - 18:00".
type OpeningHours struct {
	Monday    string `yaml:"monday"`
	Tuesday   string `yaml:"tuesday"`
	Wednesday string `yaml:"wednesday"`
	Thursday  string `yaml:"thursday"`
	Friday    string `yaml:"friday"`
	Saturday  string `yaml:"saturday"`
	Sunday    string `yaml:"sunday"`
}

// Storefront is one seller (tenant) of the marketplace.
type Storefront struct {
	ID              string       `yaml:"id"`
	Name            string       `yaml:"name"`
	Description     string       `yaml:"description"`
	Address         string       `yaml:"address"`
	Phone           string       `yaml:"phone"`
	Email           string       `yaml:"email"`
	Logo            string       `yaml:"logo"`
	Banner          string       `yaml:"banner"`
	Rating          float64      `yaml:"rating"`
	ReviewsCount    int          `yaml:"reviews_count"`
	Tags            []string     `yaml:"tags"`
	SocialMedia     SocialMedia  `yaml:"social_media"`
	PaymentMethods  []string     `yaml:"payment_methods"`
	ShippingMethods []string     `yaml:"shipping_methods"`
	IsOpen          bool         `yaml:"is_open"`
	OpeningHours    OpeningHours `yaml:"opening_hours"`
}

func (s *Storefront) Validate() error {
	if s.ID == "" {
		return errors.New("storefront: id is required")
	}
	if s.Name == "" {
		return errors.New("storefront: name is required")
	}
	return nil
}

func (s *Storefront) Clone() *Storefront {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Tags = append([]string(nil), s.Tags...)
	clone.PaymentMethods = append([]string(nil), s.PaymentMethods...)
	clone.ShippingMethods = append([]string(nil), s.ShippingMethods...)
	return &clone
}

type Repository interface {
	List(ctx context.Context) ([]*Storefront, error)
	Get(ctx context.Context, id string) (*Storefront, error)
	Save(ctx context.Context, s *Storefront) error
}
