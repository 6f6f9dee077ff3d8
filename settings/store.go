package settings

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"servecart/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoSettings      = errors.New("site settings not stored")
	ErrInvalidSettings = errors.New("invalid settings")
)

// Repository persists the settings document and the payment methods.
type Repository interface {
	LoadSite(ctx context.Context) (models.SiteSettings, error)
	SaveSite(ctx context.Context, s models.SiteSettings) error
	PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
	SavePaymentMethod(ctx context.Context, pm models.PaymentMethod) error
}

// Store fills stored settings with Defaults and exposes active payment
// methods in display order.
type Store struct {
	Repo     Repository
	Defaults models.SiteSettings
}

func NewStore(repo Repository, defaults models.SiteSettings) *Store {
	return &Store{Repo: repo, Defaults: defaults}
}

// Site returns the stored settings, writing the defaults on first use.
func (s *Store) Site(ctx context.Context) (models.SiteSettings, error) {
	site, err := s.Repo.LoadSite(ctx)
	if errors.Is(err, ErrNoSettings) {
		if err := s.Repo.SaveSite(ctx, s.Defaults); err != nil {
			log.Warn().Err(err).Msg("default site settings not stored")
		}
		return s.Defaults, nil
	}
	if err != nil {
		return models.SiteSettings{}, err
	}
	return s.withDefaults(site), nil
}

func (s *Store) withDefaults(site models.SiteSettings) models.SiteSettings {
	d := s.Defaults
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&site.SiteName, d.SiteName},
		{&site.SiteDescription, d.SiteDescription},
		{&site.SiteLogo, d.SiteLogo},
		{&site.Currency, d.Currency},
		{&site.CurrencyCode, d.CurrencyCode},
		{&site.PlaceholderImage, d.PlaceholderImage},
		{&site.MessengerURL, d.MessengerURL},
	} {
		if strings.TrimSpace(*f.dst) == "" {
			*f.dst = f.def
		}
	}
	return site
}

func (s *Store) UpdateSite(ctx context.Context, in models.SiteSettings) (models.SiteSettings, error) {
	if in.MessengerURL != "" {
		u, err := url.Parse(in.MessengerURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return in, errors.Wrapf(ErrInvalidSettings, "messenger url %q", in.MessengerURL)
		}
	}
	if len(in.SiteName) > 100 {
		return in, errors.Wrap(ErrInvalidSettings, "site name longer than 100 characters")
	}
	site := s.withDefaults(in)
	site.UpdatedAt = time.Now()
	if err := s.Repo.SaveSite(ctx, site); err != nil {
		return in, err
	}
	return site, nil
}

// Currency is the display symbol; it falls back to the default on errors.
func (s *Store) Currency(ctx context.Context) string {
	site, err := s.Site(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("site settings unavailable")
		return s.Defaults.Currency
	}
	return site.Currency
}

func (s *Store) Placeholder(ctx context.Context) string {
	site, err := s.Site(ctx)
	if err != nil {
		return s.Defaults.PlaceholderImage
	}
	return site.PlaceholderImage
}

// PaymentMethods lists methods by sort order, inactive ones only when asked.
func (s *Store) PaymentMethods(ctx context.Context, includeInactive bool) ([]models.PaymentMethod, error) {
	all, err := s.Repo.PaymentMethods(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PaymentMethod, 0, len(all))
	for _, pm := range all {
		if pm.Active || includeInactive {
			out = append(out, pm)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// PaymentMethod finds an active method by id.
func (s *Store) PaymentMethod(ctx context.Context, id string) (models.PaymentMethod, error) {
	methods, err := s.PaymentMethods(ctx, false)
	if err != nil {
		return models.PaymentMethod{}, err
	}
	for _, pm := range methods {
		if pm.ID == id {
			return pm, nil
		}
	}
	return models.PaymentMethod{}, errors.Wrapf(models.ErrPaymentMethodNotFound, "%q", id)
}

func (s *Store) SavePaymentMethod(ctx context.Context, pm models.PaymentMethod) error {
	if strings.TrimSpace(pm.ID) == "" || strings.TrimSpace(pm.Name) == "" {
		return errors.Wrap(ErrInvalidSettings, "payment method needs an id and a name")
	}
	return s.Repo.SavePaymentMethod(ctx, pm)
}

// SeedPaymentMethods stores methods when none exist yet.
func (s *Store) SeedPaymentMethods(ctx context.Context, methods []models.PaymentMethod) (int, error) {
	existing, err := s.Repo.PaymentMethods(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, pm := range methods {
		if err := s.SavePaymentMethod(ctx, pm); err != nil {
			return 0, err
		}
	}
	return len(methods), nil
}
