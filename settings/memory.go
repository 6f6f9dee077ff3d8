package settings

import (
	"context"
	"sync"

	"servecart/models"
)

// MemoryRepository keeps settings in process, for runs without MongoDB.
type MemoryRepository struct {
	mu       sync.RWMutex
	site     *models.SiteSettings
	payments map[string]models.PaymentMethod
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{payments: map[string]models.PaymentMethod{}}
}

func (m *MemoryRepository) LoadSite(context.Context) (models.SiteSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.site == nil {
		return models.SiteSettings{}, ErrNoSettings
	}
	return *m.site, nil
}

func (m *MemoryRepository) SaveSite(_ context.Context, s models.SiteSettings) error {
	m.mu.Lock()
	m.site = &s
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) PaymentMethods(context.Context) ([]models.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.PaymentMethod, 0, len(m.payments))
	for _, pm := range m.payments {
		out = append(out, pm)
	}
	return out, nil
}

func (m *MemoryRepository) SavePaymentMethod(_ context.Context, pm models.PaymentMethod) error {
	m.mu.Lock()
	m.payments[pm.ID] = pm
	m.mu.Unlock()
	return nil
}
