package cart

import (
	"servecart/models"
	"servecart/pricing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrLineNotFound = errors.New("cart line not found")

type EventKind string

const (
	LineAdded       EventKind = "added"
	LineMerged      EventKind = "merged"
	QuantityChanged EventKind = "quantity"
	LineRemoved     EventKind = "removed"
	Cleared         EventKind = "cleared"
)

// Event describes a change that has already been applied to a cart.
type Event struct {
	Kind      EventKind       `json:"kind"`
	LineID    string          `json:"lineId,omitempty"`
	Quantity  int             `json:"quantity"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

type observer struct {
	id int
	fn func(Event)
}

// Cart is an ordered set of priced lines owned by one session. It does no
// locking of its own; Store serialises access.
type Cart struct {
	lines     []models.CartLine
	observers []observer
	nextObs   int
	opts      []pricing.Option
}

// New returns an empty cart. opts are passed to pricing.Configure on every add.
func New(opts ...pricing.Option) *Cart {
	return &Cart{opts: opts}
}

// Subscribe registers fn to be called after every change, in subscription
// order. The returned func removes it.
func (c *Cart) Subscribe(fn func(Event)) func() {
	c.nextObs++
	id := c.nextObs
	c.observers = append(c.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range c.observers {
			if o.id == id {
				c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

func (c *Cart) notify(kind EventKind, lineID string, qty int) {
	if len(c.observers) == 0 {
		return
	}
	ev := Event{
		Kind:      kind,
		LineID:    lineID,
		Quantity:  qty,
		ItemCount: c.TotalItemCount(),
		Total:     c.TotalPrice(),
	}
	for _, o := range c.observers {
		o.fn(ev)
	}
}

// Add configures item and either merges it into the line with the same
// identity or appends a new line. A quantity of 0 means 1. On error the cart
// is left untouched.
func (c *Cart) Add(item models.MenuItem, quantity int, variationID string, selections []models.AddOnSelection) (models.CartLine, error) {
	if quantity < 0 || quantity > pricing.MaxQuantity {
		return models.CartLine{}, errors.Wrapf(pricing.ErrInvalidConfiguration, "quantity %d outside 1..%d", quantity, pricing.MaxQuantity)
	}
	if quantity == 0 {
		quantity = 1
	}

	cfg, err := pricing.Configure(item, variationID, selections, c.opts...)
	if err != nil {
		return models.CartLine{}, err
	}

	id := LineKey(item.ID, cfg.Variation, cfg.AddOns)
	if i := c.index(id); i >= 0 {
		if c.lines[i].Quantity+quantity > pricing.MaxQuantity {
			return models.CartLine{}, errors.Wrapf(pricing.ErrInvalidConfiguration, "line %s would exceed %d", id, pricing.MaxQuantity)
		}
		c.lines[i].Quantity += quantity
		line := clone(c.lines[i])
		c.notify(LineMerged, id, line.Quantity)
		return line, nil
	}

	line := models.CartLine{
		ID:         id,
		MenuItemID: item.ID,
		Name:       item.Name,
		Variation:  cfg.Variation,
		AddOns:     cfg.AddOns,
		UnitPrice:  cfg.UnitPrice,
		Quantity:   quantity,
	}
	c.lines = append(c.lines, line)
	c.notify(LineAdded, id, quantity)
	return clone(line), nil
}

// UpdateQuantity sets the quantity of a line; n <= 0 removes it. It reports
// whether the line existed. A quantity above pricing.MaxQuantity is rejected
// and leaves the line unchanged.
func (c *Cart) UpdateQuantity(lineID string, n int) (bool, error) {
	if n > pricing.MaxQuantity {
		return false, errors.Wrapf(pricing.ErrInvalidConfiguration, "quantity %d exceeds %d", n, pricing.MaxQuantity)
	}
	i := c.index(lineID)
	if i < 0 {
		return false, nil
	}
	if n <= 0 {
		c.removeAt(i)
		c.notify(LineRemoved, lineID, 0)
		return true, nil
	}
	if c.lines[i].Quantity == n {
		return true, nil
	}
	c.lines[i].Quantity = n
	c.notify(QuantityChanged, lineID, n)
	return true, nil
}

// Remove deletes a line and reports whether it existed.
func (c *Cart) Remove(lineID string) bool {
	i := c.index(lineID)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	c.notify(LineRemoved, lineID, 0)
	return true
}

func (c *Cart) Clear() {
	if len(c.lines) == 0 {
		return
	}
	c.lines = nil
	c.notify(Cleared, "", 0)
}

// TotalPrice is Σ unitPrice × quantity, rounded only once at the end.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return pricing.Round(total)
}

func (c *Cart) TotalItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	for i, l := range c.lines {
		out[i] = clone(l)
	}
	return out
}

func (c *Cart) Line(id string) (models.CartLine, error) {
	i := c.index(id)
	if i < 0 {
		return models.CartLine{}, errors.Wrapf(ErrLineNotFound, "%s", id)
	}
	return clone(c.lines[i]), nil
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) index(id string) int {
	for i, l := range c.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

func clone(l models.CartLine) models.CartLine {
	if l.Variation != nil {
		v := *l.Variation
		l.Variation = &v
	}
	if l.AddOns != nil {
		l.AddOns = append([]models.SelectedAddOn(nil), l.AddOns...)
	}
	return l
}
