package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medimartid/medimart-gateway/pkg/marketapi"
)

// LineItem is one product offered by one pharmacy, combining the remote
// quantity/price/stock snapshot with the locally owned checked flag.
type LineItem struct {
	PharmacyProductID uuid.UUID
	ProductID         uuid.UUID
	PharmacyID        uuid.UUID
	Name              string
	Image             string
	Quantity          int
	UnitPrice         decimal.Decimal
	Stock             int
	WeightGrams       decimal.Decimal
	Checked           bool
}

// PharmacyGroup owns the line items one pharmacy contributes to the cart.
type PharmacyGroup struct {
	ID        uuid.UUID
	Name      string
	City      string
	PartnerID uuid.UUID
	Checked   bool

	items     []*LineItem
	itemIndex map[uuid.UUID]*LineItem
}

// Items returns the group's line items in display order.
func (g *PharmacyGroup) Items() []*LineItem {
	return g.items
}

// Item looks up a line item by product id.
func (g *PharmacyGroup) Item(productID uuid.UUID) (*LineItem, bool) {
	item, ok := g.itemIndex[productID]
	return item, ok
}

// Store is the single source of truth for cart contents. All checked and
// quantity state lives here; callers mutate it only through the accessors so
// the quantity bounds and selection derivations cannot be bypassed.
type Store struct {
	pharmacies []*PharmacyGroup
	index      map[uuid.UUID]*PharmacyGroup
	version    uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{index: make(map[uuid.UUID]*PharmacyGroup)}
}

// Load replaces the entire pharmacy/line-item map from a remote snapshot.
// Every checked flag resets to false; loading the same payload twice yields
// the same structure.
func (s *Store) Load(payload []marketapi.PharmacyCart) {
	s.pharmacies = make([]*PharmacyGroup, 0, len(payload))
	s.index = make(map[uuid.UUID]*PharmacyGroup, len(payload))

	for _, remote := range payload {
		group := &PharmacyGroup{
			ID:        remote.PharmacyInfo.ID,
			Name:      remote.PharmacyInfo.Name,
			City:      remote.PharmacyInfo.City,
			PartnerID: remote.PharmacyInfo.PartnerID,
			items:     make([]*LineItem, 0, len(remote.ProductsInfo)),
			itemIndex: make(map[uuid.UUID]*LineItem, len(remote.ProductsInfo)),
		}
		for _, product := range remote.ProductsInfo {
			item := &LineItem{
				PharmacyProductID: product.PharmacyProductID,
				ProductID:         product.ProductID,
				PharmacyID:        remote.PharmacyInfo.ID,
				Name:              product.Name,
				Image:             product.Image,
				Quantity:          clampQuantity(product.Quantity, product.Stock),
				UnitPrice:         product.UnitPrice,
				Stock:             product.Stock,
				WeightGrams:       product.WeightGrams,
			}
			group.items = append(group.items, item)
			group.itemIndex[item.ProductID] = item
		}
		s.pharmacies = append(s.pharmacies, group)
		s.index[group.ID] = group
	}
	s.bump()
}

// Pharmacies returns the pharmacy groups in display order.
func (s *Store) Pharmacies() []*PharmacyGroup {
	return s.pharmacies
}

// Pharmacy looks up a group by id.
func (s *Store) Pharmacy(pharmacyID uuid.UUID) (*PharmacyGroup, bool) {
	group, ok := s.index[pharmacyID]
	return group, ok
}

// Item looks up a line item by pharmacy and product id.
func (s *Store) Item(pharmacyID, productID uuid.UUID) (*LineItem, bool) {
	group, ok := s.index[pharmacyID]
	if !ok {
		return nil, false
	}
	return group.Item(productID)
}

// Version is the rerender marker. It changes whenever the store mutates in a
// way a view must observe, including removals that change no primitive field.
func (s *Store) Version() uint64 {
	return s.version
}

// SetQuantity applies an absolute quantity, clamped to [1, stock]. It returns
// the quantity in effect afterwards and whether it changed. Out-of-range
// values never survive past this boundary.
func (s *Store) SetQuantity(pharmacyID, productID uuid.UUID, quantity int) (int, bool) {
	item, ok := s.Item(pharmacyID, productID)
	if !ok {
		return 0, false
	}
	clamped := clampQuantity(quantity, item.Stock)
	if clamped == item.Quantity {
		return item.Quantity, false
	}
	item.Quantity = clamped
	s.bump()
	return item.Quantity, true
}

// AdjustQuantity applies a relative edit. A step that would leave the
// [1, stock] range is a no-op, not an error: the storefront renders the
// offending button disabled instead of surfacing a fault.
func (s *Store) AdjustQuantity(pharmacyID, productID uuid.UUID, delta int) (int, bool) {
	item, ok := s.Item(pharmacyID, productID)
	if !ok {
		return 0, false
	}
	target := item.Quantity + delta
	if target < minQuantity || target > item.Stock {
		return item.Quantity, false
	}
	item.Quantity = target
	s.bump()
	return item.Quantity, true
}

// RemoveItem drops a line item. An emptied pharmacy group is retained, not
// pruned, so the view can still show its empty-state row; the version bump
// is what tells the view to re-render.
func (s *Store) RemoveItem(pharmacyID, productID uuid.UUID) (*LineItem, bool) {
	group, ok := s.index[pharmacyID]
	if !ok {
		return nil, false
	}
	removed, ok := group.itemIndex[productID]
	if !ok {
		return nil, false
	}
	delete(group.itemIndex, productID)
	for i, item := range group.items {
		if item.ProductID == productID {
			group.items = append(group.items[:i], group.items[i+1:]...)
			break
		}
	}
	group.Checked = allChecked(group.items)
	s.bump()
	return removed, true
}

const minQuantity = 1

func clampQuantity(quantity, stock int) int {
	if quantity < minQuantity {
		return minQuantity
	}
	if stock >= minQuantity && quantity > stock {
		return stock
	}
	return quantity
}

func (s *Store) bump() {
	s.version++
}
