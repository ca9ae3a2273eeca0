package cart

import "github.com/google/uuid"

// Selection rules. A pharmacy is checked iff every one of its items is
// checked, and the cart-wide select-all is checked iff every pharmacy is.
// Both are derived from the line items after every mutation; neither is ever
// stored out of band where it could drift.

// ToggleProduct flips one item's checked flag and re-derives the owning
// pharmacy's flag from its items.
func (s *Store) ToggleProduct(pharmacyID, productID uuid.UUID) bool {
	group, ok := s.index[pharmacyID]
	if !ok {
		return false
	}
	item, ok := group.itemIndex[productID]
	if !ok {
		return false
	}
	item.Checked = !item.Checked
	group.Checked = allChecked(group.items)
	s.bump()
	return true
}

// TogglePharmacy flips the pharmacy flag and forces every owned item to the
// new value. On this path the pharmacy is authoritative over its items.
func (s *Store) TogglePharmacy(pharmacyID uuid.UUID) bool {
	group, ok := s.index[pharmacyID]
	if !ok {
		return false
	}
	group.Checked = !group.Checked
	for _, item := range group.items {
		item.Checked = group.Checked
	}
	s.bump()
	return true
}

// SetAll forces every pharmacy and every item to the same value.
func (s *Store) SetAll(checked bool) {
	for _, group := range s.pharmacies {
		group.Checked = checked
		for _, item := range group.items {
			item.Checked = checked
		}
	}
	s.bump()
}

// ToggleSelectAll flips the derived select-all state and propagates it down.
func (s *Store) ToggleSelectAll() {
	s.SetAll(!s.SelectAll())
}

// SelectAll reports whether every pharmacy, and every item within each, is
// checked. An empty cart evaluates true: the value is the AND fold over the
// groups, and the empty fold is vacuously true.
func (s *Store) SelectAll() bool {
	for _, group := range s.pharmacies {
		if !group.Checked {
			return false
		}
		if !allChecked(group.items) {
			return false
		}
	}
	return true
}

// CheckedCount returns how many line items are currently checked.
func (s *Store) CheckedCount() int {
	var count int
	for _, group := range s.pharmacies {
		for _, item := range group.items {
			if item.Checked {
				count++
			}
		}
	}
	return count
}

func allChecked(items []*LineItem) bool {
	for _, item := range items {
		if !item.Checked {
			return false
		}
	}
	return true
}
