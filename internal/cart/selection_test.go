package cart

import (
	"testing"

	"github.com/google/uuid"
)

func TestToggleProductDerivesPharmacyState(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Load(buildPayload(1, 3))
	group := store.Pharmacies()[0]

	for _, item := range group.Items() {
		store.ToggleProduct(group.ID, item.ProductID)
	}
	if !group.Checked {
		t.Fatal("checking every item must check the pharmacy")
	}

	store.ToggleProduct(group.ID, group.Items()[1].ProductID)
	if group.Checked {
		t.Fatal("unchecking one item must uncheck the pharmacy")
	}
}

func TestTogglePharmacyPropagatesToItems(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Load(buildPayload(1, 3))
	group := store.Pharmacies()[0]

	// Mixed item state: the pharmacy toggle still forces all items.
	store.ToggleProduct(group.ID, group.Items()[0].ProductID)

	store.TogglePharmacy(group.ID)
	for _, item := range group.Items() {
		if !item.Checked {
			t.Fatalf("item %s not checked after pharmacy toggle", item.ProductID)
		}
	}

	store.TogglePharmacy(group.ID)
	for _, item := range group.Items() {
		if item.Checked {
			t.Fatalf("item %s still checked after pharmacy untoggle", item.ProductID)
		}
	}
}

func TestSelectAllDerivation(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Load(buildPayload(2, 2))
	first := store.Pharmacies()[0]
	second := store.Pharmacies()[1]

	store.TogglePharmacy(first.ID)
	if store.SelectAll() {
		t.Fatal("select-all must be false while one pharmacy is unchecked")
	}

	store.TogglePharmacy(second.ID)
	if !store.SelectAll() {
		t.Fatal("select-all must be true once every pharmacy is checked")
	}

	store.ToggleProduct(second.ID, second.Items()[0].ProductID)
	if store.SelectAll() {
		t.Fatal("unchecking any item must clear select-all")
	}
}

func TestIndependentPharmacies(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Load(buildPayload(2, 2))
	first := store.Pharmacies()[0]
	second := store.Pharmacies()[1]

	store.TogglePharmacy(first.ID)
	store.ToggleProduct(second.ID, second.Items()[0].ProductID)

	if !first.Checked {
		t.Fatal("first pharmacy must stay fully checked")
	}
	for _, item := range first.Items() {
		if !item.Checked {
			t.Fatal("first pharmacy items must stay checked")
		}
	}
	if second.Checked {
		t.Fatal("partially checked second pharmacy must not be checked")
	}
	if second.Items()[1].Checked {
		t.Fatal("untouched item in second pharmacy must stay unchecked")
	}
	if store.SelectAll() {
		t.Fatal("select-all must be false with a partial pharmacy")
	}
}

func TestDoubleToggleRestoresState(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Load(buildPayload(2, 2))
	group := store.Pharmacies()[0]
	productID := group.Items()[0].ProductID

	store.ToggleProduct(group.ID, productID)
	store.ToggleProduct(group.ID, productID)
	if store.CheckedCount() != 0 {
		t.Fatal("double product toggle must restore the unchecked state")
	}

	store.TogglePharmacy(group.ID)
	store.TogglePharmacy(group.ID)
	if store.CheckedCount() != 0 || group.Checked {
		t.Fatal("double pharmacy toggle must restore the unchecked state")
	}

	store.ToggleSelectAll()
	store.ToggleSelectAll()
	if store.CheckedCount() != 0 {
		t.Fatal("double select-all toggle must restore the unchecked state")
	}
}

func TestToggleSelectAllFlipsEverything(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Load(buildPayload(3, 2))

	store.ToggleSelectAll()
	if store.CheckedCount() != 6 || !store.SelectAll() {
		t.Fatalf("expected all 6 items checked, got %d", store.CheckedCount())
	}

	store.ToggleSelectAll()
	if store.CheckedCount() != 0 {
		t.Fatalf("expected 0 items checked, got %d", store.CheckedCount())
	}
}

func TestSelectAllOnEmptyCart(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Load(nil)
	if !store.SelectAll() {
		t.Fatal("empty cart select-all is vacuously true")
	}
}

func TestToggleUnknownTargets(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Load(buildPayload(1, 1))

	if store.ToggleProduct(uuid.New(), uuid.New()) {
		t.Fatal("toggling an unknown product must fail")
	}
	if store.TogglePharmacy(uuid.New()) {
		t.Fatal("toggling an unknown pharmacy must fail")
	}
}

func TestRemovingLastUncheckedItemChecksPharmacy(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.Load(buildPayload(1, 2))
	group := store.Pharmacies()[0]
	checked := group.Items()[0]
	unchecked := group.Items()[1]

	store.ToggleProduct(group.ID, checked.ProductID)
	if group.Checked {
		t.Fatal("pharmacy must not be checked with one item unchecked")
	}

	store.RemoveItem(group.ID, unchecked.ProductID)
	if !group.Checked {
		t.Fatal("pharmacy must re-derive to checked once the unchecked item is gone")
	}
}
