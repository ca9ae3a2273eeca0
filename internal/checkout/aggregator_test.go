package checkout

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medimartid/medimart-gateway/internal/cart"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/marketapi"
)

func buildSelection(pharmacies int, itemsPer int) []cart.PharmacyView {
	out := make([]cart.PharmacyView, 0, pharmacies)
	for p := 0; p < pharmacies; p++ {
		view := cart.PharmacyView{
			PharmacyID: uuid.New(),
			Name:       "Apotek Sehat",
			City:       "Jakarta",
			Checked:    true,
		}
		for i := 0; i < itemsPer; i++ {
			price := decimal.NewFromInt(10000)
			view.Items = append(view.Items, cart.ItemView{
				PharmacyProductID: uuid.New(),
				ProductID:         uuid.New(),
				Quantity:          2,
				UnitPrice:         price,
				WeightGrams:       decimal.NewFromInt(100),
				Checked:           true,
				Subtotal:          price.Mul(decimal.NewFromInt(2)),
			})
			view.CheckedTotal = view.CheckedTotal.Add(view.Items[i].Subtotal)
		}
		out = append(out, view)
	}
	return out
}

func jneOption(cost int64) marketapi.ShippingOption {
	return marketapi.ShippingOption{Code: "jne", Service: "REG", ShipCost: decimal.NewFromInt(cost)}
}

func TestEnterRequiresSelection(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	_, err := agg.Enter(uuid.New(), nil)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnterComputesTotals(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	view, err := agg.Enter(uuid.New(), buildSelection(2, 2))
	if err != nil {
		t.Fatalf("enter: %v", err)
	}
	// 2 pharmacies x 2 items x 2 x 10000.
	if !view.ItemsTotal.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("expected items total 80000, got %s", view.ItemsTotal)
	}
	if !view.GrandTotal.Equal(view.ItemsTotal) {
		t.Fatal("grand total must equal items total before any shipping is picked")
	}
	for _, group := range view.Groups {
		if !group.Subtotal.Equal(decimal.NewFromInt(40000)) {
			t.Fatalf("expected group subtotal 40000, got %s", group.Subtotal)
		}
	}
}

func TestReenterCarriesNotesAndDropsQuotes(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	userID := uuid.New()
	selection := buildSelection(2, 1)
	if _, err := agg.Enter(userID, selection); err != nil {
		t.Fatalf("enter: %v", err)
	}

	kept := selection[0].PharmacyID
	if _, err := agg.SetNote(userID, kept, "leave at the door"); err != nil {
		t.Fatalf("set note: %v", err)
	}
	if _, err := agg.SetAddress(userID, uuid.New(), "Bandung"); err != nil {
		t.Fatalf("set address: %v", err)
	}
	if _, err := agg.ApplyShipCost(userID, kept, 1, jneOption(15000)); err != nil {
		t.Fatalf("apply ship cost: %v", err)
	}

	// Second pharmacy deselected before re-entering.
	view, err := agg.Enter(userID, selection[:1])
	if err != nil {
		t.Fatalf("re-enter: %v", err)
	}
	if len(view.Groups) != 1 {
		t.Fatalf("deselected pharmacy must be dropped, got %d groups", len(view.Groups))
	}
	if view.Groups[0].Note != "leave at the door" {
		t.Fatalf("note must carry forward, got %q", view.Groups[0].Note)
	}
	if view.Groups[0].Quoted {
		t.Fatal("ship cost must not survive a re-enter")
	}
	if !view.HasAddress {
		t.Fatal("address must carry forward across re-enter")
	}
}

func TestSetNoteUnknownPharmacyIsIgnored(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	userID := uuid.New()
	if _, err := agg.Enter(userID, buildSelection(1, 1)); err != nil {
		t.Fatalf("enter: %v", err)
	}
	view, err := agg.SetNote(userID, uuid.New(), "whatever")
	if err != nil {
		t.Fatalf("set note: %v", err)
	}
	if view.Groups[0].Note != "" {
		t.Fatal("note for an unknown pharmacy must not land anywhere")
	}
}

func TestSetAddressDiscardsQuotesAndBumpsVersion(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	userID := uuid.New()
	selection := buildSelection(1, 1)
	if _, err := agg.Enter(userID, selection); err != nil {
		t.Fatalf("enter: %v", err)
	}

	first, _ := agg.SetAddress(userID, uuid.New(), "Bandung")
	if _, err := agg.ApplyShipCost(userID, selection[0].PharmacyID, first.AddressVersion, jneOption(15000)); err != nil {
		t.Fatalf("apply ship cost: %v", err)
	}

	second, _ := agg.SetAddress(userID, uuid.New(), "Surabaya")
	if second.AddressVersion != first.AddressVersion+1 {
		t.Fatalf("expected version bump, got %d then %d", first.AddressVersion, second.AddressVersion)
	}
	if second.Groups[0].Quoted || !second.Groups[0].ShipCost.IsZero() {
		t.Fatal("address change must discard the quoted ship cost")
	}
}

func TestApplyShipCostRejectsStaleVersion(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	userID := uuid.New()
	selection := buildSelection(1, 1)
	if _, err := agg.Enter(userID, selection); err != nil {
		t.Fatalf("enter: %v", err)
	}
	stale, _ := agg.SetAddress(userID, uuid.New(), "Bandung")
	agg.SetAddress(userID, uuid.New(), "Surabaya")

	_, err := agg.ApplyShipCost(userID, selection[0].PharmacyID, stale.AddressVersion, jneOption(15000))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for a stale quote, got %v", err)
	}
}

func TestShippingFeedsGrandTotal(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	userID := uuid.New()
	selection := buildSelection(2, 1)
	if _, err := agg.Enter(userID, selection); err != nil {
		t.Fatalf("enter: %v", err)
	}
	addr, _ := agg.SetAddress(userID, uuid.New(), "Bandung")
	agg.ApplyShipCost(userID, selection[0].PharmacyID, addr.AddressVersion, jneOption(15000))
	view, _ := agg.ApplyShipCost(userID, selection[1].PharmacyID, addr.AddressVersion, jneOption(22000))

	if !view.ShippingTotal.Equal(decimal.NewFromInt(37000)) {
		t.Fatalf("expected shipping total 37000, got %s", view.ShippingTotal)
	}
	expected := view.ItemsTotal.Add(decimal.NewFromInt(37000))
	if !view.GrandTotal.Equal(expected) {
		t.Fatalf("expected grand total %s, got %s", expected, view.GrandTotal)
	}
}

func TestBuildSubmissionsReportsEveryPrecondition(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	userID := uuid.New()
	if _, err := agg.Enter(userID, buildSelection(2, 1)); err != nil {
		t.Fatalf("enter: %v", err)
	}

	_, err := agg.BuildSubmissions(userID)
	if err == nil {
		t.Fatal("expected precondition failures")
	}
	message := err.Error()
	if !strings.Contains(message, "address") {
		t.Fatalf("missing address must be reported, got %q", message)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildSubmissionsPayload(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	userID := uuid.New()
	selection := buildSelection(2, 2)
	if _, err := agg.Enter(userID, selection); err != nil {
		t.Fatalf("enter: %v", err)
	}
	addressID := uuid.New()
	addr, _ := agg.SetAddress(userID, addressID, "Bandung")
	agg.SetNote(userID, selection[0].PharmacyID, "call on arrival")
	agg.ApplyShipCost(userID, selection[0].PharmacyID, addr.AddressVersion, jneOption(15000))
	agg.ApplyShipCost(userID, selection[1].PharmacyID, addr.AddressVersion, jneOption(22000))

	submissions, err := agg.BuildSubmissions(userID)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(submissions) != 2 {
		t.Fatalf("expected one submission per pharmacy, got %d", len(submissions))
	}
	first := submissions[0]
	if first.AddressID != addressID || first.PharmacyID != selection[0].PharmacyID {
		t.Fatal("submission must carry the address and pharmacy ids")
	}
	if first.Description != "call on arrival" {
		t.Fatalf("expected the note as description, got %q", first.Description)
	}
	if len(first.OrderProducts) != 2 {
		t.Fatalf("expected 2 order products, got %d", len(first.OrderProducts))
	}
	if first.OrderProducts[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", first.OrderProducts[0].Quantity)
	}
	if !first.ShipCost.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("expected ship cost 15000, got %s", first.ShipCost)
	}
}

func TestViewWithoutSession(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	_, err := agg.View(uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}
