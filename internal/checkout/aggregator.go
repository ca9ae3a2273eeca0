package checkout

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/medimartid/medimart-gateway/internal/cart"
	pkgerrors "github.com/medimartid/medimart-gateway/pkg/errors"
	"github.com/medimartid/medimart-gateway/pkg/marketapi"
)

// group is one pharmacy's slice of a checkout session. Its items are
// detached copies taken at hand-off, so cart edits after entering checkout
// never reach a session already on screen.
type group struct {
	pharmacy cart.PharmacyView
	note     string

	shipCode    string
	shipService string
	shipCost    decimal.Decimal
	quoted      bool
}

// session is one user's checkout in progress.
type session struct {
	groups []*group

	addressID   uuid.UUID
	destination string
	hasAddress  bool

	// addressVersion increments on every address change. Quotes carry the
	// version they were issued under; applying one against a newer version
	// is refused as stale.
	addressVersion uint64
}

// GroupView is the render-ready copy of one checkout group.
type GroupView struct {
	PharmacyID  uuid.UUID       `json:"pharmacy_id"`
	Name        string          `json:"name"`
	City        string          `json:"city"`
	Items       []cart.ItemView `json:"items"`
	Note        string          `json:"note"`
	ShipCode    string          `json:"ship_code,omitempty"`
	ShipService string          `json:"ship_service,omitempty"`
	ShipCost    decimal.Decimal `json:"ship_cost"`
	Quoted      bool            `json:"quoted"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Total       decimal.Decimal `json:"total"`
}

// View is the aggregate checkout summary: per-group totals plus the grand
// total the buyer confirms.
type View struct {
	AddressID      uuid.UUID       `json:"address_id"`
	Destination    string          `json:"destination,omitempty"`
	HasAddress     bool            `json:"has_address"`
	AddressVersion uint64          `json:"address_version"`
	Groups         []GroupView     `json:"groups"`
	ItemsTotal     decimal.Decimal `json:"items_total"`
	ShippingTotal  decimal.Decimal `json:"shipping_total"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// Aggregator holds the per-user checkout sessions. A session is built from
// the checked cart selection on enter and lives until submit or re-enter.
type Aggregator struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{sessions: make(map[uuid.UUID]*session)}
}

// Enter builds a session from the checked selection. Re-entering rebuilds
// the groups from the fresh selection: notes carry forward for pharmacies
// still present, ship costs reset since the quoted weight may have changed.
func (a *Aggregator) Enter(userID uuid.UUID, selection []cart.PharmacyView) (View, error) {
	if len(selection) == 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "no items selected for checkout")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	prior := a.sessions[userID]
	next := &session{groups: make([]*group, 0, len(selection))}
	if prior != nil {
		next.addressID = prior.addressID
		next.destination = prior.destination
		next.hasAddress = prior.hasAddress
		next.addressVersion = prior.addressVersion
	}
	for _, pharmacy := range selection {
		entry := &group{pharmacy: pharmacy}
		if prior != nil {
			if old := prior.group(pharmacy.PharmacyID); old != nil {
				entry.note = old.note
			}
		}
		next.groups = append(next.groups, entry)
	}
	a.sessions[userID] = next
	return next.view(), nil
}

// View returns the current session summary.
func (a *Aggregator) View(userID uuid.UUID) (View, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessionLocked(userID)
	if err != nil {
		return View{}, err
	}
	return sess.view(), nil
}

// SetNote attaches a buyer note to one pharmacy's order. A pharmacy that is
// not part of the session is ignored, the way a stale widget event would be.
func (a *Aggregator) SetNote(userID, pharmacyID uuid.UUID, note string) (View, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessionLocked(userID)
	if err != nil {
		return View{}, err
	}
	if entry := sess.group(pharmacyID); entry != nil {
		entry.note = note
	}
	return sess.view(), nil
}

// SetAddress picks the delivery address for the whole checkout. Every quoted
// ship cost is discarded and the address version moves on, so quotes issued
// for the previous address can no longer be applied.
func (a *Aggregator) SetAddress(userID, addressID uuid.UUID, destination string) (View, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessionLocked(userID)
	if err != nil {
		return View{}, err
	}
	sess.addressID = addressID
	sess.destination = destination
	sess.hasAddress = true
	sess.addressVersion++
	for _, entry := range sess.groups {
		entry.shipCode = ""
		entry.shipService = ""
		entry.shipCost = decimal.Zero
		entry.quoted = false
	}
	return sess.view(), nil
}

// QuoteContext returns the inputs a carrier quote needs for one group, plus
// the address version the quote will be valid under.
func (a *Aggregator) QuoteContext(userID, pharmacyID uuid.UUID) (items []cart.ItemView, addressID uuid.UUID, destination string, version uint64, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessionLocked(userID)
	if err != nil {
		return nil, uuid.Nil, "", 0, err
	}
	if !sess.hasAddress {
		return nil, uuid.Nil, "", 0, pkgerrors.New(pkgerrors.CodeValidation, "pick a delivery address before requesting shipping options")
	}
	entry := sess.group(pharmacyID)
	if entry == nil {
		return nil, uuid.Nil, "", 0, pkgerrors.New(pkgerrors.CodeNotFound, "pharmacy not in checkout")
	}
	return entry.pharmacy.Items, sess.addressID, sess.destination, sess.addressVersion, nil
}

// ApplyShipCost records the carrier option the buyer picked. The version
// must match the current address version: a quote fetched before an address
// change is stale and refused. An unknown pharmacy is ignored.
func (a *Aggregator) ApplyShipCost(userID, pharmacyID uuid.UUID, version uint64, option marketapi.ShippingOption) (View, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessionLocked(userID)
	if err != nil {
		return View{}, err
	}
	if version != sess.addressVersion {
		return View{}, pkgerrors.New(pkgerrors.CodeConflict, "shipping quote is stale, refresh the options")
	}
	if entry := sess.group(pharmacyID); entry != nil {
		entry.shipCode = option.Code
		entry.shipService = option.Service
		entry.shipCost = option.ShipCost
		entry.quoted = true
	}
	return sess.view(), nil
}

// BuildSubmissions turns the session into the per-pharmacy order payloads.
// Every precondition failure is reported at once rather than one per retry.
func (a *Aggregator) BuildSubmissions(userID uuid.UUID) ([]marketapi.OrderSubmission, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessionLocked(userID)
	if err != nil {
		return nil, err
	}

	var problems error
	if !sess.hasAddress {
		problems = multierr.Append(problems, pkgerrors.New(pkgerrors.CodeValidation, "delivery address not set"))
	}
	for _, entry := range sess.groups {
		if !entry.quoted {
			problems = multierr.Append(problems, pkgerrors.New(pkgerrors.CodeValidation,
				"shipping option not picked for "+entry.pharmacy.Name))
		}
	}
	if problems != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, problems, "checkout is not ready to submit")
	}

	out := make([]marketapi.OrderSubmission, 0, len(sess.groups))
	for _, entry := range sess.groups {
		submission := marketapi.OrderSubmission{
			AddressID:   sess.addressID,
			PharmacyID:  entry.pharmacy.PharmacyID,
			Description: entry.note,
			ShipCost:    entry.shipCost,
		}
		for _, item := range entry.pharmacy.Items {
			submission.OrderProducts = append(submission.OrderProducts, marketapi.OrderProduct{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
		out = append(out, submission)
	}
	return out, nil
}

// Clear drops the session, after a successful submit or an explicit exit.
func (a *Aggregator) Clear(userID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, userID)
}

func (a *Aggregator) sessionLocked(userID uuid.UUID) (*session, error) {
	sess, ok := a.sessions[userID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout in progress")
	}
	return sess, nil
}

func (s *session) group(pharmacyID uuid.UUID) *group {
	for _, entry := range s.groups {
		if entry.pharmacy.PharmacyID == pharmacyID {
			return entry
		}
	}
	return nil
}

func (s *session) view() View {
	view := View{
		AddressID:      s.addressID,
		Destination:    s.destination,
		HasAddress:     s.hasAddress,
		AddressVersion: s.addressVersion,
		Groups:         make([]GroupView, 0, len(s.groups)),
		ItemsTotal:     decimal.Zero,
		ShippingTotal:  decimal.Zero,
	}
	for _, entry := range s.groups {
		subtotal := decimal.Zero
		for _, item := range entry.pharmacy.Items {
			subtotal = subtotal.Add(item.Subtotal)
		}
		groupView := GroupView{
			PharmacyID:  entry.pharmacy.PharmacyID,
			Name:        entry.pharmacy.Name,
			City:        entry.pharmacy.City,
			Items:       entry.pharmacy.Items,
			Note:        entry.note,
			ShipCode:    entry.shipCode,
			ShipService: entry.shipService,
			ShipCost:    entry.shipCost,
			Quoted:      entry.quoted,
			Subtotal:    subtotal,
			Total:       subtotal.Add(entry.shipCost),
		}
		view.Groups = append(view.Groups, groupView)
		view.ItemsTotal = view.ItemsTotal.Add(subtotal)
		view.ShippingTotal = view.ShippingTotal.Add(entry.shipCost)
	}
	view.GrandTotal = view.ItemsTotal.Add(view.ShippingTotal)
	return view
}
