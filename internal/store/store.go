// Package store is the shared application state container: the modal
// coordinator and the purchase flow orchestrator. Views read from it;
// mutations happen only through the named operations below, so session
// and entitlement state keep a single writer.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/studyshelf/studyshelf/internal/api"
	"github.com/studyshelf/studyshelf/internal/entitlement"
	"github.com/studyshelf/studyshelf/internal/logger"
	"github.com/studyshelf/studyshelf/internal/model"
	"github.com/studyshelf/studyshelf/internal/session"
)

// ModalKind identifies the single active overlay.
type ModalKind int

const (
	ModalNone ModalKind = iota
	ModalLogin
	ModalRegistration
	ModalCheckout
	ModalPDFPreview
	ModalVideoPreview
)

func (k ModalKind) String() string {
	switch k {
	case ModalNone:
		return "none"
	case ModalLogin:
		return "login"
	case ModalRegistration:
		return "registration"
	case ModalCheckout:
		return "checkout"
	case ModalPDFPreview:
		return "pdfPreview"
	case ModalVideoPreview:
		return "videoPreview"
	default:
		return "unknown"
	}
}

// CheckoutPhase is the checkout modal's internal state.
type CheckoutPhase int

const (
	CheckoutForm CheckoutPhase = iota
	CheckoutSubmitting
	CheckoutSuccess
)

// ModalState is the active modal plus its payload. Exactly one payload
// field is set for kinds that carry one.
type ModalState struct {
	Kind    ModalKind
	Content *model.ContentItem // pdf/video preview payload
	Plan    *model.Plan        // registration/checkout payload
}

// Category names an async operation class for stale-response guarding.
type Category int

const (
	CatLogin Category = iota
	CatCheckout
	CatCatalog
)

// OrderCreator is the slice of the backend the orchestrator needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, token string, req api.OrderRequest) (string, error)
}

// Store is the application state container.
type Store struct {
	Session *session.Store
	Ents    *entitlement.Cache

	orders OrderCreator

	mu            sync.Mutex
	modal         ModalState
	checkoutPhase CheckoutPhase
	checkoutErr   string
	address       *model.Address
	gens          map[Category]uint64
}

// New creates the store around its collaborators.
func New(sess *session.Store, ents *entitlement.Cache, orders OrderCreator) *Store {
	return &Store{
		Session: sess,
		Ents:    ents,
		orders:  orders,
		gens:    map[Category]uint64{},
	}
}

// Modal returns a snapshot of the modal state.
func (s *Store) Modal() ModalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := ModalState{Kind: s.modal.Kind}
	if s.modal.Content != nil {
		c := *s.modal.Content
		out.Content = &c
	}
	if s.modal.Plan != nil {
		p := *s.modal.Plan
		out.Plan = &p
	}
	return out
}

// CheckoutPhase returns the checkout modal's internal phase.
func (s *Store) CheckoutPhase() CheckoutPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkoutPhase
}

// CheckoutError returns the inline checkout error, "" when none.
func (s *Store) CheckoutError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkoutErr
}

// SelectedPlan returns the in-flight purchase candidate, nil outside a
// purchase flow.
func (s *Store) SelectedPlan() *model.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modal.Plan == nil {
		return nil
	}
	p := *s.modal.Plan
	return &p
}

// setModal replaces whatever modal is active. Opening always clears the
// previous payload; there is no modal stacking.
func (s *Store) setModal(st ModalState) {
	s.modal = st
	s.checkoutPhase = CheckoutForm
	s.checkoutErr = ""
	if st.Kind != ModalCheckout {
		s.address = nil
	}
	// In-flight checkout responses for the replaced modal are stale now
	s.gens[CatCheckout]++
	logger.Debug("Modal changed", logger.F("kind", st.Kind.String()))
}

// OpenLogin shows the login modal.
func (s *Store) OpenLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setModal(ModalState{Kind: ModalLogin})
}

// OpenRegistration shows the registration modal, optionally carrying
// the plan the user was buying.
func (s *Store) OpenRegistration(plan *model.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setModal(ModalState{Kind: ModalRegistration, Plan: plan})
}

// OpenCheckout shows the checkout modal for a plan.
func (s *Store) OpenCheckout(plan model.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setModal(ModalState{Kind: ModalCheckout, Plan: &plan})
}

// OpenPDFPreview shows the PDF preview modal.
func (s *Store) OpenPDFPreview(pdf model.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setModal(ModalState{Kind: ModalPDFPreview, Content: &pdf})
}

// OpenVideoPreview shows the video preview modal.
func (s *Store) OpenVideoPreview(video model.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setModal(ModalState{Kind: ModalVideoPreview, Content: &video})
}

// CloseModal dismisses the active modal and discards the selected plan.
func (s *Store) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setModal(ModalState{Kind: ModalNone})
}

// SetAddress attaches a delivery address to the current checkout.
// Hard-copy orders carry one; digital orders do not.
func (s *Store) SetAddress(addr model.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = &addr
}

// PlanForItem builds the purchase candidate for a single catalog item,
// defaulting the price when the record omits one.
func PlanForItem(item model.ContentItem) model.Plan {
	planType := model.PlanSinglePDF
	fallback := model.DefaultPDFPrice
	if item.Type == model.TypeVideo {
		planType = model.PlanSingleVideo
		fallback = model.DefaultVideoPrice
	}
	price := item.Price
	if price == 0 {
		price = fallback
	}
	return model.Plan{
		ID:      item.Key(),
		Name:    item.Title,
		Type:    planType,
		Price:   price,
		ClassID: item.ClassID,
	}
}

// HardCopyPlan builds the printed-set purchase candidate for a class.
func HardCopyPlan(classID string) model.Plan {
	pricing := model.HardCopyPricing[classID]
	return model.Plan{
		ID:      "hardcopy-" + classID,
		Name:    model.ClassName(classID) + " Printed Material Set",
		Type:    model.PlanHardCopy,
		Price:   pricing.Price + pricing.Shipping,
		ClassID: classID,
	}
}

// Buy routes a buy intent on a catalog item: login first when the user
// is not authenticated (the intent is not carried over), checkout
// otherwise.
func (s *Store) Buy(item model.ContentItem) {
	if !s.Session.IsAuthenticated() {
		s.OpenLogin()
		return
	}
	s.OpenCheckout(PlanForItem(item))
}

// BuyPlan routes a buy intent on a class package plan.
func (s *Store) BuyPlan(plan model.Plan) {
	if !s.Session.IsAuthenticated() {
		s.OpenLogin()
		return
	}
	s.OpenCheckout(plan)
}

// CompleteRegistration records the freshly created account and moves
// the flow forward: straight to checkout when a plan was pending,
// otherwise the modal closes.
func (s *Store) CompleteRegistration(user model.UserProfile, token string) {
	s.Session.Register(user, token)

	s.mu.Lock()
	plan := s.modal.Plan
	s.mu.Unlock()

	if plan != nil {
		s.OpenCheckout(*plan)
		return
	}
	s.CloseModal()
}

// SwitchToLogin is the registration modal's "account already exists"
// handoff: close the registration flow entirely, then open login.
func (s *Store) SwitchToLogin() {
	s.CloseModal()
	s.OpenLogin()
}

// BeginOp bumps and returns the generation for an async category.
// Results delivered later with an older generation must be dropped.
func (s *Store) BeginOp(cat Category) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[cat]++
	return s.gens[cat]
}

// OpCurrent reports whether gen is still the live generation for cat.
func (s *Store) OpCurrent(cat Category, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[cat] == gen
}

// SubmitPayment runs the checkout confirmation. Payment is demo mode:
// the order is created already completed, no gateway is contacted.
// On success the entitlement set gains the purchase and the modal shows
// its success state until the user dismisses it. On failure the modal
// stays on the form with an inline message and retry stays available.
func (s *Store) SubmitPayment(ctx context.Context) {
	s.mu.Lock()
	if s.modal.Kind != ModalCheckout || s.modal.Plan == nil {
		s.mu.Unlock()
		return
	}
	if s.checkoutPhase == CheckoutSubmitting {
		// A submission is already in flight
		s.mu.Unlock()
		return
	}
	plan := *s.modal.Plan
	addr := s.address

	token := s.Session.Token()
	if token == "" {
		s.checkoutErr = "Please login to continue"
		s.mu.Unlock()
		return
	}

	s.checkoutPhase = CheckoutSubmitting
	s.checkoutErr = ""
	s.gens[CatCheckout]++
	gen := s.gens[CatCheckout]
	s.mu.Unlock()

	orderType := "digital"
	if plan.Type == model.PlanHardCopy {
		orderType = "hardcopy"
	}

	req := api.OrderRequest{
		OrderType:     orderType,
		Items:         []model.OrderItem{{ID: plan.ID, Name: plan.Name, Price: plan.Price}},
		ClassID:       plan.ClassID,
		PackageType:   plan.Type,
		Amount:        plan.Price,
		PaymentMethod: "demo", // will change to razorpay when the gateway lands
		PaymentStatus: "completed",
		OrderStatus:   "completed",
		Address:       addr,
	}

	orderID, err := s.orders.CreateOrder(ctx, token, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[CatCheckout] != gen {
		// Modal was closed or reopened while the request was in flight
		logger.Debug("Discarding stale checkout response", logger.F("order", orderID))
		return
	}

	if err != nil {
		msg := "Payment failed. Please try again."
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		logger.Warn("Order creation failed", logger.F("error", err))
		s.checkoutPhase = CheckoutForm
		s.checkoutErr = msg
		return
	}

	rec := model.Purchase{
		Name:        plan.Name,
		Price:       plan.Price,
		OrderID:     orderID,
		PurchasedAt: time.Now(),
	}
	switch plan.Type {
	case model.PackagePDFs, model.PackageVideos, model.PackageBundle:
		rec.ClassID = plan.ClassID
		rec.PackageType = plan.Type
	default:
		rec.ItemID = plan.ID
		rec.ClassID = plan.ClassID
		rec.PackageType = plan.Type
	}
	if err := s.Ents.RecordPurchase(rec); err != nil {
		logger.Error("Failed to persist purchase", logger.F("error", err))
	}

	s.checkoutPhase = CheckoutSuccess
}
