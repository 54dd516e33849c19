package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyshelf/studyshelf/internal/api"
	"github.com/studyshelf/studyshelf/internal/db"
	"github.com/studyshelf/studyshelf/internal/entitlement"
	"github.com/studyshelf/studyshelf/internal/model"
	"github.com/studyshelf/studyshelf/internal/session"
)

// fakeAuth satisfies session.Authenticator with scripted responses.
type fakeAuth struct {
	loginData *api.AuthData
	loginErr  error
}

func (f *fakeAuth) Login(ctx context.Context, identifier, password string) (*api.AuthData, error) {
	return f.loginData, f.loginErr
}

func (f *fakeAuth) Me(ctx context.Context, token string) (*model.UserProfile, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, token string, profile model.UserProfile) (*model.UserProfile, error) {
	return &profile, nil
}

// fakeOrders records order creation calls and can fail on demand.
type fakeOrders struct {
	calls     int
	lastReq   api.OrderRequest
	err       error
	onCreate  func()
	nextOrder string
}

func (f *fakeOrders) CreateOrder(ctx context.Context, token string, req api.OrderRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.err != nil {
		return "", f.err
	}
	if f.nextOrder == "" {
		f.nextOrder = "o-1"
	}
	return f.nextOrder, nil
}

type fixture struct {
	store  *Store
	sess   *session.Store
	ents   *entitlement.Cache
	orders *fakeOrders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	ents, err := entitlement.NewCache(database)
	require.NoError(t, err)

	auth := &fakeAuth{loginData: &api.AuthData{
		Token: "tok-1",
		User:  model.UserProfile{ID: "u-1", Name: "Asha", Phone: "9876543210"},
	}}
	sess := session.NewStore(auth, filepath.Join(t.TempDir(), "session.json"))

	orders := &fakeOrders{}
	return &fixture{
		store:  New(sess, ents, orders),
		sess:   sess,
		ents:   ents,
		orders: orders,
	}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	res := f.sess.Login(context.Background(), "9876543210", "secret")
	require.True(t, res.Success)
}

func pdfItem() model.ContentItem {
	return model.ContentItem{
		ID: "pdf-1", Title: "Science Notes", Type: model.TypePDF,
		Subject: "Science", ClassID: "class10", Price: 199,
	}
}

func TestOnlyOneModalActive(t *testing.T) {
	f := newFixture(t)

	f.store.OpenPDFPreview(pdfItem())
	assert.Equal(t, ModalPDFPreview, f.store.Modal().Kind)

	// Opening another modal replaces the first and drops its payload
	f.store.OpenLogin()
	m := f.store.Modal()
	assert.Equal(t, ModalLogin, m.Kind)
	assert.Nil(t, m.Content)
}

func TestCloseModalDropsPayloadAndPlan(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.store.Buy(pdfItem())
	require.Equal(t, ModalCheckout, f.store.Modal().Kind)
	require.NotNil(t, f.store.SelectedPlan())

	f.store.CloseModal()
	m := f.store.Modal()
	assert.Equal(t, ModalNone, m.Kind)
	assert.Nil(t, m.Plan)
	assert.Nil(t, f.store.SelectedPlan())
}

func TestModalPayloadIsFresh(t *testing.T) {
	f := newFixture(t)

	first := pdfItem()
	f.store.OpenPDFPreview(first)
	f.store.CloseModal()

	second := pdfItem()
	second.ID = "pdf-2"
	second.Title = "Other Notes"
	f.store.OpenPDFPreview(second)

	m := f.store.Modal()
	require.NotNil(t, m.Content)
	assert.Equal(t, "pdf-2", m.Content.ID, "reopened modal never shows the previous payload")
}

func TestBuyUnauthenticatedOpensLogin(t *testing.T) {
	f := newFixture(t)

	f.store.Buy(pdfItem())

	m := f.store.Modal()
	assert.Equal(t, ModalLogin, m.Kind)
	assert.Nil(t, m.Plan, "buy intent is not carried through login")
}

func TestBuyAuthenticatedOpensCheckout(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.store.Buy(pdfItem())

	m := f.store.Modal()
	assert.Equal(t, ModalCheckout, m.Kind)
	require.NotNil(t, m.Plan)
	assert.Equal(t, "pdf-1", m.Plan.ID)
	assert.Equal(t, model.PlanSinglePDF, m.Plan.Type)
	assert.Equal(t, 199, m.Plan.Price)
	assert.Equal(t, CheckoutForm, f.store.CheckoutPhase())
}

func TestPlanForItemPriceFallback(t *testing.T) {
	pdf := pdfItem()
	pdf.Price = 0
	assert.Equal(t, 199, PlanForItem(pdf).Price)

	video := model.ContentItem{ID: "vid-1", Title: "Lecture", Type: model.TypeVideo, ClassID: "class10"}
	plan := PlanForItem(video)
	assert.Equal(t, 299, plan.Price)
	assert.Equal(t, model.PlanSingleVideo, plan.Type)
}

func TestPlanForItemUsesCanonicalID(t *testing.T) {
	item := model.ContentItem{ContentID: "legacy-7", Title: "Old Notes", Type: model.TypePDF, ClassID: "class10", Price: 199}
	assert.Equal(t, "legacy-7", PlanForItem(item).ID)
}

func TestHardCopyPlanIncludesShipping(t *testing.T) {
	plan := HardCopyPlan("class10")
	assert.Equal(t, model.PlanHardCopy, plan.Type)
	assert.Equal(t, 2600, plan.Price)
	assert.Equal(t, "class10", plan.ClassID)
}

func TestSubmitPaymentWithoutTokenShortCircuits(t *testing.T) {
	f := newFixture(t)

	// Checkout reached without a session, e.g. token cleared mid-flow
	f.store.OpenCheckout(PlanForItem(pdfItem()))
	f.store.SubmitPayment(context.Background())

	assert.Equal(t, 0, f.orders.calls, "no request leaves the client without a token")
	assert.Equal(t, CheckoutForm, f.store.CheckoutPhase())
	assert.Equal(t, "Please login to continue", f.store.CheckoutError())
}

func TestSubmitPaymentSuccess(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.store.Buy(pdfItem())
	f.store.SubmitPayment(context.Background())

	assert.Equal(t, CheckoutSuccess, f.store.CheckoutPhase())
	assert.Empty(t, f.store.CheckoutError())
	assert.True(t, f.ents.IsItemPurchased("pdf-1"))

	req := f.orders.lastReq
	assert.Equal(t, "digital", req.OrderType)
	assert.Equal(t, "demo", req.PaymentMethod)
	assert.Equal(t, "completed", req.PaymentStatus)
	assert.Equal(t, "completed", req.OrderStatus)
	assert.Equal(t, 199, req.Amount)

	// Modal stays on the success screen until dismissed
	assert.Equal(t, ModalCheckout, f.store.Modal().Kind)
	f.store.CloseModal()
	assert.Equal(t, ModalNone, f.store.Modal().Kind)
}

func TestSubmitPaymentPackageGrantsClassEntitlement(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.store.BuyPlan(model.Plan{
		ID: "class10-bundle", Name: "Class 10 Complete Bundle",
		Type: model.PackageBundle, Price: 1999, ClassID: "class10",
	})
	f.store.SubmitPayment(context.Background())

	assert.Equal(t, CheckoutSuccess, f.store.CheckoutPhase())
	assert.True(t, f.ents.IsClassPackagePurchased("class10", model.PackagePDFs))
	assert.True(t, f.ents.IsClassPackagePurchased("class10", model.PackageVideos))
}

func TestSubmitPaymentFailureAllowsRetry(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.orders.err = &api.Error{Message: "Payment declined"}

	f.store.Buy(pdfItem())
	f.store.SubmitPayment(context.Background())

	assert.Equal(t, CheckoutForm, f.store.CheckoutPhase())
	assert.Equal(t, "Payment declined", f.store.CheckoutError())
	assert.False(t, f.ents.IsItemPurchased("pdf-1"))
	require.NotNil(t, f.store.SelectedPlan(), "plan survives a failed submit")

	// Retry succeeds
	f.orders.err = nil
	f.store.SubmitPayment(context.Background())
	assert.Equal(t, CheckoutSuccess, f.store.CheckoutPhase())
	assert.Empty(t, f.store.CheckoutError())
	assert.True(t, f.ents.IsItemPurchased("pdf-1"))
	assert.Equal(t, 2, f.orders.calls)
}

func TestSubmitPaymentTransportFailureGenericMessage(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.orders.err = errors.New("dial tcp: connection refused")

	f.store.Buy(pdfItem())
	f.store.SubmitPayment(context.Background())

	assert.Equal(t, "Payment failed. Please try again.", f.store.CheckoutError())
}

func TestSubmitPaymentIgnoresReentry(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	// A second confirm while the first is in flight must not double-order
	f.orders.onCreate = func() {
		f.store.SubmitPayment(context.Background())
	}

	f.store.Buy(pdfItem())
	f.store.SubmitPayment(context.Background())

	assert.Equal(t, 1, f.orders.calls)
	assert.Equal(t, CheckoutSuccess, f.store.CheckoutPhase())
}

func TestSubmitPaymentDiscardedWhenModalCloses(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	// Modal closes while the order request is in flight
	f.orders.onCreate = func() {
		f.store.CloseModal()
	}

	f.store.Buy(pdfItem())
	f.store.SubmitPayment(context.Background())

	assert.Equal(t, ModalNone, f.store.Modal().Kind)
	assert.False(t, f.ents.IsItemPurchased("pdf-1"), "stale response must not apply")
	assert.Empty(t, f.store.CheckoutError())
}

func TestHardCopyOrderCarriesAddress(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.store.BuyPlan(HardCopyPlan("class10"))
	f.store.SetAddress(model.Address{
		Name: "Asha", Phone: "9876543210",
		Line1: "12 MG Road", City: "Pune", State: "MH", Pincode: "411001",
	})
	f.store.SubmitPayment(context.Background())

	assert.Equal(t, CheckoutSuccess, f.store.CheckoutPhase())
	req := f.orders.lastReq
	assert.Equal(t, "hardcopy", req.OrderType)
	require.NotNil(t, req.Address)
	assert.Equal(t, "411001", req.Address.Pincode)
}

func TestCompleteRegistrationResumesCheckout(t *testing.T) {
	f := newFixture(t)

	plan := PlanForItem(pdfItem())
	f.store.OpenRegistration(&plan)

	f.store.CompleteRegistration(model.UserProfile{ID: "u-2", Phone: "9876543211"}, "tok-2")

	m := f.store.Modal()
	assert.Equal(t, ModalCheckout, m.Kind)
	require.NotNil(t, m.Plan)
	assert.Equal(t, "pdf-1", m.Plan.ID)
	assert.True(t, f.sess.IsAuthenticated())
}

func TestCompleteRegistrationWithoutPlanCloses(t *testing.T) {
	f := newFixture(t)

	f.store.OpenRegistration(nil)
	f.store.CompleteRegistration(model.UserProfile{ID: "u-2", Phone: "9876543211"}, "tok-2")

	assert.Equal(t, ModalNone, f.store.Modal().Kind)
	assert.True(t, f.sess.IsAuthenticated())
}

func TestSwitchToLoginDropsPlan(t *testing.T) {
	f := newFixture(t)

	plan := PlanForItem(pdfItem())
	f.store.OpenRegistration(&plan)
	f.store.SwitchToLogin()

	m := f.store.Modal()
	assert.Equal(t, ModalLogin, m.Kind)
	assert.Nil(t, m.Plan)
}

func TestOpGenerations(t *testing.T) {
	f := newFixture(t)

	gen1 := f.store.BeginOp(CatCatalog)
	assert.True(t, f.store.OpCurrent(CatCatalog, gen1))

	gen2 := f.store.BeginOp(CatCatalog)
	assert.False(t, f.store.OpCurrent(CatCatalog, gen1))
	assert.True(t, f.store.OpCurrent(CatCatalog, gen2))

	// Categories are independent
	loginGen := f.store.BeginOp(CatLogin)
	assert.True(t, f.store.OpCurrent(CatLogin, loginGen))
	assert.True(t, f.store.OpCurrent(CatCatalog, gen2))
}
