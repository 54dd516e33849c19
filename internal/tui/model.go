package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/studyshelf/studyshelf/internal/api"
	"github.com/studyshelf/studyshelf/internal/config"
	"github.com/studyshelf/studyshelf/internal/model"
	"github.com/studyshelf/studyshelf/internal/orders"
	"github.com/studyshelf/studyshelf/internal/store"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneSidebar Pane = iota
	PaneList
)

// Page is a storefront screen reachable from the sidebar
type Page int

const (
	PageMaterials Page = iota
	PageVideos
	PagePricing
	PageHardCopy
	PageDownloads
	PageOrders
)

var pageNames = []string{
	"Materials",
	"Videos",
	"Pricing",
	"Hard Copy",
	"Downloads",
	"My Orders",
}

// formField is one labeled input in a modal form
type formField struct {
	key   string
	label string
	input textinput.Model
	err   string
}

// Model is the storefront TUI model
type Model struct {
	app       *store.Store
	client    *api.Client
	cfg       *config.Config
	refresher *orders.Refresher

	// UI state
	width      int
	height     int
	pane       Pane
	page       Page
	navCursor  int
	itemCursor int
	showHelp   bool

	// Page data
	items          []model.ContentItem
	plans          []model.Plan
	orderRows      []model.Order
	loadingCatalog bool

	// Modal form state
	fields     []formField
	focusIdx   int
	formErr    string
	submitting bool

	message string
}

// New creates the storefront TUI model
func New(app *store.Store, client *api.Client, cfg *config.Config, refresher *orders.Refresher) Model {
	return Model{
		app:       app,
		client:    client,
		cfg:       cfg,
		refresher: refresher,
		pane:      PaneSidebar,
	}
}

func newField(key, label, placeholder string, secret bool) formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 128
	ti.Width = 36
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return formField{key: key, label: label, input: ti}
}

func (m *Model) setFields(fields ...formField) {
	m.fields = fields
	m.focusIdx = 0
	m.formErr = ""
	m.submitting = false
	if len(m.fields) > 0 {
		m.fields[0].input.Focus()
	}
}

func (m *Model) fieldValue(key string) string {
	for _, f := range m.fields {
		if f.key == key {
			return f.input.Value()
		}
	}
	return ""
}

func (m *Model) setFieldError(key, msg string) {
	for i := range m.fields {
		if m.fields[i].key == key {
			m.fields[i].err = msg
		}
	}
}

func (m *Model) clearFieldErrors() {
	for i := range m.fields {
		m.fields[i].err = ""
	}
}

// openLogin opens the login modal with a fresh form
func (m *Model) openLogin() {
	m.app.OpenLogin()
	m.setFields(
		newField("identifier", "Phone / Email", "Enter your 10-digit number or email", false),
		newField("password", "Password", "Enter your password", true),
	)
}

// openRegistration opens the registration modal, optionally keeping the
// plan the user was buying
func (m *Model) openRegistration(plan *model.Plan) {
	m.app.OpenRegistration(plan)
	m.setFields(
		newField("name", "Full Name", "Enter your name", false),
		newField("phone", "Phone Number", "Enter your 10-digit number", false),
		newField("email", "Email (optional)", "you@example.com", false),
		newField("password", "Password", "Minimum 8 characters", true),
	)
}

// openCheckout opens the checkout modal for a plan; hard-copy plans get
// a delivery address form
func (m *Model) openCheckout(plan model.Plan) {
	m.app.OpenCheckout(plan)
	if plan.Type == model.PlanHardCopy {
		m.setFields(
			newField("name", "Full Name", "Recipient name", false),
			newField("phone", "Phone Number", "Enter your 10-digit number", false),
			newField("line1", "Address", "Street address", false),
			newField("city", "City", "City", false),
			newField("pincode", "Pincode", "6-digit pincode", false),
		)
	} else {
		m.setFields()
	}
}

func (m *Model) currentItem() *model.ContentItem {
	if m.itemCursor < len(m.items) {
		return &m.items[m.itemCursor]
	}
	return nil
}

func (m *Model) currentPlan() *model.Plan {
	if m.itemCursor < len(m.plans) {
		return &m.plans[m.itemCursor]
	}
	return nil
}
