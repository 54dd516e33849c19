package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studyshelf/studyshelf/internal/api"
	"github.com/studyshelf/studyshelf/internal/gate"
	"github.com/studyshelf/studyshelf/internal/model"
	"github.com/studyshelf/studyshelf/internal/session"
	"github.com/studyshelf/studyshelf/internal/store"
)

// restoredMsg is sent when the startup session check settles
type restoredMsg struct{}

// catalogMsg delivers a catalog fetch result
type catalogMsg struct {
	gen   uint64
	items []model.ContentItem
	err   error
}

// plansMsg delivers the pricing plans
type plansMsg struct {
	gen   uint64
	plans []model.Plan
	err   error
}

// ordersMsg delivers the order ledger
type ordersMsg struct {
	gen    uint64
	orders []model.Order
	err    error
}

// loginResultMsg delivers an async login outcome
type loginResultMsg struct {
	gen    uint64
	result session.LoginResult
}

// registerResultMsg delivers an async registration outcome
type registerResultMsg struct {
	gen  uint64
	data *api.AuthData
	err  error
}

// paymentSettledMsg is sent when a checkout submission settles
type paymentSettledMsg struct{}

// entitlementsMsg is sent when the background refresher merged new purchases
type entitlementsMsg struct{}

const requestTimeout = 30 * time.Second

// Init starts the session restore and the first catalog load
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.restoreCmd(), (&m).loadPage(), m.waitForUpdates())
}

func (m Model) restoreCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		m.app.Session.Restore(ctx)
		return restoredMsg{}
	}
}

// waitForUpdates listens for background entitlement merges
func (m Model) waitForUpdates() tea.Cmd {
	if m.refresher == nil {
		return nil
	}
	return func() tea.Msg {
		<-m.refresher.Updates()
		return entitlementsMsg{}
	}
}

// loadPage kicks off whatever fetch the current page needs
func (m *Model) loadPage() tea.Cmd {
	m.itemCursor = 0
	classID := m.cfg.SelectedClass
	board := m.boardForQuery()

	switch m.page {
	case PageMaterials, PageVideos:
		contentType := model.TypePDF
		if m.page == PageVideos {
			contentType = model.TypeVideo
		}
		m.loadingCatalog = true
		gen := m.app.BeginOp(store.CatCatalog)
		client := m.client
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			items, err := client.Content(ctx, api.ContentFilters{
				Type: contentType, ClassID: classID, Board: board,
			})
			return catalogMsg{gen: gen, items: items, err: err}
		}

	case PagePricing:
		m.loadingCatalog = true
		gen := m.app.BeginOp(store.CatCatalog)
		client := m.client
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			plans, err := client.Pricing(ctx)
			return plansMsg{gen: gen, plans: plans, err: err}
		}

	case PageOrders:
		token := m.app.Session.Token()
		if token == "" {
			m.orderRows = nil
			return nil
		}
		m.loadingCatalog = true
		gen := m.app.BeginOp(store.CatCatalog)
		client := m.client
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			list, err := client.Orders(ctx, token)
			return ordersMsg{gen: gen, orders: list, err: err}
		}
	}

	return nil
}

// boardForQuery returns the board filter, empty for tracks without one
func (m *Model) boardForQuery() string {
	for _, c := range model.Classes {
		if c.ID == m.cfg.SelectedClass && !c.HasBoards {
			return ""
		}
	}
	return m.cfg.SelectedBoard
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case restoredMsg:
		if m.app.Session.IsAuthenticated() {
			if u := m.app.Session.User(); u != nil {
				m.message = "Welcome back, " + u.Name
			}
			if m.refresher != nil {
				m.refresher.Trigger()
			}
		}
		return m, nil

	case catalogMsg:
		if !m.app.OpCurrent(store.CatCatalog, msg.gen) {
			return m, nil
		}
		m.loadingCatalog = false
		if msg.err != nil {
			m.message = "Could not load the catalog. Press r to retry."
			return m, nil
		}
		m.items = msg.items
		return m, nil

	case plansMsg:
		if !m.app.OpCurrent(store.CatCatalog, msg.gen) {
			return m, nil
		}
		m.loadingCatalog = false
		if msg.err != nil {
			m.message = "Could not load pricing. Press r to retry."
			return m, nil
		}
		m.plans = msg.plans
		return m, nil

	case ordersMsg:
		if !m.app.OpCurrent(store.CatCatalog, msg.gen) {
			return m, nil
		}
		m.loadingCatalog = false
		if msg.err != nil {
			m.message = "Could not load your orders. Press r to retry."
			return m, nil
		}
		m.orderRows = msg.orders
		return m, nil

	case loginResultMsg:
		if !m.app.OpCurrent(store.CatLogin, msg.gen) {
			return m, nil
		}
		m.submitting = false
		if !msg.result.Success {
			m.formErr = msg.result.Message
			return m, nil
		}
		// The original buy intent is not carried over; the user
		// re-initiates it from the list.
		m.app.CloseModal()
		m.message = "Logged in. Select your item again to continue."
		if m.refresher != nil {
			m.refresher.Trigger()
		}
		return m, (&m).loadPage()

	case registerResultMsg:
		if !m.app.OpCurrent(store.CatLogin, msg.gen) {
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			var apiErr *api.Error
			if asAPIError(msg.err, &apiErr) {
				m.formErr = apiErr.Message
			} else {
				m.formErr = "Could not reach the server. Please try again."
			}
			return m, nil
		}
		m.app.CompleteRegistration(msg.data.User, msg.data.Token)
		if m.app.Modal().Kind == store.ModalCheckout {
			m.setFields()
		}
		m.message = "Account created"
		return m, nil

	case paymentSettledMsg:
		m.submitting = false
		if m.app.CheckoutPhase() == store.CheckoutSuccess {
			if m.refresher != nil {
				m.refresher.Trigger()
			}
		}
		return m, nil

	case entitlementsMsg:
		m.message = "Purchases synced from your orders"
		return m, m.waitForUpdates()

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.app.Modal().Kind != store.ModalNone {
			return m.updateModal(msg)
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.pane == PaneSidebar {
			m.pane = PaneList
		} else {
			m.pane = PaneSidebar
		}

	case key.Matches(msg, keys.Left):
		m.pane = PaneSidebar

	case key.Matches(msg, keys.Right):
		m.pane = PaneList

	case key.Matches(msg, keys.Up):
		if m.pane == PaneSidebar {
			if m.navCursor > 0 {
				m.navCursor--
				m.page = Page(m.navCursor)
				return m, (&m).loadPage()
			}
		} else if m.itemCursor > 0 {
			m.itemCursor--
		}

	case key.Matches(msg, keys.Down):
		if m.pane == PaneSidebar {
			if m.navCursor < len(pageNames)-1 {
				m.navCursor++
				m.page = Page(m.navCursor)
				return m, (&m).loadPage()
			}
		} else if m.itemCursor < m.listLen()-1 {
			m.itemCursor++
		}

	case key.Matches(msg, keys.Enter):
		if m.pane == PaneSidebar {
			m.pane = PaneList
			return m, nil
		}
		return m.primaryAction()

	case key.Matches(msg, keys.Preview):
		if m.pane == PaneList {
			return m.previewAction()
		}

	case key.Matches(msg, keys.Buy):
		if m.pane == PaneList {
			return m.buyAction()
		}

	case key.Matches(msg, keys.Class):
		m.cycleClass()
		return m, (&m).loadPage()

	case key.Matches(msg, keys.Board):
		m.cycleBoard()
		return m, (&m).loadPage()

	case msg.String() == "r":
		return m, (&m).loadPage()

	case key.Matches(msg, keys.Login):
		if !m.app.Session.IsAuthenticated() {
			(&m).openLogin()
		}

	case key.Matches(msg, keys.Logout):
		if m.app.Session.IsAuthenticated() {
			m.app.Session.Logout()
			m.message = "Logged out"
		} else {
			m.message = "Not logged in"
		}

	case key.Matches(msg, keys.Help):
		m.showHelp = true
	}

	return m, nil
}

func (m Model) listLen() int {
	switch m.page {
	case PageMaterials, PageVideos:
		return len(m.items)
	case PagePricing:
		return len(m.plans)
	case PageHardCopy:
		return len(model.Classes)
	case PageDownloads:
		return len(m.downloads())
	case PageOrders:
		return len(m.orderRows)
	}
	return 0
}

// downloads lists purchased PDF-type entitlements
func (m Model) downloads() []model.Purchase {
	var out []model.Purchase
	for _, p := range m.app.Ents.Purchases() {
		switch p.PackageType {
		case model.PackagePDFs, model.PackageBundle, model.PlanSinglePDF:
			out = append(out, p)
		}
	}
	return out
}

// primaryAction runs the item's main affordance: watch/download when
// unlocked, buy otherwise
func (m Model) primaryAction() (tea.Model, tea.Cmd) {
	switch m.page {
	case PageMaterials, PageVideos:
		item := m.currentItem()
		if item == nil {
			return m, nil
		}
		switch gate.ActionFor(m.app.Ents, *item) {
		case gate.ActionDownload:
			m.message = "Downloading " + item.Title
		case gate.ActionWatch:
			m.message = "Playing " + item.Title
		default:
			return m.buyAction()
		}

	case PagePricing:
		plan := m.currentPlan()
		if plan == nil {
			return m, nil
		}
		if !m.app.Session.IsAuthenticated() {
			(&m).openLogin()
			return m, nil
		}
		(&m).openCheckout(*plan)

	case PageHardCopy:
		if m.itemCursor >= len(model.Classes) {
			return m, nil
		}
		if !m.app.Session.IsAuthenticated() {
			(&m).openLogin()
			return m, nil
		}
		(&m).openCheckout(store.HardCopyPlan(model.Classes[m.itemCursor].ID))
	}

	return m, nil
}

func (m Model) previewAction() (tea.Model, tea.Cmd) {
	if m.page != PageMaterials && m.page != PageVideos {
		return m, nil
	}
	item := m.currentItem()
	if item == nil {
		return m, nil
	}
	if item.Type == model.TypeVideo {
		m.app.OpenVideoPreview(*item)
	} else {
		m.app.OpenPDFPreview(*item)
	}
	return m, nil
}

func (m Model) buyAction() (tea.Model, tea.Cmd) {
	if m.page != PageMaterials && m.page != PageVideos {
		return m, nil
	}
	item := m.currentItem()
	if item == nil {
		return m, nil
	}
	if gate.Unlocked(m.app.Ents, *item) {
		m.message = "Already unlocked"
		return m, nil
	}
	if !m.app.Session.IsAuthenticated() {
		(&m).openLogin()
		return m, nil
	}
	(&m).openCheckout(store.PlanForItem(*item))
	return m, nil
}

func (m *Model) cycleClass() {
	for i, c := range model.Classes {
		if c.ID == m.cfg.SelectedClass {
			m.cfg.SelectedClass = model.Classes[(i+1)%len(model.Classes)].ID
			m.cfg.Save()
			return
		}
	}
	m.cfg.SelectedClass = model.Classes[0].ID
}

func (m *Model) cycleBoard() {
	for i, b := range model.Boards {
		if b.ID == m.cfg.SelectedBoard {
			m.cfg.SelectedBoard = model.Boards[(i+1)%len(model.Boards)].ID
			m.cfg.Save()
			return
		}
	}
	m.cfg.SelectedBoard = model.Boards[0].ID
}
