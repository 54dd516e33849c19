package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studyshelf/studyshelf/internal/gate"
	"github.com/studyshelf/studyshelf/internal/model"
	"github.com/studyshelf/studyshelf/internal/store"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebar := m.renderSidebar()
	list := m.renderList()
	statusBar := m.renderStatusBar()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, list)

	if modal := m.app.Modal(); modal.Kind != store.ModalNone {
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderModal(modal),
			lipgloss.WithWhitespaceChars(" "),
		)
	} else if m.showHelp {
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) renderSidebar() string {
	var s string

	s += TitleStyle.Render("StudyShelf") + "\n"
	s += HelpStyle.Render(model.ClassName(m.cfg.SelectedClass)+" • "+strings.ToUpper(m.cfg.SelectedBoard)) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render("─────────────────") + "\n\n"

	for i, name := range pageNames {
		cursor := "  "
		style := NavItemStyle
		if i == m.navCursor {
			cursor = "❯ "
			if m.pane == PaneSidebar {
				style = NavItemSelectedStyle
			}
		}
		s += style.Render(cursor+name) + "\n"
	}

	s += "\n" + lipgloss.NewStyle().Foreground(Border).Render("─────────────────") + "\n"
	if m.app.Session.IsLoading() {
		s += HelpStyle.Render("checking session...")
	} else if u := m.app.Session.User(); u != nil && m.app.Session.IsAuthenticated() {
		s += HelpStyle.Render(truncate(u.Name, 16))
	} else {
		s += HelpStyle.Render("not logged in")
	}

	return SidebarStyle.Height(m.height - 2).Render(s)
}

func (m Model) renderList() string {
	width := m.width - 26
	var s string

	header := pageNames[m.page]
	s += TitleStyle.Render(header) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", max(width-4, 1))) + "\n\n"

	if m.loadingCatalog {
		s += HelpStyle.Render("  Loading...")
		return ListStyle.Width(width).Height(m.height - 2).Render(s)
	}

	switch m.page {
	case PageMaterials, PageVideos:
		s += m.renderContentRows(width)
	case PagePricing:
		s += m.renderPlanRows(width)
	case PageHardCopy:
		s += m.renderHardCopyRows()
	case PageDownloads:
		s += m.renderDownloadRows()
	case PageOrders:
		s += m.renderOrderRows()
	}

	return ListStyle.Width(width).Height(m.height - 2).Render(s)
}

func (m Model) renderContentRows(width int) string {
	if len(m.items) == 0 {
		return HelpStyle.Render("  Nothing here yet for this class.")
	}

	var s string
	for i, item := range m.items {
		cursor := "  "
		style := ItemStyle
		if i == m.itemCursor && m.pane == PaneList {
			cursor = "❯ "
			style = ItemSelectedStyle
		}

		marker := "🔒"
		if gate.Unlocked(m.app.Ents, item) {
			marker = "✓"
			if i != m.itemCursor {
				style = ItemOwnedStyle
			}
		}

		badge := gate.Badge(item)
		badgeStyle := PriceBadgeStyle
		if item.IsFree {
			badgeStyle = FreeBadgeStyle
		}

		line := fmt.Sprintf("%s%s %-*s", cursor, marker, max(width-24, 10), truncate(item.Title, max(width-24, 10)))
		s += style.Render(line) + " " + badgeStyle.Render(badge) + "\n"
		if i == m.itemCursor && m.pane == PaneList {
			meta := item.Subject
			if item.Type == model.TypePDF && item.Pages > 0 {
				meta += fmt.Sprintf(" • %d pages", item.Pages)
			}
			if item.Type == model.TypeVideo && item.Duration != "" {
				meta += " • " + item.Duration
			}
			s += HelpStyle.Render("     "+meta) + "\n"
		}
	}
	return s
}

func (m Model) renderPlanRows(width int) string {
	if len(m.plans) == 0 {
		return HelpStyle.Render("  No plans available right now.")
	}

	var s string
	for i, plan := range m.plans {
		cursor := "  "
		style := ItemStyle
		if i == m.itemCursor && m.pane == PaneList {
			cursor = "❯ "
			style = ItemSelectedStyle
		}

		owned := ""
		if m.app.Ents.IsClassPackagePurchased(plan.ClassID, plan.Type) {
			owned = "  " + SuccessStyle.Render("owned")
		}

		line := fmt.Sprintf("%s%-*s ₹%d", cursor, max(width-18, 10), truncate(plan.Name, max(width-18, 10)), plan.Price)
		s += style.Render(line) + owned + "\n"
	}
	return s
}

func (m Model) renderHardCopyRows() string {
	var s string
	for i, c := range model.Classes {
		cursor := "  "
		style := ItemStyle
		if i == m.itemCursor && m.pane == PaneList {
			cursor = "❯ "
			style = ItemSelectedStyle
		}
		p := model.HardCopyPricing[c.ID]
		line := fmt.Sprintf("%s%-24s ₹%d + ₹%d shipping", cursor, c.Name+" printed set", p.Price, p.Shipping)
		s += style.Render(line) + "\n"
	}
	s += "\n" + HelpStyle.Render("  Printed material sets are delivered in 5-7 working days.")
	return s
}

func (m Model) renderDownloadRows() string {
	downloads := m.downloads()
	if !m.app.Session.IsAuthenticated() || len(downloads) == 0 {
		return HelpStyle.Render("  No purchases yet. Browse Materials to get started.")
	}

	var s string
	for i, p := range downloads {
		cursor := "  "
		style := ItemStyle
		if i == m.itemCursor && m.pane == PaneList {
			cursor = "❯ "
			style = ItemSelectedStyle
		}
		name := p.Name
		if name == "" {
			name = model.ClassName(p.ClassID) + " " + p.PackageType
		}
		line := fmt.Sprintf("%s%-40s %s", cursor, truncate(name, 40), p.PurchasedAt.Format("02 Jan 2006"))
		s += style.Render(line) + "\n"
	}
	return s
}

func (m Model) renderOrderRows() string {
	if !m.app.Session.IsAuthenticated() {
		return HelpStyle.Render("  Login to see your orders.")
	}
	if len(m.orderRows) == 0 {
		return HelpStyle.Render("  No orders yet.")
	}

	var s string
	for i, o := range m.orderRows {
		cursor := "  "
		style := ItemStyle
		if i == m.itemCursor && m.pane == PaneList {
			cursor = "❯ "
			style = ItemSelectedStyle
		}
		name := o.PackageType
		if len(o.Items) > 0 {
			name = o.Items[0].Name
		}
		status := o.OrderStatus
		if o.OrderType == "hardcopy" && o.TrackingID != "" {
			status += " • " + o.TrackingID
		}
		line := fmt.Sprintf("%s%-36s ₹%-6d %s", cursor, truncate(name, 36), o.Amount, status)
		s += style.Render(line) + "\n"
	}
	return s
}

func (m Model) renderStatusBar() string {
	help := "enter:open  p:preview  b:buy  c:class  i:login  ?:help  q:quit"
	if m.message != "" {
		help = m.message
	}

	pending := ""
	if m.refresher != nil && m.refresher.IsPending() {
		pending = "Refreshing orders..."
	}

	if pending != "" {
		avail := m.width - lipgloss.Width(help) - len(pending) - 2
		if avail > 0 {
			help += strings.Repeat(" ", avail) + pending
		} else {
			help += " " + pending
		}
	}

	return StatusBarStyle.Width(m.width).Render(help)
}

// renderModal dispatches to the active overlay's renderer
func (m Model) renderModal(modal store.ModalState) string {
	switch modal.Kind {
	case store.ModalLogin:
		return m.renderLoginModal()
	case store.ModalRegistration:
		return m.renderRegistrationModal(modal)
	case store.ModalCheckout:
		return m.renderCheckoutModal(modal)
	case store.ModalPDFPreview:
		return m.renderPDFPreviewModal(modal)
	case store.ModalVideoPreview:
		return m.renderVideoPreviewModal(modal)
	}
	return ""
}

func (m Model) renderForm() string {
	var s string
	for i, f := range m.fields {
		label := f.label
		if i == m.focusIdx {
			label = TitleStyle.Render(label)
		} else {
			label = HelpStyle.Render(label)
		}
		s += label + "\n" + f.input.View() + "\n"
		if f.err != "" {
			s += ErrorStyle.Render(f.err) + "\n"
		}
		s += "\n"
	}
	return s
}

func (m Model) renderLoginModal() string {
	content := TitleStyle.Render("Welcome Back!") + "\n"
	content += HelpStyle.Render("Login to continue your learning journey") + "\n\n"

	if m.formErr != "" {
		content += ErrorStyle.Render(m.formErr) + "\n\n"
	}

	content += m.renderForm()

	if m.submitting {
		content += HelpStyle.Render("Logging in...") + "\n\n"
	}

	content += HelpStyle.Render("enter:login  tab:next field  ctrl+r:create account  esc:close")
	return ModalStyle.Width(48).Render(content)
}

func (m Model) renderRegistrationModal(modal store.ModalState) string {
	content := TitleStyle.Render("Create Your Account") + "\n"
	if modal.Plan != nil {
		content += HelpStyle.Render(fmt.Sprintf("Buying: %s (₹%d)", modal.Plan.Name, modal.Plan.Price)) + "\n"
	}
	content += "\n"

	if m.formErr != "" {
		content += ErrorStyle.Render(m.formErr) + "\n\n"
	}

	content += m.renderForm()

	if m.submitting {
		content += HelpStyle.Render("Creating account...") + "\n\n"
	}

	content += HelpStyle.Render("enter:register  tab:next field  ctrl+l:login instead  esc:close")
	return ModalStyle.Width(48).Render(content)
}

func (m Model) renderCheckoutModal(modal store.ModalState) string {
	if m.app.CheckoutPhase() == store.CheckoutSuccess {
		name := ""
		if modal.Plan != nil {
			name = modal.Plan.Name
		}
		content := SuccessStyle.Render("✓ Purchase Successful!") + "\n\n"
		content += fmt.Sprintf("Thank you for your purchase. You now have\nfull access to %s.\n\n", name)
		content += HelpStyle.Render("enter:continue")
		return ModalStyle.Width(48).Render(content)
	}

	content := TitleStyle.Render("Complete Your Purchase") + "\n\n"

	if modal.Plan != nil {
		content += fmt.Sprintf("%-30s ₹%d\n", truncate(modal.Plan.Name, 30), modal.Plan.Price)
		content += HelpStyle.Render(modal.Plan.Type) + "\n"
		content += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", 40)) + "\n"
		content += fmt.Sprintf("%-30s ₹%d\n\n", "Total Amount", modal.Plan.Price)
	}

	if u := m.app.Session.User(); u != nil {
		name := u.Name
		if name == "" {
			name = u.Phone
		}
		content += HelpStyle.Render("Purchasing as: "+name) + "\n\n"
	}

	if len(m.fields) > 0 {
		content += TitleStyle.Render("Delivery Address") + "\n\n"
		content += m.renderForm()
	}

	if err := m.app.CheckoutError(); err != "" {
		content += ErrorStyle.Render(err) + "\n\n"
	}

	if m.submitting || m.app.CheckoutPhase() == store.CheckoutSubmitting {
		content += HelpStyle.Render("Processing...") + "\n\n"
	} else {
		content += HelpStyle.Render("Payment integration coming soon. This completes a demo purchase.") + "\n\n"
	}

	content += HelpStyle.Render("enter:pay  esc:cancel")
	return ModalStyle.Width(52).Render(content)
}

func (m Model) renderPDFPreviewModal(modal store.ModalState) string {
	item := modal.Content
	if item == nil {
		return ""
	}

	pages := gate.PreviewPages(*item)

	content := TitleStyle.Render("Preview: "+item.Title) + "\n"
	content += HelpStyle.Render(fmt.Sprintf("%s • %d chapters", item.Subject, item.Chapters)) + "\n\n"

	if item.IsFree {
		content += fmt.Sprintf("Free material. All %d pages available.\n\n", item.Pages)
	} else {
		content += fmt.Sprintf("Showing the first %d pages.\n\n", pages)
		for p := 1; p <= pages; p++ {
			content += fmt.Sprintf("  ▣ Page %d\n", p)
		}
		content += fmt.Sprintf("\nLike what you see? Purchase to access all %d pages.\n\n", item.Pages)
	}

	content += HelpStyle.Render("b:buy  esc:close")
	return ModalStyle.Width(52).Render(content)
}

func (m Model) renderVideoPreviewModal(modal store.ModalState) string {
	item := modal.Content
	if item == nil {
		return ""
	}

	content := TitleStyle.Render(item.Title) + "\n"
	meta := item.Subject
	if item.Duration != "" {
		meta += " • " + item.Duration
	}
	if item.Lessons > 0 {
		meta += fmt.Sprintf(" • %d lessons", item.Lessons)
	}
	content += HelpStyle.Render(meta) + "\n\n"

	if item.Instructor != "" {
		content += "Instructor: " + item.Instructor + "\n"
	}
	if item.Description != "" {
		content += truncate(item.Description, 160) + "\n"
	}
	content += "\n▶ Video preview\n\n"

	content += HelpStyle.Render("b:buy  esc:close")
	return ModalStyle.Width(52).Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭──── Keyboard Shortcuts ────╮
│                            │
│  Navigation                │
│  ──────────                │
│  j/↓    Move down          │
│  k/↑    Move up            │
│  h/l    Switch pane        │
│  Tab    Switch pane        │
│                            │
│  Actions                   │
│  ───────                   │
│  enter  Open / download    │
│  p      Preview item       │
│  b      Buy item           │
│  c      Switch class       │
│  B      Switch board       │
│  r      Reload page        │
│                            │
│  Account                   │
│  ───────                   │
│  i      Login              │
│  L      Logout             │
│                            │
╰────────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}

// Helpers
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
