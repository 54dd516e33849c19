package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Status colors
	Unlocked    = lipgloss.Color("#95E1A3") // Green - owned/free
	Locked      = lipgloss.Color("#FFB347") // Orange - needs purchase
	ErrorRed    = lipgloss.Color("#FF6B6B")
	PendingGold = lipgloss.Color("#FFE66D")

	// UI colors
	Primary    = lipgloss.Color("#4ECDC4")
	Secondary  = lipgloss.Color("#6C757D")
	Text       = lipgloss.Color("#FFFFFF")
	TextMuted  = lipgloss.Color("#888888")
	Border     = lipgloss.Color("#333333")
	Highlight  = lipgloss.Color("#4ECDC4")
	FreeBadge  = lipgloss.Color("#95E1A3")
	PriceBadge = lipgloss.Color("#FFE66D")
)

// Styles
var (
	// Sidebar
	SidebarStyle = lipgloss.NewStyle().
			Width(22).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	// Content list pane
	ListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// List items
	ItemStyle = lipgloss.NewStyle().
			Foreground(Text)

	ItemSelectedStyle = lipgloss.NewStyle().
				Foreground(Highlight).
				Bold(true)

	ItemOwnedStyle = lipgloss.NewStyle().
			Foreground(Unlocked)

	NavItemStyle = lipgloss.NewStyle().
			Foreground(Text)

	NavItemSelectedStyle = lipgloss.NewStyle().
				Foreground(Highlight).
				Bold(true)

	// Modal
	ModalStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	// Inline errors inside modals
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorRed)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Unlocked).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	FreeBadgeStyle = lipgloss.NewStyle().
			Foreground(FreeBadge).
			Bold(true)

	PriceBadgeStyle = lipgloss.NewStyle().
			Foreground(PriceBadge)
)
