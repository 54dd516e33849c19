package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studyshelf/studyshelf/internal/api"
	"github.com/studyshelf/studyshelf/internal/model"
	"github.com/studyshelf/studyshelf/internal/store"
)

func asAPIError(err error, target **api.Error) bool {
	return errors.As(err, target)
}

// updateModal routes keys while a modal is active
func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	modal := m.app.Modal()

	switch modal.Kind {
	case store.ModalPDFPreview, store.ModalVideoPreview:
		switch {
		case key.Matches(msg, keys.Escape), msg.String() == "q":
			m.app.CloseModal()
		case key.Matches(msg, keys.Buy):
			if modal.Content != nil {
				item := *modal.Content
				if !m.app.Session.IsAuthenticated() {
					(&m).openLogin()
				} else {
					(&m).openCheckout(store.PlanForItem(item))
				}
			}
		}
		return m, nil

	case store.ModalLogin:
		switch {
		case key.Matches(msg, keys.Escape):
			m.app.CloseModal()
			return m, nil
		case msg.String() == "ctrl+r":
			// "Create account" link: full transition to Registration
			(&m).openRegistration(modal.Plan)
			return m, nil
		case key.Matches(msg, keys.Enter):
			return m, (&m).submitLogin()
		}
		return m.updateFields(msg)

	case store.ModalRegistration:
		switch {
		case key.Matches(msg, keys.Escape):
			m.app.CloseModal()
			return m, nil
		case msg.String() == "ctrl+l":
			// "Already have an account" handoff
			m.app.SwitchToLogin()
			(&m).setFields(
				newField("identifier", "Phone / Email", "Enter your 10-digit number or email", false),
				newField("password", "Password", "Enter your password", true),
			)
			return m, nil
		case key.Matches(msg, keys.Enter):
			return m, (&m).submitRegistration()
		}
		return m.updateFields(msg)

	case store.ModalCheckout:
		if m.app.CheckoutPhase() == store.CheckoutSuccess {
			// Success screen stays until the user dismisses it
			if key.Matches(msg, keys.Enter) || key.Matches(msg, keys.Escape) {
				m.app.CloseModal()
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Escape):
			m.app.CloseModal()
			return m, nil
		case key.Matches(msg, keys.Enter):
			return m, (&m).submitPayment()
		}
		return m.updateFields(msg)
	}

	return m, nil
}

// updateFields cycles focus and forwards input to the focused field
func (m Model) updateFields(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.fields[m.focusIdx].input.Blur()
		m.focusIdx = (m.focusIdx + 1) % len(m.fields)
		m.fields[m.focusIdx].input.Focus()
		return m, nil
	case "shift+tab", "up":
		m.fields[m.focusIdx].input.Blur()
		m.focusIdx--
		if m.focusIdx < 0 {
			m.focusIdx = len(m.fields) - 1
		}
		m.fields[m.focusIdx].input.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.fields[m.focusIdx].input, cmd = m.fields[m.focusIdx].input.Update(msg)
	if m.fields[m.focusIdx].err != "" {
		m.fields[m.focusIdx].err = ""
	}
	m.formErr = ""
	return m, cmd
}

// submitLogin validates the form and fires the login request
func (m *Model) submitLogin() tea.Cmd {
	if m.submitting {
		return nil
	}
	m.clearFieldErrors()
	m.formErr = ""

	identifier := strings.TrimSpace(m.fieldValue("identifier"))
	password := m.fieldValue("password")

	ok := true
	if identifier == "" {
		m.setFieldError("identifier", "Phone number is required")
		ok = false
	} else if !strings.Contains(identifier, "@") && !model.ValidPhone(identifier) {
		m.setFieldError("identifier", "Please enter a valid 10-digit number")
		ok = false
	}
	if password == "" {
		m.setFieldError("password", "Password is required")
		ok = false
	}
	if !ok {
		return nil
	}

	m.submitting = true
	gen := m.app.BeginOp(store.CatLogin)
	sess := m.app.Session
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return loginResultMsg{gen: gen, result: sess.Login(ctx, identifier, password)}
	}
}

// submitRegistration validates the form and fires the registration request
func (m *Model) submitRegistration() tea.Cmd {
	if m.submitting {
		return nil
	}
	m.clearFieldErrors()
	m.formErr = ""

	profile := model.UserProfile{
		Name:    strings.TrimSpace(m.fieldValue("name")),
		Phone:   strings.TrimSpace(m.fieldValue("phone")),
		Email:   strings.TrimSpace(m.fieldValue("email")),
		ClassID: m.cfg.SelectedClass,
		Board:   m.cfg.SelectedBoard,
	}
	password := m.fieldValue("password")

	ok := true
	for field, msg := range model.ValidateProfile(profile) {
		m.setFieldError(field, msg)
		ok = false
	}
	if len(password) < 8 {
		m.setFieldError("password", "Password must be at least 8 characters")
		ok = false
	}
	if !ok {
		return nil
	}

	m.submitting = true
	gen := m.app.BeginOp(store.CatLogin)
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		data, err := client.Register(ctx, profile, password)
		return registerResultMsg{gen: gen, data: data, err: err}
	}
}

// submitPayment validates any address form and fires the order request
func (m *Model) submitPayment() tea.Cmd {
	if m.submitting || m.app.CheckoutPhase() == store.CheckoutSubmitting {
		return nil
	}

	plan := m.app.SelectedPlan()
	if plan == nil {
		return nil
	}

	if plan.Type == model.PlanHardCopy {
		m.clearFieldErrors()
		addr := model.Address{
			Name:    strings.TrimSpace(m.fieldValue("name")),
			Phone:   strings.TrimSpace(m.fieldValue("phone")),
			Line1:   strings.TrimSpace(m.fieldValue("line1")),
			City:    strings.TrimSpace(m.fieldValue("city")),
			Pincode: strings.TrimSpace(m.fieldValue("pincode")),
		}
		if errs := model.ValidateAddress(addr); len(errs) > 0 {
			for field, msg := range errs {
				m.setFieldError(field, msg)
			}
			return nil
		}
		m.app.SetAddress(addr)
	}

	m.submitting = true
	app := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		app.SubmitPayment(ctx)
		return paymentSettledMsg{}
	}
}
