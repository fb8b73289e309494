package ui

import "time"

// ToastDismissDelay is how long a toast stays visible.
const ToastDismissDelay = 3 * time.Second

// Toast is a transient notification.
type Toast struct {
	Message      string
	DismissAfter time.Duration
}

// DismissMs is the dismiss delay in milliseconds, as read by the page script.
func (t *Toast) DismissMs() int64 {
	return t.DismissAfter.Milliseconds()
}

// Page is the state of the index page for one response.
type Page struct {
	NewsText string
	Result   *ResultView

	toast *Toast
}

// Notify sets the page toast. A page holds at most one toast; the last call wins.
func (p *Page) Notify(message string) {
	p.toast = &Toast{Message: message, DismissAfter: ToastDismissDelay}
}

// Toast returns the current toast or nil.
func (p *Page) Toast() *Toast {
	return p.toast
}

// DetailPage is the state of the fact-check detail view. Available is false
// when no snapshot could be read; a stored empty list is still available.
type DetailPage struct {
	Available bool
	Evidence  []EvidenceView
}

// Placeholder returns the placeholder text.
func (d *DetailPage) Placeholder() string {
	return Placeholder
}
