package view

// Layout is what every page template receives: the shared chrome plus the
// page's own data.
type Layout struct {
	Title     string
	Flash     *Flash
	CartCount int
	RequestID string
	Page      any
}
