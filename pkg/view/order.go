package view

type CartLine struct {
	ProductSlug string
	Name        string
	Description string
	Quantity    int
	UnitPrice   string
	LineTotal   string
}

type CartPage struct {
	Lines    []CartLine
	Count    int
	Subtotal string
	Products []ProductCard
	Flash    *Flash
}

// StatusPage is the post-redirect landing page.
type StatusPage struct {
	Message   string
	Succeeded bool
}
