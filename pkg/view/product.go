package view

type ProductCard struct {
	Name        string
	Slug        string
	Description string
	Price       string
	InStock     bool
}
