package synth

import (
	"math"

	"etlgen/internal/random"
)

// PriceRange is the closed unit price interval for one category.
type PriceRange struct {
	Min float64
	Max float64
}

type categoryEntry struct {
	name     string
	products []string
	price    PriceRange
}

// catalog order is significant: category draws index into it.
var catalog = []categoryEntry{
	{"Electronics", []string{"Smartphone", "Laptop", "Tablet", "Headphones", "Smart Watch", "Camera", "TV", "Gaming Console"}, PriceRange{50, 2000}},
	{"Clothing", []string{"T-Shirt", "Jeans", "Dress", "Jacket", "Shoes", "Hat", "Sweater", "Shorts"}, PriceRange{15, 300}},
	{"Home & Garden", []string{"Sofa", "Table", "Chair", "Lamp", "Curtains", "Plant Pot", "Kitchen Set", "Bedding"}, PriceRange{25, 800}},
	{"Sports & Outdoors", []string{"Running Shoes", "Yoga Mat", "Bicycle", "Tennis Racket", "Backpack", "Water Bottle", "Gym Equipment"}, PriceRange{20, 500}},
	{"Books", []string{"Fiction Novel", "Textbook", "Cookbook", "Biography", "Self-Help Book", "Children Book", "Magazine"}, PriceRange{10, 80}},
	{"Health & Beauty", []string{"Skincare Set", "Makeup Kit", "Shampoo", "Perfume", "Vitamins", "Face Mask", "Hair Dryer"}, PriceRange{8, 150}},
	{"Toys & Games", []string{"Board Game", "Action Figure", "Puzzle", "Doll", "Building Blocks", "Video Game", "Toy Car"}, PriceRange{12, 200}},
	{"Automotive", []string{"Car Parts", "Motor Oil", "Tire", "Car Accessories", "GPS Device", "Car Charger"}, PriceRange{30, 1000}},
	{"Food & Beverages", []string{"Coffee", "Tea", "Snacks", "Organic Food", "Energy Drink", "Chocolate", "Spices"}, PriceRange{5, 50}},
	{"Office Supplies", []string{"Notebook", "Pen Set", "Printer Paper", "Desk Organizer", "Calculator", "Stapler"}, PriceRange{3, 100}},
}

var byName = func() map[string]*categoryEntry {
	m := make(map[string]*categoryEntry, len(catalog))
	for i := range catalog {
		m[catalog[i].name] = &catalog[i]
	}
	return m
}()

// Regions and PaymentMethods are sampled uniformly per row.
var (
	Regions        = []string{"North America", "Europe", "Asia Pacific", "Latin America", "Middle East", "Africa"}
	PaymentMethods = []string{"Credit Card", "Debit Card", "PayPal", "Bank Transfer", "Cash", "Digital Wallet"}
)

// Categories returns the category names in catalog order.
func Categories() []string {
	out := make([]string, len(catalog))
	for i, c := range catalog {
		out[i] = c.name
	}
	return out
}

// Products returns the product list of a category, or nil if unknown.
func Products(category string) []string {
	c, ok := byName[category]
	if !ok {
		return nil
	}
	return append([]string(nil), c.products...)
}

// PriceRangeOf returns the configured price interval of a category.
func PriceRangeOf(category string) (PriceRange, bool) {
	c, ok := byName[category]
	if !ok {
		return PriceRange{}, false
	}
	return c.price, true
}

// PickCategory draws one category uniformly.
func PickCategory(src *random.Source) string {
	return catalog[src.Intn(len(catalog))].name
}

// PickProduct draws one product of category uniformly.
func PickProduct(src *random.Source, category string) string {
	p := byName[category].products
	return p[src.Intn(len(p))]
}

// PickPrice draws a unit price in the category range, rounded to cents.
func PickPrice(src *random.Source, category string) float64 {
	r := byName[category].price
	return roundCents(src.Uniform(r.Min, r.Max))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
