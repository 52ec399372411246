package synth

import (
	"fmt"
	"time"

	"etlgen/internal/model"
	"etlgen/internal/random"
)

const (
	customerIDMin = 1000
	customerIDMax = 99999
)

// NewRow synthesizes one order line. The draw order below is part of the
// reproducibility contract; reordering it changes every dataset.
func NewRow(src *random.Source, now time.Time) model.Record {
	category := PickCategory(src)
	product := PickProduct(src, category)
	price := PickPrice(src, category)
	qty := PickQuantity(src)
	date := PickOrderDate(src, now)
	customer := fmt.Sprintf("CUST_%d", src.IntRange(customerIDMin, customerIDMax))
	region := Regions[src.Intn(len(Regions))]
	payment := PaymentMethods[src.Intn(len(PaymentMethods))]

	return model.Record{
		CustomerID:    customer,
		Product:       product,
		Category:      model.Str(category),
		Quantity:      qty,
		UnitPrice:     price,
		OrderDate:     date,
		Region:        model.Str(region),
		PaymentMethod: model.Str(payment),
	}
}
