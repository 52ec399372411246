package model

import "time"

// DateLayout is the calendar-day layout used for order_date on the wire.
const DateLayout = "2006-01-02"

// Columns is the tabular header order shared by every sink.
var Columns = []string{
	"customer_id",
	"product",
	"category",
	"quantity",
	"unit_price",
	"order_date",
	"region",
	"payment_method",
}

// Record is one synthetic order line. Nil pointers are null values.
type Record struct {
	CustomerID    string    `json:"customer_id"`
	Product       string    `json:"product"`
	Category      *string   `json:"category"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	OrderDate     time.Time `json:"order_date"`
	Region        *string   `json:"region"`
	PaymentMethod *string   `json:"payment_method"`
}

// Clone returns a copy that shares no mutable state with r.
func (r Record) Clone() Record {
	out := r
	out.Category = cloneString(r.Category)
	out.Region = cloneString(r.Region)
	out.PaymentMethod = cloneString(r.PaymentMethod)
	return out
}

// CloneAll copies a slice of records.
func CloneAll(in []Record) []Record {
	out := make([]Record, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// Str returns a pointer to s, for building nullable fields.
func Str(s string) *string { return &s }

// Value dereferences a nullable field, reporting whether it was set.
func Value(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
