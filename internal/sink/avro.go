package sink

import (
	"context"
	"fmt"

	"github.com/linkedin/goavro/v2"

	"etlgen/internal/model"
)

// OrderSchema is the Avro schema for one order line. Fields that the
// defect passes may null are ["null", "string"] unions.
const OrderSchema = `{
	"type": "record",
	"name": "OrderLine",
	"namespace": "etlgen.orders",
	"fields": [
		{"name": "customer_id", "type": "string"},
		{"name": "product", "type": "string"},
		{"name": "category", "type": ["null", "string"], "default": null},
		{"name": "quantity", "type": "long"},
		{"name": "unit_price", "type": "double"},
		{"name": "order_date", "type": "string"},
		{"name": "region", "type": ["null", "string"], "default": null},
		{"name": "payment_method", "type": ["null", "string"], "default": null}
	]
}`

// AvroWriter writes Avro object container files (.avro).
type AvroWriter struct {
	fileTarget
	codec *goavro.Codec
}

func NewAvroWriter(baseDir string) (*AvroWriter, error) {
	codec, err := goavro.NewCodec(OrderSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to create avro codec: %w", err)
	}
	return &AvroWriter{fileTarget: fileTarget{baseDir: baseDir, ext: "avro"}, codec: codec}, nil
}

func (w *AvroWriter) Name() string { return "avro" }

func (w *AvroWriter) Write(_ context.Context, dataset string, records []model.Record) error {
	out, err := w.create(dataset)
	if err != nil {
		return err
	}
	defer out.Close()

	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               out,
		Codec:           w.codec,
		CompressionName: goavro.CompressionDeflateLabel,
	})
	if err != nil {
		return fmt.Errorf("ocf writer: %w", err)
	}

	const block = 1000
	batch := make([]interface{}, 0, block)
	for i := range records {
		batch = append(batch, avroNative(records[i]))
		if len(batch) == block {
			if err := ocf.Append(batch); err != nil {
				return fmt.Errorf("append: %w", err)
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := ocf.Append(batch); err != nil {
			return fmt.Errorf("append: %w", err)
		}
	}
	return out.Close()
}

func avroNative(r model.Record) map[string]interface{} {
	return map[string]interface{}{
		"customer_id":    r.CustomerID,
		"product":        r.Product,
		"category":       nullableString(r.Category),
		"quantity":       int64(r.Quantity),
		"unit_price":     r.UnitPrice,
		"order_date":     r.OrderDate.Format(model.DateLayout),
		"region":         nullableString(r.Region),
		"payment_method": nullableString(r.PaymentMethod),
	}
}

func nullableString(p *string) interface{} {
	if p == nil {
		return nil
	}
	return goavro.Union("string", *p)
}
