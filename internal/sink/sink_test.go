package sink

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/linkedin/goavro/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etlgen/internal/metrics"
	"etlgen/internal/model"
)

func records() []model.Record {
	d := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	return []model.Record{
		{CustomerID: "CUST_1001", Product: "Tea", Category: model.Str("Food & Beverages"), Quantity: 2, UnitPrice: 12.5, OrderDate: d, Region: model.Str("Europe"), PaymentMethod: model.Str("Cash")},
		{CustomerID: "cust_2002", Product: "Laptop", Category: nil, Quantity: 450, UnitPrice: 1999.99, OrderDate: d.AddDate(0, 0, -1), Region: model.Str("Africa"), PaymentMethod: model.Str("PayPal")},
		{CustomerID: "CUST_3003", Product: "Stapler", Category: model.Str("Office Supplies"), Quantity: 1, UnitPrice: 3, OrderDate: d, Region: nil, PaymentMethod: nil},
	}
}

func TestCSVWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	w := NewCSVWriter(dir)
	require.NoError(t, w.Write(context.Background(), "raw_data", records()))

	f, err := os.Open(filepath.Join(dir, "raw_data.csv"))
	require.NoError(t, err)
	defer f.Close()
	lines, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, lines, 4)
	assert.Equal(t, model.Columns, lines[0])
	assert.Equal(t, []string{"CUST_1001", "Tea", "Food & Beverages", "2", "12.5", "2025-03-04", "Europe", "Cash"}, lines[1])
	assert.Equal(t, []string{"cust_2002", "Laptop", "", "450", "1999.99", "2025-03-03", "Africa", "PayPal"}, lines[2])
	assert.Equal(t, []string{"CUST_3003", "Stapler", "Office Supplies", "1", "3", "2025-03-04", "", ""}, lines[3])
	assert.Equal(t, filepath.Join(dir, "raw_data.csv"), w.Location("raw_data"))
}

func TestJSONLWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLWriter(dir)
	require.NoError(t, w.Write(context.Background(), "incremental_data", records()))

	f, err := os.Open(filepath.Join(dir, "incremental_data.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var got []map[string]any
	s := bufio.NewScanner(f)
	for s.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(s.Bytes(), &m))
		got = append(got, m)
	}
	require.NoError(t, s.Err())
	require.Len(t, got, 3)
	assert.Equal(t, "2025-03-04", got[0]["order_date"])
	assert.Nil(t, got[1]["category"])
	assert.Contains(t, got[1], "category")
	assert.Nil(t, got[2]["payment_method"])
	assert.Equal(t, 450.0, got[1]["quantity"])
}

func TestAvroWriter_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewAvroWriter(dir)
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), "raw_data", records()))

	f, err := os.Open(filepath.Join(dir, "raw_data.avro"))
	require.NoError(t, err)
	defer f.Close()

	r, err := goavro.NewOCFReader(f)
	require.NoError(t, err)
	var got []map[string]interface{}
	for r.Scan() {
		datum, err := r.Read()
		require.NoError(t, err)
		got = append(got, datum.(map[string]interface{}))
	}
	require.NoError(t, r.Err())
	require.Len(t, got, 3)

	assert.Equal(t, "CUST_1001", got[0]["customer_id"])
	assert.Equal(t, map[string]interface{}{"string": "Food & Beverages"}, got[0]["category"])
	assert.Nil(t, got[1]["category"])
	assert.Equal(t, int64(450), got[1]["quantity"])
	assert.Nil(t, got[2]["region"])
}

type fakeKafkaWriter struct {
	msgs  []kafka.Message
	calls int
	fail  bool
}

func (f *fakeKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.fail {
		return errors.New("fail")
	}
	f.calls++
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaWriter_PublishesPerRow(t *testing.T) {
	fk := &fakeKafkaWriter{}
	kw := NewKafkaWriterWith(fk, map[string]string{"raw_data": "etl.orders.raw"})

	recs := make([]model.Record, 0, 1203)
	for len(recs) < 1203 {
		recs = append(recs, records()...)
	}
	recs = recs[:1203]
	require.NoError(t, kw.Write(context.Background(), "raw_data", recs))

	require.Len(t, fk.msgs, 1203)
	assert.Equal(t, 3, fk.calls)
	assert.Equal(t, "etl.orders.raw", fk.msgs[0].Topic)
	assert.Equal(t, "raw_data/0", string(fk.msgs[0].Key))
	assert.Equal(t, "raw_data/1202", string(fk.msgs[1202].Key))

	var row map[string]any
	require.NoError(t, json.Unmarshal(fk.msgs[1].Value, &row))
	assert.Equal(t, "cust_2002", row["customer_id"])
	assert.Nil(t, row["category"])
}

func TestKafkaWriter_Errors(t *testing.T) {
	kw := NewKafkaWriterWith(&fakeKafkaWriter{}, map[string]string{})
	assert.Error(t, kw.Write(context.Background(), "raw_data", records()))

	kw = NewKafkaWriterWith(&fakeKafkaWriter{fail: true}, map[string]string{"raw_data": "t"})
	assert.Error(t, kw.Write(context.Background(), "raw_data", records()))
}

type fakePG struct {
	execs  []string
	table  pgx.Identifier
	cols   []string
	rows   [][]any
	copyEr error
}

func (f *fakePG) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakePG) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	if f.copyEr != nil {
		return 0, f.copyEr
	}
	f.table, f.cols = tableName, columnNames
	for rowSrc.Next() {
		v, err := rowSrc.Values()
		if err != nil {
			return 0, err
		}
		f.rows = append(f.rows, v)
	}
	return int64(len(f.rows)), rowSrc.Err()
}

func TestPostgresWriter_CopiesRows(t *testing.T) {
	pg := &fakePG{}
	w := NewPostgresWriterWith(pg, "landing_")
	require.NoError(t, w.Write(context.Background(), "raw_data", records()))

	require.Len(t, pg.execs, 2)
	assert.Contains(t, pg.execs[0], `CREATE TABLE IF NOT EXISTS "landing_raw_data"`)
	assert.Equal(t, `TRUNCATE "landing_raw_data"`, pg.execs[1])
	assert.Equal(t, pgx.Identifier{"landing_raw_data"}, pg.table)
	assert.Equal(t, model.Columns, pg.cols)
	require.Len(t, pg.rows, 3)
	assert.Nil(t, pg.rows[1][2].(*string))
	assert.Equal(t, "postgres://landing_raw_data", w.Location("raw_data"))
}

func TestPostgresWriter_CopyError(t *testing.T) {
	w := NewPostgresWriterWith(&fakePG{copyEr: errors.New("conn reset")}, "landing_")
	assert.Error(t, w.Write(context.Background(), "raw_data", records()))
}

type failingWriter struct{}

func (failingWriter) Name() string { return "broken" }
func (failingWriter) Write(context.Context, string, []model.Record) error {
	return errors.New("disk full")
}

func TestMultiWriter_FanOutAndMetrics(t *testing.T) {
	dir := t.TempDir()
	reg := metrics.NewRegistry()
	fk := &fakeKafkaWriter{}
	m := NewMultiWriter(reg,
		NewCSVWriter(dir),
		NewJSONLWriter(dir),
		NewKafkaWriterWith(fk, map[string]string{"raw_data": "etl.orders.raw"}),
	)
	require.NoError(t, m.Write(context.Background(), "raw_data", records()))

	assert.FileExists(t, filepath.Join(dir, "raw_data.csv"))
	assert.FileExists(t, filepath.Join(dir, "raw_data.jsonl"))
	assert.Len(t, fk.msgs, 3)
	assert.Equal(t, []string{
		filepath.Join(dir, "raw_data.csv"),
		filepath.Join(dir, "raw_data.jsonl"),
		"kafka://etl.orders.raw",
	}, m.Locations("raw_data"))
	assert.Equal(t, 3.0, testutil.ToFloat64(reg.RowsEmitted.WithLabelValues("raw_data")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.SinkWrites.WithLabelValues("csv")))
	assert.NoError(t, m.Close())
}

func TestMultiWriter_StopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	reg := metrics.NewRegistry()
	m := NewMultiWriter(reg, failingWriter{}, NewCSVWriter(dir))
	assert.Error(t, m.Write(context.Background(), "raw_data", records()))
	assert.NoFileExists(t, filepath.Join(dir, "raw_data.csv"))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.SinkErrors.WithLabelValues("broken")))
}
