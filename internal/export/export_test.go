package export

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/salesdash/internal/enrich"
	"github.com/KaramelBytes/salesdash/internal/ingest"
	"github.com/KaramelBytes/salesdash/internal/sales"
)

const source = "Order ID,Product,Quantity Ordered,Price Each,Order Date,Purchase Address\n" +
	`176558,USB-C Charging Cable,2,11.95,04/19/19 08:46,"917 1st St, New York City, NY 10001"` + "\n" +
	`176559,Bose SoundSport Headphones,1,99.99,bad date,"Austin, TX"` + "\n" +
	`176560,Google Phone,,600,12/12/19 23:59,` + "\n"

func loadTable(t *testing.T, dir, name, content string) (*sales.Dataset, *sales.Table) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	ds, err := ingest.Load(context.Background(), []string{p}, ingest.Options{})
	require.NoError(t, err)
	return ds, enrich.Apply(ds, nil)
}

func stripSource(recs []sales.Record) []sales.Record {
	out := make([]sales.Record, len(recs))
	for i, r := range recs {
		r.Source = ""
		out[i] = r
	}
	return out
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ds, tbl := loadTable(t, dir, "sales_data_in.csv", source)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tbl.Rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(Header, ","), lines[0])
	assert.Equal(t, `176558,USB-C Charging Cable,2,11.95,04/19/19 08:46,"917 1st St, New York City, NY 10001",23.9,4,April,New York City (NY),8`, lines[1])
	assert.Equal(t, `176559,Bose SoundSport Headphones,1,99.99,,"Austin, TX",99.99,,,Austin (TX),`, lines[2])
	assert.Equal(t, `176560,Google Phone,,600,12/12/19 23:59,,,12,December,,23`, lines[3])

	again, _ := loadTable(t, dir, "sales_data_out.csv", buf.String())
	assert.Equal(t, stripSource(ds.Records), stripSource(again.Records))
}

func TestWriteXLSX(t *testing.T) {
	_, tbl := loadTable(t, t.TempDir(), "sales_data_in.csv", source)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, tbl.Rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "USB-C Charging Cable", rows[1][1])
	assert.Equal(t, "23.9", rows[1][6])
	assert.Equal(t, "April", rows[1][8])
	assert.Equal(t, "", rows[2][4])

	v, err := f.GetCellValue(SheetName, "K4")
	require.NoError(t, err)
	assert.Equal(t, "23", v)
}

func TestWriteFile(t *testing.T) {
	_, tbl := loadTable(t, t.TempDir(), "sales_data_in.csv", source)
	out := t.TempDir()

	csvPath := filepath.Join(out, "nested", "filtered_sales.csv")
	require.NoError(t, WriteFile(csvPath, tbl.Rows))
	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "Order ID,Product"))

	xlsxPath := filepath.Join(out, "filtered_sales.XLSX")
	require.NoError(t, WriteFile(xlsxPath, tbl.Rows))
	_, err = os.Stat(xlsxPath)
	assert.NoError(t, err)

	err = WriteFile(filepath.Join(out, "filtered_sales.json"), tbl.Rows)
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(Header, ",")+"\n", buf.String())
}
