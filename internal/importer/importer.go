package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

// CSVImporter reads catalog CSV exports and inserts/updates products or categories.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
	}
}

// DetectKind inspects the header row. Product files carry a price column; category files a key column.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	return kindOf(headerIndex(headers))
}

func kindOf(index map[string]int) (Kind, error) {
	if _, ok := index["price"]; ok {
		return KindProducts, nil
	}
	if _, ok := index["key"]; ok {
		if _, ok := index["name"]; ok {
			return KindCategories, nil
		}
	}
	return "", errors.New("unrecognised csv header: expected product (id,name,price) or category (key,name) columns")
}

type csvRow struct {
	ID       string
	Name     string
	Image    string
	Price    float64
	HasPrice bool
	Category string
	Colors   []string
}

// Run parses every row and returns how many records were written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	kind, err := kindOf(index)
	if err != nil {
		return 0, err
	}
	if kind == KindCategories {
		return i.runCategories(ctx, index)
	}
	return i.runProducts(ctx, index)
}

func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (int, error) {
	if i.products == nil {
		return 0, errors.New("product writer not configured")
	}
	var (
		current  *csvRow
		imported int
		seenCats = map[string]bool{}
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := i.save(ctx, current, seenCats); err != nil {
			return err
		}
		imported++
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}

		if row.ID != "" {
			if err := flush(); err != nil {
				return imported, err
			}
			current = row
			continue
		}

		// Continuation rows (extra colors) belong to the current product.
		if current != nil && len(row.Colors) > 0 {
			current.Colors = append(current.Colors, row.Colors...)
		}
	}

	if err := flush(); err != nil {
		return imported, err
	}
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow, seenCats map[string]bool) error {
	if row.Name == "" || !row.HasPrice || row.Price < 0 {
		return fmt.Errorf("invalid product row (missing required fields) for id %q", row.ID)
	}

	if row.Category != "" && i.categories != nil && !seenCats[row.Category] {
		key := domain.Slugify(row.Category)
		if _, err := i.categories.Upsert(ctx, domain.Category{Key: key, Name: row.Category, Slug: key}); err != nil {
			return fmt.Errorf("upsert category %q: %w", row.Category, err)
		}
		seenCats[row.Category] = true
	}

	p := domain.Product{
		ID:       row.ID,
		Name:     row.Name,
		Image:    row.Image,
		Price:    row.Price,
		Category: row.Category,
		Colors:   row.Colors,
	}
	if _, err := i.products.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.ID, err)
	}
	return nil
}

func (i *CSVImporter) runCategories(ctx context.Context, index map[string]int) (int, error) {
	if i.categories == nil {
		return 0, errors.New("category writer not configured")
	}
	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		name := pick(record, index, "name")
		key := pick(record, index, "key")
		slug := pick(record, index, "slug")
		if key == "" {
			key = domain.Slugify(firstNonEmpty(slug, name))
		}
		if key == "" {
			continue
		}
		if name == "" {
			name = titleCase(key)
		}
		if slug == "" {
			slug = key
		}
		if _, err := i.categories.Upsert(ctx, domain.Category{Key: key, Name: name, Slug: slug}); err != nil {
			return imported, fmt.Errorf("upsert category %q: %w", key, err)
		}
		imported++
	}
	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	id := pick(record, index, "id")
	colors := splitColors(pick(record, index, "colors"))

	if id == "" && len(colors) == 0 {
		return nil, nil
	}

	row := &csvRow{
		ID:       id,
		Name:     pick(record, index, "name"),
		Image:    pick(record, index, "image"),
		Category: pick(record, index, "category"),
		Colors:   colors,
	}
	if priceStr := pick(record, index, "price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price for id %q: %s", id, priceStr)
		}
		row.Price = price
		row.HasPrice = true
	}
	return row, nil
}

func splitColors(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, c := range strings.Split(s, ";") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}


func titleCase(key string) string {
	parts := strings.Split(key, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
