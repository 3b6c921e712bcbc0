package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
)

type supplierSeed struct {
	Name  string
	Email string
}

var defaultSuppliers = []supplierSeed{
	{"Global Tech Inc.", "sales@globaltech.com"}, {"Precision Parts Ltd.", "contact@precisionparts.com"},
	{"Quantum Solutions", "info@quantumsol.com"}, {"Stellar Components", "support@stellarcomp.com"},
	{"Apex Industrial", "orders@apexind.com"}, {"Nexus Materials", "materials@nexus.com"},
	{"Synergy Supplies", "supply@synergy.com"}, {"Dynamic Devices", "devices@dynamic.com"},
	{"Innovate Systems", "innovate@isystems.com"}, {"Core Manufacturing", "core@mfg.com"},
}

// category agrupa marcas e ítems de una categoría del catálogo de demostración.
type category struct {
	Name   string
	Brands []string
	Items  []string
}

var defaultCatalogue = []category{
	{"Electronics", []string{"Sony", "Samsung", "LG", "Apple"},
		[]string{"microcontroller", "sensor array", "display panel", "power unit", "logic board"}},
	{"Mechanical", []string{"Bosch", "3M", "SKF", "Apex"},
		[]string{"bearing assembly", "gear set", "casing", "mounting bracket", "fastener kit"}},
	{"Consumables", []string{"Loctite", "WD-40", "Kimtech"},
		[]string{"adhesive", "lubricant", "cleaning wipes", "solder wire", "thermal paste"}},
}

var titleCaser = cases.Title(language.English)

// productName arma el nombre visible, ej. "Bosch Gear Set".
func productName(brand, item string) string {
	return brand + " " + titleCaser.String(item)
}

// productSKU arma el SKU con prefijos de categoría y marca, ej. "ELE-SON-0007".
func productSKU(categoryName, brand string, n int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix(categoryName), prefix(brand), n)
}

func prefix(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, s)
	if r := []rune(s); len(r) > 3 {
		return string(r[:3])
	}
	return s
}

// loadCatalogue lee un CSV "categoria;marca;item" (ISO-8859-1 o UTF-8) y lo agrupa por categoría.
func loadCatalogue(path string, latin1 bool) ([]category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = 3
	cr.Comment = '#'

	byName := make(map[string]*category)
	var order []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leer catálogo: %w", err)
		}
		name, brand, item := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), strings.TrimSpace(rec[2])
		if name == "" || brand == "" || item == "" {
			continue
		}
		c, ok := byName[name]
		if !ok {
			c = &category{Name: name}
			byName[name] = c
			order = append(order, name)
		}
		c.Brands = appendUnique(c.Brands, brand)
		c.Items = appendUnique(c.Items, strings.ToLower(item))
	}
	out := make([]category, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("catálogo vacío: %s", path)
	}
	return out, nil
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
