// seed puebla el almacén con datos de demostración: proveedores, ubicaciones, productos
// y transacciones con simulación de stock (nunca despacha más de lo disponible).
//
// Uso: go run ./cmd/seed [-catalog catalogo.csv] [-latin1] [-seed 42]
// Las cantidades se leen de SEED_SUPPLIERS, SEED_LOCATIONS, SEED_PRODUCTS y SEED_TRANSACTIONS.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/warehouse-ledger/internal/application/catalog"
	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/ledger"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/storage"
	"github.com/jhoicas/warehouse-ledger/pkg/config"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

const historyDays = 90

func main() {
	catalogPath := flag.String("catalog", "", "CSV categoria;marca;item (opcional)")
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "semilla aleatoria")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	categories := defaultCatalogue
	if *catalogPath != "" {
		if categories, err = loadCatalogue(*catalogPath, *latin1); err != nil {
			log.Fatal().Err(err).Msg("catálogo")
		}
	}

	ctx := context.Background()
	repos, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}

	s := &seeder{
		cfg:        cfg.Seed,
		rnd:        rand.New(rand.NewPCG(*seed, *seed>>1)),
		catalog:    catalog.NewUseCase(repos.Products, repos.Locations, repos.Suppliers),
		ledger:     ledger.NewUseCase(repos.Transactions, repos.Products, repos.Locations),
		categories: categories,
		now:        time.Now(),
	}
	err = s.run(ctx)
	repos.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().Uint64("seed", *seed).Msg("datos de demostración cargados")
}

type seeder struct {
	cfg        config.SeedConfig
	rnd        *rand.Rand
	catalog    *catalog.UseCase
	ledger     *ledger.UseCase
	categories []category
	now        time.Time
}

func (s *seeder) run(ctx context.Context) error {
	supplierIDs, err := s.suppliers(ctx)
	if err != nil {
		return fmt.Errorf("proveedores: %w", err)
	}
	locationIDs, err := s.locations(ctx)
	if err != nil {
		return fmt.Errorf("ubicaciones: %w", err)
	}
	productIDs, err := s.products(ctx, supplierIDs)
	if err != nil {
		return fmt.Errorf("productos: %w", err)
	}
	if err := s.transactions(ctx, productIDs, locationIDs); err != nil {
		return fmt.Errorf("transacciones: %w", err)
	}
	return nil
}

func (s *seeder) suppliers(ctx context.Context) ([]int64, error) {
	existing, err := s.catalog.ListSuppliers(ctx, dto.PageRequest{Limit: dto.MaxPageLimit})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, s.cfg.Suppliers)
	for _, sup := range existing {
		ids = append(ids, sup.ID)
	}
	for i := len(ids); i < s.cfg.Suppliers; i++ {
		def := defaultSuppliers[i%len(defaultSuppliers)]
		sup, err := s.catalog.CreateSupplier(ctx, dto.CreateSupplierRequest{Name: def.Name, ContactEmail: def.Email})
		if err != nil {
			return nil, err
		}
		ids = append(ids, sup.ID)
	}
	return ids, nil
}

// locations resuelve ubicaciones aleatorias; las repetidas se resuelven a la misma fila.
func (s *seeder) locations(ctx context.Context) ([]int64, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for i := 0; i < s.cfg.Locations; i++ {
		aisle := s.rnd.IntN(10) + 1
		shelf := string(rune('A' + s.rnd.IntN(6)))
		bin := s.rnd.IntN(20) + 1
		loc, err := s.catalog.ResolveLocation(ctx, aisle, shelf, bin, catalog.LocationDefaults{})
		if err != nil {
			return nil, err
		}
		if !seen[loc.ID] {
			seen[loc.ID] = true
			ids = append(ids, loc.ID)
		}
	}
	return ids, nil
}

func (s *seeder) products(ctx context.Context, supplierIDs []int64) ([]int64, error) {
	ids := make([]int64, 0, s.cfg.Products)
	for i := 0; i < s.cfg.Products; i++ {
		cat := s.categories[s.rnd.IntN(len(s.categories))]
		brand := cat.Brands[s.rnd.IntN(len(cat.Brands))]
		item := cat.Items[s.rnd.IntN(len(cat.Items))]
		name := productName(brand, item)
		// 5.50 .. 500.99
		price := decimal.NewFromInt(int64(550 + s.rnd.IntN(49550))).Shift(-2)
		def := catalog.ProductDefaults{
			Name:        name,
			Description: "A high-quality " + name,
			Category:    cat.Name,
			Brand:       brand,
			UnitPrice:   &price,
		}
		if len(supplierIDs) > 0 {
			sup := supplierIDs[s.rnd.IntN(len(supplierIDs))]
			def.SupplierID = &sup
		}
		p, err := s.catalog.ResolveProduct(ctx, productSKU(cat.Name, brand, i), def)
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// transactions simula entradas y salidas en orden cronológico: IN si el stock es bajo
// o con probabilidad 0.6; OUT nunca supera el stock simulado.
func (s *seeder) transactions(ctx context.Context, productIDs, locationIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	times := make([]time.Time, s.cfg.Transactions)
	for i := range times {
		ago := time.Duration(s.rnd.IntN(historyDays))*24*time.Hour + time.Duration(s.rnd.IntN(24))*time.Hour
		times[i] = s.now.Add(-ago)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	stock := make(map[int64]int, len(productIDs))
	for _, at := range times {
		productID := productIDs[s.rnd.IntN(len(productIDs))]
		current := stock[productID]

		in := ledger.AppendInput{ProductID: productID, ScannedAt: &at}
		switch {
		case current < 10 || s.rnd.Float64() < 0.6:
			in.Direction = entity.DirectionIN
			in.Quantity = s.rnd.IntN(191) + 10
		case current > 0:
			in.Direction = entity.DirectionOUT
			in.Quantity = s.rnd.IntN(current) + 1
		default:
			continue
		}
		if len(locationIDs) > 0 {
			loc := locationIDs[s.rnd.IntN(len(locationIDs))]
			in.LocationID = &loc
		}
		if _, err := s.ledger.Append(ctx, in); err != nil {
			return err
		}
		stock[productID] += in.Direction.Sign() * in.Quantity
	}
	return nil
}
