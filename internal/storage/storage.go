// Package storage selecciona el adaptador de persistencia según STORAGE_DRIVER
// y expone los repositorios listos para los casos de uso.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/warehouse-ledger/pkg/config"
)

// Repositories puertos de persistencia de la aplicación.
type Repositories struct {
	Products     repository.ProductRepository
	Locations    repository.LocationRepository
	Suppliers    repository.SupplierRepository
	Transactions repository.TransactionRepository

	ping  func(ctx context.Context) error
	close func()
}

// Ping comprueba que el almacén responde.
func (r *Repositories) Ping(ctx context.Context) error {
	if r.ping == nil {
		return nil
	}
	return r.ping(ctx)
}

// Close libera conexiones.
func (r *Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

// Open abre el almacén configurado. Con postgres aplica migraciones si DB_AUTO_MIGRATE está activo.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Repositories, error) {
	switch cfg.App.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return Memory(memory.NewStore()), nil
	case config.StorageDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, log); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
		}
		return &Repositories{
			Products:     postgres.NewProductRepository(pool),
			Locations:    postgres.NewLocationRepository(pool),
			Suppliers:    postgres.NewSupplierRepository(pool),
			Transactions: postgres.NewTransactionRepository(pool, postgres.NewTxRunner(pool)),
			ping:         pool.Ping,
			close:        pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.App.StorageDriver)
	}
}

// Memory envuelve un almacén en memoria.
func Memory(store *memory.Store) *Repositories {
	return &Repositories{
		Products:     store.Products(),
		Locations:    store.Locations(),
		Suppliers:    store.Suppliers(),
		Transactions: store.Transactions(),
	}
}
