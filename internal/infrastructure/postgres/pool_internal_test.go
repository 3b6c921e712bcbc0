package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-ledger/pkg/config"
)

func TestPoolConfigFor_UsesDBConfig(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db.internal", Port: 5433, User: "ledger", Password: "secret", DBName: "warehouse", SSLMode: "disable",
		MaxConns: 8, MinConns: 2, ConnTimeout: 3 * time.Second,
	}

	pc, err := poolConfigFor(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, 3*time.Second, pc.ConnConfig.ConnectTimeout)
	assert.Equal(t, applicationName, pc.ConnConfig.RuntimeParams["application_name"])
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfigFor_DatabaseURLWins(t *testing.T) {
	cfg := config.DBConfig{
		DatabaseURL: "postgres://app:pw@primary.example:6543/ledger?sslmode=disable&application_name=seed",
		Host:        "ignored", Port: 5432, MaxConns: 4, MinConns: 10,
	}

	pc, err := poolConfigFor(cfg)
	require.NoError(t, err)
	// el host de la URL se respeta tal cual, sin resolverlo
	assert.Equal(t, "primary.example", pc.ConnConfig.Host)
	assert.Equal(t, "ledger", pc.ConnConfig.Database)
	assert.Equal(t, "seed", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, int32(4), pc.MinConns)
	assert.Equal(t, 5*time.Second, pc.ConnConfig.ConnectTimeout)
}

func TestPoolConfigFor_InvalidDSN(t *testing.T) {
	_, err := poolConfigFor(config.DBConfig{DatabaseURL: "postgres://%zz", MaxConns: 1})
	assert.Error(t, err)
}

func TestHasCode_OnlyTrustsSQLState(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("create product: %w", unique)))
	assert.False(t, isForeignKeyViolation(unique))

	fk := &pgconn.PgError{Code: "23503"}
	assert.True(t, isForeignKeyViolation(fmt.Errorf("append: %w", fk)))

	// un texto que contiene el código no es una violación
	assert.False(t, isUniqueViolation(errors.New("lote 23505 rechazado")))
	assert.False(t, isForeignKeyViolation(errors.New("pedido 23503 no encontrado")))
}
