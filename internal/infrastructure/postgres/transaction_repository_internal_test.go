package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentQuery_OrderAndJoins(t *testing.T) {
	sql, args, err := recentQuery(nil, 50, 0).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `FROM "inventory_transactions" AS "t"`)
	assert.Contains(t, sql, `INNER JOIN "products" AS "p" ON ("p"."id" = "t"."product_id")`)
	assert.Contains(t, sql, `LEFT JOIN "locations" AS "l" ON ("l"."id" = "t"."location_id")`)
	assert.Contains(t, sql, `ORDER BY "t"."scanned_at" DESC, "t"."id" DESC`)
	assert.NotContains(t, sql, "WHERE")
	assert.NotEmpty(t, args)
}

func TestRecentQuery_FilterByProduct(t *testing.T) {
	sql, args, err := recentQuery(ptr(int64(7)), 10, 20).ToSQL()
	require.NoError(t, err)

	assert.Contains(t, sql, `WHERE ("t"."product_id" = $1)`)
	require.NotEmpty(t, args)
	assert.Equal(t, int64(7), args[0])
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	require.NotNil(t, nullIfEmpty("x"))
	assert.Equal(t, "x", *nullIfEmpty("x"))
}

func ptr[T any](v T) *T { return &v }
