package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewResourceDescribesService(t *testing.T) {
	res, err := newResource(context.Background(), Config{
		ServiceName: "compendium",
		Version:     "1.2.3",
		DBSystem:    "sqlite",
	})
	require.NoError(t, err)

	set := res.Set()
	for key, want := range map[attribute.Key]string{
		"service.name":    "compendium",
		"service.version": "1.2.3",
		"db.system":       "sqlite",
	} {
		got, ok := set.Value(key)
		require.True(t, ok, key)
		assert.Equal(t, want, got.AsString(), key)
	}
}

func TestNewResourceNamesPostgres(t *testing.T) {
	res, err := newResource(context.Background(), Config{ServiceName: "compendium", DBSystem: "postgres"})
	require.NoError(t, err)
	got, ok := res.Set().Value("db.system")
	require.True(t, ok)
	assert.Equal(t, "postgresql", got.AsString())
}

func TestNewResourceOmitsUnknownBackend(t *testing.T) {
	res, err := newResource(context.Background(), Config{ServiceName: "compendium"})
	require.NoError(t, err)
	_, ok := res.Set().Value("db.system")
	assert.False(t, ok)
}
