package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedCustomer struct {
	ID    uint `gorm:"primaryKey"`
	Email string
}

func TestRegisterDBTracing(t *testing.T) {
	recorder := withRecorder(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedCustomer{}))
	require.NoError(t, RegisterDBTracing(db, "sqlite", zap.NewNop()))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&tracedCustomer{Email: "ann@example.com"}).Error)

	var found tracedCustomer
	require.NoError(t, db.WithContext(ctx).Where("email = ?", "ann@example.com").First(&found).Error)

	spans := recorder.Ended()
	require.GreaterOrEqual(t, len(spans), 2)

	var statements int
	for _, span := range spans {
		for _, attr := range span.Attributes() {
			assert.NotContains(t, attr.Value.Emit(), "ann@example.com", "span %s attribute %s", span.Name(), attr.Key)
			if strings.HasSuffix(string(attr.Key), "statement") {
				statements++
			}
		}
	}
	assert.Positive(t, statements)
}
