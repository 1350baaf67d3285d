package db

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/schema"
)

func TestModelsParse(t *testing.T) {
	cache := &sync.Map{}
	tables := map[string]bool{}
	for _, m := range Models() {
		s, err := schema.Parse(m, cache, schema.NamingStrategy{})
		if assert.NoError(t, err) {
			assert.NotNil(t, s.PrioritizedPrimaryField, s.Table)
			tables[s.Table] = true
		}
	}
	assert.Len(t, tables, len(Models()))
	assert.True(t, tables["payments"])
	assert.True(t, tables["idempotency_records"])
}
