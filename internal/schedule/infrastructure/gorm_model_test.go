package infrastructure

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestVoyageChildrenReferenceVoyages(t *testing.T) {
	cache := &sync.Map{}
	voyages, err := schema.Parse(&voyageModel{}, cache, schema.NamingStrategy{})
	require.NoError(t, err)

	cases := []struct {
		relation string
		kind     schema.RelationshipType
		table    string
	}{
		{"Tickets", schema.HasMany, "tickets"},
		{"Availability", schema.HasOne, "availability"},
	}
	for _, tc := range cases {
		t.Run(tc.relation, func(t *testing.T) {
			rel, ok := voyages.Relationships.Relations[tc.relation]
			require.True(t, ok)
			assert.Equal(t, tc.kind, rel.Type)

			constraint := rel.ParseConstraint()
			require.NotNil(t, constraint)
			assert.Equal(t, tc.table, constraint.Schema.Table)
			assert.Equal(t, "voyages", constraint.ReferenceSchema.Table)
			assert.Equal(t, "CASCADE", constraint.OnDelete)
			require.Len(t, constraint.ForeignKeys, 1)
			assert.Equal(t, "voyage_id", constraint.ForeignKeys[0].DBName)
		})
	}

	for _, model := range []interface{}{&ticketModel{}, &availabilityModel{}} {
		child, err := schema.Parse(model, cache, schema.NamingStrategy{})
		require.NoError(t, err)
		assert.NotContains(t, child.Relationships.Relations, "Voyage", child.Table)
	}
}
