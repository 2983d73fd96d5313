package pcs

import (
	"context"
	"errors"
	"testing"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateConstraintCommands(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		constraint types.Constraint
		want       string
	}{
		{
			name:       "order defaults",
			version:    "0.10.8",
			constraint: types.OrderConstraint{First: "vip", Then: "apache"},
			want:       "constraint order start vip then start apache kind=Mandatory symmetrical=true",
		},
		{
			name:    "order promote",
			version: "0.10.8",
			constraint: types.OrderConstraint{
				First: "db-clone", FirstAction: "promote", Then: "app", ThenAction: "start",
				OrderKind: "Optional", Symmetrical: "false",
			},
			want: "constraint order promote db-clone then start app kind=Optional symmetrical=false",
		},
		{
			name:       "colocation before score prefix",
			version:    "0.10.8",
			constraint: types.ColocationConstraint{Resource: "apache", With: "vip", Score: "-INFINITY"},
			want:       "constraint colocation add apache with vip -INFINITY",
		},
		{
			name:       "colocation with legacy role on old pcs",
			version:    "0.10.8",
			constraint: types.ColocationConstraint{Resource: "app", ResourceRole: "Master", With: "db"},
			want:       "constraint colocation add Master app with db INFINITY",
		},
		{
			name:       "colocation roles translated on new pcs",
			version:    "0.11.7",
			constraint: types.ColocationConstraint{Resource: "app", ResourceRole: "Master", With: "db", WithRole: "Slave"},
			want:       "constraint colocation add Promoted app with Unpromoted db INFINITY",
		},
		{
			name:       "colocation score prefix",
			version:    "0.12.0",
			constraint: types.ColocationConstraint{Resource: "apache", With: "vip"},
			want:       "constraint colocation add apache with vip score=INFINITY",
		},
		{
			name:       "location prefers",
			version:    "0.12.0",
			constraint: types.LocationConstraint{Resource: "vip", Node: "n1", Score: "100"},
			want:       "constraint location vip prefers n1=100",
		},
		{
			name:    "location with resource discovery",
			version: "0.11.7",
			constraint: types.LocationConstraint{
				Resource: "vip", Node: "n1", ID: "loc-vip", Score: "100", ResourceDiscovery: "never",
			},
			want: "constraint location add loc-vip vip n1 100 resource-discovery=never",
		},
		{
			name:    "location with resource discovery and score prefix",
			version: "0.12.0",
			constraint: types.LocationConstraint{
				Resource: "vip", Node: "n1", ID: "loc-vip", ResourceDiscovery: "exclusive",
			},
			want: "constraint location add loc-vip vip n1 score=INFINITY resource-discovery=exclusive",
		},
		{
			name:    "location rule",
			version: "0.10.8",
			constraint: types.LocationConstraint{
				Resource: "vip", ID: "vip_ping_check", Score: "-INFINITY", Rule: "not_defined pingd or pingd lt 1",
			},
			want: "constraint location vip rule constraint-id=vip_ping_check score=-INFINITY not_defined pingd or pingd lt 1",
		},
		{
			name:    "location rule with discovery",
			version: "0.10.8",
			constraint: types.LocationConstraint{
				Resource: "vip", ID: "vip_hours", ResourceDiscovery: "always", Rule: "date-spec hours=9-16",
			},
			want: "constraint location vip rule resource-discovery=always constraint-id=vip_hours score=INFINITY date-spec hours=9-16",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, runner := newTestClient(tt.version)
			require.NoError(t, c.CreateConstraint(context.Background(), tt.constraint))
			assert.Equal(t, []string{tt.want}, runner.commands())
		})
	}
}

func TestUnsplittableArgumentsAreValidationErrors(t *testing.T) {
	c, runner := newTestClient("0.12.0")

	_, err := resourceCreateArgs(types.ResourceSpec{Name: "web", Type: "ocf:heartbeat:apache", Options: `a="unterminated`})
	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "options", verr.Field)

	_, err = resourceCreateArgs(types.ResourceSpec{Name: "web"})
	require.True(t, errors.As(err, &verr))

	err = c.CreateConstraint(context.Background(), types.LocationConstraint{Resource: "vip", ID: "r", Rule: `pingd eq "1`})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "rule", verr.Field)
	assert.Empty(t, runner.commands())
}
