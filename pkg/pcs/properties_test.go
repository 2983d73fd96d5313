package pcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProperties(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want map[string]string
	}{
		{
			name: "property show",
			out: `Cluster Properties:
 cluster-infrastructure: corosync
 cluster-name: hacluster
 dc-version: 2.0.5-ba59be7122
 stonith-enabled: false
`,
			want: map[string]string{
				"cluster-infrastructure": "corosync",
				"cluster-name":           "hacluster",
				"dc-version":             "2.0.5-ba59be7122",
				"stonith-enabled":        "false",
			},
		},
		{
			name: "property config",
			out: `Cluster Properties: cib-bootstrap-options
  cluster-name=hacluster
  no-quorum-policy=ignore
`,
			want: map[string]string{"cluster-name": "hacluster", "no-quorum-policy": "ignore"},
		},
		{
			name: "other sections are skipped",
			out: `Cluster Properties:
 stonith-enabled: false
Node Attributes:
 n1: standby=on
`,
			want: map[string]string{"stonith-enabled": "false"},
		},
		{
			name: "empty section",
			out:  "Cluster Properties:\n",
			want: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProperties(tt.out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePropertiesErrors(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{"no header", " stonith-enabled: false\n"},
		{"garbage line", "Cluster Properties:\n this is not a property\n"},
		{"missing name", "Cluster Properties:\n : false\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProperties(tt.out)
			assert.Error(t, err)
		})
	}
}
