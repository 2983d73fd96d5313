package pcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"long flag", "pcs host auth n1 -u hacluster --password secret", "pcs host auth n1 -u hacluster --password <REDACTED>"},
		{"short flag", "pcs cluster auth -u hacluster -p secret n1", "pcs cluster auth -u hacluster -p <REDACTED> n1"},
		{"option", "pcs stonith create f fence_ipmilan ip=1.2.3.4 password=secret lanplus=1", "pcs stonith create f fence_ipmilan ip=1.2.3.4 password=<REDACTED> lanplus=1"},
		{"quoted option", "pcs stonith create f fence_ipmilan 'password=s e'", "pcs stonith create f fence_ipmilan 'password=<REDACTED>'"},
		{"cib nvpair", `<nvpair id="f-password" name="password" value="secret"/>`, `<nvpair id="f-password" name="password" value="<REDACTED>"/>`},
		{"json", `{"name": "password", "value": "secret"}`, `{"name": "password", "value": "<REDACTED>"}`},
		{"nothing to redact", "pcs resource create vip ocf:heartbeat:IPaddr2 ip=1.2.3.4", "pcs resource create vip ocf:heartbeat:IPaddr2 ip=1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Redact(tt.in))
		})
	}
}
