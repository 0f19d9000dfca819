package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload_Decode(t *testing.T) {
	p := &Payload{StatusCode: 200, Raw: []byte(`{"serverTime":1499827319559}`)}

	var st ServerTime
	require.NoError(t, p.Decode(&st))
	assert.Equal(t, int64(1499827319559), st.ServerTime)

	bad := &Payload{Raw: []byte(`{`)}
	assert.Error(t, bad.Decode(&st))
}

func TestPayload_UsedWeight(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"present", map[string]string{UsedWeightHeader: "42"}, 42},
		{"absent", map[string]string{}, -1},
		{"nil headers", nil, -1},
		{"malformed", map[string]string{UsedWeightHeader: "lots"}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payload{Headers: tt.headers}
			assert.Equal(t, tt.want, p.UsedWeight())
		})
	}
}
