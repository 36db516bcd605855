package jsoncodec

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Image    string          `json:"image"`
	DeviceID json.RawMessage `json:"device_id,omitempty"`
	Context  *string         `json:"context"`
}

func TestRawMessagePassesThrough(t *testing.T) {
	var in payload
	require.NoError(t, Unmarshal([]byte(`{"image":"abc","device_id":{"serial":7}}`), &in))
	assert.JSONEq(t, `{"serial":7}`, string(in.DeviceID))

	out, err := Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"image":"abc","device_id":{"serial":7},"context":null}`, string(out))
}

func TestDecode(t *testing.T) {
	var p payload
	require.NoError(t, Decode(strings.NewReader(`{"image":"x"}`), &p))
	assert.Equal(t, "x", p.Image)
	assert.Nil(t, p.DeviceID)

	assert.Error(t, Unmarshal([]byte(`{"image":`), &p))
}
