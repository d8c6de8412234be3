package conf

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "duration string", input: `"24h"`, want: 24 * time.Hour},
		{name: "fractional string", input: `"1.5s"`, want: 1500 * time.Millisecond},
		{name: "nanoseconds", input: `2000000000`, want: 2 * time.Second},
		{name: "null", input: `null`, want: 0},
		{name: "garbage string", input: `"soon"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}

func TestDuration_Std_FallsBackWhenUnset(t *testing.T) {
	var unset Duration
	assert.Equal(t, 3*time.Second, unset.Std(3*time.Second))

	set := Duration(time.Minute)
	assert.Equal(t, time.Minute, set.Std(3*time.Second))
}

func TestBootstrap_DecodesNestedDurations(t *testing.T) {
	raw := `{"referral":{"dedup_window":"24h","operation_timeout":"2s","code_length":8},
		"data":{"outbox":{"poll_interval":"250ms"}}}`

	var bc Bootstrap
	require.NoError(t, json.Unmarshal([]byte(raw), &bc))

	assert.Equal(t, 24*time.Hour, bc.Referral.DedupWindow.Std(0))
	assert.Equal(t, 2*time.Second, bc.Referral.OperationTimeout.Std(0))
	assert.Equal(t, 8, bc.Referral.CodeLength)
	assert.Equal(t, 250*time.Millisecond, bc.Data.Outbox.PollInterval.Std(0))
}
