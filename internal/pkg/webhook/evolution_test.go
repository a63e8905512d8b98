package webhook

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEvolutionEvent_ObjectAndArrayShapes(t *testing.T) {
	t.Parallel()

	object := []byte(`{"event":"connection.update","instance":{"instanceName":"zap-01","state":"open"}}`)
	array := []byte(`[{"event":"connection.update","instance":{"instanceName":"zap-01","state":"open"}}]`)

	for _, payload := range [][]byte{object, array} {
		ev, err := ParseEvolutionEvent(payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assert.Equal(t, "zap-01", ev.InstanceName)
		assert.Equal(t, "open", ev.State)
		assert.Equal(t, "connection.update", ev.Event)
	}
}

func TestParseEvolutionEvent_AliasPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    EvolutionEvent
	}{
		{
			name:    "flat instanceName and state",
			payload: `{"instanceName":"a","state":"close","type":"connection.update"}`,
			want:    EvolutionEvent{InstanceName: "a", State: "close", Event: "connection.update"},
		},
		{
			name:    "data wrapper",
			payload: `{"event":"qrcode.updated","data":{"instance":"b","status":"connecting","qrcode":{"base64":"iVBOR"}}}`,
			want:    EvolutionEvent{InstanceName: "b", State: "connecting", Event: "qrcode.updated", QRCode: "iVBOR"},
		},
		{
			name:    "bare instance string",
			payload: `{"instance":"c","state":"open"}`,
			want:    EvolutionEvent{InstanceName: "c", State: "open"},
		},
		{
			name:    "nested wins over flat",
			payload: `{"instance":{"instanceName":"nested","state":"open"},"instanceName":"flat"}`,
			want:    EvolutionEvent{InstanceName: "nested", State: "open"},
		},
		{
			name:    "whitespace trimmed",
			payload: `{"instanceName":"  d  ","state":" open "}`,
			want:    EvolutionEvent{InstanceName: "d", State: "open"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ev, err := ParseEvolutionEvent([]byte(tc.payload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assert.Equal(t, tc.want, *ev)
		})
	}
}

func TestParseEvolutionEvent_Errors(t *testing.T) {
	t.Parallel()

	if _, err := ParseEvolutionEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
	if _, err := ParseEvolutionEvent([]byte(`[]`)); err == nil {
		t.Fatalf("expected error for empty array")
	}
	if _, err := ParseEvolutionEvent([]byte(`"just a string"`)); err == nil {
		t.Fatalf("expected error for non-object payload")
	}

	_, err := ParseEvolutionEvent([]byte(`{"state":"open"}`))
	if !errors.Is(err, ErrMissingInstanceName) {
		t.Fatalf("expected ErrMissingInstanceName, got %v", err)
	}
}
