package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeProcessorEvent(t *testing.T) {
	ev, err := DecodeProcessorEvent([]byte(
		`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","status":"succeeded"}}}`))
	require.NoError(t, err)
	require.Equal(t, "evt_1", ev.EventID)
	require.NotNil(t, ev.Succeeded)
	require.Nil(t, ev.Failed)
	require.Equal(t, "pi_1", ev.Succeeded.PaymentRef)

	ev, err = DecodeProcessorEvent([]byte(
		`{"id":"evt_2","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_2","status":"requires_payment_method"}}}`))
	require.NoError(t, err)
	require.Nil(t, ev.Succeeded)
	require.NotNil(t, ev.Failed)
	require.Equal(t, "pi_2", ev.Failed.PaymentRef)

	// unrecognized types decode to the unhandled variant
	ev, err = DecodeProcessorEvent([]byte(`{"id":"evt_3","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`))
	require.NoError(t, err)
	require.Nil(t, ev.Succeeded)
	require.Nil(t, ev.Failed)

	_, err = DecodeProcessorEvent([]byte(`{not json`))
	require.Error(t, err)
}
