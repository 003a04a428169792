package lnclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClnInvoiceToInvoicePrefersAmountReceived(t *testing.T) {
	inv := clnInvoice{
		CreatedIndex:       3,
		PaidAt:             1700000000,
		PaymentHash:        "hash1",
		PaymentPreimage:    "preimage1",
		AmountReceivedMsat: 5000,
		AmountMsat:         4000,
		Status:             "paid",
	}
	out := clnInvoiceToInvoice(inv)
	assert.Equal(t, uint64(3), out.AddIndex)
	assert.Equal(t, int64(5), out.AmtPaidSat)
	assert.True(t, out.Settled)
	assert.Nil(t, out.Htlcs)
}

func TestClnInvoiceToInvoiceFallsBackToAmountMsat(t *testing.T) {
	inv := clnInvoice{AmountReceivedMsat: 0, AmountMsat: 3000}
	out := clnInvoiceToInvoice(inv)
	assert.Equal(t, int64(3), out.AmtPaidSat)
}

func TestClnInvoiceToInvoiceDecodesKeysendDescription(t *testing.T) {
	inv := clnInvoice{Description: `keysend: {"action":"boost"}`}
	out := clnInvoiceToInvoice(inv)
	require.Len(t, out.Htlcs, 1)
	records := out.Htlcs[0].CustomRecords
	require.Contains(t, records, uint64(7629169))
	assert.Equal(t, `{"action":"boost"}`, string(records[7629169]))
}

func TestParseKeysendDescriptionNoPrefixReturnsNil(t *testing.T) {
	assert.Nil(t, parseKeysendDescription("just a memo"))
}

func TestParseKeysendDescriptionUnescapesBackslashes(t *testing.T) {
	records := parseKeysendDescription(`keysend: {\"action\":\"boost\"}`)
	require.NotNil(t, records)
	assert.Equal(t, `{"action":"boost"}`, string(records[7629169]))
}

func TestParseKeysendDescriptionEmptyBody(t *testing.T) {
	records := parseKeysendDescription("keysend: ")
	require.NotNil(t, records)
	assert.Equal(t, "", string(records[7629169]))
}

func TestClnSendpayToPaymentComputesFee(t *testing.T) {
	p := clnSendpay{
		CreatedIndex:    9,
		CreatedAt:       1700000001,
		Destination:     "03deadbeef",
		PaymentHash:     "hash2",
		PaymentPreimage: "preimage2",
		AmountMsat:      99000,
		AmountSentMsat:  100000,
		Status:          "complete",
	}
	out := clnSendpayToPayment(p)
	assert.Equal(t, uint64(9), out.PaymentIndex)
	assert.Equal(t, int64(100000), out.ValueMsat)
	assert.Equal(t, int64(1000), out.FeeMsat)
	assert.Equal(t, "03deadbeef", out.Destination)
}

func TestClnSendpayToPaymentZeroFee(t *testing.T) {
	p := clnSendpay{AmountMsat: 100000, AmountSentMsat: 100000}
	out := clnSendpayToPayment(p)
	assert.Equal(t, int64(0), out.FeeMsat)
}
