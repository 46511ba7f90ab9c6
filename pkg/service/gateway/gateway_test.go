package gateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/service/gateway"
)

func TestNewTwilioRequiresCredentials(t *testing.T) {
	cases := []struct {
		name                        string
		accountSID, authToken, from string
	}{
		{"all blank", "", "", ""},
		{"missing token", "AC123", "", "whatsapp:+14155238886"},
		{"missing from", "AC123", "token", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gateway.NewTwilio(tc.accountSID, tc.authToken, tc.from)
			gt.Error(t, err)
			gt.Bool(t, errors.Is(err, interfaces.ErrGatewayUnconfigured)).True()
		})
	}
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	rec := gateway.NewRecorder()

	sid, err := rec.Send(ctx, "whatsapp:+6591234567", "hello", nil)
	gt.NoError(t, err).Required()
	gt.String(t, sid).NotEqual("")

	rec.RejectAddress("whatsapp:+6581112222")
	_, err = rec.Send(ctx, "whatsapp:+6581112222", "hello", nil)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, interfaces.ErrGatewayRejected)).True()

	gt.Array(t, rec.Sent()).Length(1)
	gt.Array(t, rec.SentTo("whatsapp:+6591234567")).Length(1)
}
