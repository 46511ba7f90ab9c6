package http

import (
	"context"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	twilioclient "github.com/twilio/twilio-go/client"

	"github.com/slotcast-dev/slotcast/pkg/domain/interfaces"
	"github.com/slotcast-dev/slotcast/pkg/domain/types"
	"github.com/slotcast-dev/slotcast/pkg/utils/async"
	"github.com/slotcast-dev/slotcast/pkg/utils/errutil"
	"github.com/slotcast-dev/slotcast/pkg/utils/safe"
)

// GatewaySignatureMiddleware verifies the gateway's request signature
// (X-Twilio-Signature over the public URL and sorted form parameters).
func GatewaySignatureMiddleware(authToken, baseURL string) func(http.Handler) http.Handler {
	validator := twilioclient.NewRequestValidator(authToken)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if err := r.ParseForm(); err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse webhook form"), http.StatusBadRequest)
				return
			}

			params := make(map[string]string, len(r.PostForm))
			for key, values := range r.PostForm {
				if len(values) > 0 {
					params[key] = values[0]
				}
			}

			url := baseURL + r.URL.RequestURI()
			signature := r.Header.Get("X-Twilio-Signature")
			if !validator.Validate(url, params, signature) {
				errutil.HandleHTTP(ctx, w, goerr.New("gateway signature verification failed"), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// handleInbound receives one gateway message. It acknowledges immediately —
// the gateway retries on slow acks — and processes the reply asynchronously.
func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse webhook form"), http.StatusBadRequest)
		return
	}

	msg := interfaces.InboundMessage{
		From:      types.Address(r.PostFormValue("From")),
		Body:      r.PostFormValue("Body"),
		MessageID: r.PostFormValue("MessageSid"),
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	safe.Write(ctx, w, []byte("<Response></Response>"))

	async.Dispatch(ctx, func(ctx context.Context) error {
		return s.uc.HandleInboundReply(ctx, msg)
	})
}
