package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freelance-marketplace/internal/engagement"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhook(t *testing.T) {
	t.Run("should post the accepted event as json", func(t *testing.T) {
		var got envelope
		var header string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header = r.Header.Get("X-Event")
			got.Data = &engagement.AcceptedEvent{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		w := NewWebhook(resty.New(), srv.URL, time.Second)
		err := w.ProposalAccepted(context.Background(), engagement.AcceptedEvent{ProjectID: 1, ProposalID: 2, Rejected: []uint{3}})
		require.NoError(t, err)

		assert.Equal(t, EventProposalAccepted, header)
		assert.Equal(t, EventProposalAccepted, got.Event)
		evt := got.Data.(*engagement.AcceptedEvent)
		assert.Equal(t, uint(2), evt.ProposalID)
		assert.Equal(t, []uint{3}, evt.Rejected)
	})

	t.Run("should fail on non 2xx responses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		err := NewWebhook(resty.New(), srv.URL, time.Second).ProposalAccepted(context.Background(), engagement.AcceptedEvent{})
		assert.ErrorContains(t, err, "502")
	})

	t.Run("should give up after the timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		err := NewWebhook(resty.New(), srv.URL, 20*time.Millisecond).ProposalAccepted(context.Background(), engagement.AcceptedEvent{})
		assert.Error(t, err)
	})
}
