package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/your-org/pos-backend/internal/domain/cart"
	"github.com/your-org/pos-backend/internal/domain/connectivity"
	"github.com/your-org/pos-backend/internal/domain/order"
	syncdomain "github.com/your-org/pos-backend/internal/domain/sync"
)

// stubCart hands out a one-line cart and fails to clear on demand.
type stubCart struct {
	clearErr error
	cleared  int
}

func (s *stubCart) Snapshot(_ context.Context, deviceID string) (*cart.Cart, error) {
	return &cart.Cart{
		DeviceID: deviceID,
		Lines: []cart.CartLine{{
			ID:          "line-1",
			ProductID:   1,
			ProductName: "Hawaiana",
			Size:        "grande",
			Quantity:    1,
			UnitPrice:   15000,
		}},
	}, nil
}

func (s *stubCart) Clear(context.Context, string) error {
	s.cleared++
	return s.clearErr
}

type stubQueue struct {
	enqueued int
}

func (q *stubQueue) Enqueue(context.Context, *order.OrderDraft) (string, error) {
	q.enqueued++
	return "local-1", nil
}

func (q *stubQueue) DequeueNext(context.Context) (*syncdomain.PendingOrder, error) {
	return nil, nil
}

func (q *stubQueue) MarkSynced(context.Context, string, *order.Order) error { return nil }

func (q *stubQueue) MarkFailed(context.Context, string, error, bool) error { return nil }

func (q *stubQueue) Get(context.Context, string) (*syncdomain.PendingOrder, error) {
	return nil, errors.New("not found")
}

func (q *stubQueue) Backlog(context.Context) ([]syncdomain.PendingOrder, error) { return nil, nil }

func (q *stubQueue) Depth(context.Context) (int64, error) { return 0, nil }

func (q *stubQueue) ResolveServerID(context.Context, string) (uint, bool, error) {
	return 0, false, nil
}

func TestCheckoutLogsCartClearFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)

	cartStore := &stubCart{clearErr: errors.New("connection refused")}
	queue := &stubQueue{}
	h := &CheckoutHandler{
		cartService: cartStore,
		queue:       queue,
		engine:      &syncdomain.Engine{},
		monitor:     connectivity.NewMonitor(nil),
		logger:      logger,
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/checkout",
		strings.NewReader(`{"service_type":"takeout","payment_method":"cash"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("X-Device-ID", "register-1")

	h.Checkout(c)

	// The order is queued and accepted even though the cart refused to clear
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, queue.enqueued)
	assert.Equal(t, 1, cartStore.cleared)
	assert.Contains(t, logs.String(), "cart not cleared after checkout")
	assert.Contains(t, logs.String(), "register-1")
}
