package storefront

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/storefront/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newStorefront(t *testing.T, autoOpen bool) (*Storefront, *CartAPIMock, *fakeClock, *recordingNotifier) {
	t.Helper()
	api := new(CartAPIMock)
	clock := newFakeClock()
	n := &recordingNotifier{}
	s := New(api, autoOpen, n, clock, zaptest.NewLogger(t))
	t.Cleanup(s.Close)
	return s, api, clock, n
}

func TestAddToCart_ButtonFlowAndAutoOpen(t *testing.T) {
	s, api, clock, n := newStorefront(t, true)
	btn := NewButton("Add to cart")

	api.On("AddToCart", mock.Anything, int64(7), int64(1)).
		Run(func(args mock.Arguments) {
			assert.Equal(t, LabelAdding, btn.Label())
			assert.True(t, btn.Disabled())
		}).
		Return(fragmentsResp("1"), nil).Once()

	var events []EventName
	s.Page().On(EventFragmentsRefreshed, func(ev Event) { events = append(events, ev.Name) })
	s.Page().On(EventAddedToCart, func(ev Event) {
		events = append(events, ev.Name)
		assert.Equal(t, int64(7), ev.ProductID)
	})

	require.NoError(t, s.AddToCart(context.Background(), btn, 7, 1))

	assert.Equal(t, LabelAdded, btn.Label())
	assert.False(t, btn.Disabled())
	assert.True(t, s.Drawer().IsOpen())
	assert.Equal(t, []EventName{EventFragmentsRefreshed, EventAddedToCart}, events)
	assert.Empty(t, n.Messages())

	count, _ := s.Page().Region(".sidecart-cart-count")
	assert.Equal(t, "1", count)

	clock.Advance(2 * time.Second)
	assert.Equal(t, "Add to cart", btn.Label())
}

func TestAddToCart_NoAutoOpen(t *testing.T) {
	s, api, _, _ := newStorefront(t, false)
	api.On("AddToCart", mock.Anything, int64(7), int64(2)).Return(fragmentsResp("2"), nil).Once()

	require.NoError(t, s.AddToCart(context.Background(), NewButton("Add"), 7, 2))
	assert.False(t, s.Drawer().IsOpen())
}

func TestAddToCart_ValidationErrorRestoresButton(t *testing.T) {
	s, api, clock, n := newStorefront(t, true)
	btn := NewButton("Add to cart")
	api.On("AddToCart", mock.Anything, mock.Anything, mock.Anything).
		Return(transport.FragmentsResponse{}, &transport.APIError{Status: http.StatusBadRequest, Message: "stock exceeded"}).Once()

	err := s.AddToCart(context.Background(), btn, 7, 100)

	require.Error(t, err)
	assert.Equal(t, "Add to cart", btn.Label())
	assert.False(t, btn.Disabled())
	assert.False(t, s.Drawer().IsOpen())
	assert.Equal(t, []string{"stock exceeded"}, n.Messages())
	assert.Equal(t, 0, clock.Active())
}

func TestAddToCart_TransportErrorNotifiesGeneric(t *testing.T) {
	s, api, _, n := newStorefront(t, true)
	api.On("AddToCart", mock.Anything, mock.Anything, mock.Anything).
		Return(transport.FragmentsResponse{}, errors.New("dial tcp: refused")).Once()

	err := s.AddToCart(context.Background(), NewButton("Add"), 1, 1)

	require.Error(t, err)
	assert.Equal(t, []string{MsgAddFailed}, n.Messages())
	api.AssertNumberOfCalls(t, "AddToCart", 1)
}

func TestAddToCart_ServerErrorNotifiesGeneric(t *testing.T) {
	s, api, _, n := newStorefront(t, false)
	api.On("AddToCart", mock.Anything, mock.Anything, mock.Anything).
		Return(transport.FragmentsResponse{}, &transport.APIError{Status: http.StatusInternalServerError, Message: "internal error"}).Once()

	_ = s.AddToCart(context.Background(), NewButton("Add"), 1, 1)
	assert.Equal(t, []string{MsgAddFailed}, n.Messages())
}

func TestAddToCart_DisabledButtonIsIgnored(t *testing.T) {
	s, api, _, _ := newStorefront(t, false)
	btn := NewButton("Add")

	api.On("AddToCart", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			assert.ErrorIs(t, s.AddToCart(context.Background(), btn, 1, 1), ErrBusy)
		}).
		Return(fragmentsResp("1"), nil).Once()

	require.NoError(t, s.AddToCart(context.Background(), btn, 1, 1))
	api.AssertNumberOfCalls(t, "AddToCart", 1)
}

func TestRefresh_AppliesAndBroadcasts(t *testing.T) {
	s, api, _, _ := newStorefront(t, false)
	api.On("Fragments", mock.Anything).Return(fragmentsResp("3"), nil).Once()

	got := ""
	s.Page().On(EventFragmentsRefreshed, func(ev Event) { got = ev.CartHash })

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, "hash-3", got)
	assert.Equal(t, "hash-3", s.Page().CartHash())
}
