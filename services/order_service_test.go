package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/global-bites/events"
	"github.com/yeremiapane/global-bites/models"
	"github.com/yeremiapane/global-bites/repositories"
	"github.com/yeremiapane/global-bites/testutil"
	"github.com/yeremiapane/global-bites/utils"
	"gorm.io/gorm"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func eventOfType(t events.EventType) interface{} {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == t })
}

func newOrderService(t *testing.T) (*OrderService, *gorm.DB, *MockPublisher) {
	db := testutil.NewDB(t)
	publisher := new(MockPublisher)
	svc := NewOrderService(repositories.NewOrderRepository(db), repositories.NewDishRepository(db), publisher)
	return svc, db, publisher
}

func countOrders(t *testing.T, db *gorm.DB) (orders, items int64) {
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	return orders, items
}

func TestPlaceOrderPricesFromCurrentDishes(t *testing.T) {
	svc, db, publisher := newOrderService(t)
	d1 := testutil.CreateDish(t, db, "Spicy Miso Ramen", "Noodles", "12.50", true)
	d2 := testutil.CreateDish(t, db, "Gyoza", "Starters", "7.00", true)
	publisher.On("Publish", mock.Anything, eventOfType(events.OrderCreated)).Return(nil).Once()

	order, err := svc.PlaceOrder(context.Background(), []CartItem{
		{DishID: d1.ID.String(), Quantity: 2},
		{DishID: d2.ID.String(), Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, "32.00", order.TotalPrice.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 1, order.Version)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "12.50", order.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "Spicy Miso Ramen", order.Items[0].DishName)
	assert.Equal(t, "7.00", order.Items[1].UnitPrice.StringFixed(2))

	stored, err := svc.GetOrder(context.Background(), order.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.TotalPrice.Equal(decimal.RequireFromString("32")))
	require.Len(t, stored.Items, 2)
	assert.Equal(t, 1, stored.Items[0].LineNo)
	assert.Equal(t, d1.ID, *stored.Items[0].DishID)
	assert.Equal(t, d2.ID, *stored.Items[1].DishID)

	publisher.AssertExpectations(t)
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, db, _ := newOrderService(t)
	active := testutil.CreateDish(t, db, "Pad Thai", "Noodles", "11.00", true)
	inactive := testutil.CreateDish(t, db, "Winter Stew", "Mains", "14.00", false)

	tests := []struct {
		name string
		cart []CartItem
		kind utils.ErrorKind
	}{
		{"empty cart", []CartItem{}, utils.KindInvalidInput},
		{"nil cart", nil, utils.KindInvalidInput},
		{"malformed id", []CartItem{{DishID: "dish-1", Quantity: 1}}, utils.KindInvalidIdentifier},
		{"zero quantity", []CartItem{{DishID: active.ID.String(), Quantity: 0}}, utils.KindInvalidQuantity},
		{"negative quantity", []CartItem{{DishID: active.ID.String(), Quantity: -1}}, utils.KindInvalidQuantity},
		{"unknown dish", []CartItem{{DishID: uuid.NewString(), Quantity: 1}}, utils.KindNotFound},
		{"inactive dish", []CartItem{{DishID: inactive.ID.String(), Quantity: 1}}, utils.KindUnavailable},
		{"one bad line among good", []CartItem{
			{DishID: active.ID.String(), Quantity: 1},
			{DishID: inactive.ID.String(), Quantity: 2},
		}, utils.KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := svc.PlaceOrder(context.Background(), tt.cart)
			assert.Nil(t, order)
			require.Error(t, err)
			assert.Equal(t, tt.kind, utils.KindOf(err))
		})
	}

	orders, items := countOrders(t, db)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestPriceCartFirstFailingLineWins(t *testing.T) {
	svc, db, _ := newOrderService(t)
	inactive := testutil.CreateDish(t, db, "Winter Stew", "Mains", "14.00", false)

	_, err := svc.PriceCart(context.Background(), []CartItem{
		{DishID: uuid.NewString(), Quantity: 1},
		{DishID: inactive.ID.String(), Quantity: 1},
	})
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestPriceCartChecksEachLineInOrder(t *testing.T) {
	svc, db, _ := newOrderService(t)
	active := testutil.CreateDish(t, db, "Pad Thai", "Noodles", "11.00", true)
	inactive := testutil.CreateDish(t, db, "Winter Stew", "Mains", "14.00", false)

	tests := []struct {
		name string
		cart []CartItem
		kind utils.ErrorKind
	}{
		{"unknown dish before bad quantity", []CartItem{
			{DishID: uuid.NewString(), Quantity: 1},
			{DishID: active.ID.String(), Quantity: 0},
		}, utils.KindNotFound},
		{"inactive dish with bad quantity", []CartItem{
			{DishID: inactive.ID.String(), Quantity: 0},
		}, utils.KindUnavailable},
		{"bad quantity before malformed id", []CartItem{
			{DishID: active.ID.String(), Quantity: -2},
			{DishID: "nope", Quantity: 1},
		}, utils.KindInvalidQuantity},
		{"malformed id before unknown dish", []CartItem{
			{DishID: "nope", Quantity: 1},
			{DishID: uuid.NewString(), Quantity: 1},
		}, utils.KindInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PriceCart(context.Background(), tt.cart)
			require.Error(t, err)
			assert.Equal(t, tt.kind, utils.KindOf(err))
		})
	}
}

func TestUnitPriceFrozenAfterDishPriceChange(t *testing.T) {
	svc, db, publisher := newOrderService(t)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	dish := testutil.CreateDish(t, db, "Margherita", "Pizza", "9.50", true)

	order, err := svc.PlaceOrder(context.Background(), []CartItem{{DishID: dish.ID.String(), Quantity: 3}})
	require.NoError(t, err)

	menus := NewMenuService(repositories.NewDishRepository(db), repositories.NewMenuRepository(db), nil)
	newPrice := decimal.RequireFromString("15.00")
	_, err = menus.UpdateDish(context.Background(), dish.ID.String(), DishInput{Price: &newPrice})
	require.NoError(t, err)

	stored, err := svc.GetOrder(context.Background(), order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "9.50", stored.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "28.50", stored.TotalPrice.StringFixed(2))

	repriced, err := svc.PriceCart(context.Background(), []CartItem{{DishID: dish.ID.String(), Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, "45.00", repriced.Total.StringFixed(2))
}

func TestPlaceOrderRollsBackWhenItemsFail(t *testing.T) {
	svc, db, publisher := newOrderService(t)
	dish := testutil.CreateDish(t, db, "Falafel Wrap", "Wraps", "8.00", true)

	err := db.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(tx *gorm.DB) {
		if tx.Statement.Table == "order_items" {
			tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	order, err := svc.PlaceOrder(context.Background(), []CartItem{{DishID: dish.ID.String(), Quantity: 1}})
	assert.Nil(t, order)
	assert.Equal(t, utils.KindUpstreamFailure, utils.KindOf(err))

	orders, items := countOrders(t, db)
	assert.Zero(t, orders)
	assert.Zero(t, items)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestPlaceOrderSurvivesPublisherFailure(t *testing.T) {
	svc, db, publisher := newOrderService(t)
	dish := testutil.CreateDish(t, db, "Falafel Wrap", "Wraps", "8.00", true)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	order, err := svc.PlaceOrder(context.Background(), []CartItem{{DishID: dish.ID.String(), Quantity: 1}})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, order.ID)
}

func TestTransitionStatus(t *testing.T) {
	svc, db, publisher := newOrderService(t)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	dish := testutil.CreateDish(t, db, "Bibimbap", "Rice", "13.00", true)
	order, err := svc.PlaceOrder(context.Background(), []CartItem{{DishID: dish.ID.String(), Quantity: 1}})
	require.NoError(t, err)
	id := order.ID.String()
	ctx := context.Background()

	confirmed, err := svc.TransitionStatus(ctx, id, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, confirmed.Status)
	assert.Equal(t, 2, confirmed.Version)

	again, err := svc.TransitionStatus(ctx, id, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, again.Status)
	assert.Equal(t, 2, again.Version, "same-status transition must not write")

	_, err = svc.TransitionStatus(ctx, id, "pending")
	assert.Equal(t, utils.KindInvalidTransition, utils.KindOf(err))

	completed, err := svc.TransitionStatus(ctx, id, "completed")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, completed.Status)
	assert.Len(t, completed.Items, 1)

	_, err = svc.TransitionStatus(ctx, id, "canceled")
	assert.Equal(t, utils.KindInvalidTransition, utils.KindOf(err))

	publisher.AssertNumberOfCalls(t, "Publish", 3)
}

func TestTransitionStatusErrors(t *testing.T) {
	svc, db, publisher := newOrderService(t)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	dish := testutil.CreateDish(t, db, "Bibimbap", "Rice", "13.00", true)
	order, err := svc.PlaceOrder(context.Background(), []CartItem{{DishID: dish.ID.String(), Quantity: 1}})
	require.NoError(t, err)

	tests := []struct {
		name, id, status string
		kind             utils.ErrorKind
	}{
		{"unknown status", order.ID.String(), "shipped", utils.KindInvalidStatus},
		{"wrong case", order.ID.String(), "Confirmed", utils.KindInvalidStatus},
		{"empty status", order.ID.String(), "", utils.KindInvalidStatus},
		{"malformed id", "12345", "confirmed", utils.KindInvalidIdentifier},
		{"unknown order", uuid.NewString(), "confirmed", utils.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.TransitionStatus(context.Background(), tt.id, tt.status)
			assert.Equal(t, tt.kind, utils.KindOf(err))
		})
	}
}

type racingOrderRepository struct {
	*repositories.GormOrderRepository
	raced bool
}

func (r *racingOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, version int, status models.OrderStatus) (bool, error) {
	if !r.raced {
		r.raced = true
		if _, err := r.GormOrderRepository.UpdateStatus(ctx, id, version, models.OrderStatusCanceled); err != nil {
			return false, err
		}
	}
	return r.GormOrderRepository.UpdateStatus(ctx, id, version, status)
}

func TestTransitionStatusDetectsConcurrentUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	orders := &racingOrderRepository{GormOrderRepository: repositories.NewOrderRepository(db)}
	svc := NewOrderService(orders, repositories.NewDishRepository(db), nil)
	dish := testutil.CreateDish(t, db, "Bibimbap", "Rice", "13.00", true)

	order, err := svc.PlaceOrder(context.Background(), []CartItem{{DishID: dish.ID.String(), Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.TransitionStatus(context.Background(), order.ID.String(), "confirmed")
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	stored, err := svc.GetOrder(context.Background(), order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCanceled, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestListOrders(t *testing.T) {
	svc, db, publisher := newOrderService(t)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	dish := testutil.CreateDish(t, db, "Bibimbap", "Rice", "13.00", true)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		order, err := svc.PlaceOrder(ctx, []CartItem{{DishID: dish.ID.String(), Quantity: i + 1}})
		require.NoError(t, err)
		ids = append(ids, order.ID.String())
	}
	_, err := svc.TransitionStatus(ctx, ids[0], "confirmed")
	require.NoError(t, err)

	all, total, err := svc.ListOrders(ctx, "", utils.NewPagination(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	pending, total, err := svc.ListOrders(ctx, "pending", utils.NewPagination(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, o := range pending {
		assert.Equal(t, models.OrderStatusPending, o.Status)
	}

	_, _, err = svc.ListOrders(ctx, "archived", utils.NewPagination(1, 10))
	assert.Equal(t, utils.KindInvalidStatus, utils.KindOf(err))
}

func TestGetOrderErrors(t *testing.T) {
	svc, _, _ := newOrderService(t)

	_, err := svc.GetOrder(context.Background(), "nope")
	assert.Equal(t, utils.KindInvalidIdentifier, utils.KindOf(err))

	_, err = svc.GetOrder(context.Background(), uuid.NewString())
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}
