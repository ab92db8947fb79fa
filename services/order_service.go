package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/global-bites/events"
	"github.com/yeremiapane/global-bites/models"
	"github.com/yeremiapane/global-bites/repositories"
	"github.com/yeremiapane/global-bites/utils"
	"golang.org/x/sync/errgroup"
)

const dishLookupConcurrency = 8

// CartItem is one line of a customer cart as submitted.
type CartItem struct {
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity"`
}

// PricedCart is a validated cart with server-side prices.
type PricedCart struct {
	Items []models.OrderItem
	Total decimal.Decimal
}

type OrderService struct {
	orders    repositories.OrderRepository
	dishes    repositories.DishRepository
	publisher events.Publisher
}

func NewOrderService(orders repositories.OrderRepository, dishes repositories.DishRepository, publisher events.Publisher) *OrderService {
	return &OrderService{orders: orders, dishes: dishes, publisher: publisher}
}

// PriceCart validates the cart and prices it from current dish rows. It never writes.
func (s *OrderService) PriceCart(ctx context.Context, cart []CartItem) (*PricedCart, error) {
	if len(cart) == 0 {
		return nil, utils.NewInvalidInput("order must contain at least one item")
	}

	ids := make([]uuid.UUID, len(cart))
	idErrs := make([]error, len(cart))
	for i, item := range cart {
		id, err := utils.ParseID(item.DishID, "dish id")
		if err != nil {
			idErrs[i] = utils.NewInvalidIdentifier("item %d: invalid dish id %q", i+1, item.DishID)
			continue
		}
		ids[i] = id
	}

	dishes := make([]*models.Dish, len(cart))
	lookupErrs := make([]error, len(cart))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dishLookupConcurrency)
	for i, id := range ids {
		if idErrs[i] != nil {
			continue
		}
		i, id := i, id
		g.Go(func() error {
			dishes[i], lookupErrs[i] = s.dishes.FindByID(gctx, id)
			return nil
		})
	}
	g.Wait()

	// per line: identifier, existence, availability, quantity
	priced := &PricedCart{Total: decimal.Zero}
	for i, dish := range dishes {
		if err := idErrs[i]; err != nil {
			return nil, err
		}
		if err := lookupErrs[i]; err != nil {
			if utils.IsKind(err, utils.KindNotFound) {
				return nil, utils.NewNotFound("dish %s not found", ids[i])
			}
			return nil, err
		}
		if !dish.Active {
			return nil, utils.NewUnavailable("dish %q is no longer available", dish.Name)
		}
		if err := utils.ValidateQuantity(cart[i].Quantity); err != nil {
			return nil, utils.NewInvalidQuantity("item %d: quantity must be a positive integer", i+1)
		}

		dishID := dish.ID
		item := models.OrderItem{
			DishID:    &dishID,
			DishName:  dish.Name,
			Quantity:  cart[i].Quantity,
			UnitPrice: dish.Price,
		}
		priced.Items = append(priced.Items, item)
		priced.Total = priced.Total.Add(item.LineTotal())
	}
	return priced, nil
}

// PlaceOrder prices the cart and stores the order and its items atomically.
func (s *OrderService) PlaceOrder(ctx context.Context, cart []CartItem) (*models.Order, error) {
	priced, err := s.PriceCart(ctx, cart)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		TotalPrice: priced.Total,
		Status:     models.OrderStatusPending,
		Version:    1,
	}
	if err := s.orders.CreateWithItems(ctx, order, priced.Items); err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"items":    len(order.Items),
		"total":    order.TotalPrice.StringFixed(2),
	}).Info("Order placed")

	s.publish(ctx, events.NewEvent(events.OrderCreated, order.ID.String(), order))
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, rawID string) (*models.Order, error) {
	id, err := utils.ParseID(rawID, "order id")
	if err != nil {
		return nil, err
	}
	return s.orders.FindByID(ctx, id)
}

// ListOrders returns orders newest first. An empty status means all statuses.
func (s *OrderService) ListOrders(ctx context.Context, rawStatus string, page utils.Pagination) ([]models.Order, int64, error) {
	var filter repositories.OrderFilter
	if rawStatus = strings.TrimSpace(rawStatus); rawStatus != "" {
		status, ok := models.ParseOrderStatus(rawStatus)
		if !ok {
			return nil, 0, utils.NewInvalidStatus("invalid status %q", rawStatus)
		}
		filter.Status = &status
	}
	return s.orders.List(ctx, filter, page)
}

// TransitionStatus moves an order along pending -> confirmed -> completed, or to canceled
// from either open state. Requesting the current status is a no-op.
func (s *OrderService) TransitionStatus(ctx context.Context, rawID, rawStatus string) (*models.Order, error) {
	id, err := utils.ParseID(rawID, "order id")
	if err != nil {
		return nil, err
	}
	next, ok := models.ParseOrderStatus(rawStatus)
	if !ok {
		return nil, utils.NewInvalidStatus("invalid status %q, expected one of pending, confirmed, completed, canceled", rawStatus)
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, utils.NewInvalidTransition("cannot change order status from %s to %s", order.Status, next)
	}

	swapped, err := s.orders.UpdateStatus(ctx, id, order.Version, next)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, utils.NewConflict("order %s was modified concurrently, reload and retry", id)
	}

	updated, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": id,
		"from":     order.Status,
		"to":       next,
	}).Info("Order status changed")

	s.publish(ctx, events.NewEvent(events.OrderStatusChanged, id.String(), map[string]interface{}{
		"from":  order.Status,
		"to":    next,
		"order": updated,
	}))
	return updated, nil
}

func (s *OrderService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		utils.ErrorLogger.WithError(err).Errorf("Failed to publish %s for order %s", event.Type, event.OrderID)
	}
}
