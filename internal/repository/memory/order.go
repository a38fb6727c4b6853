package memory

import (
	"context"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

// DemoOrders is the fixed set of orders the assistant knows about.
var DemoOrders = []model.Order{
	{ID: 1000, Status: model.OrderStatusProcessing},
	{ID: 1001, Status: model.OrderStatusInTransit},
	{ID: 1002, Status: model.OrderStatusDelivered},
	{ID: 1003, Status: model.OrderStatusShipped},
	{ID: 1004, Status: model.OrderStatusCancelled},
}

type orderRepository struct {
	orders map[int]model.Order
}

// NewOrderRepository returns a read-only repository over orders. The slice is
// copied, so later changes by the caller are not observed.
func NewOrderRepository(orders []model.Order) repository.OrderRepository {
	byID := make(map[int]model.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	return &orderRepository{orders: byID}
}

func (r *orderRepository) FindByID(ctx context.Context, id int) (*model.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &order, nil
}
