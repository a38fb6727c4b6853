package model

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusInTransit  OrderStatus = "in transit"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID     int         `json:"id"`
	Status OrderStatus `json:"status"`
}

type AttendanceRequest struct {
	Text      string `json:"text" binding:"required"`
	SessionID string `json:"sessionId"`
}

type AttendanceReply struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
}
