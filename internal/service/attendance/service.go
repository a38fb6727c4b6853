package attendance

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/patient-registry/internal/model"
	"github.com/jwalitptl/patient-registry/internal/repository"
)

var orderPattern = regexp.MustCompile(`(pedido|order).*?(\d{4})`)

const (
	replyGreeting = "Hello! How can I help? If you want to know about an order, tell me its number (e.g. order 1001)."
	replyAskID    = "I understand you want to know about an order, but I could not find its number. Could you tell me the order number (e.g. order 1001)?"
)

type Service struct {
	orders repository.OrderRepository
	log    zerolog.Logger
}

func NewService(orders repository.OrderRepository, log zerolog.Logger) *Service {
	return &Service{
		orders: orders,
		log:    log.With().Str("service", "attendance").Logger(),
	}
}

// Reply answers one customer message. An empty sessionID starts a new
// session.
func (s *Service) Reply(ctx context.Context, text, sessionID string) (model.AttendanceReply, error) {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	reply := model.AttendanceReply{SessionID: sessionID}

	lower := strings.ToLower(text)
	if !strings.Contains(lower, "pedido") && !strings.Contains(lower, "order") {
		reply.Reply = replyGreeting
		return reply, nil
	}

	match := orderPattern.FindStringSubmatch(lower)
	if match == nil {
		reply.Reply = replyAskID
		return reply, nil
	}

	digits := match[2]
	id, err := strconv.Atoi(digits)
	if err != nil {
		reply.Reply = replyAskID
		return reply, nil
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return model.AttendanceReply{}, fmt.Errorf("failed to look up order %d: %w", id, err)
	}
	if order == nil {
		s.log.Debug().Int("order_id", id).Str("session_id", sessionID).Msg("order not found")
		reply.Reply = fmt.Sprintf("I could not find order number %s. Please check the number and try again.", digits)
		return reply, nil
	}

	reply.Reply = fmt.Sprintf("The status of your order %s is **%s**.", digits, order.Status)
	return reply, nil
}

func NewSessionID() string {
	return "session_" + uuid.NewString()
}
