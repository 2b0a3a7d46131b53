package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/OG2511/maccabi-stickers-shop/internal/logger"
	"github.com/OG2511/maccabi-stickers-shop/internal/metrics"
	"github.com/OG2511/maccabi-stickers-shop/internal/order"

	"go.uber.org/zap"
)

// Service fans a submitted order out to the admin: a feed row in the
// database and a WhatsApp message. It satisfies order.Notifier.
type Service struct {
	repo        Repository
	sender      WhatsAppSender
	metrics     *metrics.Metrics
	siteBaseURL string
	timeout     time.Duration
}

func NewService(
	repo Repository,
	sender WhatsAppSender,
	m *metrics.Metrics,
	siteBaseURL string,
) *Service {
	return &Service{
		repo:        repo,
		sender:      sender,
		metrics:     m,
		siteBaseURL: siteBaseURL,
		timeout:     30 * time.Second,
	}
}

// OrderSubmitted runs delivery in the background. Checkout never
// waits on CallMeBot and never fails because of it.
func (s *Service) OrderSubmitted(o *order.Order) {
	go s.deliver(o)
}

func (s *Service) deliver(o *order.Order) {
	// The request context is gone by now; delivery gets its own.
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log := logger.L().With(
		zap.String("layer", "notify"),
		zap.String("order_id", o.ID),
	)

	n := &Notification{
		OrderID: o.ID,
		Message: s.message(o),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Error("failed to record notification", zap.Error(err))
	}

	s.metrics.NotificationAttempt()

	if err := s.sender.Send(ctx, n.Message); err != nil {
		s.metrics.NotificationFailure()
		log.Error("whatsapp notification failed", zap.Error(err))
		return
	}

	if n.ID != 0 {
		if err := s.repo.MarkSent(ctx, n.ID); err != nil {
			log.Warn("failed to mark notification as sent", zap.Error(err))
		}
	}

	log.Info("order notification delivered")
}

func (s *Service) message(o *order.Order) string {
	delivery := "איסוף עצמי"
	if o.DeliveryOption == order.DeliveryIsraelPost {
		delivery = "משלוח בדואר"
	}

	return fmt.Sprintf(
		"התקבלה הזמנה חדשה!\nשם: %s\nטלפון: %s\nמשלוח: %s\nסכום: %s ש\"ח\nלאישור ההזמנה: %s/admin/orders/%s",
		o.CustomerName,
		o.Phone,
		delivery,
		o.TotalPrice.String(),
		s.siteBaseURL,
		o.ID,
	)
}
