package service

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/Skotchmaster/sweetcrust/internal/logging"
	"github.com/Skotchmaster/sweetcrust/internal/metrics"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/util"
)

const (
	TopicUserEvents    = "user_events"
	TopicProductEvents = "product_events"
	TopicOrderEvents   = "order_events"
	TopicMessageEvents = "message_events"

	publishTimeout = 5 * time.Second
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// ProductIndex mirrors the catalog into a search backend.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, q string, page util.Page) ([]models.Product, error)
}

// ImageStore removes stored product images by the reference they were saved under.
type ImageStore interface {
	Delete(ctx context.Context, ref string) error
}

// publish runs after the database work has committed. A failed publish is
// logged and counted but never fails the request.
func publish(ctx context.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(pctx, topic, key, event); err != nil {
		metrics.EventPublishFailures.WithLabelValues(topic).Inc()
		logging.FromContext(ctx).Error("kafka_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
