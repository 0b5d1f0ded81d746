package pos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/pkg"
)

// MenuSubscriber invalidates cached menu items when another process
// changes them, so ingredient lookups never serve stale recipes.
type MenuSubscriber struct {
	subscriber events.Subscriber
	cache      *MenuItemCache
	logger     aqm.Logger
}

func NewMenuSubscriber(sub events.Subscriber, cache *MenuItemCache, logger aqm.Logger) *MenuSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &MenuSubscriber{
		subscriber: sub,
		cache:      cache,
		logger:     logger,
	}
}

func (s *MenuSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting menu subscriber", "topic", pkg.MenuTopic)
	if s.subscriber == nil {
		return fmt.Errorf("menu subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, pkg.MenuTopic, s.handleEvent)
}

func (s *MenuSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var event pkg.MenuItemChangedEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		s.logger.Info("invalid menu event", "error", err)
		return nil
	}

	id, err := uuid.Parse(event.MenuItemID)
	if err != nil {
		s.logger.Info("invalid menu item id in event", "menu_item_id", event.MenuItemID)
		return nil
	}

	s.cache.Invalidate(id)
	s.logger.Debug("menu item invalidated", "menu_item_id", id.String())
	return nil
}
