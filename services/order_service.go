package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/chaiadda/backend/models"
	"github.com/chaiadda/backend/realtime"
	"github.com/chaiadda/backend/utils"
)

// Notifier is the notification transport the lifecycle engine emits through.
// The hub satisfies it; tests inject a recorder. Delivery is at-most-once
// with no durability: a lost event is logged by the transport and never
// rolls back the persisted order mutation.
type Notifier interface {
	EmitToAdmin(event string, data interface{})
	EmitToUser(userID uint, event string, data interface{})
}

// Actor is the authenticated principal attached to a request.
type Actor struct {
	ID   uint
	Role string // "user" or "admin"
}

// Kind maps the actor's role onto the order owner-kind tag.
func (a Actor) Kind() string {
	if a.Role == "admin" {
		return models.OwnerKindAdmin
	}
	return models.OwnerKindUser
}

// PlacedItem is one requested cart line: which menu item and how many.
type PlacedItem struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required"`
}

// DailyStats is the derived same-day revenue view. Never persisted,
// recomputed per request.
type DailyStats struct {
	TotalSales float64 `json:"total_sales"`
	OrderCount int64   `json:"order_count"`
}

// OrderService is the order lifecycle engine. It owns every status
// transition, stamps transition times and routes events to the notifier it
// was constructed with.
type OrderService struct {
	db       *gorm.DB
	notifier Notifier
}

func NewOrderService(db *gorm.DB, notifier Notifier) *OrderService {
	return &OrderService{db: db, notifier: notifier}
}

// PlaceOrder validates the cart against the menu, snapshots name and unit
// price per line, and persists a Pending order. Validation is sequential
// and all-or-nothing: the first missing or unavailable item aborts the
// whole order before anything is written.
func (s *OrderService) PlaceOrder(actor Actor, items []PlacedItem, notes string, scheduledTime *time.Time) (*models.Order, error) {
	if len(items) == 0 {
		return nil, utils.Errorf(utils.KindInvalidInput, "no order items")
	}

	var total float64
	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, utils.Errorf(utils.KindInvalidInput, "quantity must be at least 1")
		}

		var menuItem models.MenuItem
		if err := s.db.First(&menuItem, item.MenuItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.Errorf(utils.KindNotFound, "menu item not found: %d", item.MenuItemID)
			}
			return nil, err
		}
		if !menuItem.IsAvailable {
			return nil, utils.Errorf(utils.KindUnavailable, "%s is currently unavailable", menuItem.Name)
		}

		lines = append(lines, models.OrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Quantity:   item.Quantity,
			Price:      menuItem.Price,
		})
		total += menuItem.Price * float64(item.Quantity)
	}

	order := models.Order{
		UserID:        actor.ID,
		UserKind:      actor.Kind(),
		Items:         lines,
		TotalPrice:    total,
		Status:        models.OrderStatusPending,
		Notes:         notes,
		IsScheduled:   scheduledTime != nil,
		ScheduledTime: scheduledTime,
		PlacedAt:      time.Now(),
	}

	if err := s.db.Create(&order).Error; err != nil {
		return nil, err
	}

	placed, err := s.loadOrder(order.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.EmitToAdmin(realtime.EventNewOrder, placed)
	return placed, nil
}

// AcceptOrder moves a Pending order to Accepted and records the pickup
// time supplied by the caller. The caller is responsible for computing the
// pickup time (scheduled time or acceptance time plus prep minutes); the
// engine stores it verbatim.
func (s *OrderService) AcceptOrder(orderID uint, pickupTime time.Time) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, utils.Errorf(utils.KindInvalidTransition, "order cannot be accepted in current status")
	}

	now := time.Now()
	order.Status = models.OrderStatusAccepted
	order.AcceptedAt = &now
	order.PickupTime = &pickupTime

	if err := s.db.Save(order).Error; err != nil {
		return nil, err
	}

	s.notifier.EmitToUser(order.UserID, realtime.EventOrderUpdate, order)
	return order, nil
}

// RejectOrder moves a Pending order to Rejected with a reason.
func (s *OrderService) RejectOrder(orderID uint, reason string) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, utils.Errorf(utils.KindInvalidTransition, "order cannot be rejected in current status")
	}

	if reason == "" {
		reason = "No reason provided"
	}
	order.Status = models.OrderStatusRejected
	order.RejectionReason = &reason

	if err := s.db.Save(order).Error; err != nil {
		return nil, err
	}

	s.notifier.EmitToUser(order.UserID, realtime.EventOrderUpdate, order)
	return order, nil
}

// AdvanceStatus sets the order to Ready or Completed and stamps the
// matching transition time. No precondition on the prior status is
// enforced; an order may jump straight from Pending to Completed.
func (s *OrderService) AdvanceStatus(orderID uint, target string) (*models.Order, error) {
	if target != models.OrderStatusReady && target != models.OrderStatusCompleted {
		return nil, utils.Errorf(utils.KindInvalidInput, "invalid status: %s", target)
	}

	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order.Status = target
	switch target {
	case models.OrderStatusReady:
		order.ReadyAt = &now
	case models.OrderStatusCompleted:
		order.CompletedAt = &now
	}

	if err := s.db.Save(order).Error; err != nil {
		return nil, err
	}

	s.notifier.EmitToUser(order.UserID, realtime.EventOrderUpdate, order)
	s.notifier.EmitToAdmin(realtime.EventOrderUpdate, order)
	return order, nil
}

// CancelOrder lets the owner withdraw a Pending order. Ownership is exact:
// an admin cannot cancel another actor's order.
func (s *OrderService) CancelOrder(orderID uint, actor Actor) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.ID || order.UserKind != actor.Kind() {
		return nil, utils.Errorf(utils.KindForbidden, "not authorized to cancel this order")
	}
	if order.Status != models.OrderStatusPending {
		return nil, utils.Errorf(utils.KindInvalidTransition, "can only cancel pending orders")
	}

	order.Status = models.OrderStatusCancelled

	if err := s.db.Save(order).Error; err != nil {
		return nil, err
	}

	s.notifier.EmitToAdmin(realtime.EventOrderUpdate, order)
	return order, nil
}

// GetOrder returns one order, visible to its owner and to admins.
func (s *OrderService) GetOrder(orderID uint, actor Actor) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	owner := order.UserID == actor.ID && order.UserKind == actor.Kind()
	if !owner && actor.Role != "admin" {
		return nil, utils.Errorf(utils.KindForbidden, "not authorized to view this order")
	}
	return order, nil
}

// ListMyOrders returns the actor's own orders, newest first.
func (s *OrderService) ListMyOrders(actor Actor) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items.MenuItem").
		Where("user_id = ? AND user_kind = ?", actor.ID, actor.Kind()).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// ListAllOrders returns every order, optionally filtered by status,
// newest first.
func (s *OrderService) ListAllOrders(status string) ([]models.Order, error) {
	q := s.db.Preload("Items.MenuItem").Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		s.resolveOwner(&orders[i])
	}
	return orders, nil
}

// GetDailyStats sums Completed orders whose completion falls inside the
// current local calendar day. Zero completed orders is a zero result, not
// an error.
func (s *OrderService) GetDailyStats() (DailyStats, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24*time.Hour - time.Millisecond)

	var stats DailyStats
	row := s.db.Model(&models.Order{}).
		Where("status = ? AND completed_at BETWEEN ? AND ?", models.OrderStatusCompleted, startOfDay, endOfDay).
		Select("COALESCE(SUM(total_price), 0), COUNT(*)").
		Row()
	if err := row.Scan(&stats.TotalSales, &stats.OrderCount); err != nil {
		return DailyStats{}, err
	}
	return stats, nil
}

// loadOrder fetches an order with its line items and owner display fields.
func (s *OrderService) loadOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items.MenuItem").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.Errorf(utils.KindNotFound, "order not found")
		}
		return nil, err
	}
	s.resolveOwner(&order)
	return &order, nil
}

// resolveOwner attaches the owning actor's display name and email. Lookup
// failure leaves the fields empty; display data never fails a command.
func (s *OrderService) resolveOwner(order *models.Order) {
	switch order.UserKind {
	case models.OwnerKindAdmin:
		var admin models.Admin
		if err := s.db.First(&admin, order.UserID).Error; err == nil {
			order.OwnerName = admin.Name
			order.OwnerEmail = admin.Email
		}
	default:
		var user models.User
		if err := s.db.First(&user, order.UserID).Error; err == nil {
			order.OwnerName = user.Name
			order.OwnerEmail = user.Email
		}
	}
}
