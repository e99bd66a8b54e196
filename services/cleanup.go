package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/chaiadda/backend/models"
	"github.com/chaiadda/backend/utils"
)

// RetentionWindow is how long terminal orders are kept before the sweeper
// deletes them.
const RetentionWindow = 24 * time.Hour

// CleanupSweeper periodically purges orders that reached a terminal state
// and outlived the retention window. It runs independently of request
// handling; a failed sweep is logged and the next tick runs as scheduled.
type CleanupSweeper struct {
	DB       *gorm.DB
	Interval time.Duration
	StopChan chan struct{}
}

func NewCleanupSweeper(db *gorm.DB) *CleanupSweeper {
	return &CleanupSweeper{
		DB:       db,
		Interval: time.Hour,
		StopChan: make(chan struct{}),
	}
}

// Start runs one sweep immediately, then sweeps on every tick until Stop.
func (cs *CleanupSweeper) Start() {
	go func() {
		cs.sweepAndLog()

		ticker := time.NewTicker(cs.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cs.sweepAndLog()
			case <-cs.StopChan:
				return
			}
		}
	}()
}

func (cs *CleanupSweeper) Stop() {
	close(cs.StopChan)
}

func (cs *CleanupSweeper) sweepAndLog() {
	deleted, err := cs.Sweep()
	if err != nil {
		utils.ErrorLogger.Printf("[cleanup] sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		utils.InfoLogger.Printf("[cleanup] deleted %d old orders", deleted)
	}
}

// Sweep deletes orders in a terminal state created before now minus the
// retention window. Non-terminal orders are kept regardless of age.
func (cs *CleanupSweeper) Sweep() (int64, error) {
	cutoff := time.Now().Add(-RetentionWindow)
	terminal := []string{
		models.OrderStatusCompleted,
		models.OrderStatusRejected,
		models.OrderStatusCancelled,
	}

	var ids []uint
	if err := cs.DB.Model(&models.Order{}).
		Where("status IN ? AND created_at < ?", terminal, cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := cs.DB.Where("order_id IN ?", ids).Delete(&models.OrderItem{}).Error; err != nil {
		return 0, err
	}
	res := cs.DB.Where("id IN ?", ids).Delete(&models.Order{})
	return res.RowsAffected, res.Error
}
