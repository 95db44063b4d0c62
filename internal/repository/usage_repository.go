package repository

import (
	"context"
	"errors"
	"time"

	"streamfinder-backend/internal/database"
	"streamfinder-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageRepository interface {
	// GetCurrentMonthUsage returns the request count for the current
	// calendar month, 0 when no row exists yet.
	GetCurrentMonthUsage(ctx context.Context) (int, error)

	// IncrementIfUnderLimit adds n to the current month's counter only if
	// the result stays within limit. Returns false without mutating when
	// the increment would exceed it. The check and the increment are a
	// single conditional UPDATE, so concurrent callers (including other
	// instances sharing the database) cannot overshoot the limit.
	IncrementIfUnderLimit(ctx context.Context, n, limit int) (bool, error)
}

type usageRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewUsageRepository(db *database.Database) UsageRepository {
	return &usageRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *usageRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *usageRepository) GetCurrentMonthUsage(ctx context.Context) (int, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var usage models.APIUsage
	err := r.db.WithContext(ctx).Where("month = ?", models.MonthKey(time.Now())).First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return usage.RequestCount, nil
}

func (r *usageRepository) IncrementIfUnderLimit(ctx context.Context, n, limit int) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	month := models.MonthKey(time.Now())

	// Lazily create the row for a new month; no-op when it already exists.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "month"}}, DoNothing: true}).
		Create(&models.APIUsage{Month: month}).Error
	if err != nil {
		return false, err
	}

	res := r.db.WithContext(ctx).Model(&models.APIUsage{}).
		Where("month = ? AND request_count + ? <= ?", month, n, limit).
		UpdateColumn("request_count", gorm.Expr("request_count + ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
