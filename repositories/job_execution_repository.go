package repositories

import (
	"context"
	"time"

	"newspaper/models"

	"gorm.io/gorm"
)

type JobExecutionRepository interface {
	Create(ctx context.Context, execution *models.JobExecution) error
	// DeleteOlderThan removes executions that finished before cutoff and returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	GetByJob(ctx context.Context, jobID string, limit int) ([]models.JobExecution, error)
}

type jobExecutionRepository struct {
	db *gorm.DB
}

func NewJobExecutionRepository(db *gorm.DB) JobExecutionRepository {
	return &jobExecutionRepository{db: db}
}

func (r *jobExecutionRepository) Create(ctx context.Context, execution *models.JobExecution) error {
	return r.db.WithContext(ctx).Create(execution).Error
}

func (r *jobExecutionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("finished_at < ?", cutoff).
		Delete(&models.JobExecution{})
	return res.RowsAffected, res.Error
}

func (r *jobExecutionRepository) GetByJob(ctx context.Context, jobID string, limit int) ([]models.JobExecution, error) {
	var executions []models.JobExecution
	query := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("finished_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&executions).Error
	return executions, err
}
