package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskmesh/internal/model"
)

// TaskRepository handles CRUD for tasks, their assignments and comments.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		})
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListByCreator returns every task created by the given user, newest
// update first.
func (r *TaskRepository) ListByCreator(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := withAssociations(r.db.WithContext(ctx)).
		Where("created_by_id = ?", userID).
		Order("updated_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list by creator: %w", err)
	}
	return tasks, nil
}

// ListByAssignee returns every task the given user is assigned to, newest
// update first.
func (r *TaskRepository) ListByAssignee(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := withAssociations(r.db.WithContext(ctx)).
		Joins("JOIN assignments ON assignments.task_id = tasks.id").
		Where("assignments.user_id = ?", userID).
		Order("tasks.updated_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list by assignee: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, taskID string) (*model.Task, error) {
	var task model.Task
	if err := withAssociations(r.db.WithContext(ctx)).
		Where("id = ?", taskID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateFields applies a partial update. It reports gorm.ErrRecordNotFound
// when the task no longer exists.
func (r *TaskRepository) UpdateFields(ctx context.Context, taskID string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceAssignees swaps the full assignee set of a task.
func (r *TaskRepository) ReplaceAssignees(ctx context.Context, taskID string, userIDs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		for _, userID := range userIDs {
			if err := tx.Create(&model.Assignment{TaskID: taskID, UserID: userID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace assignees: %w", err)
	}
	return nil
}

// AppendComment writes a new log entry, assigning the next per-task
// sequence number inside a transaction.
func (r *TaskRepository) AppendComment(ctx context.Context, comment *model.Comment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxSeq int
		if err := tx.Model(&model.Comment{}).
			Where("task_id = ?", comment.TaskID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}
		comment.Seq = maxSeq + 1
		return tx.Create(comment).Error
	})
	if err != nil {
		return fmt.Errorf("append comment: %w", err)
	}
	return nil
}

// Delete removes a task together with its assignments and comments.
func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", taskID).Delete(&model.Task{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == gorm.ErrRecordNotFound {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
