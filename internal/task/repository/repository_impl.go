package repository

import (
	"context"

	"github.com/seb-lewis/startupcrm/internal/task/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateBoard(ctx context.Context, db *gorm.DB, board *domain.Board) error {
	return db.WithContext(ctx).Create(board).Error
}

func (r *repo) FindBoardByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Board, error) {
	var b domain.Board
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, created_at, updated_at
		 FROM boards WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) ListBoards(ctx context.Context, db *gorm.DB, orgID int64) ([]domain.Board, error) {
	var items []domain.Board
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, created_at, updated_at
		 FROM boards WHERE org_id = ? ORDER BY created_at ASC`,
		orgID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CreateColumn(ctx context.Context, db *gorm.DB, column *domain.Column) error {
	return db.WithContext(ctx).Create(column).Error
}

func (r *repo) FindColumnByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Column, error) {
	var c domain.Column
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, board_id, name, position, created_at, updated_at
		 FROM board_columns WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) ListColumnsByBoard(ctx context.Context, db *gorm.DB, orgID, boardID int64) ([]domain.Column, error) {
	var items []domain.Column
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, board_id, name, position, created_at, updated_at
		 FROM board_columns WHERE org_id = ? AND board_id = ? ORDER BY position ASC`,
		orgID,
		boardID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountColumns(ctx context.Context, db *gorm.DB, orgID, boardID int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Column{}).
		Where("org_id = ? AND board_id = ?", orgID, boardID).
		Count(&count).Error
	return count, err
}

func (r *repo) CreateTask(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Create(task).Error
}

func (r *repo) FindTaskByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*domain.Task, error) {
	var t domain.Task
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, board_id, column_id, title, description, assignee_user_id, due_date, position, metadata, created_at, updated_at
		 FROM tasks WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&t).Error
	if err != nil {
		return nil, err
	}
	if t.ID == 0 {
		return nil, nil
	}
	return &t, nil
}

func (r *repo) ListTasksByBoard(ctx context.Context, db *gorm.DB, orgID, boardID int64) ([]domain.Task, error) {
	var items []domain.Task
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, board_id, column_id, title, description, assignee_user_id, due_date, position, metadata, created_at, updated_at
		 FROM tasks WHERE org_id = ? AND board_id = ? ORDER BY column_id ASC, position ASC`,
		orgID,
		boardID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountTasksInColumn(ctx context.Context, db *gorm.DB, orgID, columnID int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("org_id = ? AND column_id = ?", orgID, columnID).
		Count(&count).Error
	return count, err
}

func (r *repo) UpdateTask(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	if task == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE tasks
		 SET column_id = ?, title = ?, description = ?, assignee_user_id = ?, due_date = ?, position = ?, metadata = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		task.ColumnID,
		task.Title,
		task.Description,
		task.AssigneeUserID,
		task.DueDate,
		task.Position,
		task.Metadata,
		task.UpdatedAt,
		task.OrgID,
		task.ID,
	).Error
}

func (r *repo) DeleteTask(ctx context.Context, db *gorm.DB, orgID, id int64) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM tasks WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Error
}

func (r *repo) ShiftPositions(ctx context.Context, db *gorm.DB, orgID, columnID int64, fromPosition int, delta int) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tasks SET position = position + ?
		 WHERE org_id = ? AND column_id = ? AND position >= ?`,
		delta,
		orgID,
		columnID,
		fromPosition,
	).Error
}
