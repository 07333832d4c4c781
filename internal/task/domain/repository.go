package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateBoard(ctx context.Context, db *gorm.DB, board *Board) error
	FindBoardByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Board, error)
	ListBoards(ctx context.Context, db *gorm.DB, orgID int64) ([]Board, error)

	CreateColumn(ctx context.Context, db *gorm.DB, column *Column) error
	FindColumnByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Column, error)
	ListColumnsByBoard(ctx context.Context, db *gorm.DB, orgID, boardID int64) ([]Column, error)
	CountColumns(ctx context.Context, db *gorm.DB, orgID, boardID int64) (int64, error)

	CreateTask(ctx context.Context, db *gorm.DB, task *Task) error
	FindTaskByID(ctx context.Context, db *gorm.DB, orgID, id int64) (*Task, error)
	ListTasksByBoard(ctx context.Context, db *gorm.DB, orgID, boardID int64) ([]Task, error)
	CountTasksInColumn(ctx context.Context, db *gorm.DB, orgID, columnID int64) (int64, error)
	UpdateTask(ctx context.Context, db *gorm.DB, task *Task) error
	DeleteTask(ctx context.Context, db *gorm.DB, orgID, id int64) error

	// ShiftPositions opens a slot at position in the column (delta +1)
	// or compacts after a removal (delta -1, positions above position).
	ShiftPositions(ctx context.Context, db *gorm.DB, orgID, columnID int64, fromPosition int, delta int) error
}
