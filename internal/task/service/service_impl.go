package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/clock"
	"github.com/seb-lewis/startupcrm/internal/task/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var defaultColumns = []string{"TODO", "DOING", "DONE"}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("task.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: p.Clock,
	}
}

func (s *Service) CreateBoard(ctx context.Context, req domain.CreateBoardRequest) (*domain.BoardResponse, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	columns := make([]string, 0, len(req.Columns))
	for _, c := range req.Columns {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			columns = append(columns, trimmed)
		}
	}
	if len(columns) == 0 {
		columns = defaultColumns
	}

	now := s.clock.Now()
	board := &domain.Board{
		ID:        s.genID.Generate().Int64(),
		OrgID:     orgID.Int64(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.CreateBoard(ctx, tx, board); err != nil {
			return err
		}
		for i, columnName := range columns {
			column := &domain.Column{
				ID:        s.genID.Generate().Int64(),
				OrgID:     orgID.Int64(),
				BoardID:   board.ID,
				Name:      columnName,
				Position:  i,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.repo.CreateColumn(ctx, tx, column); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toBoardResponse(board)
	return &resp, nil
}

func (s *Service) GetBoard(ctx context.Context, id string) (*domain.BoardDetail, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	boardID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	board, err := s.repo.FindBoardByID(ctx, s.db, orgID.Int64(), boardID.Int64())
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, domain.ErrBoardNotFound
	}

	columns, err := s.repo.ListColumnsByBoard(ctx, s.db, orgID.Int64(), board.ID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasksByBoard(ctx, s.db, orgID.Int64(), board.ID)
	if err != nil {
		return nil, err
	}

	tasksByColumn := make(map[int64][]domain.TaskResponse, len(columns))
	for i := range tasks {
		tasksByColumn[tasks[i].ColumnID] = append(tasksByColumn[tasks[i].ColumnID], toTaskResponse(&tasks[i]))
	}

	detail := &domain.BoardDetail{
		Board:   toBoardResponse(board),
		Columns: make([]domain.ColumnDetail, 0, len(columns)),
	}
	for i := range columns {
		columnTasks := tasksByColumn[columns[i].ID]
		if columnTasks == nil {
			columnTasks = []domain.TaskResponse{}
		}
		detail.Columns = append(detail.Columns, domain.ColumnDetail{
			Column: toColumnResponse(&columns[i]),
			Tasks:  columnTasks,
		})
	}
	return detail, nil
}

func (s *Service) ListBoards(ctx context.Context) ([]domain.BoardResponse, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	boards, err := s.repo.ListBoards(ctx, s.db, orgID.Int64())
	if err != nil {
		return nil, err
	}

	resp := make([]domain.BoardResponse, 0, len(boards))
	for i := range boards {
		resp = append(resp, toBoardResponse(&boards[i]))
	}
	return resp, nil
}

func (s *Service) CreateColumn(ctx context.Context, req domain.CreateColumnRequest) (*domain.ColumnResponse, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	boardID, err := snowflake.ParseString(strings.TrimSpace(req.BoardID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	board, err := s.repo.FindBoardByID(ctx, s.db, orgID.Int64(), boardID.Int64())
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, domain.ErrBoardNotFound
	}

	count, err := s.repo.CountColumns(ctx, s.db, orgID.Int64(), board.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	column := &domain.Column{
		ID:        s.genID.Generate().Int64(),
		OrgID:     orgID.Int64(),
		BoardID:   board.ID,
		Name:      name,
		Position:  int(count),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateColumn(ctx, s.db, column); err != nil {
		return nil, err
	}

	resp := toColumnResponse(column)
	return &resp, nil
}

func (s *Service) CreateTask(ctx context.Context, req domain.CreateTaskRequest) (*domain.TaskResponse, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	boardID, err := snowflake.ParseString(strings.TrimSpace(req.BoardID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	columnID, err := snowflake.ParseString(strings.TrimSpace(req.ColumnID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}

	column, err := s.repo.FindColumnByID(ctx, s.db, orgID.Int64(), columnID.Int64())
	if err != nil {
		return nil, err
	}
	if column == nil || column.BoardID != boardID.Int64() {
		return nil, domain.ErrColumnNotFound
	}

	assigneeID, err := parseOptionalID(req.AssigneeUserID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	// New tasks append to the end of the column.
	count, err := s.repo.CountTasksInColumn(ctx, s.db, orgID.Int64(), column.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	task := &domain.Task{
		ID:             s.genID.Generate().Int64(),
		OrgID:          orgID.Int64(),
		BoardID:        column.BoardID,
		ColumnID:       column.ID,
		Title:          title,
		Description:    trimPtr(req.Description),
		AssigneeUserID: assigneeID,
		DueDate:        req.DueDate,
		Position:       int(count),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Metadata != nil {
		task.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := s.repo.CreateTask(ctx, s.db, task); err != nil {
		return nil, err
	}

	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *Service) UpdateTask(ctx context.Context, req domain.UpdateTaskRequest) (*domain.TaskResponse, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	taskID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	task, err := s.repo.FindTaskByID(ctx, s.db, orgID.Int64(), taskID.Int64())
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = trimPtr(req.Description)
	}
	if req.AssigneeUserID != nil {
		assigneeID, err := parseOptionalID(req.AssigneeUserID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		task.AssigneeUserID = assigneeID
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Metadata != nil {
		task.Metadata = datatypes.JSONMap(req.Metadata)
	}

	task.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateTask(ctx, s.db, task); err != nil {
		return nil, err
	}

	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	taskID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	task, err := s.repo.FindTaskByID(ctx, s.db, orgID.Int64(), taskID.Int64())
	if err != nil {
		return err
	}
	if task == nil {
		return domain.ErrTaskNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteTask(ctx, tx, orgID.Int64(), task.ID); err != nil {
			return err
		}
		return s.repo.ShiftPositions(ctx, tx, orgID.Int64(), task.ColumnID, task.Position+1, -1)
	})
}

func (s *Service) MoveTask(ctx context.Context, req domain.MoveTaskRequest) (*domain.TaskResponse, error) {
	orgID, ok := authctx.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	taskID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	columnID, err := snowflake.ParseString(strings.TrimSpace(req.ColumnID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	if req.Position < 0 {
		return nil, domain.ErrInvalidPosition
	}

	task, err := s.repo.FindTaskByID(ctx, s.db, orgID.Int64(), taskID.Int64())
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}

	target, err := s.repo.FindColumnByID(ctx, s.db, orgID.Int64(), columnID.Int64())
	if err != nil {
		return nil, err
	}
	if target == nil || target.BoardID != task.BoardID {
		return nil, domain.ErrColumnNotFound
	}

	sourceColumnID := task.ColumnID
	sourcePosition := task.Position
	now := s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.repo.CountTasksInColumn(ctx, tx, orgID.Int64(), target.ID)
		if err != nil {
			return err
		}
		maxPosition := int(count)
		if sourceColumnID == target.ID {
			maxPosition--
		}
		position := req.Position
		if position > maxPosition {
			position = maxPosition
		}
		if position < 0 {
			position = 0
		}

		// Close the gap in the source column, then open a slot at the
		// target position.
		if err := s.repo.ShiftPositions(ctx, tx, orgID.Int64(), sourceColumnID, sourcePosition+1, -1); err != nil {
			return err
		}
		if err := s.repo.ShiftPositions(ctx, tx, orgID.Int64(), target.ID, position, 1); err != nil {
			return err
		}

		task.ColumnID = target.ID
		task.Position = position
		task.UpdatedAt = now
		return s.repo.UpdateTask(ctx, tx, task)
	})
	if err != nil {
		return nil, err
	}

	resp := toTaskResponse(task)
	return &resp, nil
}

func toBoardResponse(b *domain.Board) domain.BoardResponse {
	return domain.BoardResponse{
		ID:             snowflake.ID(b.ID).String(),
		OrganizationID: snowflake.ID(b.OrgID).String(),
		Name:           b.Name,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func toColumnResponse(c *domain.Column) domain.ColumnResponse {
	return domain.ColumnResponse{
		ID:       snowflake.ID(c.ID).String(),
		BoardID:  snowflake.ID(c.BoardID).String(),
		Name:     c.Name,
		Position: c.Position,
	}
}

func toTaskResponse(t *domain.Task) domain.TaskResponse {
	resp := domain.TaskResponse{
		ID:          snowflake.ID(t.ID).String(),
		BoardID:     snowflake.ID(t.BoardID).String(),
		ColumnID:    snowflake.ID(t.ColumnID).String(),
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Position:    t.Position,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssigneeUserID != nil {
		id := snowflake.ID(*t.AssigneeUserID).String()
		resp.AssigneeUserID = &id
	}
	if len(t.Metadata) > 0 {
		resp.Metadata = map[string]any(t.Metadata)
	}
	return resp
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseOptionalID(value *string) (*int64, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(strings.TrimSpace(*value))
	if err != nil {
		return nil, err
	}
	parsed := id.Int64()
	return &parsed, nil
}
