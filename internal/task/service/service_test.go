package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/seb-lewis/startupcrm/internal/auth/domain"
	"github.com/seb-lewis/startupcrm/internal/authctx"
	"github.com/seb-lewis/startupcrm/internal/clock"
	"github.com/seb-lewis/startupcrm/internal/task/domain"
	"github.com/seb-lewis/startupcrm/internal/task/repository"
	"github.com/seb-lewis/startupcrm/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTaskTest(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Board{}, &domain.Column{}, &domain.Task{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})

	return svc, node
}

func taskOrgContext(orgID snowflake.ID) context.Context {
	identity := authctx.Authenticated(
		&authdomain.User{ID: snowflake.ID(200), Email: "alice@example.com", IsActive: true},
		&authdomain.Session{ID: snowflake.ID(300), UserID: snowflake.ID(200)},
	).WithOrg(&authctx.OrgRef{ID: orgID, Name: "Acme", Slug: "acme"})
	return authctx.WithIdentity(context.Background(), identity)
}

func taskTitles(detail *domain.BoardDetail, columnID string) []string {
	for _, col := range detail.Columns {
		if col.Column.ID == columnID {
			titles := make([]string, 0, len(col.Tasks))
			for _, task := range col.Tasks {
				titles = append(titles, task.Title)
			}
			return titles
		}
	}
	return nil
}

func TestCreateBoardSeedsDefaultColumns(t *testing.T) {
	svc, node := setupTaskTest(t)
	ctx := taskOrgContext(node.Generate())

	board, err := svc.CreateBoard(ctx, domain.CreateBoardRequest{Name: "Sprint"})
	require.NoError(t, err)

	detail, err := svc.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, detail.Columns, 3)
	assert.Equal(t, "TODO", detail.Columns[0].Column.Name)
	assert.Equal(t, "DOING", detail.Columns[1].Column.Name)
	assert.Equal(t, "DONE", detail.Columns[2].Column.Name)
	for i, col := range detail.Columns {
		assert.Equal(t, i, col.Column.Position)
		assert.NotNil(t, col.Tasks)
		assert.Empty(t, col.Tasks)
	}
}

func TestTasksAppendToEndOfColumn(t *testing.T) {
	svc, node := setupTaskTest(t)
	ctx := taskOrgContext(node.Generate())

	board, err := svc.CreateBoard(ctx, domain.CreateBoardRequest{Name: "Sprint"})
	require.NoError(t, err)
	detail, err := svc.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	todo := detail.Columns[0].Column

	for i, title := range []string{"first", "second", "third"} {
		task, err := svc.CreateTask(ctx, domain.CreateTaskRequest{
			BoardID:  board.ID,
			ColumnID: todo.ID,
			Title:    title,
		})
		require.NoError(t, err)
		assert.Equal(t, i, task.Position)
	}
}

func TestMoveTaskAcrossColumnsKeepsPositionsDense(t *testing.T) {
	svc, node := setupTaskTest(t)
	ctx := taskOrgContext(node.Generate())

	board, err := svc.CreateBoard(ctx, domain.CreateBoardRequest{Name: "Sprint"})
	require.NoError(t, err)
	detail, err := svc.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	todo := detail.Columns[0].Column
	doing := detail.Columns[1].Column

	var moved *domain.TaskResponse
	for _, title := range []string{"a", "b", "c"} {
		task, err := svc.CreateTask(ctx, domain.CreateTaskRequest{
			BoardID:  board.ID,
			ColumnID: todo.ID,
			Title:    title,
		})
		require.NoError(t, err)
		if title == "b" {
			moved = task
		}
	}
	existing, err := svc.CreateTask(ctx, domain.CreateTaskRequest{
		BoardID:  board.ID,
		ColumnID: doing.ID,
		Title:    "x",
	})
	require.NoError(t, err)
	require.Equal(t, 0, existing.Position)

	result, err := svc.MoveTask(ctx, domain.MoveTaskRequest{
		ID:       moved.ID,
		ColumnID: doing.ID,
		Position: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, doing.ID, result.ColumnID)
	assert.Equal(t, 0, result.Position)

	detail, err = svc.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, taskTitles(detail, todo.ID))
	assert.Equal(t, []string{"b", "x"}, taskTitles(detail, doing.ID))
}

func TestMoveTaskClampsPositionToColumnEnd(t *testing.T) {
	svc, node := setupTaskTest(t)
	ctx := taskOrgContext(node.Generate())

	board, err := svc.CreateBoard(ctx, domain.CreateBoardRequest{Name: "Sprint"})
	require.NoError(t, err)
	detail, err := svc.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	todo := detail.Columns[0].Column
	doing := detail.Columns[1].Column

	task, err := svc.CreateTask(ctx, domain.CreateTaskRequest{
		BoardID:  board.ID,
		ColumnID: todo.ID,
		Title:    "solo",
	})
	require.NoError(t, err)

	result, err := svc.MoveTask(ctx, domain.MoveTaskRequest{
		ID:       task.ID,
		ColumnID: doing.ID,
		Position: 99,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Position)
}

func TestMoveTaskRejectsColumnFromAnotherBoard(t *testing.T) {
	svc, node := setupTaskTest(t)
	ctx := taskOrgContext(node.Generate())

	first, err := svc.CreateBoard(ctx, domain.CreateBoardRequest{Name: "Sprint"})
	require.NoError(t, err)
	second, err := svc.CreateBoard(ctx, domain.CreateBoardRequest{Name: "Backlog"})
	require.NoError(t, err)

	firstDetail, err := svc.GetBoard(ctx, first.ID)
	require.NoError(t, err)
	secondDetail, err := svc.GetBoard(ctx, second.ID)
	require.NoError(t, err)

	task, err := svc.CreateTask(ctx, domain.CreateTaskRequest{
		BoardID:  first.ID,
		ColumnID: firstDetail.Columns[0].Column.ID,
		Title:    "stray",
	})
	require.NoError(t, err)

	_, err = svc.MoveTask(ctx, domain.MoveTaskRequest{
		ID:       task.ID,
		ColumnID: secondDetail.Columns[0].Column.ID,
		Position: 0,
	})
	assert.ErrorIs(t, err, domain.ErrColumnNotFound)
}

func TestDeleteTaskCompactsColumn(t *testing.T) {
	svc, node := setupTaskTest(t)
	ctx := taskOrgContext(node.Generate())

	board, err := svc.CreateBoard(ctx, domain.CreateBoardRequest{Name: "Sprint"})
	require.NoError(t, err)
	detail, err := svc.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	todo := detail.Columns[0].Column

	var middle *domain.TaskResponse
	for _, title := range []string{"a", "b", "c"} {
		task, err := svc.CreateTask(ctx, domain.CreateTaskRequest{
			BoardID:  board.ID,
			ColumnID: todo.ID,
			Title:    title,
		})
		require.NoError(t, err)
		if title == "b" {
			middle = task
		}
	}

	require.NoError(t, svc.DeleteTask(ctx, middle.ID))

	detail, err = svc.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	for _, col := range detail.Columns {
		if col.Column.ID != todo.ID {
			continue
		}
		require.Len(t, col.Tasks, 2)
		assert.Equal(t, 0, col.Tasks[0].Position)
		assert.Equal(t, 1, col.Tasks[1].Position)
	}
}
