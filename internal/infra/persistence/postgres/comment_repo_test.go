package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/linkfable/folio-app/pkg/domain/model"
	"github.com/linkfable/folio-app/pkg/domain/repository"
)

// commentRowColumns 与 commentColumns 的列顺序保持一致
var commentRowColumns = []string{
	"id", "created_at", "updated_at", "article_id", "parent_id",
	"author_name", "author_email", "author_email_md5", "author_website",
	"author_ip", "author_user_agent", "content", "content_html", "status",
	"moderated_by", "moderated_at", "moderator_note",
}

func addCommentRow(rows *sqlmock.Rows, id, articleID int64, status string, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id, createdAt, createdAt, articleID, nil,
		"访客", "guest@example.com", "8f14e45fceea167a5a36dedd4bea2543", nil,
		"1.2.3.4", "go-test", "写得很好", "<p>写得很好</p>", status,
		nil, nil, nil,
	)
}

func TestCommentRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("创建成功并回读完整模型", func(t *testing.T) {
		rows := sqlmock.NewRows(commentRowColumns)
		addCommentRow(rows, 12, 7, "pending", now)
		mock.ExpectQuery("INSERT INTO comments").WillReturnRows(rows)

		c, err := repo.Create(context.Background(), &repository.CreateCommentParams{
			ArticleID: 7,
			Name:      "访客",
			Email:     "guest@example.com",
			EmailMD5:  "8f14e45fceea167a5a36dedd4bea2543",
			Content:   "写得很好",
			Status:    model.CommentStatusPending,
		})
		require.NoError(t, err)
		require.Equal(t, uint(12), c.ID)
		require.Equal(t, uint(7), c.ArticleID)
		require.Nil(t, c.ParentID)
		require.Equal(t, model.CommentStatusPending, c.Status)
		require.Nil(t, c.ModeratedAt)
	})

	t.Run("数据库错误原样上抛", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO comments").WillReturnError(sql.ErrConnDone)

		_, err := repo.Create(context.Background(), &repository.CreateCommentParams{ArticleID: 7})
		require.Error(t, err)
		require.ErrorIs(t, err, sql.ErrConnDone)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryFindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)
	now := time.Now()

	t.Run("命中时填充可空字段", func(t *testing.T) {
		rows := sqlmock.NewRows(commentRowColumns).AddRow(
			3, now, now, 1, 2,
			"访客", "guest@example.com", "md5", "https://example.com",
			"1.2.3.4", "go-test", "回复内容", "<p>回复内容</p>", "approved",
			9, now, "没有问题",
		)
		mock.ExpectQuery("SELECT (.+) FROM comments c WHERE c.id").
			WithArgs(uint(3)).
			WillReturnRows(rows)

		c, err := repo.FindByID(context.Background(), 3)
		require.NoError(t, err)
		require.NotNil(t, c)
		require.NotNil(t, c.ParentID)
		require.Equal(t, uint(2), *c.ParentID)
		require.NotNil(t, c.Author.Website)
		require.Equal(t, "https://example.com", *c.Author.Website)
		require.NotNil(t, c.ModeratedBy)
		require.Equal(t, uint(9), *c.ModeratedBy)
		require.NotNil(t, c.ModeratedAt)
		require.NotNil(t, c.ModeratorNote)
	})

	t.Run("未命中返回两个nil", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM comments c WHERE c.id").
			WithArgs(uint(404)).
			WillReturnError(sql.ErrNoRows)

		c, err := repo.FindByID(context.Background(), 404)
		require.NoError(t, err)
		require.Nil(t, c)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryFindAllByArticle(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(commentRowColumns)
	addCommentRow(rows, 1, 7, "approved", base)
	addCommentRow(rows, 2, 7, "pending", base.Add(time.Minute))
	mock.ExpectQuery("FROM comments c WHERE c.article_id (.+) ORDER BY c.created_at ASC").
		WithArgs(uint(7)).
		WillReturnRows(rows)

	comments, err := repo.FindAllByArticle(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, uint(1), comments[0].ID)
	require.Equal(t, model.CommentStatusPending, comments[1].Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryModerate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)
	now := time.Now()

	t.Run("审核写入状态和审核人", func(t *testing.T) {
		rows := sqlmock.NewRows(commentRowColumns).AddRow(
			5, now, now, 7, nil,
			"访客", "guest@example.com", "md5", nil,
			"1.2.3.4", "go-test", "内容", "<p>内容</p>", "approved",
			1, now, nil,
		)
		mock.ExpectQuery("UPDATE comments SET").WillReturnRows(rows)

		c, err := repo.Moderate(context.Background(), 5, &repository.ModerateParams{
			Status:      model.CommentStatusApproved,
			ModeratorID: 1,
			ModeratedAt: now,
		})
		require.NoError(t, err)
		require.Equal(t, model.CommentStatusApproved, c.Status)
		require.NotNil(t, c.ModeratedBy)
		require.Equal(t, uint(1), *c.ModeratedBy)
	})

	t.Run("目标不存在返回两个nil", func(t *testing.T) {
		mock.ExpectQuery("UPDATE comments SET").WillReturnError(sql.ErrNoRows)

		c, err := repo.Moderate(context.Background(), 404, &repository.ModerateParams{
			Status:      model.CommentStatusRejected,
			ModeratorID: 1,
			ModeratedAt: now,
		})
		require.NoError(t, err)
		require.Nil(t, c)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)

	t.Run("叶子评论删除生效", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM comments").
			WithArgs(uint(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		deleted, err := repo.Delete(context.Background(), 9)
		require.NoError(t, err)
		require.True(t, deleted)
	})

	t.Run("存在子回复时删除不生效", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM comments").
			WithArgs(uint(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		deleted, err := repo.Delete(context.Background(), 3)
		require.NoError(t, err)
		require.False(t, deleted)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryHasChildren(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(uint(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.HasChildren(context.Background(), 3)
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryFindWithConditions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("状态与搜索条件按位置绑定", func(t *testing.T) {
		status := model.CommentStatusPending
		search := "博客"

		mock.ExpectQuery("SELECT COUNT").
			WithArgs("pending", "%博客%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		rows := sqlmock.NewRows(commentRowColumns)
		addCommentRow(rows, 1, 7, "pending", base)
		addCommentRow(rows, 2, 8, "pending", base.Add(time.Minute))
		mock.ExpectQuery("ORDER BY c.created_at ASC").
			WithArgs("pending", "%博客%", 10, 0).
			WillReturnRows(rows)

		comments, total, err := repo.FindWithConditions(context.Background(), &repository.AdminCommentListParams{
			Page:      1,
			PageSize:  10,
			SortOrder: "asc",
			Status:    &status,
			Search:    &search,
		})
		require.NoError(t, err)
		require.EqualValues(t, 7, total)
		require.Len(t, comments, 2)
	})

	t.Run("默认按创建时间倒序", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("ORDER BY c.created_at DESC").
			WithArgs(20, 20).
			WillReturnRows(sqlmock.NewRows(commentRowColumns))

		comments, total, err := repo.FindWithConditions(context.Background(), &repository.AdminCommentListParams{
			Page:     2,
			PageSize: 20,
		})
		require.NoError(t, err)
		require.Zero(t, total)
		require.Empty(t, comments)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryStatusCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)

	mock.ExpectQuery("SELECT status, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 4).
			AddRow("approved", 10))

	counts, err := repo.StatusCounts(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 4, counts[model.CommentStatusPending])
	require.EqualValues(t, 10, counts[model.CommentStatusApproved])
	require.Zero(t, counts[model.CommentStatusRejected])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryDailyCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)
	since := time.Date(2026, 7, 24, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("GROUP BY day").
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"day", "count"}).
			AddRow("2026-08-01", 2).
			AddRow("2026-08-03", 5))

	counts, err := repo.DailyCounts(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, "2026-08-01", counts[0].Date)
	require.EqualValues(t, 5, counts[1].Count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryCountApprovedByArticleIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCommentRepository(db)

	t.Run("空ID列表不触发查询", func(t *testing.T) {
		counts, err := repo.CountApprovedByArticleIDs(context.Background(), nil)
		require.NoError(t, err)
		require.NotNil(t, counts)
		require.Empty(t, counts)
	})

	t.Run("按文章归并计数", func(t *testing.T) {
		mock.ExpectQuery("SELECT article_id, COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"article_id", "count"}).
				AddRow(1, 3).
				AddRow(2, 5))

		counts, err := repo.CountApprovedByArticleIDs(context.Background(), []uint{1, 2, 3})
		require.NoError(t, err)
		require.EqualValues(t, 3, counts[uint(1)])
		require.EqualValues(t, 5, counts[uint(2)])
		require.Zero(t, counts[uint(3)])
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
