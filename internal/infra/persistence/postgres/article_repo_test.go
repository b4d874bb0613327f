package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/linkfable/folio-app/pkg/domain/model"
)

// articleRowColumns 与 articleColumns 的列顺序保持一致
var articleRowColumns = []string{
	"id", "created_at", "updated_at", "title", "summary", "content_md", "content_html",
	"cover_url", "categories", "status", "view_count", "published_at", "scheduled_at",
}

func addArticleRow(rows *sqlmock.Rows, id int64, title, status string, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id, createdAt, createdAt, title, "摘要", "# 正文", "<h1>正文</h1>",
		"", []byte("{go,web}"), status, 0, nil, nil,
	)
}

func TestArticleRepositoryFindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewArticleRepository(db)
	now := time.Now()

	t.Run("命中时解析分类数组", func(t *testing.T) {
		rows := sqlmock.NewRows(articleRowColumns)
		addArticleRow(rows, 7, "第一篇", "PUBLISHED", now)
		mock.ExpectQuery("FROM articles WHERE id").
			WithArgs(uint(7)).
			WillReturnRows(rows)

		a, err := repo.FindByID(context.Background(), 7)
		require.NoError(t, err)
		require.NotNil(t, a)
		require.Equal(t, "第一篇", a.Title)
		require.Equal(t, []string{"go", "web"}, a.Categories)
		require.Nil(t, a.PublishedAt)
	})

	t.Run("未命中返回两个nil", func(t *testing.T) {
		mock.ExpectQuery("FROM articles WHERE id").
			WithArgs(uint(404)).
			WillReturnError(sql.ErrNoRows)

		a, err := repo.FindByID(context.Background(), 404)
		require.NoError(t, err)
		require.Nil(t, a)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepositoryPublish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewArticleRepository(db)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	publishCols := append(append([]string{}, articleRowColumns...), "first_publish")

	t.Run("首次发布时标记为真", func(t *testing.T) {
		rows := sqlmock.NewRows(publishCols).AddRow(
			7, now, now, "第一篇", "摘要", "# 正文", "<h1>正文</h1>",
			"", []byte("{go}"), "PUBLISHED", 0, now, nil,
			true,
		)
		mock.ExpectQuery("WITH old AS").
			WithArgs(uint(7), "PUBLISHED", now).
			WillReturnRows(rows)

		a, first, err := repo.Publish(context.Background(), 7, now)
		require.NoError(t, err)
		require.NotNil(t, a)
		require.True(t, first)
		require.Equal(t, model.ArticleStatusPublished, a.Status)
		require.NotNil(t, a.PublishedAt)
		require.Nil(t, a.ScheduledAt)
	})

	t.Run("再次发布保留原时间且标记为假", func(t *testing.T) {
		origPublished := now.Add(-48 * time.Hour)
		rows := sqlmock.NewRows(publishCols).AddRow(
			7, now, now, "第一篇", "摘要", "# 正文", "<h1>正文</h1>",
			"", []byte("{go}"), "PUBLISHED", 3, origPublished, nil,
			false,
		)
		mock.ExpectQuery("WITH old AS").
			WithArgs(uint(7), "PUBLISHED", now).
			WillReturnRows(rows)

		a, first, err := repo.Publish(context.Background(), 7, now)
		require.NoError(t, err)
		require.False(t, first)
		require.NotNil(t, a.PublishedAt)
		require.Equal(t, origPublished, *a.PublishedAt)
	})

	t.Run("目标不存在返回nil和假", func(t *testing.T) {
		mock.ExpectQuery("WITH old AS").
			WithArgs(uint(404), "PUBLISHED", now).
			WillReturnError(sql.ErrNoRows)

		a, first, err := repo.Publish(context.Background(), 404, now)
		require.NoError(t, err)
		require.Nil(t, a)
		require.False(t, first)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepositoryList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewArticleRepository(db)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("PUBLISHED", "go").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	rows := sqlmock.NewRows(articleRowColumns)
	addArticleRow(rows, 2, "第二篇", "PUBLISHED", base.Add(time.Hour))
	addArticleRow(rows, 1, "第一篇", "PUBLISHED", base)
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs("PUBLISHED", "go", 10, 0).
		WillReturnRows(rows)

	articles, total, err := repo.List(context.Background(), &model.ListArticlesOptions{
		Page:     1,
		PageSize: 10,
		Status:   model.ArticleStatusPublished,
		Category: "go",
	})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, articles, 2)
	require.Equal(t, "第二篇", articles[0].Title)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepositoryUpdateViewCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewArticleRepository(db)

	t.Run("空增量不触发任何写入", func(t *testing.T) {
		require.NoError(t, repo.UpdateViewCounts(context.Background(), nil))
	})

	t.Run("整批在一个事务里提交", func(t *testing.T) {
		mock.ExpectBegin()
		prep := mock.ExpectPrepare("UPDATE articles SET view_count")
		prep.ExpectExec().
			WithArgs(5, uint(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// 零增量的条目会被跳过，不会出现在事务里
		require.NoError(t, repo.UpdateViewCounts(context.Background(), map[uint]int{3: 5, 9: 0}))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepositoryFindDueScheduled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewArticleRepository(db)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(articleRowColumns).AddRow(
		4, now, now, "定时文章", "摘要", "# 正文", "<h1>正文</h1>",
		"", []byte("{}"), "SCHEDULED", 0, nil, now.Add(-time.Minute),
	)
	mock.ExpectQuery("scheduled_at IS NOT NULL AND scheduled_at").
		WithArgs("SCHEDULED", now).
		WillReturnRows(rows)

	articles, err := repo.FindDueScheduled(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.Equal(t, model.ArticleStatusScheduled, articles[0].Status)
	require.NotNil(t, articles[0].ScheduledAt)

	require.NoError(t, mock.ExpectationsWereMet())
}
