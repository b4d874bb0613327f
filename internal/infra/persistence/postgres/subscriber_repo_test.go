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

// subscriberRowColumns 与 subscriberColumns 的列顺序保持一致
var subscriberRowColumns = []string{
	"id", "created_at", "updated_at", "email", "first_name", "source", "status",
	"confirmation_token_hash", "confirmation_expires_at", "unsubscribe_token",
	"preferences", "emails_sent", "emails_opened", "emails_clicked",
	"confirmed_at", "unsubscribed_at", "last_email_at",
}

func addSubscriberRow(rows *sqlmock.Rows, id int64, email, status string, createdAt time.Time) *sqlmock.Rows {
	return rows.AddRow(
		id, createdAt, createdAt, email, "读者", "api", status,
		nil, nil, nil,
		[]byte(`{"frequency":"every_post","categories":[]}`), 0, 0, 0,
		nil, nil, nil,
	)
}

func TestSubscriberRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriberRepository(db)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO subscribers").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(21, now, now))

	hash := "token-hash"
	expires := now.Add(24 * time.Hour)
	sub := &model.Subscriber{
		Email:                 "reader@example.com",
		FirstName:             "读者",
		Source:                "api",
		Status:                model.SubscriberStatusPending,
		ConfirmationTokenHash: &hash,
		ConfirmationExpiresAt: &expires,
		Preferences:           model.SubscriberPreferences{Frequency: model.FrequencyEveryPost},
	}
	require.NoError(t, repo.Create(context.Background(), sub))
	require.Equal(t, uint(21), sub.ID)
	require.Equal(t, now, sub.CreatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepositoryUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriberRepository(db)
	updated := time.Now()

	mock.ExpectQuery("UPDATE subscribers SET").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))

	sub := &model.Subscriber{ID: 3, Email: "reader@example.com", Status: model.SubscriberStatusActive}
	require.NoError(t, repo.Update(context.Background(), sub))
	require.Equal(t, updated, sub.UpdatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepositoryFindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriberRepository(db)
	now := time.Now()

	t.Run("命中时解析偏好JSON", func(t *testing.T) {
		rows := sqlmock.NewRows(subscriberRowColumns).AddRow(
			5, now, now, "reader@example.com", "读者", "api", "active",
			nil, nil, "unsub-token",
			[]byte(`{"frequency":"weekly","categories":["go","web"]}`), 8, 2, 1,
			now, nil, now,
		)
		mock.ExpectQuery("FROM subscribers WHERE email").
			WithArgs("reader@example.com").
			WillReturnRows(rows)

		sub, err := repo.FindByEmail(context.Background(), "reader@example.com")
		require.NoError(t, err)
		require.NotNil(t, sub)
		require.Equal(t, model.SubscriberStatusActive, sub.Status)
		require.Equal(t, model.FrequencyWeekly, sub.Preferences.Frequency)
		require.Equal(t, []string{"go", "web"}, sub.Preferences.Categories)
		require.NotNil(t, sub.UnsubscribeToken)
		require.Equal(t, "unsub-token", *sub.UnsubscribeToken)
		require.NotNil(t, sub.ConfirmedAt)
		require.Nil(t, sub.UnsubscribedAt)
		require.Equal(t, 8, sub.EmailsSent)
	})

	t.Run("未命中返回两个nil", func(t *testing.T) {
		mock.ExpectQuery("FROM subscribers WHERE email").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		sub, err := repo.FindByEmail(context.Background(), "nobody@example.com")
		require.NoError(t, err)
		require.Nil(t, sub)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepositoryFindByConfirmationTokenHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriberRepository(db)
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("只命中未过期的令牌", func(t *testing.T) {
		rows := sqlmock.NewRows(subscriberRowColumns).AddRow(
			5, now, now, "reader@example.com", "读者", "api", "pending",
			"salted-hash", now.Add(time.Hour), nil,
			[]byte(`{"frequency":"every_post","categories":[]}`), 0, 0, 0,
			nil, nil, nil,
		)
		mock.ExpectQuery("confirmation_token_hash = (.+) AND confirmation_expires_at >").
			WithArgs("salted-hash", now).
			WillReturnRows(rows)

		sub, err := repo.FindByConfirmationTokenHash(context.Background(), "salted-hash", now)
		require.NoError(t, err)
		require.NotNil(t, sub)
		require.Equal(t, model.SubscriberStatusPending, sub.Status)
		require.NotNil(t, sub.ConfirmationTokenHash)
	})

	t.Run("过期或不存在按未命中处理", func(t *testing.T) {
		mock.ExpectQuery("confirmation_token_hash").
			WithArgs("stale-hash", now).
			WillReturnError(sql.ErrNoRows)

		sub, err := repo.FindByConfirmationTokenHash(context.Background(), "stale-hash", now)
		require.NoError(t, err)
		require.Nil(t, sub)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepositoryFindByUnsubscribeToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriberRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(subscriberRowColumns)
	addSubscriberRow(rows, 9, "reader@example.com", "unsubscribed", now)
	mock.ExpectQuery("FROM subscribers WHERE unsubscribe_token").
		WithArgs("tok").
		WillReturnRows(rows)

	sub, err := repo.FindByUnsubscribeToken(context.Background(), "tok")
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, model.SubscriberStatusUnsubscribed, sub.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepositoryFindActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriberRepository(db)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(subscriberRowColumns)
	addSubscriberRow(rows, 1, "a@example.com", "active", base)
	addSubscriberRow(rows, 2, "b@example.com", "active", base.Add(time.Minute))
	mock.ExpectQuery("FROM subscribers WHERE status (.+) ORDER BY created_at ASC").
		WithArgs("active").
		WillReturnRows(rows)

	subs, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, "a@example.com", subs[0].Email)
	require.True(t, subs[1].IsActive())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepositoryIncrementEmailsSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriberRepository(db)
	at := time.Now()

	mock.ExpectExec("emails_sent = emails_sent").
		WithArgs(uint(7), at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementEmailsSent(context.Background(), 7, at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepositoryList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriberRepository(db)
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	status := model.SubscriberStatusActive
	search := "example"

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("active", "%example%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	rows := sqlmock.NewRows(subscriberRowColumns)
	addSubscriberRow(rows, 2, "b@example.com", "active", base.Add(time.Minute))
	addSubscriberRow(rows, 1, "a@example.com", "active", base)
	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs("active", "%example%", 10, 10).
		WillReturnRows(rows)

	subs, total, err := repo.List(context.Background(), &repository.SubscriberListParams{
		Page:     2,
		PageSize: 10,
		Status:   &status,
		Search:   &search,
	})
	require.NoError(t, err)
	require.EqualValues(t, 12, total)
	require.Len(t, subs, 2)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepositoryStatusCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriberRepository(db)

	mock.ExpectQuery("SELECT status, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("active", 30).
			AddRow("pending", 4).
			AddRow("unsubscribed", 2))

	counts, err := repo.StatusCounts(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 30, counts[model.SubscriberStatusActive])
	require.EqualValues(t, 4, counts[model.SubscriberStatusPending])
	require.Zero(t, counts[model.SubscriberStatusBounced])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepositorySumEmailsSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriberRepository(db)

	mock.ExpectQuery("COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(256))

	total, err := repo.SumEmailsSent(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 256, total)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberRepositoryPurgeExpiredPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSubscriberRepository(db)
	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec("DELETE FROM subscribers").
		WithArgs("pending", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := repo.PurgeExpiredPending(context.Background(), cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 3, purged)

	require.NoError(t, mock.ExpectationsWereMet())
}
