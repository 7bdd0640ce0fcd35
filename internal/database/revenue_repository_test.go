package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/revenue-backend/internal/models"
	"github.com/smarttransit/revenue-backend/internal/revenue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*PostgresDB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func TestServiceRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceRepository(db)
	departure := time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM services WHERE id = \$1`).
			WithArgs("svc-7601").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "service_number", "departure_date", "is_active", "created_at", "updated_at",
			}).AddRow("svc-7601", "7601", departure, true, now, now))

		service, err := repo.GetByID("svc-7601")
		require.NoError(t, err)
		assert.Equal(t, "7601", service.ServiceNumber)
		assert.True(t, service.DepartureDate.Equal(departure))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM services`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		service, err := repo.GetByID("missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, service)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM services`).
			WithArgs("svc-7601").
			WillReturnError(fmt.Errorf("connection reset"))

		_, err := repo.GetByID("svc-7601")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "failed to get service")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestServiceRepository_ListActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM services WHERE is_active = true`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "service_number", "departure_date", "is_active", "created_at", "updated_at",
		}).
			AddRow("svc-1", "7601", now, true, now, now).
			AddRow("svc-2", "7603", now, true, now, now))

	services, err := repo.ListActive(50)
	require.NoError(t, err)
	assert.Len(t, services, 2)
	assert.Equal(t, "7603", services[1].ServiceNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRepository_GetStops(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewServiceRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM service_stops WHERE service_id = \$1 ORDER BY stop_order`).
		WithArgs("svc-7601").
		WillReturnRows(sqlmock.NewRows([]string{"id", "service_id", "stop_code", "stop_name", "stop_order"}).
			AddRow("s1", "svc-7601", "pnz", "Penzance", 1).
			AddRow("s2", "svc-7601", "ply", "Plymouth", 2).
			AddRow("s3", "svc-7601", "pad", "London Paddington", 3))

	stops, err := repo.GetStops("svc-7601")
	require.NoError(t, err)
	require.Len(t, stops, 3)
	assert.Equal(t, "pnz", stops[0].StopCode)
	assert.Equal(t, "London Paddington", stops[2].StopName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetManifest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE service_id = \$1`).
		WithArgs("svc-7601").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "service_id", "origin_stop_code", "destination_stop_code", "sale_day_x", "price", "created_at",
		}).
			AddRow("b1", "svc-7601", "ply", "pad", -30, 20.0, now).
			AddRow("b2", "svc-7601", "pnz", "exd", -3, 35.5, now))

	bookings, err := repo.GetManifest("svc-7601")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, -30, bookings[0].SaleDayX)
	assert.Equal(t, 35.5, bookings[1].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		booking := &models.Booking{
			ServiceID:           "svc-7601",
			OriginStopCode:      "ply",
			DestinationStopCode: "pad",
			SaleDayX:            -5,
			Price:               50,
		}

		mock.ExpectQuery(`INSERT INTO bookings`).
			WithArgs(sqlmock.AnyArg(), "svc-7601", "ply", "pad", -5, 50.0).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		err := repo.Create(booking)
		require.NoError(t, err)
		assert.NotEmpty(t, booking.ID)
		assert.Equal(t, now, booking.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(fmt.Errorf("foreign key violation"))

		err := repo.Create(&models.Booking{ServiceID: "gone"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create booking")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInventoryRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewInventoryRepository(db)

	t.Run("Pricing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM od_pricing`).
			WithArgs("svc-7601", "ply", "pad").
			WillReturnRows(sqlmock.NewRows([]string{
				"service_id", "origin_stop_code", "destination_stop_code", "price", "seats",
			}).
				AddRow("svc-7601", "ply", "pad", 20.0, 5).
				AddRow("svc-7601", "ply", "pad", 50.0, 6))

		tiers, err := repo.GetPricing("svc-7601", "ply", "pad")
		require.NoError(t, err)
		assert.Equal(t, revenue.Pricing{20: 5, 50: 6}, models.PricingFromTiers(tiers))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Demand", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM od_demand`).
			WithArgs("svc-7601", "ply", "pad").
			WillReturnRows(sqlmock.NewRows([]string{
				"service_id", "origin_stop_code", "destination_stop_code", "day_x", "price", "demand",
			}).
				AddRow("svc-7601", "ply", "pad", -2, 20.0, 3).
				AddRow("svc-7601", "ply", "pad", -2, 50.0, 1).
				AddRow("svc-7601", "ply", "pad", -1, 20.0, 2))

		entries, err := repo.GetDemand("svc-7601", "ply", "pad")
		require.NoError(t, err)
		demand := models.DemandFromEntries(entries)
		assert.Equal(t, []int{-2, -1}, demand.Days())
		assert.Equal(t, 1, demand[-2][50])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM od_demand`).
			WillReturnError(fmt.Errorf("timeout"))

		_, err := repo.GetDemand("svc-7601", "ply", "pad")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get demand matrix")
	})
}

func TestForecastRunRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewForecastRunRepository(db)
	now := time.Now()

	t.Run("Create", func(t *testing.T) {
		run := &models.ForecastRun{
			ServiceID:           "svc-7601",
			OriginStopCode:      "ply",
			DestinationStopCode: "pad",
			Points:              models.PointList{{DayX: -1, Bookings: 5, Revenue: 150}},
			SeatsSold:           1,
			Revenue:             20,
		}

		mock.ExpectQuery(`INSERT INTO forecast_runs`).
			WithArgs(sqlmock.AnyArg(), "svc-7601", "ply", "pad", sqlmock.AnyArg(), 1, 20.0).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		require.NoError(t, repo.Create(run))
		assert.NotEmpty(t, run.ID)
		assert.Equal(t, now, run.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListByOD", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM forecast_runs`).
			WithArgs("svc-7601", "ply", "pad", 10).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "service_id", "origin_stop_code", "destination_stop_code", "points", "seats_sold", "revenue", "created_at",
			}).AddRow("run-1", "svc-7601", "ply", "pad", []byte(`[{"day_x":0,"bookings":21,"revenue":770}]`), 13, 530.0, now))

		runs, err := repo.ListByOD("svc-7601", "ply", "pad", 10)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		require.Len(t, runs[0].Points, 1)
		assert.Equal(t, revenue.DataPoint{DayX: 0, Bookings: 21, Revenue: 770}, runs[0].Points[0])
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
