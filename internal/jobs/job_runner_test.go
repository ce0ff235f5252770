package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"toolrent-backend/internal/config"
	"toolrent-backend/internal/domain"
	"toolrent-backend/internal/metrics"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ActiveLoans(ctx context.Context, from, to time.Time) ([]domain.Loan, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.Loan), args.Error(1)
}

func (m *MockReportService) OverdueCustomers(ctx context.Context) ([]domain.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockReportService) TopTools(ctx context.Context, from, to time.Time) ([]domain.ToolLoanCount, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.ToolLoanCount), args.Error(1)
}

func overdueGauge(t *testing.T) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, metrics.OverdueCustomers.Write(m))
	return m.GetGauge().GetValue()
}

func TestReportOverdueLoans(t *testing.T) {
	t.Run("Sets gauge", func(t *testing.T) {
		reports := new(MockReportService)
		reports.On("OverdueCustomers", mock.Anything).Return([]domain.Customer{
			{ID: 2, Name: "Ana", Rut: "11111111-1"},
			{ID: 5, Name: "Luis", Rut: "22222222-2"},
		}, nil).Once()

		jr := NewJobRunner(&Services{Report: reports}, &config.Config{})
		jr.ReportOverdueLoans()

		assert.Equal(t, float64(2), overdueGauge(t))
		reports.AssertExpectations(t)
	})

	t.Run("Error keeps previous value", func(t *testing.T) {
		metrics.OverdueCustomers.Set(7)
		reports := new(MockReportService)
		reports.On("OverdueCustomers", mock.Anything).Return(nil, errors.New("db down")).Once()

		jr := NewJobRunner(&Services{Report: reports}, &config.Config{})
		_, err := jr.overdueCustomers(context.Background())
		assert.Error(t, err)
		assert.Equal(t, float64(7), overdueGauge(t))
	})

	t.Run("Panic is recovered", func(t *testing.T) {
		reports := new(MockReportService)
		reports.On("OverdueCustomers", mock.Anything).Run(func(mock.Arguments) {
			panic("boom")
		}).Return(nil, nil)

		jr := NewJobRunner(&Services{Report: reports}, &config.Config{})
		assert.NotPanics(t, jr.RunAllNightlyJobs)
	})
}
