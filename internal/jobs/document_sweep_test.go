package jobs

import (
	"context"
	"errors"
	"testing"

	"marketplace_onboarding/internal/config"
	"marketplace_onboarding/internal/draft"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) Sweep(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockPurger struct {
	mock.Mock
}

func (m *MockPurger) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestDocumentSweepJob_RunOnce(t *testing.T) {
	sweeper := new(MockSweeper)
	purger := new(MockPurger)
	sweeper.On("Sweep", mock.Anything).Return(3, nil).Once()
	purger.On("PurgeExpired", mock.Anything).Return(int64(2), nil).Once()

	job := NewDocumentSweepJob(nil, nil, zap.NewNop(), &config.Config{DocumentSweepSchedule: "@hourly"})
	job.sweeper = sweeper
	job.purger = purger

	res, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{DocumentsDeleted: 3, DraftsPurged: 2}, res)
	sweeper.AssertExpectations(t)
	purger.AssertExpectations(t)
}

func TestDocumentSweepJob_RunOnce_SweepError(t *testing.T) {
	sweeper := new(MockSweeper)
	sweeper.On("Sweep", mock.Anything).Return(1, errors.New("db down")).Once()

	job := NewDocumentSweepJob(nil, nil, zap.NewNop(), &config.Config{})
	job.sweeper = sweeper

	res, err := job.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, 1, res.DocumentsDeleted)
}

func TestDocumentSweepJob_DetectsPurgerStore(t *testing.T) {
	store := draft.NewGORMStore(nil, nil, 0)
	job := NewDocumentSweepJob(nil, store, zap.NewNop(), &config.Config{})
	assert.NotNil(t, job.purger)

	job = NewDocumentSweepJob(nil, draft.NewMemoryStore(nil, 0), zap.NewNop(), &config.Config{})
	assert.Nil(t, job.purger)
	assert.Nil(t, job.sweeper)
	assert.NoError(t, job.SetupAndStart(), "nothing to sweep is not an error")
	job.Stop()
}

func TestDocumentSweepJob_InvalidSchedule(t *testing.T) {
	job := NewDocumentSweepJob(nil, nil, zap.NewNop(), &config.Config{DocumentSweepSchedule: "not a schedule"})
	job.sweeper = new(MockSweeper)
	assert.Error(t, job.SetupAndStart())
}
