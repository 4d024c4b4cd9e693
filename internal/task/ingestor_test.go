package task

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"github.com/singnet/snet-marketplace-service-sub002/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// newTestDB 基于内存sqlite构建隔离的测试数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return db
}

// fakeLogSource 预置日志的内存日志来源
type fakeLogSource struct {
	head        int64
	deployBlock int64
	batchLimit  int64
	events      []model.RawEvent
	fetchErr    error
	fetchCalls  [][2]int64
}

func (s *fakeLogSource) HeadBlock(_ context.Context) (int64, error) {
	return s.head, nil
}

func (s *fakeLogSource) DeployBlock() int64 { return s.deployBlock }
func (s *fakeLogSource) BatchLimit() int64  { return s.batchLimit }

func (s *fakeLogSource) FetchEvents(_ context.Context, fromBlock, toBlock int64) ([]model.RawEvent, error) {
	s.fetchCalls = append(s.fetchCalls, [2]int64{fromBlock, toBlock})
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	var out []model.RawEvent
	for _, ev := range s.events {
		if ev.BlockNum >= fromBlock && ev.BlockNum <= toBlock {
			out = append(out, ev)
		}
	}
	return out, nil
}

func sourceEvent(blockNum int64) model.RawEvent {
	return model.RawEvent{
		BlockNum:  blockNum,
		EventName: "OrganizationCreated",
		Data:      `{"orgId":"snet"}`,
		TxHash:    fmt.Sprintf("0x%x", blockNum),
		LogIndex:  0,
	}
}

func TestIngestor_ScansFromDeployBlock(t *testing.T) {
	db := newTestDB(t)
	source := &fakeLogSource{
		head:        150,
		deployBlock: 100,
		batchLimit:  1000,
		events:      []model.RawEvent{sourceEvent(120), sourceEvent(130)},
	}
	ingestor := NewIngestor(db, source, model.EventFamilyRegistry)

	require.NoError(t, ingestor.RunOnce(context.Background()))

	// 首轮从部署区块扫到链头
	require.Len(t, source.fetchCalls, 1)
	assert.Equal(t, [2]int64{100, 150}, source.fetchCalls[0])

	count, err := logic.NewEventStore(db).CountUnprocessed(model.EventFamilyRegistry)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	last, err := logic.NewMarkerStore(db).GetLastBlock(model.EventFamilyRegistry)
	require.NoError(t, err)
	assert.Equal(t, int64(150), last)
}

func TestIngestor_RespectsBatchLimit(t *testing.T) {
	db := newTestDB(t)
	source := &fakeLogSource{
		head:        1000,
		deployBlock: 1,
		batchLimit:  100,
	}
	ingestor := NewIngestor(db, source, model.EventFamilyRegistry)

	require.NoError(t, ingestor.RunOnce(context.Background()))
	require.NoError(t, ingestor.RunOnce(context.Background()))

	require.Len(t, source.fetchCalls, 2)
	assert.Equal(t, [2]int64{1, 100}, source.fetchCalls[0])
	assert.Equal(t, [2]int64{101, 200}, source.fetchCalls[1])
}

func TestIngestor_RescanIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	source := &fakeLogSource{
		head:        150,
		deployBlock: 100,
		batchLimit:  1000,
		events:      []model.RawEvent{sourceEvent(120)},
	}
	ingestor := NewIngestor(db, source, model.EventFamilyRegistry)

	require.NoError(t, ingestor.RunOnce(context.Background()))

	// 人为回退水位模拟重扫
	require.NoError(t, db.Model(&model.BlockNumberMarker{}).
		Where("event_type = ?", string(model.EventFamilyRegistry)).
		Update("last_block_number", 0).Error)

	require.NoError(t, ingestor.RunOnce(context.Background()))

	count, err := logic.NewEventStore(db).CountUnprocessed(model.EventFamilyRegistry)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestIngestor_FetchFailureDoesNotAdvanceMarker(t *testing.T) {
	db := newTestDB(t)
	source := &fakeLogSource{
		head:        150,
		deployBlock: 100,
		batchLimit:  1000,
		fetchErr:    errors.New("rpc timeout"),
	}
	ingestor := NewIngestor(db, source, model.EventFamilyRegistry)

	assert.Error(t, ingestor.RunOnce(context.Background()))

	last, err := logic.NewMarkerStore(db).GetLastBlock(model.EventFamilyRegistry)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}

func TestIngestor_NothingToScan(t *testing.T) {
	db := newTestDB(t)
	source := &fakeLogSource{
		head:        99,
		deployBlock: 100,
		batchLimit:  1000,
	}
	ingestor := NewIngestor(db, source, model.EventFamilyRegistry)

	require.NoError(t, ingestor.RunOnce(context.Background()))
	assert.Empty(t, source.fetchCalls)
}
