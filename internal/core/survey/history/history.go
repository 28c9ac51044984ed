// Package history 归档已结束的调查会话
//
// 会话结束（手动停止或到期）时，结果快照写入存储引擎；
// 超过保留数量的最旧会话被删除。
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dep2p/go-dep2p-survey/internal/core/storage/engine"
	"github.com/dep2p/go-dep2p-survey/internal/core/storage/kv"
	"github.com/dep2p/go-dep2p-survey/internal/util/logger"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

var log = logger.Logger("survey/history")

// keyPrefix 会话归档命名空间
var keyPrefix = []byte("h/s/")

// ErrSessionNotFound 归档中没有该会话
var ErrSessionNotFound = errors.New("history: session not found")

// Record 一次已结束会话的归档
type Record struct {
	SessionID uuid.UUID          `json:"sessionId"`
	StartedAt time.Time          `json:"startedAt"`
	EndedAt   time.Time          `json:"endedAt"`
	Result    types.SurveyResult `json:"result"`
}

// Archive 会话归档
type Archive struct {
	mu     sync.Mutex
	store  *kv.Store
	retain int
}

// NewArchive 创建归档，retain 为最多保留的会话数
func NewArchive(eng engine.Engine, retain int) *Archive {
	if retain <= 0 {
		retain = 1
	}
	return &Archive{
		store:  kv.New(eng, keyPrefix),
		retain: retain,
	}
}

// Save 写入一条归档并裁剪超出保留数量的旧会话
func (a *Archive) Save(rec Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.PutJSON(rec.SessionID[:], rec); err != nil {
		return fmt.Errorf("save session %s: %w", rec.SessionID, err)
	}
	return a.pruneLocked()
}

// Get 读取指定会话
func (a *Archive) Get(id uuid.UUID) (Record, error) {
	var rec Record
	if err := a.store.GetJSON(id[:], &rec); err != nil {
		if engine.IsNotFound(err) {
			return Record{}, ErrSessionNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// List 返回全部归档，按结束时间从新到旧
func (a *Archive) List() ([]Record, error) {
	var (
		records []Record
		decErr  error
	)
	err := a.store.PrefixScan(nil, func(key, value []byte) bool {
		var rec Record
		if err := json.Unmarshal(value, &rec); err != nil {
			decErr = fmt.Errorf("decode session %x: %w", key, err)
			return false
		}
		records = append(records, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	if decErr != nil {
		return nil, decErr
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].EndedAt.After(records[j].EndedAt)
	})
	return records, nil
}

// Len 返回归档数量
func (a *Archive) Len() (int, error) {
	return a.store.Count(nil)
}

// pruneLocked 删除超出保留数量的最旧会话
func (a *Archive) pruneLocked() error {
	records, err := a.List()
	if err != nil {
		return err
	}
	for _, rec := range records[min(len(records), a.retain):] {
		if err := a.store.Delete(rec.SessionID[:]); err != nil {
			return err
		}
		log.Debug("删除过期归档", "session", rec.SessionID)
	}
	return nil
}
