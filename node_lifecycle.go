package survey

import (
	"context"
	"fmt"
	"time"
)

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期常量
// ════════════════════════════════════════════════════════════════════════════

const (
	// initializeTimeout 初始化超时（Fx App Start）
	initializeTimeout = 30 * time.Second

	// shutdownTimeout 关闭超时（Fx App Stop）
	shutdownTimeout = 10 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期管理
// ════════════════════════════════════════════════════════════════════════════

// Start 启动节点
//
// 启动顺序：存储引擎 → 调查节拍 → 管理接口。
// 节点只能启动一次；Stop 之后归档引擎已关闭，需要重新 New。
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed || n.state == StateStopped {
		return ErrNodeClosed
	}
	if n.started {
		return ErrAlreadyStarted
	}

	initCtx, initCancel := context.WithTimeout(ctx, initializeTimeout)
	defer initCancel()

	if err := n.app.Start(initCtx); err != nil {
		log.Error("节点启动失败", "error", err)
		return fmt.Errorf("initialize failed: %w", err)
	}

	n.state = StateRunning
	n.started = true
	log.Info("节点启动成功", "node", n.identity.ID().ShortString())
	return nil
}

// Stop 停止节点
//
// 结束进行中的调查会话（写入归档）并停止所有后台任务。
// 停止后结果快照仍可读取，归档随存储引擎一同关闭。
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if !n.started {
		return ErrNotStarted
	}

	n.started = false
	n.state = StateStopped
	if err := n.app.Stop(ctx); err != nil {
		log.Warn("节点停止时出错", "error", err)
		return fmt.Errorf("stop failed: %w", err)
	}
	log.Info("节点已停止")
	return nil
}

// Close 关闭节点
//
// 幂等；未启动的节点直接标记为关闭。
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true

	var err error
	if n.started {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = n.app.Stop(ctx)
		n.started = false
	} else if n.storage != nil {
		// 引擎在装配时已打开，未启动的节点需要单独释放
		err = n.storage.Close()
	}
	n.state = StateClosed
	log.Info("节点已关闭")
	return err
}
