package repository

import (
	"Duet/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// 仓库层冲突信号，由 service 层翻译成业务错误
var (
	ErrCodeConsumed = errors.New("pairing code no longer pending")
	ErrUserOccupied = errors.New("participant already has an active conversation")
)

type PairingRepo interface {
	CreateCode(ctx context.Context, code *model.PairingCode) error
	GetByCode(ctx context.Context, code string) (*model.PairingCode, error)
	PendingCodeExists(ctx context.Context, code string) (bool, error)
	MarkExpired(ctx context.Context, codeID uint64) (int64, error)
	ConsumeAndCreateConversation(ctx context.Context, codeID uint64, creatorID, redeemerID uint64, usedAt time.Time) (*model.Conversation, error)
	ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error)
}

type pairingRepoImpl struct {
	db *gorm.DB
}

func NewPairingRepo(db *gorm.DB) PairingRepo {
	return &pairingRepoImpl{db: db}
}

func (s *pairingRepoImpl) CreateCode(ctx context.Context, code *model.PairingCode) error {
	return s.db.WithContext(ctx).Create(code).Error
}

// GetByCode 按规范化后的码查找，不存在返回 nil
func (s *pairingRepoImpl) GetByCode(ctx context.Context, code string) (*model.PairingCode, error) {
	var pc model.PairingCode
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&pc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pc, nil
}

// PendingCodeExists 生成侧的唯一性预检（只针对 pending 状态的码）
func (s *pairingRepoImpl) PendingCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.PairingCode{}).
		Where("code = ? AND status = ?", code, model.CodeStatusPending).
		Count(&count).Error
	return count > 0, err
}

// MarkExpired pending -> expired，状态守卫保证只迁移一次
func (s *pairingRepoImpl) MarkExpired(ctx context.Context, codeID uint64) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.PairingCode{}).
		Where("id = ? AND status = ?", codeID, model.CodeStatusPending).
		Update("status", model.CodeStatusExpired)
	return res.RowsAffected, res.Error
}

// ConsumeAndCreateConversation 兑换临界区：同一事务内完成
// 码置用(条件更新定胜负) + 双方占用复核 + 会话创建。
// 两个并发兑换同一个码时，条件更新的 RowsAffected 保证只有一个赢家。
func (s *pairingRepoImpl) ConsumeAndCreateConversation(ctx context.Context, codeID uint64, creatorID, redeemerID uint64, usedAt time.Time) (*model.Conversation, error) {
	conv := &model.Conversation{
		User1ID: creatorID,
		User2ID: redeemerID,
		Status:  model.ConversationStatusActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.PairingCode{}).
			Where("id = ? AND status = ?", codeID, model.CodeStatusPending).
			Updates(map[string]interface{}{
				"status":  model.CodeStatusUsed,
				"used_by": redeemerID,
				"used_at": usedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCodeConsumed
		}

		// 事务内复核“每人至多一个 active 会话”，关闭 check-then-act 竞态
		var count int64
		err := tx.Model(&model.Conversation{}).
			Where("(user1_id IN ? OR user2_id IN ?) AND status = ?",
				[]uint64{creatorID, redeemerID}, []uint64{creatorID, redeemerID},
				model.ConversationStatusActive).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrUserOccupied
		}

		return tx.Create(conv).Error
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// ExpirePendingBefore 保留引擎第 3 步：批量过期
func (s *pairingRepoImpl) ExpirePendingBefore(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.PairingCode{}).
		Where("expires_at < ? AND status = ?", now, model.CodeStatusPending).
		Update("status", model.CodeStatusExpired)
	return res.RowsAffected, res.Error
}
