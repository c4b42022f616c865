package service

import (
	"Duet/internal/model"
	"Duet/internal/registry"
	"Duet/internal/repository"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type pairingFixture struct {
	db      *gorm.DB
	svc     *pairingServiceImpl
	reg     *registry.ConversationRegistry
	creator *model.User
	redeem  *model.User
	now     time.Time
}

func newPairingFixture(t *testing.T) *pairingFixture {
	t.Helper()
	db := newTestDB(t)
	userRepo := repository.NewUserRepo(db)
	pairingRepo := repository.NewPairingRepo(db)
	notifRepo := repository.NewNotificationRepo(db)
	reg := registry.NewConversationRegistry(repository.NewConversationRepo(db))
	notifSvc := NewNotificationService(notifRepo)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc := NewPairingService(pairingRepo, repository.NewConversationRepo(db), userRepo, reg, notifSvc, 24*time.Hour).(*pairingServiceImpl)
	svc.now = func() time.Time { return now }

	return &pairingFixture{
		db:      db,
		svc:     svc,
		reg:     reg,
		creator: seedUser(t, db, "alice@example.com", "Alice"),
		redeem:  seedUser(t, db, "bob@example.com", "Bob"),
		now:     now,
	}
}

func TestGenerateCode(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	codeDTO, err := f.svc.GenerateCode(ctx, f.creator.ID)
	require.NoError(t, err)
	assert.Len(t, codeDTO.Code, 6)
	assert.Equal(t, f.now.Add(24*time.Hour), codeDTO.ExpiresAt.UTC())

	var pc model.PairingCode
	require.NoError(t, f.db.Where("code = ?", codeDTO.Code).First(&pc).Error)
	assert.Equal(t, model.CodeStatusPending, pc.Status)
	assert.Equal(t, f.creator.ID, pc.CreatorID)
}

func TestGenerateCodeWhileConnected(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Create(&model.Conversation{
		User1ID: f.creator.ID, User2ID: f.redeem.ID, Status: model.ConversationStatusActive,
	}).Error)

	_, err := f.svc.GenerateCode(ctx, f.creator.ID)
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestRedeemCodeSuccess(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	codeDTO, err := f.svc.GenerateCode(ctx, f.creator.ID)
	require.NoError(t, err)

	result, err := f.svc.RedeemCode(ctx, f.redeem.ID, codeDTO.Code)
	require.NoError(t, err)
	assert.NotZero(t, result.ConversationID)
	assert.Equal(t, "Alice", result.PartnerName)

	var pc model.PairingCode
	require.NoError(t, f.db.Where("code = ?", codeDTO.Code).First(&pc).Error)
	assert.Equal(t, model.CodeStatusUsed, pc.Status)
	require.NotNil(t, pc.UsedBy)
	assert.Equal(t, f.redeem.ID, *pc.UsedBy)
	assert.NotNil(t, pc.UsedAt)

	// 创建者收到一条伪装通知
	var notifs []model.Notification
	require.NoError(t, f.db.Where("user_id = ?", f.creator.ID).Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.NotEmpty(t, notifs[0].DisguiseText)
	assert.NotEqual(t, notifs[0].Message, notifs[0].DisguiseText)
}

func TestRedeemCodeCanonicalization(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	codeDTO, err := f.svc.GenerateCode(ctx, f.creator.ID)
	require.NoError(t, err)

	// 小写加空白照样兑换成功
	messy := "  " + strings.ToLower(codeDTO.Code) + " "
	result, err := f.svc.RedeemCode(ctx, f.redeem.ID, messy)
	require.NoError(t, err)
	assert.NotZero(t, result.ConversationID)
}

func TestRedeemCodeOnlyOneWinner(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()
	third := seedUser(t, f.db, "carol@example.com", "Carol")

	codeDTO, err := f.svc.GenerateCode(ctx, f.creator.ID)
	require.NoError(t, err)

	_, err = f.svc.RedeemCode(ctx, f.redeem.ID, codeDTO.Code)
	require.NoError(t, err)

	_, err = f.svc.RedeemCode(ctx, third.ID, codeDTO.Code)
	assert.ErrorIs(t, err, ErrCodeAlreadyUsed)

	var count int64
	require.NoError(t, f.db.Model(&model.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRedeemCodeConcurrentSingleWinner(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()
	third := seedUser(t, f.db, "carol@example.com", "Carol")

	codeDTO, err := f.svc.GenerateCode(ctx, f.creator.ID)
	require.NoError(t, err)

	// sqlite 单文件库，收紧连接池让两个事务在驱动层排队而不是报 busy
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, uid := range []uint64{f.redeem.ID, third.ID} {
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			_, err := f.svc.RedeemCode(ctx, uid, codeDTO.Code)
			results <- err
		}(uid)
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		losses++
		// 输家要么抢状态位失败，要么撞上赢家刚建好的会话
		assert.True(t, errors.Is(err, ErrCodeAlreadyUsed) || errors.Is(err, ErrAlreadyConnected), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	var count int64
	require.NoError(t, f.db.Model(&model.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRedeemCodeExpiryBoundary(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	codeDTO, err := f.svc.GenerateCode(ctx, f.creator.ID)
	require.NoError(t, err)

	// 走到 ExpiresAt 这一瞬间即视为过期
	f.svc.now = func() time.Time { return f.now.Add(24 * time.Hour) }

	_, err = f.svc.RedeemCode(ctx, f.redeem.ID, codeDTO.Code)
	assert.ErrorIs(t, err, ErrCodeExpired)

	var pc model.PairingCode
	require.NoError(t, f.db.Where("code = ?", codeDTO.Code).First(&pc).Error)
	assert.Equal(t, model.CodeStatusExpired, pc.Status)
}

func TestRedeemCodeJustBeforeExpiry(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	codeDTO, err := f.svc.GenerateCode(ctx, f.creator.ID)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return f.now.Add(24*time.Hour - time.Second) }

	_, err = f.svc.RedeemCode(ctx, f.redeem.ID, codeDTO.Code)
	assert.NoError(t, err)
}

func TestRedeemCodeSelfPairing(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	codeDTO, err := f.svc.GenerateCode(ctx, f.creator.ID)
	require.NoError(t, err)

	_, err = f.svc.RedeemCode(ctx, f.creator.ID, codeDTO.Code)
	assert.ErrorIs(t, err, ErrSelfPairing)
}

func TestRedeemCodeNotFound(t *testing.T) {
	f := newPairingFixture(t)

	_, err := f.svc.RedeemCode(context.Background(), f.redeem.ID, "ZZZZZZ")
	assert.ErrorIs(t, err, ErrCodeNotFound)

	_, err = f.svc.RedeemCode(context.Background(), f.redeem.ID, "   ")
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestRedeemCodeWhileOccupied(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()
	third := seedUser(t, f.db, "carol@example.com", "Carol")

	codeDTO, err := f.svc.GenerateCode(ctx, f.creator.ID)
	require.NoError(t, err)

	// 兑换者先和第三人建立了会话
	require.NoError(t, f.db.Create(&model.Conversation{
		User1ID: f.redeem.ID, User2ID: third.ID, Status: model.ConversationStatusActive,
	}).Error)

	_, err = f.svc.RedeemCode(ctx, f.redeem.ID, codeDTO.Code)
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestUnpair(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	codeDTO, err := f.svc.GenerateCode(ctx, f.creator.ID)
	require.NoError(t, err)
	_, err = f.svc.RedeemCode(ctx, f.redeem.ID, codeDTO.Code)
	require.NoError(t, err)

	require.NoError(t, f.svc.Unpair(ctx, f.creator.ID))

	// 会话转为 closed，双方都回到未配对状态
	var conv model.Conversation
	require.NoError(t, f.db.First(&conv).Error)
	assert.Equal(t, model.ConversationStatusClosed, conv.Status)

	for _, uid := range []uint64{f.creator.ID, f.redeem.ID} {
		active, err := f.reg.FindActiveFor(ctx, uid)
		require.NoError(t, err)
		assert.Nil(t, active)
	}

	// 对端收到一条伪装通知
	var notifs []model.Notification
	require.NoError(t, f.db.Where("user_id = ?", f.redeem.ID).Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.NotEmpty(t, notifs[0].DisguiseText)

	// 解除后可以重新签发配对码
	_, err = f.svc.GenerateCode(ctx, f.creator.ID)
	assert.NoError(t, err)
}

func TestUnpairWithoutConversation(t *testing.T) {
	f := newPairingFixture(t)

	err := f.svc.Unpair(context.Background(), f.creator.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestPairStatus(t *testing.T) {
	f := newPairingFixture(t)
	ctx := context.Background()

	status, err := f.svc.Status(ctx, f.creator.ID)
	require.NoError(t, err)
	assert.False(t, status.IsConnected)
	assert.Nil(t, status.Partner)

	codeDTO, err := f.svc.GenerateCode(ctx, f.creator.ID)
	require.NoError(t, err)
	_, err = f.svc.RedeemCode(ctx, f.redeem.ID, codeDTO.Code)
	require.NoError(t, err)

	status, err = f.svc.Status(ctx, f.creator.ID)
	require.NoError(t, err)
	assert.True(t, status.IsConnected)
	require.NotNil(t, status.Partner)
	assert.Equal(t, f.redeem.ID, status.Partner.ID)
	assert.Equal(t, "Bob", status.Partner.Name)
}
