package service

import (
	"Duet/internal/api/dto"
	"Duet/internal/model"
	"Duet/internal/pkg/consts"
	"Duet/internal/pkg/util"
	"Duet/internal/registry"
	"Duet/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"time"
)

// 生成侧对 pending 码唯一性冲突的最大重试次数
const codeGenMaxAttempts = 5

type PairingService interface {
	GenerateCode(ctx context.Context, requesterID uint64) (*dto.PairingCodeDTO, error)
	RedeemCode(ctx context.Context, redeemerID uint64, rawCode string) (*dto.RedeemResultDTO, error)
	Status(ctx context.Context, userID uint64) (*dto.PairStatusDTO, error)
	Unpair(ctx context.Context, userID uint64) error
}

type pairingServiceImpl struct {
	pairingRepo  repository.PairingRepo
	convRepo     repository.ConversationRepo
	userRepo     repository.UserRepo
	reg          *registry.ConversationRegistry
	notifService NotificationService
	codeTTL      time.Duration
	now          func() time.Time
}

func NewPairingService(
	pairingRepo repository.PairingRepo,
	convRepo repository.ConversationRepo,
	userRepo repository.UserRepo,
	reg *registry.ConversationRegistry,
	notifService NotificationService,
	codeTTL time.Duration,
) PairingService {
	return &pairingServiceImpl{
		pairingRepo:  pairingRepo,
		convRepo:     convRepo,
		userRepo:     userRepo,
		reg:          reg,
		notifService: notifService,
		codeTTL:      codeTTL,
		now:          time.Now,
	}
}

// GenerateCode 为请求者签发一次性配对码
func (s *pairingServiceImpl) GenerateCode(ctx context.Context, requesterID uint64) (*dto.PairingCodeDTO, error) {
	conv, err := s.reg.FindActiveFor(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return nil, ErrAlreadyConnected
	}

	var code string
	for i := 0; i < codeGenMaxAttempts; i++ {
		candidate, err := util.GeneratePairingCode(consts.PairingCodeLength)
		if err != nil {
			return nil, err
		}
		exists, err := s.pairingRepo.PendingCodeExists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if !exists {
			code = candidate
			break
		}
	}
	if code == "" {
		return nil, UnExpectedError
	}

	pc := &model.PairingCode{
		Code:      code,
		CreatorID: requesterID,
		Status:    model.CodeStatusPending,
		ExpiresAt: s.now().Add(s.codeTTL),
	}
	if err = s.pairingRepo.CreateCode(ctx, pc); err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "配对码已生成", "creator", requesterID, "expiresAt", pc.ExpiresAt)
	return &dto.PairingCodeDTO{Code: pc.Code, ExpiresAt: pc.ExpiresAt}, nil
}

// RedeemCode 兑换配对码并创建会话。
// 整个 检查-置用-建会话 序列在仓库层的单事务临界区内完成，
// 并发兑换同一码时有且只有一个调用成功。
func (s *pairingServiceImpl) RedeemCode(ctx context.Context, redeemerID uint64, rawCode string) (*dto.RedeemResultDTO, error) {
	code := util.CanonicalCode(rawCode)
	if code == "" {
		return nil, ErrParamInvalid
	}

	pc, err := s.pairingRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if pc == nil {
		return nil, ErrCodeNotFound
	}

	switch pc.Status {
	case model.CodeStatusUsed:
		return nil, ErrCodeAlreadyUsed
	case model.CodeStatusExpired:
		return nil, ErrCodeExpired
	}

	// 过期判定：到达 ExpiresAt 的瞬间即视为过期
	if !s.now().Before(pc.ExpiresAt) {
		if _, err = s.pairingRepo.MarkExpired(ctx, pc.ID); err != nil {
			log.WarnContext(ctx, "过期配对码标记失败", "code", code, "err", err)
		}
		return nil, ErrCodeExpired
	}

	if pc.CreatorID == redeemerID {
		return nil, ErrSelfPairing
	}

	// 预检双方占用。生成码之后创建者的状态可能已变化，因此两边都查；
	// 真正的防线在事务内的复核，这里只为尽早返回明确错误。
	for _, uid := range []uint64{pc.CreatorID, redeemerID} {
		conv, err := s.reg.FindActiveFor(ctx, uid)
		if err != nil {
			return nil, err
		}
		if conv != nil {
			return nil, ErrAlreadyConnected
		}
	}

	conv, err := s.pairingRepo.ConsumeAndCreateConversation(ctx, pc.ID, pc.CreatorID, redeemerID, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCodeConsumed):
			return nil, ErrCodeAlreadyUsed
		case errors.Is(err, repository.ErrUserOccupied):
			return nil, ErrAlreadyConnected
		default:
			return nil, err
		}
	}
	s.reg.Bind(conv)

	creator, err := s.userRepo.GetUserById(ctx, pc.CreatorID)
	if err != nil || creator == nil {
		log.WarnContext(ctx, "配对成功但创建者信息缺失", "creator", pc.CreatorID, "err", err)
		return &dto.RedeemResultDTO{ConversationID: conv.ID}, nil
	}

	// 用伪装文案通知码的创建者配对已完成
	if _, err = s.notifService.Create(ctx, pc.CreatorID, consts.NotificationTypePaired,
		"配对完成", "对方已通过配对码建立会话"); err != nil {
		log.WarnContext(ctx, "配对通知创建失败", "creator", pc.CreatorID, "err", err)
	}

	log.InfoContext(ctx, "配对码兑换成功", "code", code, "conversation", conv.ID)
	return &dto.RedeemResultDTO{
		ConversationID: conv.ID,
		PartnerName:    creator.DisplayName(),
	}, nil
}

// Unpair 解除当前配对：会话 active -> closed，并失效双方的注册表缓存。
// 状态守卫更新保证并发解除只生效一次。
func (s *pairingServiceImpl) Unpair(ctx context.Context, userID uint64) error {
	conv, err := s.reg.FindActiveFor(ctx, userID)
	if err != nil {
		return err
	}
	if conv == nil {
		return ErrConversationNotFound
	}

	affected, err := s.convRepo.CloseConversation(ctx, conv.ID)
	if err != nil {
		return err
	}
	s.reg.Invalidate(conv.User1ID, conv.User2ID)
	if affected == 0 {
		return ErrConversationNotFound
	}

	partnerID := conv.PartnerOf(userID)
	if _, err = s.notifService.Create(ctx, partnerID, consts.NotificationTypeUnpaired,
		"配对解除", "对方已解除配对"); err != nil {
		log.WarnContext(ctx, "解除配对通知创建失败", "partner", partnerID, "err", err)
	}

	log.InfoContext(ctx, "配对已解除", "conversation", conv.ID, "by", userID)
	return nil
}

// Status 查询当前配对状态
func (s *pairingServiceImpl) Status(ctx context.Context, userID uint64) (*dto.PairStatusDTO, error) {
	conv, err := s.reg.FindActiveFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return &dto.PairStatusDTO{IsConnected: false}, nil
	}

	partner, err := s.userRepo.GetUserById(ctx, conv.PartnerOf(userID))
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrUserNotFound
	}

	createdAt := conv.CreatedAt
	return &dto.PairStatusDTO{
		IsConnected:    true,
		ConversationID: conv.ID,
		Partner: &dto.PartnerDTO{
			ID:       partner.ID,
			Name:     partner.DisplayName(),
			IsOnline: partner.IsOnline,
		},
		ConnectedAt: &createdAt,
	}, nil
}
