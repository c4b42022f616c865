package registry

import (
	"Duet/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConvRepo 内存版会话仓库，记录查库次数以验证缓存命中
type fakeConvRepo struct {
	convs []*model.Conversation
	calls int
}

func (f *fakeConvRepo) GetConversation(_ context.Context, convID uint64) (*model.Conversation, error) {
	for _, c := range f.convs {
		if c.ID == convID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeConvRepo) FindActiveByUser(_ context.Context, userID uint64) (*model.Conversation, error) {
	f.calls++
	for _, c := range f.convs {
		if c.Status == model.ConversationStatusActive && c.HasMember(userID) {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeConvRepo) IsMember(_ context.Context, convID uint64, userID uint64) (bool, error) {
	c, _ := f.GetConversation(context.Background(), convID)
	return c != nil && c.HasMember(userID), nil
}

func (f *fakeConvRepo) CloseConversation(_ context.Context, convID uint64) (int64, error) {
	for _, c := range f.convs {
		if c.ID == convID && c.Status == model.ConversationStatusActive {
			c.Status = model.ConversationStatusClosed
			return 1, nil
		}
	}
	return 0, nil
}

func activeConv(id, u1, u2 uint64) *model.Conversation {
	return &model.Conversation{ID: id, User1ID: u1, User2ID: u2, Status: model.ConversationStatusActive}
}

func TestFindActiveForCachesLookup(t *testing.T) {
	repo := &fakeConvRepo{convs: []*model.Conversation{activeConv(10, 1, 2)}}
	reg := NewConversationRegistry(repo)
	ctx := context.Background()

	conv, err := reg.FindActiveFor(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, uint64(10), conv.ID)
	assert.Equal(t, 1, repo.calls)

	// 二次查询走缓存
	_, err = reg.FindActiveFor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	// Bind 时双方都已入表
	_, err = reg.FindActiveFor(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
}

func TestFindActiveForNoConversation(t *testing.T) {
	reg := NewConversationRegistry(&fakeConvRepo{})
	conv, err := reg.FindActiveFor(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestAuthorize(t *testing.T) {
	repo := &fakeConvRepo{convs: []*model.Conversation{activeConv(10, 1, 2)}}
	reg := NewConversationRegistry(repo)
	ctx := context.Background()

	conv, err := reg.Authorize(ctx, 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, conv)

	// 非本人会话
	conv, err = reg.Authorize(ctx, 3, 10)
	require.NoError(t, err)
	assert.Nil(t, conv)

	// 会话 ID 不匹配
	conv, err = reg.Authorize(ctx, 1, 99)
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestInvalidate(t *testing.T) {
	repo := &fakeConvRepo{convs: []*model.Conversation{activeConv(10, 1, 2)}}
	reg := NewConversationRegistry(repo)
	ctx := context.Background()

	_, err := reg.FindActiveFor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	reg.Invalidate(1, 2)

	_, err = reg.FindActiveFor(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}
