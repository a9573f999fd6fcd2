package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"maily/backend/internal/domain"
	"maily/backend/internal/storage/memory"
	"maily/backend/internal/storage/postgres"
)

// storeFactories 订阅场景在内存存储和 SQL 存储上各跑一遍
var storeFactories = map[string]func(t *testing.T) domain.Store{
	"memory": func(t *testing.T) domain.Store {
		return memory.NewStore()
	},
	"sqlite": func(t *testing.T) domain.Store {
		store, err := postgres.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	},
}

type fixture struct {
	store         domain.Store
	subscriptions *SubscriptionService
	groups        *GroupService
	sequences     *SequenceService
	subscribers   *SubscriberService
	user          *domain.Subscriber
	group         *domain.SubscriptionGroup
	newsletters   *domain.Sequence
}

// newFixture 创建订阅组 marketing 与其下的序列 newsletters
//
// 序列自身的 autosubscribe 总是与订阅组相反，用于验证分组后它不生效。
func newFixture(t *testing.T, store domain.Store, groupAutosubscribe bool) *fixture {
	t.Helper()

	subscriptions := NewSubscriptionService(store, nil, nil)
	f := &fixture{
		store:         store,
		subscriptions: subscriptions,
		groups:        NewGroupService(store, subscriptions),
		sequences:     NewSequenceService(store, subscriptions),
		subscribers:   NewSubscriberService(store),
	}

	var err error
	f.user, err = f.subscribers.Create("user@example.com")
	require.NoError(t, err)

	f.group, err = f.groups.Create(CreateGroupInput{Name: "marketing", Autosubscribe: groupAutosubscribe})
	require.NoError(t, err)

	f.newsletters, err = f.sequences.Create(CreateSequenceInput{
		Name:          "newsletters",
		Group:         "marketing",
		Autosubscribe: !groupAutosubscribe,
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) isActive(t *testing.T, sub *domain.SequenceSubscription) bool {
	t.Helper()
	active, err := f.subscriptions.IsActive(sub)
	require.NoError(t, err)
	return active
}

func (f *fixture) aggregateActive(t *testing.T) bool {
	t.Helper()
	agg, err := f.subscriptions.AggregateFor(f.user.ID, f.group.ID)
	require.NoError(t, err)
	return agg.Active
}

func TestSubscriptionService_GroupWithoutAutosubscribe(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, newStore(t), false)

			sub, err := f.subscriptions.SubscriptionFor(f.user.ID, f.newsletters.ID)
			require.NoError(t, err)
			assert.True(t, sub.Aggregated)
			assert.False(t, f.isActive(t, sub))

			count, err := f.store.CountAggregates()
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			// 激活订阅即激活聚合订阅
			require.NoError(t, f.subscriptions.Activate(sub))
			assert.True(t, f.isActive(t, sub))
			assert.True(t, f.aggregateActive(t))

			// 直接停用聚合订阅，订阅随之失效
			agg, err := f.subscriptions.AggregateFor(f.user.ID, f.group.ID)
			require.NoError(t, err)
			require.NoError(t, f.subscriptions.DeactivateAggregate(agg))
			assert.False(t, f.isActive(t, sub))
			assert.False(t, f.aggregateActive(t))
		})
	}
}

func TestSubscriptionService_GroupWithAutosubscribe(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, newStore(t), true)

			sub, err := f.subscriptions.SubscriptionFor(f.user.ID, f.newsletters.ID)
			require.NoError(t, err)
			assert.True(t, sub.Aggregated)
			assert.True(t, f.isActive(t, sub), "序列自身的 autosubscribe=false 不应生效")

			require.NoError(t, f.subscriptions.Deactivate(sub))
			assert.False(t, f.isActive(t, sub))
			assert.False(t, f.aggregateActive(t))

			require.NoError(t, f.subscriptions.Activate(sub))
			assert.True(t, f.isActive(t, sub))
			assert.True(t, f.aggregateActive(t))
		})
	}
}

func TestSubscriptionService_SubscriptionForIsIdempotent(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, newStore(t), false)

			first, err := f.subscriptions.SubscriptionFor(f.user.ID, f.newsletters.ID)
			require.NoError(t, err)
			second, err := f.subscriptions.SubscriptionFor(f.user.ID, f.newsletters.ID)
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID)

			subs, err := f.store.CountSubscriptions()
			require.NoError(t, err)
			aggs, err := f.store.CountAggregates()
			require.NoError(t, err)
			assert.Equal(t, int64(1), subs)
			assert.Equal(t, int64(1), aggs)

			// 通过订阅组获取的聚合订阅与序列关联的是同一条
			agg, err := f.groups.AggregateFor("marketing", f.user.ID)
			require.NoError(t, err)
			assert.Equal(t, *first.AggregateID, agg.ID)
		})
	}
}

func TestSubscriptionService_AggregateSharedAcrossSequences(t *testing.T) {
	f := newFixture(t, memory.NewStore(), true)

	digest, err := f.sequences.Create(CreateSequenceInput{Name: "weekly_digest", Group: "marketing"})
	require.NoError(t, err)

	first, err := f.subscriptions.SubscriptionFor(f.user.ID, f.newsletters.ID)
	require.NoError(t, err)
	second, err := f.subscriptions.SubscriptionFor(f.user.ID, digest.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.AggregateID, *second.AggregateID)

	_, err = f.groups.SetAggregateActive("marketing", f.user.ID, false)
	require.NoError(t, err)

	for _, seq := range []*domain.Sequence{f.newsletters, digest} {
		sub, err := f.subscriptions.SubscriptionFor(f.user.ID, seq.ID)
		require.NoError(t, err)
		assert.False(t, f.isActive(t, sub), seq.Name)
	}

	aggs, err := f.store.CountAggregates()
	require.NoError(t, err)
	assert.Equal(t, int64(1), aggs)
}

func TestSubscriptionService_StandaloneSequence(t *testing.T) {
	tests := []struct {
		name          string
		autosubscribe bool
	}{
		{"自动订阅", true},
		{"不自动订阅", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, memory.NewStore(), false)

			seq, err := f.sequences.Create(CreateSequenceInput{Name: "onboarding", Autosubscribe: tt.autosubscribe})
			require.NoError(t, err)

			sub, err := f.subscriptions.SubscriptionFor(f.user.ID, seq.ID)
			require.NoError(t, err)
			assert.False(t, sub.Aggregated)
			assert.Nil(t, sub.AggregateID)
			assert.Equal(t, tt.autosubscribe, f.isActive(t, sub))

			require.NoError(t, f.subscriptions.Activate(sub))
			reloaded, err := f.subscriptions.SubscriptionFor(f.user.ID, seq.ID)
			require.NoError(t, err)
			assert.True(t, f.isActive(t, reloaded))

			require.NoError(t, f.subscriptions.Deactivate(reloaded))
			reloaded, err = f.subscriptions.SubscriptionFor(f.user.ID, seq.ID)
			require.NoError(t, err)
			assert.False(t, f.isActive(t, reloaded))

			aggs, err := f.store.CountAggregates()
			require.NoError(t, err)
			assert.Zero(t, aggs)
		})
	}
}

func TestSubscriptionService_NotFound(t *testing.T) {
	f := newFixture(t, memory.NewStore(), false)

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{
			name: "订阅者不存在",
			call: func() error {
				_, err := f.subscriptions.SubscriptionFor("missing", f.newsletters.ID)
				return err
			},
			wantErr: domain.ErrSubscriberNotFound,
		},
		{
			name: "序列不存在",
			call: func() error {
				_, err := f.subscriptions.SubscriptionFor(f.user.ID, "missing")
				return err
			},
			wantErr: domain.ErrSequenceNotFound,
		},
		{
			name: "订阅组不存在",
			call: func() error {
				_, err := f.subscriptions.AggregateFor(f.user.ID, "missing")
				return err
			},
			wantErr: domain.ErrGroupNotFound,
		},
		{
			name: "按名称查找序列不存在",
			call: func() error {
				_, err := f.sequences.SubscriptionFor("missing", f.user.ID)
				return err
			},
			wantErr: domain.ErrSequenceNotFound,
		},
		{
			name: "订阅者列表不存在",
			call: func() error {
				_, err := f.subscriptions.ListForEntity("missing")
				return err
			},
			wantErr: domain.ErrSubscriberNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.wantErr)
		})
	}

	subs, err := f.store.CountSubscriptions()
	require.NoError(t, err)
	assert.Zero(t, subs)
}

func TestSubscriptionService_ResyncAfterGroupChange(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, newStore(t), true)

			seq, err := f.sequences.Create(CreateSequenceInput{Name: "onboarding"})
			require.NoError(t, err)

			sub, err := f.subscriptions.SubscriptionFor(f.user.ID, seq.ID)
			require.NoError(t, err)
			assert.False(t, sub.Aggregated)
			assert.False(t, f.isActive(t, sub))

			// 加入订阅组后重新关联聚合订阅
			group := "marketing"
			_, err = f.sequences.Update("onboarding", UpdateSequenceInput{Group: &group})
			require.NoError(t, err)

			linked, err := f.subscriptions.SubscriptionFor(f.user.ID, seq.ID)
			require.NoError(t, err)
			assert.Equal(t, sub.ID, linked.ID)
			assert.True(t, linked.Aggregated)
			assert.True(t, f.isActive(t, linked))

			// 移出订阅组后保留最后一次生效的状态
			ungrouped := ""
			_, err = f.sequences.Update("onboarding", UpdateSequenceInput{Group: &ungrouped})
			require.NoError(t, err)

			detached, err := f.subscriptions.SubscriptionFor(f.user.ID, seq.ID)
			require.NoError(t, err)
			assert.Equal(t, sub.ID, detached.ID)
			assert.False(t, detached.Aggregated)
			assert.Nil(t, detached.AggregateID)
			assert.True(t, f.isActive(t, detached))

			// 聚合订阅的变化不再影响独立订阅
			_, err = f.groups.SetAggregateActive("marketing", f.user.ID, false)
			require.NoError(t, err)
			assert.True(t, f.isActive(t, detached))

			subs, err := f.store.CountSubscriptions()
			require.NoError(t, err)
			assert.Equal(t, int64(1), subs)
		})
	}
}

func TestSubscriptionService_ListForEntity(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, newStore(t), true)

			seq, err := f.sequences.Create(CreateSequenceInput{Name: "onboarding"})
			require.NoError(t, err)

			_, err = f.subscriptions.SubscriptionFor(f.user.ID, f.newsletters.ID)
			require.NoError(t, err)
			_, err = f.subscriptions.SubscriptionFor(f.user.ID, seq.ID)
			require.NoError(t, err)

			statuses := f.listBySequence(t)
			require.Len(t, statuses, 2)

			grouped := statuses[f.newsletters.ID]
			assert.True(t, grouped.Active)
			require.NotNil(t, grouped.Aggregate)
			assert.Equal(t, f.group.ID, grouped.Aggregate.GroupID)

			standalone := statuses[seq.ID]
			assert.False(t, standalone.Active)
			assert.Nil(t, standalone.Aggregate)
		})
	}
}

// listBySequence 按序列ID索引 ListForEntity 的结果
func (f *fixture) listBySequence(t *testing.T) map[string]domain.SubscriptionStatus {
	t.Helper()
	statuses, err := f.subscriptions.ListForEntity(f.user.ID)
	require.NoError(t, err)

	bySequence := make(map[string]domain.SubscriptionStatus, len(statuses))
	for _, st := range statuses {
		bySequence[st.Subscription.SequenceID] = st
	}
	return bySequence
}

// 序列分组变更后，除 SubscriptionFor 以外的读取路径也要返回同步后的状态
func TestSubscriptionService_ReadPathsAfterGroupChange(t *testing.T) {
	for name, newStore := range storeFactories {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, newStore(t), true)

			seq, err := f.sequences.Create(CreateSequenceInput{Name: "onboarding"})
			require.NoError(t, err)
			sub, err := f.subscriptions.SubscriptionFor(f.user.ID, seq.ID)
			require.NoError(t, err)

			group := "marketing"
			_, err = f.sequences.Update("onboarding", UpdateSequenceInput{Group: &group})
			require.NoError(t, err)

			t.Run("列表返回聚合状态", func(t *testing.T) {
				listed := f.listBySequence(t)[seq.ID]
				assert.True(t, listed.Subscription.Aggregated)
				assert.True(t, listed.Active)
				require.NotNil(t, listed.Aggregate)
				assert.Equal(t, f.group.ID, listed.Aggregate.GroupID)

				status, err := f.subscriptions.Status(f.user.ID, seq.ID)
				require.NoError(t, err)
				assert.Equal(t, status.Active, listed.Active)
				assert.Equal(t, status.Subscription.Aggregated, listed.Subscription.Aggregated)
			})

			t.Run("旧记录读取聚合状态", func(t *testing.T) {
				stale := *sub
				stale.AggregateID = nil
				stale.SetState(domain.StandaloneState{Active: false})
				assert.True(t, f.isActive(t, &stale))
			})

			t.Run("停用旧记录作用于聚合订阅", func(t *testing.T) {
				stale, err := f.store.GetSubscription(f.user.ID, seq.ID)
				require.NoError(t, err)
				require.NoError(t, f.subscriptions.Deactivate(stale))
				assert.False(t, f.aggregateActive(t))
				assert.False(t, f.listBySequence(t)[seq.ID].Active)
			})

			t.Run("移出订阅组后列表返回独立状态", func(t *testing.T) {
				ungrouped := ""
				_, err := f.sequences.Update("onboarding", UpdateSequenceInput{Group: &ungrouped})
				require.NoError(t, err)

				listed := f.listBySequence(t)[seq.ID]
				assert.False(t, listed.Subscription.Aggregated)
				assert.Nil(t, listed.Aggregate)
				assert.False(t, listed.Active)
			})
		})
	}
}

// MockStore 模拟存储接口，未设置的方法调用会 panic
type MockStore struct {
	mock.Mock
	domain.Store
}

func (m *MockStore) GetSubscriber(id string) (*domain.Subscriber, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscriber), args.Error(1)
}

func (m *MockStore) GetSequence(id string) (*domain.Sequence, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sequence), args.Error(1)
}

func (m *MockStore) GetSubscription(entityID, sequenceID string) (*domain.SequenceSubscription, error) {
	args := m.Called(entityID, sequenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SequenceSubscription), args.Error(1)
}

func TestSubscriptionService_StoreErrorPropagation(t *testing.T) {
	storeErr := errors.New("connection reset")

	m := new(MockStore)
	m.On("GetSubscriber", "user-1").Return(&domain.Subscriber{ID: "user-1"}, nil)
	m.On("GetSequence", "seq-1").Return(&domain.Sequence{ID: "seq-1", Name: "newsletters"}, nil)
	m.On("GetSubscription", "user-1", "seq-1").Return(nil, storeErr)

	svc := NewSubscriptionService(m, nil, nil)
	_, err := svc.SubscriptionFor("user-1", "seq-1")
	assert.ErrorIs(t, err, storeErr)
	m.AssertExpectations(t)
}

func TestSubscriptionService_StandaloneReadsOwnFlag(t *testing.T) {
	m := new(MockStore)
	m.On("GetSequence", "seq-1").Return(&domain.Sequence{ID: "seq-1", Name: "onboarding"}, nil)
	svc := NewSubscriptionService(m, nil, nil)

	sub := &domain.SequenceSubscription{ID: "sub-1", EntityID: "user-1", SequenceID: "seq-1"}
	sub.SetState(domain.StandaloneState{Active: true})

	active, err := svc.IsActive(sub)
	require.NoError(t, err)
	assert.True(t, active)
	m.AssertExpectations(t)
	m.AssertNotCalled(t, "GetSubscription", mock.Anything, mock.Anything)
}
