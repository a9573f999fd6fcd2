package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"maily/backend/internal/domain"
)

// MetricsRecorder 订阅相关指标记录接口，由 monitoring.Metrics 实现
type MetricsRecorder interface {
	RecordSubscriptionCreated(aggregated bool)
	RecordAggregateCreated()
	RecordStateChange(target string, active bool)
	RecordResync(direction string)
}

type nopRecorder struct{}

func (nopRecorder) RecordSubscriptionCreated(bool) {}
func (nopRecorder) RecordAggregateCreated()        {}
func (nopRecorder) RecordStateChange(string, bool) {}
func (nopRecorder) RecordResync(string)            {}

// SubscriptionService 订阅解析服务
//
// 负责按需创建序列订阅与聚合订阅，并根据序列是否分组推导生效的订阅状态。
type SubscriptionService struct {
	store   domain.Store
	logger  *zap.Logger
	metrics MetricsRecorder
}

// NewSubscriptionService 创建订阅解析服务
func NewSubscriptionService(store domain.Store, logger *zap.Logger, metrics MetricsRecorder) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &SubscriptionService{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// SubscriptionFor 获取或创建订阅者在序列上的订阅
//
// 参数:
//   - entityID: 订阅者ID
//   - sequenceID: 序列ID
//
// 返回值:
//   - *domain.SequenceSubscription: 订阅记录，重复调用返回同一条记录
//   - error: 订阅者或序列不存在时返回对应的 NotFound 错误
func (s *SubscriptionService) SubscriptionFor(entityID, sequenceID string) (*domain.SequenceSubscription, error) {
	if _, err := s.store.GetSubscriber(entityID); err != nil {
		return nil, err
	}
	sequence, err := s.store.GetSequence(sequenceID)
	if err != nil {
		return nil, err
	}

	sub, err := s.store.GetSubscription(entityID, sequence.ID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		sub, err = s.createSubscription(entityID, sequence)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.resync(sub, sequence)
}

func (s *SubscriptionService) createSubscription(entityID string, sequence *domain.Sequence) (*domain.SequenceSubscription, error) {
	var candidate *domain.SequenceSubscription
	if sequence.Grouped() {
		aggregate, err := s.AggregateFor(entityID, *sequence.GroupID)
		if err != nil {
			return nil, err
		}
		candidate = domain.NewAggregatedSubscriptionLink(uuid.New().String(), entityID, sequence, aggregate)
	} else {
		candidate = domain.NewStandaloneSubscription(uuid.New().String(), entityID, sequence)
	}

	sub, created, err := s.store.FindOrCreateSubscription(candidate)
	if err != nil {
		return nil, err
	}
	if created {
		s.metrics.RecordSubscriptionCreated(sub.Aggregated)
		s.logger.Debug("subscription created",
			zap.String("entity_id", entityID),
			zap.String("sequence", sequence.Name),
			zap.Bool("aggregated", sub.Aggregated),
		)
	}
	return sub, nil
}

// resync 使订阅与序列当前的分组保持一致
//
// 序列加入订阅组后，订阅改为关联该组的聚合订阅；
// 序列离开订阅组后，订阅转为独立订阅并保留最后一次生效的状态。
func (s *SubscriptionService) resync(sub *domain.SequenceSubscription, sequence *domain.Sequence) (*domain.SequenceSubscription, error) {
	switch state := sub.State().(type) {
	case domain.AggregatedState:
		current, err := s.store.GetAggregateByID(state.AggregateID)
		if err != nil && !errors.Is(err, domain.ErrAggregateNotFound) {
			return nil, err
		}

		if sequence.Grouped() {
			if current != nil && current.GroupID == *sequence.GroupID {
				return sub, nil
			}
			return s.relink(sub, sequence)
		}

		active := sequence.Autosubscribe
		if current != nil {
			active = current.Active
		}
		sub.SetState(domain.StandaloneState{Active: active})
		if err := s.store.UpdateSubscription(sub); err != nil {
			return nil, err
		}
		s.metrics.RecordResync("standalone")
		s.logger.Info("subscription detached from group",
			zap.String("subscription_id", sub.ID),
			zap.String("sequence", sequence.Name),
			zap.Bool("active", active),
		)
		return sub, nil

	case domain.StandaloneState:
		if !sequence.Grouped() {
			return sub, nil
		}
		return s.relink(sub, sequence)

	default:
		return nil, fmt.Errorf("unknown subscription state %T", state)
	}
}

func (s *SubscriptionService) relink(sub *domain.SequenceSubscription, sequence *domain.Sequence) (*domain.SequenceSubscription, error) {
	aggregate, err := s.AggregateFor(sub.EntityID, *sequence.GroupID)
	if err != nil {
		return nil, err
	}

	sub.SetState(domain.AggregatedState{AggregateID: aggregate.ID})
	if err := s.store.UpdateSubscription(sub); err != nil {
		return nil, err
	}
	s.metrics.RecordResync("aggregated")
	s.logger.Info("subscription linked to group",
		zap.String("subscription_id", sub.ID),
		zap.String("sequence", sequence.Name),
		zap.String("aggregate_id", aggregate.ID),
	)
	return sub, nil
}

// current 按序列当前的分组同步订阅，sub 会被原地更新
func (s *SubscriptionService) current(sub *domain.SequenceSubscription) (*domain.SequenceSubscription, error) {
	sequence, err := s.store.GetSequence(sub.SequenceID)
	if err != nil {
		return nil, err
	}
	return s.resync(sub, sequence)
}

// AggregateFor 获取或创建订阅者在订阅组上的聚合订阅
//
// 新建的聚合订阅状态取自订阅组的 autosubscribe。
func (s *SubscriptionService) AggregateFor(entityID, groupID string) (*domain.AggregatedSubscription, error) {
	if _, err := s.store.GetSubscriber(entityID); err != nil {
		return nil, err
	}
	group, err := s.store.GetGroup(groupID)
	if err != nil {
		return nil, err
	}

	aggregate, err := s.store.GetAggregate(entityID, group.ID)
	if err == nil {
		return aggregate, nil
	}
	if !errors.Is(err, domain.ErrAggregateNotFound) {
		return nil, err
	}

	aggregate, created, err := s.store.FindOrCreateAggregate(
		domain.NewAggregatedSubscription(uuid.New().String(), entityID, group),
	)
	if err != nil {
		return nil, err
	}
	if created {
		s.metrics.RecordAggregateCreated()
		s.logger.Debug("aggregated subscription created",
			zap.String("entity_id", entityID),
			zap.String("group", group.Name),
			zap.Bool("active", aggregate.Active),
		)
	}
	return aggregate, nil
}

// IsActive 返回订阅生效的状态；序列分组变更过的订阅会先同步
func (s *SubscriptionService) IsActive(sub *domain.SequenceSubscription) (bool, error) {
	sub, err := s.current(sub)
	if err != nil {
		return false, err
	}

	switch state := sub.State().(type) {
	case domain.StandaloneState:
		return state.Active, nil
	case domain.AggregatedState:
		aggregate, err := s.store.GetAggregateByID(state.AggregateID)
		if err != nil {
			return false, err
		}
		return aggregate.Active, nil
	default:
		return false, fmt.Errorf("unknown subscription state %T", state)
	}
}

// Activate 激活订阅；聚合订阅会同时影响订阅组内的所有序列
func (s *SubscriptionService) Activate(sub *domain.SequenceSubscription) error {
	return s.setActive(sub, true)
}

// Deactivate 停用订阅；聚合订阅会同时影响订阅组内的所有序列
func (s *SubscriptionService) Deactivate(sub *domain.SequenceSubscription) error {
	return s.setActive(sub, false)
}

func (s *SubscriptionService) setActive(sub *domain.SequenceSubscription, active bool) error {
	sub, err := s.current(sub)
	if err != nil {
		return err
	}

	switch state := sub.State().(type) {
	case domain.StandaloneState:
		sub.SetState(domain.StandaloneState{Active: active})
		if err := s.store.UpdateSubscription(sub); err != nil {
			return err
		}
		s.metrics.RecordStateChange("subscription", active)
		return nil
	case domain.AggregatedState:
		aggregate, err := s.store.GetAggregateByID(state.AggregateID)
		if err != nil {
			return err
		}
		return s.setAggregate(aggregate, active)
	default:
		return fmt.Errorf("unknown subscription state %T", state)
	}
}

// ActivateAggregate 激活聚合订阅
func (s *SubscriptionService) ActivateAggregate(aggregate *domain.AggregatedSubscription) error {
	return s.setAggregate(aggregate, true)
}

// DeactivateAggregate 停用聚合订阅
func (s *SubscriptionService) DeactivateAggregate(aggregate *domain.AggregatedSubscription) error {
	return s.setAggregate(aggregate, false)
}

func (s *SubscriptionService) setAggregate(aggregate *domain.AggregatedSubscription, active bool) error {
	aggregate.Active = active
	if err := s.store.UpdateAggregate(aggregate); err != nil {
		return err
	}
	s.metrics.RecordStateChange("aggregate", active)
	return nil
}

// SetAggregateActive 设置订阅者在订阅组上的聚合订阅状态
func (s *SubscriptionService) SetAggregateActive(entityID, groupID string, active bool) (*domain.AggregatedSubscription, error) {
	aggregate, err := s.AggregateFor(entityID, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.setAggregate(aggregate, active); err != nil {
		return nil, err
	}
	return aggregate, nil
}

// Status 获取订阅及其生效状态
func (s *SubscriptionService) Status(entityID, sequenceID string) (*domain.SubscriptionStatus, error) {
	sub, err := s.SubscriptionFor(entityID, sequenceID)
	if err != nil {
		return nil, err
	}
	return s.statusOf(sub)
}

func (s *SubscriptionService) statusOf(sub *domain.SequenceSubscription) (*domain.SubscriptionStatus, error) {
	sub, err := s.current(sub)
	if err != nil {
		return nil, err
	}
	status := &domain.SubscriptionStatus{Subscription: sub}

	switch state := sub.State().(type) {
	case domain.StandaloneState:
		status.Active = state.Active
	case domain.AggregatedState:
		aggregate, err := s.store.GetAggregateByID(state.AggregateID)
		if err != nil {
			return nil, err
		}
		status.Aggregate = aggregate
		status.Active = aggregate.Active
	}
	return status, nil
}

// ListForEntity 列出订阅者的全部订阅及其生效状态
func (s *SubscriptionService) ListForEntity(entityID string) ([]domain.SubscriptionStatus, error) {
	if _, err := s.store.GetSubscriber(entityID); err != nil {
		return nil, err
	}

	subs, err := s.store.ListSubscriptionsByEntity(entityID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.SubscriptionStatus, 0, len(subs))
	for i := range subs {
		status, err := s.statusOf(&subs[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *status)
	}
	return result, nil
}
