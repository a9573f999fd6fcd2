package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"Valid email", "test@example.com", nil},
		{"Valid email with subdomain", "user@mail.example.com", nil},
		{"Valid email with plus", "user+tag@example.com", nil},
		{"Upper case is normalized", " User@Example.COM ", nil},
		{"Invalid email - no @", "testexample.com", ErrInvalidEmail},
		{"Invalid email - no domain", "test@", ErrInvalidEmail},
		{"Invalid email - no local part", "@example.com", ErrInvalidEmail},
		{"Invalid email - empty", "", ErrInvalidEmail},
		{"Invalid email - spaces", "test user@example.com", ErrInvalidEmail},
		{"Invalid email - no tld", "test@localhost", ErrInvalidEmail},
	}

	validator := NewEmailValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateEmail(tt.email)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected error
	}{
		{"单词", "marketing", nil},
		{"下划线与数字", "weekly_newsletter_2", nil},
		{"大写字母", "Marketing", ErrInvalidName},
		{"数字开头", "2news", ErrInvalidName},
		{"连字符", "news-letters", ErrInvalidName},
		{"空字符串", "", ErrInvalidName},
		{"过长", "a234567890123456789012345678901234567890123456789012345678901234x", ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateName(tt.input))
		})
	}
}

func TestSequenceSubscription_Validate(t *testing.T) {
	aggID := "agg-1"

	t.Run("缺少订阅者", func(t *testing.T) {
		sub := &SequenceSubscription{ID: "s1", SequenceID: "seq-1"}
		assert.True(t, errors.Is(sub.Validate(), ErrValidation))
	})

	t.Run("缺少序列", func(t *testing.T) {
		sub := &SequenceSubscription{ID: "s1", EntityID: "u1"}
		assert.ErrorIs(t, sub.Validate(), ErrValidation)
	})

	t.Run("聚合订阅缺少聚合记录", func(t *testing.T) {
		sub := &SequenceSubscription{ID: "s1", EntityID: "u1", SequenceID: "seq-1", Aggregated: true}
		assert.ErrorIs(t, sub.Validate(), ErrValidation)
	})

	t.Run("合法的聚合订阅", func(t *testing.T) {
		sub := &SequenceSubscription{ID: "s1", EntityID: "u1", SequenceID: "seq-1", Aggregated: true, AggregateID: &aggID}
		assert.NoError(t, sub.Validate())
	})
}

func TestSequenceSubscription_State(t *testing.T) {
	groupID := "grp-1"
	grouped := &Sequence{ID: "seq-1", GroupID: &groupID, Autosubscribe: true}
	ungrouped := &Sequence{ID: "seq-2", Autosubscribe: true}

	t.Run("未分组序列使用自身 autosubscribe", func(t *testing.T) {
		sub := NewStandaloneSubscription("s1", "u1", ungrouped)
		assert.Equal(t, StandaloneState{Active: true}, sub.State())
		assert.False(t, sub.Aggregated)
	})

	t.Run("分组序列委托给聚合订阅", func(t *testing.T) {
		agg := NewAggregatedSubscription("a1", "u1", &SubscriptionGroup{ID: groupID, Autosubscribe: false})
		sub := NewAggregatedSubscriptionLink("s1", "u1", grouped, agg)
		assert.Equal(t, AggregatedState{AggregateID: "a1"}, sub.State())
		assert.True(t, sub.Aggregated)
		assert.False(t, agg.Active)
	})

	t.Run("从聚合切换为独立", func(t *testing.T) {
		agg := NewAggregatedSubscription("a1", "u1", &SubscriptionGroup{ID: groupID})
		sub := NewAggregatedSubscriptionLink("s1", "u1", grouped, agg)
		sub.SetState(StandaloneState{Active: true})
		assert.Nil(t, sub.AggregateID)
		assert.Equal(t, StandaloneState{Active: true}, sub.State())
	})
}
