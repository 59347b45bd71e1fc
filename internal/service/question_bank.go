package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prepdesk/prepdesk-backend/internal/config"
	"github.com/prepdesk/prepdesk-backend/internal/model"
	"github.com/prepdesk/prepdesk-backend/internal/repository"
	"github.com/redis/go-redis/v9"
)

// answerKeyTTL bounds how stale a cached answer key can get after an admin
// edits a question.
const answerKeyTTL = 5 * time.Minute

// QuestionBank serves question detail and answer keys to the session engine.
// Answer keys are cached in Redis per question set since every submission of
// the same set needs the same map.
type QuestionBank struct {
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
}

// NewQuestionBank creates a new QuestionBank.
func NewQuestionBank(questionRepo *repository.QuestionRepository, rdb *redis.Client) *QuestionBank {
	return &QuestionBank{questionRepo: questionRepo, rdb: rdb}
}

// Questions returns full question rows keyed by id. Ids with no backing
// question are absent from the map.
func (b *QuestionBank) Questions(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error) {
	return b.questionRepo.ListByIDs(ctx, ids)
}

// AnswerKey returns questionID -> correct answer index for a question set's
// snapshot, from cache when possible. A Redis failure falls through to
// PostgreSQL rather than failing the submission.
func (b *QuestionBank) AnswerKey(ctx context.Context, questionSetID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	cacheKey := config.CacheKey.AnswerKeyKey(questionSetID.String())

	if cached, err := b.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var key map[uuid.UUID]int
		if err := json.Unmarshal([]byte(cached), &key); err == nil {
			return key, nil
		}
	}

	key, err := b.questionRepo.AnswerKey(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}

	if payload, err := json.Marshal(key); err == nil {
		_ = b.rdb.Set(ctx, cacheKey, payload, answerKeyTTL).Err()
	}
	return key, nil
}

// Invalidate drops the cached answer key for a question set. Called after
// admin edits to the set or its questions.
func (b *QuestionBank) Invalidate(ctx context.Context, questionSetID uuid.UUID) error {
	return b.rdb.Del(ctx, config.CacheKey.AnswerKeyKey(questionSetID.String())).Err()
}
