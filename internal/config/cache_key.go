package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AnswerKeyKey returns the cache key for a question set's answer key
// (question id -> correct answer index).
func (r *CacheKeyStruct) AnswerKeyKey(questionSetID string) string {
	return fmt.Sprintf("qset:%s:answer_key", questionSetID)
}

// SessionDeadlinesKey returns the sorted set holding exam session deadlines,
// scored by the Unix timestamp of ends_at.
func (r *CacheKeyStruct) SessionDeadlinesKey() string {
	return "sessions:deadlines"
}

var CacheKey = NewCacheKeyStruct()
