package services

import (
	"time"

	"timetable-api/models"

	"github.com/patrickmn/go-cache"
)

const timetableCacheKey = "timetable"

// CacheService holds the last projected timetable until the booking set changes.
type CacheService struct {
	cache *cache.Cache
}

func NewCacheService(defaultExpiration, cleanupInterval time.Duration) *CacheService {
	return &CacheService{
		cache: cache.New(defaultExpiration, cleanupInterval),
	}
}

func (s *CacheService) GetTimetable() (models.Timetable, bool) {
	cached, found := s.cache.Get(timetableCacheKey)
	if !found {
		return models.Timetable{}, false
	}
	tt, ok := cached.(models.Timetable)
	return tt, ok
}

func (s *CacheService) SetTimetable(tt models.Timetable) {
	s.cache.Set(timetableCacheKey, tt, cache.DefaultExpiration)
}

func (s *CacheService) Flush() {
	s.cache.Flush()
}
