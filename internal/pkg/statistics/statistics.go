package statistics

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/yatube/yatube/app/models"
	"github.com/yatube/yatube/internal/pkg/cache"
)

const (
	CacheKeyPostsTotal = "statistics:posts:total"
	CacheKeyPostsDaily = "statistics:posts:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyUsers      = "statistics:users:total"
	CacheExpiration    = 30 * time.Minute

	DefaultSchedule = "@every 5m"
)

// StatisticsData holds the site counters shown in the footer
type StatisticsData struct {
	TodayPosts int
	TotalUsers int
	TotalPosts int
}

// Compute counts users and posts straight from the database.
func Compute(db *gorm.DB, now time.Time) (StatisticsData, error) {
	var stats StatisticsData

	var totalPosts int64
	if err := db.Model(&models.Post{}).Count(&totalPosts).Error; err != nil {
		return stats, fmt.Errorf("count posts: %w", err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var todayPosts int64
	if err := db.Model(&models.Post{}).Where("pub_date >= ? AND pub_date < ?", dayStart, dayStart.Add(24*time.Hour)).
		Count(&todayPosts).Error; err != nil {
		return stats, fmt.Errorf("count today's posts: %w", err)
	}

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return stats, fmt.Errorf("count users: %w", err)
	}

	stats.TotalPosts = int(totalPosts)
	stats.TodayPosts = int(todayPosts)
	stats.TotalUsers = int(totalUsers)
	return stats, nil
}

// UpdateStatisticsCache recomputes the counters and stores them in Redis.
func UpdateStatisticsCache(db *gorm.DB) error {
	if !cache.Available() {
		return cache.ErrUnavailable
	}

	now := time.Now()
	stats, err := Compute(db, now)
	if err != nil {
		return err
	}

	entries := []struct {
		key   string
		value int
	}{
		{CacheKeyPostsTotal, stats.TotalPosts},
		{fmt.Sprintf(CacheKeyPostsDaily, now.Format("2006-01-02")), stats.TodayPosts},
		{CacheKeyUsers, stats.TotalUsers},
	}
	for _, e := range entries {
		if err := cache.Set(e.key, strconv.Itoa(e.value), CacheExpiration); err != nil {
			return fmt.Errorf("cache %s: %w", e.key, err)
		}
	}

	log.Debugf("[Statistics] Updated: posts=%d today=%d users=%d", stats.TotalPosts, stats.TodayPosts, stats.TotalUsers)
	return nil
}

// GetStatisticsData returns the cached counters. ok is false when Redis is
// not configured or the cache has not been filled yet.
func GetStatisticsData() (StatisticsData, bool) {
	if !cache.Available() {
		return StatisticsData{}, false
	}

	total, err := cache.GetInt(CacheKeyPostsTotal)
	if err != nil {
		return StatisticsData{}, false
	}
	users, err := cache.GetInt(CacheKeyUsers)
	if err != nil {
		return StatisticsData{}, false
	}
	// the daily key rolls over at midnight before the next refresh
	today, _ := cache.GetInt(fmt.Sprintf(CacheKeyPostsDaily, time.Now().Format("2006-01-02")))

	return StatisticsData{TodayPosts: today, TotalUsers: users, TotalPosts: total}, true
}

var (
	scheduler   *cron.Cron
	schedulerMu sync.Mutex
)

// StartScheduler refreshes the statistics now and then on spec
// (STATS_CRON). It does nothing without Redis.
func StartScheduler(db *gorm.DB, spec string) error {
	if !cache.Available() {
		log.Info("[Statistics] Redis not configured, statistics disabled")
		return nil
	}
	if spec == "" {
		spec = DefaultSchedule
	}

	schedulerMu.Lock()
	defer schedulerMu.Unlock()
	if scheduler != nil {
		return nil
	}

	c := cron.New()
	refresh := func() {
		if err := UpdateStatisticsCache(db); err != nil {
			log.Errorf("[Statistics] Refresh failed: %v", err)
		}
	}
	if _, err := c.AddFunc(spec, refresh); err != nil {
		return fmt.Errorf("invalid STATS_CRON %q: %w", spec, err)
	}

	go refresh()
	c.Start()
	scheduler = c
	log.Infof("[Statistics] Scheduler started (%s)", spec)
	return nil
}

// StopScheduler waits for a running refresh and stops the schedule.
func StopScheduler() {
	schedulerMu.Lock()
	defer schedulerMu.Unlock()
	if scheduler == nil {
		return
	}
	<-scheduler.Stop().Done()
	scheduler = nil
}
