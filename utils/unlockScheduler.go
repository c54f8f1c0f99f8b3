package utils

import (
	"context"
	"log"
	"strconv"
	"time"

	"sadhaka/config"
	"sadhaka/database"
	workshopModels "sadhaka/models/workshop"
	"sadhaka/progress"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[UNLOCK-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// refreshPendingUnlocks re-evaluates time-gap unlock rules for every active
// enrollment. Time-gap unlocks are the only transitions that happen by
// wall-clock passage alone, so they need a periodic sweep; every other
// unlock trigger piggybacks on a student mutation.
func refreshPendingUnlocks(engine *progress.Engine) {
	var rows []workshopModels.StudentProgress
	if err := database.Database.Db.
		Where("is_completed = ? AND is_deleted = ?", false, false).
		Find(&rows).Error; err != nil {
		logScheduler("Error fetching active progress records: " + err.Error())
		return
	}

	now := time.Now()
	refreshed := 0
	for _, row := range rows {
		_, changed, err := engine.RefreshUnlocks(context.Background(), row.EnrollmentID, now)
		if err != nil {
			logScheduler("Error refreshing enrollment: " + err.Error())
			continue
		}
		if changed {
			refreshed++
		}
	}
	if refreshed > 0 {
		logScheduler("Unlocked new sessions for " + strconv.Itoa(refreshed) + " enrollments")
	}
}

// StartUnlockScheduler registers the periodic unlock refresh and starts the
// cron runner.
func StartUnlockScheduler(engine *progress.Engine) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc(config.AppConfig.UnlockRefreshCron, func() {
		refreshPendingUnlocks(engine)
	}); err != nil {
		log.Fatalf("Invalid UNLOCK_REFRESH_CRON expression: %v", err)
	}

	c.Start()
	logScheduler("Unlock scheduler initialized successfully")
	return c
}
