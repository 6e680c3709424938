package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pacekeeper/pacekeeper/models"
)

// ActivityRecorder counts successful API requests per day and route. The
// stats endpoint derives its daily-active figure from these rows.
func ActivityRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 400 {
			return
		}

		// FullPath collapses parameterized routes (/workouts/:id) so counts
		// aggregate per route, not per resource.
		path := c.FullPath()
		if path == "" || path == "/health" || strings.Contains(path, "/stats") {
			return
		}

		// Use local midnight to align with DATE column
		now := time.Now().In(time.Local)
		localMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		// Atomic upsert to avoid duplicate key errors under concurrency
		_ = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
		}).Create(&models.APIHit{Date: localMidnight, Path: path, Count: 1}).Error
	}
}
