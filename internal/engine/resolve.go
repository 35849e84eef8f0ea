package engine

import (
	"fmt"

	"github.com/granjaops/taskward/internal/models"
)

// resolveEntries joins one batch against the feed configurations and task
// templates. Both sources apply; feed entries come first. A missing
// configuration for the batch's category is a normal "nothing to do".
func resolveEntries(
	batch *models.Batch,
	group *models.Group,
	feeds []*models.FeedConfiguration,
	templates []*models.TaskTemplate,
) []models.ScheduleEntry {
	var entries []models.ScheduleEntry

	category := models.NormalizeGroupType(group.Type)

	// Feed source: the single active configuration for the batch's category.
	for _, feed := range feeds {
		if !feed.Active || feed.GroupType != category {
			continue
		}
		title := fmt.Sprintf("Alimentar %s (%s) 🌾", batch.Name, group.Name)
		for _, scheduleTime := range feed.ScheduleTimes {
			entries = append(entries, models.ScheduleEntry{
				BatchID:  batch.ID,
				TaskType: models.TaskTypeFeed,
				Title:    title,
				Time:     scheduleTime,
				Source:   models.ScheduleSourceFeed,
			})
		}
		break
	}

	// Template source: global templates plus those matching the batch's
	// category.
	for _, tpl := range templates {
		if !tpl.Active {
			continue
		}
		if tpl.CategoryID != nil && (batch.CategoryID == nil || *tpl.CategoryID != *batch.CategoryID) {
			continue
		}
		taskType := tpl.TaskType
		if taskType == "" {
			taskType = models.TaskTypeCustom
		}
		entries = append(entries, models.ScheduleEntry{
			BatchID:  batch.ID,
			TaskType: taskType,
			Title:    fmt.Sprintf("%s - %s 📋", tpl.Title, batch.Name),
			Time:     tpl.DefaultTime,
			Source:   models.ScheduleSourceTemplate,
		})
	}

	return entries
}
