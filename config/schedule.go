package config

import (
	"github.com/robfig/cron"

	"github.com/asalkeld/fetchbot/common"
)

// ReadyToKickoff reports whether the room's standup announcement time has
// passed for today in the room's timezone.
func (r *Room) ReadyToKickoff() (bool, error) {
	now, err := common.NowWithLocation(r.Timezone)
	if err != nil {
		return false, err
	}

	c, err := cron.ParseStandard(r.KickoffCron)
	if err != nil {
		return false, err
	}

	startOfDay, _ := common.DayBounds(*now)
	scheduled := c.Next(startOfDay)

	return now.After(scheduled), nil
}

// KickoffDay is the calendar day key used to announce at most once per day.
func (r *Room) KickoffDay() (string, error) {
	return common.ToDay(r.Timezone)
}
