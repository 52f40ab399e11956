package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Simulata/internal/domain"
)

// cronParser — парсер cron-выражений (5 полей, без секунд).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextDue вычисляет следующее время срабатывания расписания после from.
// Для интервалов просто добавляет IntervalSeconds.
// Учитывает timezone расписания (fallback на UTC).
func NextDue(spec *domain.ScheduleSpec, from time.Time) (time.Time, error) {
	loc := time.UTC
	if spec.Timezone != "" {
		if l, err := time.LoadLocation(spec.Timezone); err == nil {
			loc = l
		}
	}

	fromInTz := from.In(loc)

	if spec.IsCron() {
		return nextCron(spec.Cron, fromInTz)
	}

	if spec.IsInterval() {
		return fromInTz.Add(time.Duration(spec.IntervalSeconds) * time.Second).UTC(), nil
	}

	// Ни cron, ни interval — расписание хранится, но не срабатывает.
	return time.Time{}, fmt.Errorf("schedule has neither cron nor interval_seconds")
}

// nextCron вычисляет следующее время по cron-выражению.
func nextCron(expr string, from time.Time) (time.Time, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}

	return schedule.Next(from).UTC(), nil
}

// ValidateSpec проверяет расписание при создании deployment.
// Пустое расписание (ни cron, ни интервала) допустимо — оно просто
// хранится и никогда не срабатывает; невалидный cron — ошибка.
func ValidateSpec(spec *domain.ScheduleSpec) error {
	if spec == nil || !spec.IsCron() {
		return nil
	}

	if _, err := cronParser.Parse(spec.Cron); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec.Cron, err)
	}
	return nil
}
