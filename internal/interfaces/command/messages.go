package command

import (
	"fmt"
	"strings"
	"time"

	"remindbot/internal/application/dto"
	"remindbot/internal/domain/entity"
)

// DisplayLayout is how fire times are shown to users.
const DisplayLayout = "2006-01-02 15:04"

type catalog struct {
	usageCreate   string
	parseFailure  string
	pastTime      string
	emptyContent  string
	created       string // time, content
	repeatInfo    string // recurrence label
	createFailed  string
	listEmpty     string
	listHeader    string
	statusActive  string
	statusPaused  string
	listFailed    string
	indexMissing  string // action verb, command
	indexInvalid  string
	indexNotFound string
	deleted       string // content
	deleteFailed  string
	paused        string // content
	resumed       string // content
	alreadyActive string
	alreadyPaused string
	expired       string // content
	toggleFailed  string // action verb
	cleared       string // count
	clearFailed   string
	pauseVerb     string
	resumeVerb    string
	deleteVerb    string
	pauseCmd      string
	resumeCmd     string
	deleteCmd     string
	help          string
}

var catalogs = map[string]*catalog{
	"zh": {
		usageCreate:   "格式错误！使用方法：\n提醒我 [时间] [内容] [重复类型(可选)]\n例如：提醒我 10分钟后 开会\n或：提醒我 18:00 下班回家 每天",
		parseFailure:  "时间格式错误！支持的格式：\n- 相对时间：10分钟后, 2小时后, 1天后\n- 绝对时间：2026-01-01 12:00\n- 简单时间：12:00, 下午3点\n- 日期词：明天下午3点, 后天上午, 下周一 9点",
		pastTime:      "设置的时间已经过去了，请重新设置！",
		emptyContent:  "提醒内容不能为空！",
		created:       "✅ 提醒设置成功！\n时间：%s\n内容：%s",
		repeatInfo:    "\n重复类型：%s",
		createFailed:  "设置提醒失败，请稍后再试！",
		listEmpty:     "您还没有设置任何提醒。",
		listHeader:    "📋 您的提醒列表：",
		statusActive:  "✅ 活跃",
		statusPaused:  "⏸️ 暂停",
		listFailed:    "获取提醒列表失败！",
		indexMissing:  "请指定要%s的提醒序号，例如：%s 1",
		indexInvalid:  "请输入有效的提醒序号！",
		indexNotFound: "提醒序号不存在！",
		deleted:       "✅ 已删除提醒：%s",
		deleteFailed:  "删除提醒失败！",
		paused:        "⏸️ 已暂停提醒：%s",
		resumed:       "✅ 已恢复提醒：%s",
		alreadyActive: "提醒已经是活跃状态！",
		alreadyPaused: "提醒已经是暂停状态！",
		expired:       "提醒时间已过，已删除：%s",
		toggleFailed:  "%s提醒失败！",
		cleared:       "✅ 已清空 %d 条提醒",
		clearFailed:   "清空提醒失败！",
		pauseVerb:     "暂停",
		resumeVerb:    "恢复",
		deleteVerb:    "删除",
		pauseCmd:      "暂停提醒",
		resumeCmd:     "恢复提醒",
		deleteCmd:     "删除提醒",
		help: `📖 定时提醒使用说明：

🔧 设置提醒：
• 提醒我 [时间] [内容] [重复类型(可选)]
• 时间格式：
  - 相对时间：10分钟后, 2小时后, 1天后, 半小时后
  - 绝对时间：2026-01-01 12:00, 10月20日 8点
  - 简单时间：12:00, 下午3点 (今天，如已过则明天)
  - 日期词：明天下午3点, 后天上午, 下周一 9点, 15号 9点
• 重复类型：不重复(默认), 每天, 每周, 每月

📋 管理提醒：
• 查看提醒 - 查看所有提醒
• 删除提醒 [序号] - 删除指定提醒
• 暂停提醒 [序号] - 暂停指定提醒
• 恢复提醒 [序号] - 恢复指定提醒
• 清空提醒 - 删除所有提醒

💡 示例：
• 提醒我 30分钟后 开会
• 提醒我 18:00 下班回家 每天
• 提醒我 每周一 9点 周会`,
	},
	"en": {
		usageCreate:   "Wrong format! Usage:\nremind me <time> <content> [recurrence]\nExample: remind me in 10 minutes stand up\nOr: remind me 18:00 go home daily",
		parseFailure:  "Time not understood! Supported formats:\n- relative: in 10 minutes, 2 hours from now, 3 days later\n- absolute: 2026-01-01 12:00\n- clock: 12:00, 5pm\n- day words: tomorrow 9am, next friday 5pm",
		pastTime:      "That time has already passed, please pick another one!",
		emptyContent:  "The reminder content is empty!",
		created:       "✅ Reminder set!\nTime: %s\nContent: %s",
		repeatInfo:    "\nRepeats: %s",
		createFailed:  "Failed to set the reminder, please try again later!",
		listEmpty:     "You have no reminders yet.",
		listHeader:    "📋 Your reminders:",
		statusActive:  "✅ active",
		statusPaused:  "⏸️ paused",
		listFailed:    "Failed to load your reminders!",
		indexMissing:  "Please give the number of the reminder to %s, e.g. %s 1",
		indexInvalid:  "Please enter a valid reminder number!",
		indexNotFound: "No reminder with that number!",
		deleted:       "✅ Deleted reminder: %s",
		deleteFailed:  "Failed to delete the reminder!",
		paused:        "⏸️ Paused reminder: %s",
		resumed:       "✅ Resumed reminder: %s",
		alreadyActive: "That reminder is already active!",
		alreadyPaused: "That reminder is already paused!",
		expired:       "That reminder's time has passed, it was deleted: %s",
		toggleFailed:  "Failed to %s the reminder!",
		cleared:       "✅ Cleared %d reminders",
		clearFailed:   "Failed to clear your reminders!",
		pauseVerb:     "pause",
		resumeVerb:    "resume",
		deleteVerb:    "delete",
		pauseCmd:      "pause reminder",
		resumeCmd:     "resume reminder",
		deleteCmd:     "delete reminder",
		help: `📖 Reminder help:

🔧 Set a reminder:
• remind me <time> <content> [recurrence]
• Time formats:
  - relative: in 10 minutes, 2 hours from now, an hour later
  - absolute: 2026-01-01 12:00
  - clock: 12:00, 5pm (today, or tomorrow if passed)
  - day words: tomorrow 9am, next friday 5pm, monday 9am
• Recurrence: once (default), daily, weekly, monthly

📋 Manage reminders:
• list reminders
• delete reminder <n>
• pause reminder <n>
• resume reminder <n>
• clear all reminders

💡 Examples:
• remind me in 30 minutes meeting
• remind me 18:00 go home daily
• remind me every monday 9am weekly sync`,
	},
}

func catalogFor(locale string) *catalog {
	if c, ok := catalogs[locale]; ok {
		return c
	}
	return catalogs["zh"]
}

// Help returns the usage text of a locale.
func Help(locale string) string {
	return catalogFor(locale).help
}

func formatCreated(c *catalog, locale string, r dto.ReminderResponse, loc *time.Location) string {
	msg := fmt.Sprintf(c.created, r.FireAt.In(loc).Format(DisplayLayout), r.Content)
	if r.Recurrence != entity.RecurrenceNone {
		msg += fmt.Sprintf(c.repeatInfo, r.Recurrence.Label(locale))
	}
	return msg
}

// FormatList renders reminders as
// "n. <content> — <time> (<recurrence>) <status>", one per line.
func FormatList(locale string, reminders []dto.ReminderResponse, loc *time.Location) string {
	c := catalogFor(locale)
	if len(reminders) == 0 {
		return c.listEmpty
	}
	var b strings.Builder
	b.WriteString(c.listHeader)
	for _, r := range reminders {
		status := c.statusActive
		if !r.Active {
			status = c.statusPaused
		}
		fmt.Fprintf(&b, "\n%d. %s — %s (%s) %s",
			r.Index, r.Content, r.FireAt.In(loc).Format(DisplayLayout), r.Recurrence.Label(locale), status)
	}
	return b.String()
}
