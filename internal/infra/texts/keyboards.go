package texts

import (
	"fmt"

	"tefillin-reminder-bot/internal/domain/ports/adapter"
)

// Callback tokens shared between keyboards and the callback router.
const (
	CallbackDone           = "tefillin_done"
	CallbackShowShema      = "show_shema"
	CallbackSnoozeCustom   = "snooze_custom"
	CallbackSnoozeSunset   = "snooze_sunset"
	CallbackChangeTime     = "change_time"
	CallbackTimeCustom     = "time_custom"
	CallbackSunsetSettings = "sunset_settings"
	CallbackStats          = "stats"
	CallbackShowSettings   = "show_settings"
	CallbackSkipToday      = "skip_today"
	CallbackBackToMenu     = "back_to_menu"
	CallbackBackToSettings = "back_to_settings"
)

func btn(text, data string) adapter.Button { return adapter.Button{Text: text, Data: data} }

// DailyReminderKeyboard is attached to the morning reminder.
func DailyReminderKeyboard() [][]adapter.Button {
	return [][]adapter.Button{
		{btn("הנחתי ✅", CallbackDone)},
		{btn("קריאת שמע 📖", CallbackShowShema)},
		{btn("נודניק 1ש'", "snooze_60"), btn("נודניק 3ש'", "snooze_180")},
		{btn("לבחור זמן...", CallbackSnoozeCustom), btn("עד לפני שקיעה", CallbackSnoozeSunset)},
	}
}

// SunsetReminderKeyboard offers only short delays; the day is almost over.
func SunsetReminderKeyboard() [][]adapter.Button {
	return [][]adapter.Button{
		{btn("הנחתי ✅", CallbackDone)},
		{btn("קריאת שמע 📖", CallbackShowShema)},
		{btn("דחה 15 דק'", "snooze_15"), btn("דחה 30 דק'", "snooze_30")},
	}
}

func SnoozeReminderKeyboard() [][]adapter.Button {
	return [][]adapter.Button{
		{btn("הנחתי ✅", CallbackDone)},
		{btn("קריאת שמע 📖", CallbackShowShema)},
		{btn("עוד נודניק 1ש'", "snooze_60"), btn("עוד נודניק 3ש'", "snooze_180")},
	}
}

// TimeSelectionKeyboard lists the preset morning slots. withBack adds the
// return-to-menu row used everywhere except first registration.
func TimeSelectionKeyboard(withBack bool) [][]adapter.Button {
	rows := [][]adapter.Button{
		{btn("06:30", "time_06:30"), btn("07:00", "time_07:00")},
		{btn("07:30", "time_07:30"), btn("08:00", "time_08:00")},
		{btn("08:30", "time_08:30"), btn("09:00", "time_09:00")},
		{btn("⏰ שעה אחרת...", CallbackTimeCustom)},
	}
	if withBack {
		rows = append(rows, []adapter.Button{btn("⬅️ חזור", CallbackBackToMenu)})
	}
	return rows
}

func SnoozePickerKeyboard() [][]adapter.Button {
	return [][]adapter.Button{
		{btn("15 דק'", "snooze_15"), btn("30 דק'", "snooze_30")},
		{btn("45 דק'", "snooze_45"), btn("90 דק'", "snooze_90")},
		{btn("⬅️ חזור", CallbackBackToMenu)},
	}
}

func SunsetSettingsKeyboard() [][]adapter.Button {
	return [][]adapter.Button{
		{btn("כבוי", "sunset_0")},
		{btn("30 דק' לפני", "sunset_30"), btn("45 דק' לפני", "sunset_45")},
		{btn("60 דק' לפני", "sunset_60"), btn("90 דק' לפני", "sunset_90")},
		{btn("⬅️ חזור", CallbackBackToMenu)},
	}
}

// MainMenuKeyboard is the inline action menu behind /menu and /start.
func MainMenuKeyboard() [][]adapter.Button {
	return [][]adapter.Button{
		{btn("הנחתי ✅", CallbackDone)},
		{btn("קריאת שמע 📖", CallbackShowShema)},
		{btn("🕐 שינוי שעה", CallbackChangeTime), btn("🌇 תזכורת שקיעה", CallbackSunsetSettings)},
		{btn("📊 סטטיסטיקות", CallbackStats), btn("⚙️ הגדרות", CallbackShowSettings)},
	}
}

func SettingsKeyboard() [][]adapter.Button {
	return [][]adapter.Button{
		{btn("🕐 שינוי שעה", CallbackChangeTime), btn("🌇 תזכורת שקיעה", CallbackSunsetSettings)},
		{btn("📊 סטטיסטיקות", CallbackStats), btn("דלג היום", CallbackSkipToday)},
		{btn("⬅️ חזור", CallbackBackToMenu)},
	}
}

func BackToMenuKeyboard() [][]adapter.Button {
	return [][]adapter.Button{{btn("⬅️ חזור", CallbackBackToMenu)}}
}

func BackToSettingsKeyboard() [][]adapter.Button {
	return [][]adapter.Button{{btn("חזרה להגדרות", CallbackBackToSettings)}}
}

// UsageSummaryText is the totals-only /usage report used when no per-user
// completions exist in the window.
func UsageSummaryText(days, totalActive, usersDone, totalMarks int) string {
	return fmt.Sprintf("📊 סיכום שימוש %d ימים אחרונים:\n"+
		"משתמשים פעילים: %d\n"+
		"משתמשים שסימנו הנחה לפחות פעם אחת: %d\n"+
		"מספר סימונים כולל (tefillin_done): %d",
		days, totalActive, usersDone, totalMarks)
}
