// Package texts centralizes all user-facing Hebrew copy and the inline
// keyboards built from it. Both the reminder pipeline and the chat handlers
// draw from here so wording stays in one place.
package texts

import "fmt"

const (
	DailyReminder = "⏰ תזכורת יומית – תפילין\n" +
		"הגיע הזמן להניח תפילין.\n" +
		"מה תרצה לעשות?"

	SnoozeReminder = "🔔 נודניק – חזרתי להזכיר\n" +
		"הגיע הזמן להניח תפילין."

	AlreadyDone = "כבר סימנת שהנחת תפילין היום! ✅\nהמשך יום מעולה! 🙏"

	SkipConfirm = "הבנתי. לא אזכיר יותר היום.\nנתראה מחר! 👋"

	ChooseTime   = "בחר שעה חדשה לתזכורת יומית:"
	ChooseSnooze = "בחר דחייה, או שלח מספר דקות (למשל: 20):"

	InvalidSnooze = "לא הבנתי. שלח מספר דקות (למשל: 20), או /cancel לביטול"

	CustomTimePrompt = "שלח לי שעה בפורמט HH:MM\nלמשל: 08:15 או 07:45\n\nאו שלח /cancel לביטול"
	InvalidTime      = "פורמט לא תקין. אנא שלח שעה בפורמט HH:MM (למשל: 08:15)"
	Cancelled        = "בוטל."

	SunsetTooClose    = "השקיעה קרובה מדי.\nבחר דחייה אחרת."
	SunsetUnavailable = "מצטער, לא הצלחתי לחשב זמן שקיעה היום.\nנסה דחייה רגילה."

	NotRegistered = "לא נמצאת במערכת. הקש /start להרשמה."
	UnknownAction = "פעולה לא מזוהה"
	GenericError  = "אירעה שגיאה, נסה שוב."
	AdminsOnly    = "פקודה זו למנהלים בלבד"

	MainMenuTitle = "תפריט ראשי"
	ActionsMenu   = "תפריט פעולות:"

	Help = "🤖 בוט תזכורות תפילין\n\n" +
		"📋 פקודות זמינות:\n" +
		"/start - הרשמה או חזרה לבוט\n" +
		"/menu - תפריט ראשי\n" +
		"/settings - הגדרות מתקדמות\n" +
		"/stats - סטטיסטיקות מפורטות\n" +
		"/skip - דלג על התזכורת היום\n" +
		"/help - הצגת הודעה זו\n\n" +
		"🔔 התזכורות:\n" +
		"• תזכורת יומית בשעה שבחרת\n" +
		"• תזכורת לפני שקיעה (אופציונלי)\n" +
		"• לא שולח בשבת ובחגים\n\n" +
		"⭐ תכונות:\n" +
		"• מעקב רצף ימים\n" +
		"• נודניק חכם\n" +
		"• זמני שקיעה מדויקים\n"
)

// SunsetReminderText names the last call of the day with today's sunset time.
func SunsetReminderText(sunsetHHMM string) string {
	return "🌇 תזכורת לפני שקיעה\n" +
		"תזכורת אחרונה להיום להנחת תפילין.\n" +
		"שקיעה היום ב-" + sunsetHHMM
}

// DoneConfirmation celebrates a completion, with a flourish scaled to the
// streak length.
func DoneConfirmation(streak int) string {
	var streakText string
	switch {
	case streak >= 7:
		streakText = fmt.Sprintf("\n🔥 אלוף! רצף של %d ימים!", streak)
	case streak >= 3:
		streakText = fmt.Sprintf("\n🔥 כל הכבוד! רצף של %d ימים!", streak)
	case streak > 1:
		streakText = fmt.Sprintf("\n🔥 רצף: %d ימים", streak)
	}
	return "איזה מלך! ✅🙏\nהמשך יום מעולה!" + streakText
}

// SnoozeConfirm phrases the delay in hours and minutes the way a person
// would say it.
func SnoozeConfirm(minutes int) string {
	hours := minutes / 60
	rem := minutes % 60
	var timeText string
	switch {
	case hours > 0 && rem > 0:
		timeText = fmt.Sprintf("%d שעות ו-%d דקות", hours, rem)
	case hours > 0:
		timeText = fmt.Sprintf("%d שעות", hours)
	default:
		timeText = fmt.Sprintf("%d דקות", minutes)
	}
	return fmt.Sprintf("סגור. אזכיר עוד %s ⏰", timeText)
}

func SunsetSnoozeConfirm(reminderHHMM, sunsetHHMM string) string {
	return fmt.Sprintf("מעולה! 🌇\nאזכיר ב-%s (30 דק' לפני השקיעה ב-%s)", reminderHHMM, sunsetHHMM)
}

func Welcome(name, sunsetHHMM string) string {
	sunsetText := ""
	if sunsetHHMM != "" {
		sunsetText = fmt.Sprintf(" (שקיעה היום: %s)", sunsetHHMM)
	}
	return fmt.Sprintf("ברוך הבא %s! 🙏\n\n"+
		"בוט התזכורות לתפילין יעזור לך לא לשכוח.\n"+
		"הבוט לא ישלח תזכורות בשבת ובחגים%s\n\n"+
		"🕐 בחר שעה יומית לתזכורת:", name, sunsetText)
}

func GreetingHeader(name, dailyTime string, streak int) string {
	return fmt.Sprintf("שלום שוב %s! 👋\n\n🕐 שעה יומית: %s\n🔥 רצף: %d ימים\n\n", name, dailyTime, streak)
}

func TimeSet(hhmm string) string {
	return fmt.Sprintf("מעולה! ✅\n"+
		"תזכורת יומית נקבעה לשעה %s.\n\n"+
		"📅 תקבל תזכורת כל יום (חוץ משבת וחגים)\n"+
		"🔔 אפשר להגדיר תזכורת נוספת לפני שקיעה\n\n"+
		"הבוט מוכן לפעולה! 🚀", hhmm)
}

func TimeUpdated(hhmm string) string {
	return fmt.Sprintf("מעולה! ✅\nהשעה עודכנה ל-%s", hhmm)
}

func SunsetSettingUpdated(minutes int) string {
	if minutes == 0 {
		return "תזכורת לפני שקיעה בוטלה ✅"
	}
	return fmt.Sprintf("תזכורת לפני שקיעה עודכנה ל-%d דקות ✅", minutes)
}

func SunsetSettings(current int) string {
	status := "כבוי"
	if current != 0 {
		status = fmt.Sprintf("%d דקות לפני שקיעה", current)
	}
	return fmt.Sprintf("תזכורת לפני שקיעה\nמצב נוכחי: %s\n\nבחר הגדרה חדשה:", status)
}

func Settings(dailyTime string, sunsetReminder, streak int) string {
	sunsetText := "כיבוי תזכורת"
	if sunsetReminder != 0 {
		sunsetText = fmt.Sprintf("%d דק' לפני", sunsetReminder)
	}
	return fmt.Sprintf("⚙️ ההגדרות שלך:\n\n"+
		"🕐 שעה יומית: %s\n"+
		"🌇 תזכורת שקיעה: %s\n"+
		"🔥 רצף נוכחי: %d ימים\n\n"+
		"מה תרצה לשנות?", dailyTime, sunsetText, streak)
}

// UserStats renders the /stats screen. Empty strings mark unavailable values.
func UserStats(streak int, dailyTime string, sunsetReminder int, signupDate string, daysSinceSignup int, lastDone, sunsetToday string) string {
	sunsetText := "כבוי"
	if sunsetReminder != 0 {
		sunsetText = fmt.Sprintf("%d דק' לפני שקיעה", sunsetReminder)
	}
	if signupDate == "" {
		signupDate = "לא זמין"
	}
	if lastDone == "" {
		lastDone = "לא נרשם"
	}
	if sunsetToday == "" {
		sunsetToday = "לא זמין"
	}
	return fmt.Sprintf("📊 הסטטיסטיקות שלך:\n\n"+
		"🔥 רצף נוכחי: %d ימים\n"+
		"🕐 שעה יומית: %s\n"+
		"🌇 תזכורת שקיעה: %s\n"+
		"📅 תאריך הרשמה: %s\n"+
		"📈 ימים מההרשמה: %d\n"+
		"✅ הנחה אחרונה: %s\n\n"+
		"🌅 שקיעה היום: %s",
		streak, dailyTime, sunsetText, signupDate, daysSinceSignup, lastDone, sunsetToday)
}

const Shema = `📖 קריאת שמע

פרשה ראשונה:
שְׁמַע יִשְׂרָאֵל, ה' אֱלֹהֵינוּ, ה' אֶחָד.
בָּרוּךְ שֵׁם כְּבוֹד מַלְכוּתוֹ לְעוֹלָם וָעֶד.

וְאָהַבְתָּ אֵת ה' אֱלֹהֶיךָ בְּכָל לְבָבְךָ וּבְכָל נַפְשְׁךָ וּבְכָל מְאֹדֶךָ.
וְהָיוּ הַדְּבָרִים הָאֵלֶּה אֲשֶׁר אָנֹכִי מְצַוְּךָ הַיּוֹם עַל לְבָבֶךָ.
וְשִׁנַּנְתָּם לְבָנֶיךָ וְדִבַּרְתָּ בָּם בְּשִׁבְתְּךָ בְּבֵיתֶךָ וּבְלֶכְתְּךָ בַדֶּרֶךְ וּבְשָׁכְבְּךָ וּבְקוּמֶךָ.
וּקְשַׁרְתָּם לְאוֹת עַל יָדֶךָ וְהָיוּ לְטֹטָפֹת בֵּין עֵינֶיךָ.
וּכְתַבְתָּם עַל מְזוּזֹת בֵּיתֶךָ וּבִשְׁעָרֶיךָ.

פרשה שניה:
וְהָיָה אִם שָׁמֹעַ תִּשְׁמְעוּ אֶל מִצְוֹתַי אֲשֶׁר אָנֹכִי מְצַוֶּה אֶתְכֶם הַיּוֹם
לְאַהֲבָה אֶת ה' אֱלֹהֵיכֶם וּלְעָבְדוֹ בְּכָל לְבַבְכֶם וּבְכָל נַפְשְׁכֶם.
וְנָתַתִּי מְטַר אַרְצְכֶם בְּעִתּוֹ יוֹרֶה וּמַלְקוֹשׁ וְאָסַפְתָּ דְגָנֶךָ וְתִירֹשְׁךָ וְיִצְהָרֶךָ.
וְנָתַתִּי עֵשֶׂב בְּשָׂדְךָ לִבְהֶמְתֶּךָ וְאָכַלְתָּ וְשָׂבָעְתָּ.
הִשָּׁמְרוּ לָכֶם פֶּן יִפְתֶּה לְבַבְכֶם וְסַרְתֶּם וַעֲבַדְתֶּם אֱלֹהִים אֲחֵרִים וְהִשְׁתַּחֲוִיתֶם לָהֶם.
וְחָרָה אַף ה' בָּכֶם וְעָצַר אֶת הַשָּׁמַיִם וְלֹא יִהְיֶה מָטָר וְהָאֲדָמָה לֹא תִתֵּן אֶת יְבוּלָהּ,
וַאֲבַדְתֶּם מְהֵרָה מֵעַל הָאָרֶץ הַטּוֹבָה אֲשֶׁר ה' נֹתֵן לָכֶם.
וְשַׂמְתֶּם אֶת דְּבָרַי אֵלֶּה עַל לְבַבְכֶם וְעַל נַפְשְׁכֶם;
וּקְשַׁרְתֶּם אֹתָם לְאוֹת עַל יֶדְכֶם וְהָיוּ לְטוֹטָפֹת בֵּין עֵינֵיכֶם.
וְלִמַּדְתֶּם אֹתָם אֶת בְּנֵיכֶם לְדַבֵּר בָּם בְּשִׁבְתְּךָ בְּבֵיתֶךָ וּבְלֶכְתְּךָ בַדֶּרֶךְ וּבְשָׁכְבְּךָ וּבְקוּמֶךָ.
וּכְתַבְתָּם עַל מְזוּזֹת בֵּיתֶךָ וּבִשְׁעָרֶיךָ.
לְמַעַן יִרְבּוּ יְמֵיכֶם וִימֵי בְּנֵיכֶם עַל הָאֲדָמָה אֲשֶׁר נִשְׁבַּע ה' לַאֲבֹתֵיכֶם לָתֵת לָהֶם,
כִּימֵי הַשָּׁמַיִם עַל הָאָרֶץ.

🙏 יהי רצון שתהיה קריאתך מקובלת לפני הקב"ה`
