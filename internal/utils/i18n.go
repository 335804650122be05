package utils

import "fmt"

// DefaultLocale is used when no supported locale matches.
const DefaultLocale = "en"

// SupportedLocales lists the locales with a message catalog.
var SupportedLocales = []string{"en", "zh"}

// Server-side messages for fixed keys: health and notification texts.
// Descriptions may carry fmt verbs filled by Tf.
var translations = map[string]map[string]string{
	"en": {
		"health.ok": "ok",

		"footprint_saved.title":        "Footprint saved!",
		"footprint_saved.description":  "Your carbon footprint has been calculated and saved to your profile.",
		"action_added.title":           "Action added!",
		"action_added.description":     "\"%s\" has been added to your actions.",
		"challenge_joined.title":       "Challenge joined!",
		"challenge_joined.description": "You've successfully joined the challenge.",
		"logged_out.title":             "Logged out",
		"logged_out.description":       "You have been successfully logged out.",

		"login_required.dashboard.title":        "Login required",
		"login_required.dashboard.description":  "Please login to view your dashboard.",
		"login_required.profile.title":          "Login required",
		"login_required.profile.description":    "Please login to view your profile.",
		"login_required.challenges.title":       "Login required",
		"login_required.challenges.description": "Please login to join challenges.",
		"login_required.actions.title":          "Login required",
		"login_required.actions.description":    "Please login or create an account to track your actions.",
		"login_required.plan.title":             "Login required",
		"login_required.plan.description":       "Please login or create an account to get a personalized action plan.",
	},
	"zh": {
		"health.ok": "好的",

		"footprint_saved.title":        "碳足迹已保存！",
		"footprint_saved.description":  "您的碳足迹已计算并保存到个人资料。",
		"action_added.title":           "行动已添加！",
		"action_added.description":     "“%s”已添加到您的行动列表。",
		"challenge_joined.title":       "已加入挑战！",
		"challenge_joined.description": "您已成功加入该挑战。",
		"logged_out.title":             "已退出登录",
		"logged_out.description":       "您已成功退出登录。",

		"login_required.dashboard.title":        "需要登录",
		"login_required.dashboard.description":  "请登录以查看您的仪表盘。",
		"login_required.profile.title":          "需要登录",
		"login_required.profile.description":    "请登录以查看您的个人资料。",
		"login_required.challenges.title":       "需要登录",
		"login_required.challenges.description": "请登录以加入挑战。",
		"login_required.actions.title":          "需要登录",
		"login_required.actions.description":    "请登录或创建账户以记录您的行动。",
		"login_required.plan.title":             "需要登录",
		"login_required.plan.description":       "请登录或创建账户以获取个性化行动计划。",
	},
}

// T returns the translated string for key in locale; falls back to English.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := translations[DefaultLocale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Tf is T with fmt verbs in the message filled from args.
func Tf(locale, key string, args ...string) string {
	msg := T(locale, key)
	if len(args) == 0 {
		return msg
	}
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	return fmt.Sprintf(msg, vals...)
}
