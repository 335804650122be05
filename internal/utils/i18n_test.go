package utils

import "testing"

func TestT_Fallback(t *testing.T) {
	if got := T("fr", "health.ok"); got != "ok" {
		t.Fatalf("fallback to en failed: %s", got)
	}
}

func TestT_UnknownKey(t *testing.T) {
	if got := T("zh", "nope.title"); got != "nope.title" {
		t.Fatalf("want key echoed, got %s", got)
	}
}

func TestTf(t *testing.T) {
	if got := Tf("en", "action_added.description", "Biked to work"); got != `"Biked to work" has been added to your actions.` {
		t.Fatalf("en: %s", got)
	}
	if got := Tf("zh", "action_added.description", "骑车上班"); got != "“骑车上班”已添加到您的行动列表。" {
		t.Fatalf("zh: %s", got)
	}
	if got := Tf("en", "logged_out.title"); got != "Logged out" {
		t.Fatalf("no args: %s", got)
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for key := range translations[DefaultLocale] {
		for _, loc := range SupportedLocales {
			if _, ok := translations[loc][key]; !ok {
				t.Errorf("locale %s missing %s", loc, key)
			}
		}
	}
}
