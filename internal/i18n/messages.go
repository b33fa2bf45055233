// Package i18n holds the en and ja message catalogs and language resolution.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is a resolved display language.
type Language string

const (
	English  Language = "en"
	Japanese Language = "ja"
)

// Catalog is the set of user-facing strings for one language.
type Catalog struct {
	Language Language

	// Lifecycle and logging
	Starting         string
	Started          string
	Stopped          string
	RefreshRequested string
	ConfigChanged    string
	SSLSkipWarning   string
	ProjectIDNotSet  string
	ProjectIDLabel   string
	DatasetIDLabel   string
	RefreshLabel     string
	RefreshUnit      string
	ScheduledRefresh string
	FetchSuccess     string
	ErrorPrefix      string

	// Menu
	MenuRefreshNow   string
	MenuOpenConsole  string
	MenuOpenSettings string
	MenuShowLogs     string

	// Project id prompt
	ProjectIDNotSetWarning string
	ProjectIDConfigure     string
	ProjectIDLater         string
	ProjectIDPrompt        string
	ProjectIDPlaceholder   string
	ProjectIDRequired      string
	ProjectIDInvalid       string
	ProjectIDSet           string

	// Status bar
	NotConfigured        string
	NotConfiguredTooltip string
	Loading              string
	ErrorShort           string

	// Detail panel
	Title           string
	CurrentCost     string
	BeforeCredits   string
	Credits         string
	Total           string
	Budget          string
	LastMonthFormat string
	Last3Months     string
	YearlyFormat    string
	LastUpdated     string
	ClickMenu       string
}

var en = Catalog{
	Language:         English,
	Starting:         "Starting...",
	Started:          "Started",
	Stopped:          "Stopped",
	RefreshRequested: "Manual refresh requested",
	ConfigChanged:    "Configuration changed. Reinitializing...",
	SSLSkipWarning:   "Warning: Skipping SSL certificate verification (skipSslVerification: true)",
	ProjectIDNotSet:  "Project ID is not set",
	ProjectIDLabel:   "Project ID: ",
	DatasetIDLabel:   "Dataset ID: ",
	RefreshLabel:     "Refresh interval: ",
	RefreshUnit:      " min",
	ScheduledRefresh: "Running scheduled refresh...",
	FetchSuccess:     "Billing data fetched: ",
	ErrorPrefix:      "Error: ",

	MenuRefreshNow:   "Refresh Now",
	MenuOpenConsole:  "Open Google Cloud Console",
	MenuOpenSettings: "Open Settings",
	MenuShowLogs:     "Show Logs",

	ProjectIDNotSetWarning: "Google Cloud Billing Watcher: Project ID is not set",
	ProjectIDConfigure:     "Configure",
	ProjectIDLater:         "Later",
	ProjectIDPrompt:        "Enter Project ID",
	ProjectIDPlaceholder:   "my-project-id",
	ProjectIDRequired:      "Please enter a Project ID",
	ProjectIDInvalid:       "Project ID format is invalid",
	ProjectIDSet:           "Project ID set: ",

	NotConfigured:        "Not Configured",
	NotConfiguredTooltip: "Press c to configure (set projectId)",
	Loading:              "...",
	ErrorShort:           "Error",

	Title:           "Google Cloud Billing Watcher",
	CurrentCost:     "Current Cost",
	BeforeCredits:   "Before Credits",
	Credits:         "Credits",
	Total:           "Subtotal",
	Budget:          "Budget",
	LastMonthFormat: "Last Month ({0})",
	Last3Months:     "Last 3 Months",
	YearlyFormat:    "Yearly ({0})",
	LastUpdated:     "Last Updated",
	ClickMenu:       "Press ? to show menu",
}

var ja = Catalog{
	Language:         Japanese,
	Starting:         "起動しています...",
	Started:          "起動が完了しました",
	Stopped:          "終了しました",
	RefreshRequested: "手動更新がリクエストされました",
	ConfigChanged:    "設定が変更されました。再初期化します...",
	SSLSkipWarning:   "警告: SSL 証明書の検証をスキップします (skipSslVerification: true)",
	ProjectIDNotSet:  "プロジェクト ID が設定されていません",
	ProjectIDLabel:   "プロジェクト ID: ",
	DatasetIDLabel:   "データセット ID: ",
	RefreshLabel:     "更新間隔: ",
	RefreshUnit:      " 分",
	ScheduledRefresh: "定期更新を実行します...",
	FetchSuccess:     "課金データ取得成功: ",
	ErrorPrefix:      "エラー: ",

	MenuRefreshNow:   "今すぐ更新",
	MenuOpenConsole:  "Google Cloud コンソールを開く",
	MenuOpenSettings: "設定を開く",
	MenuShowLogs:     "ログを表示",

	ProjectIDNotSetWarning: "Google Cloud Billing Watcher: プロジェクト ID が設定されていません",
	ProjectIDConfigure:     "設定する",
	ProjectIDLater:         "後で",
	ProjectIDPrompt:        "プロジェクト ID を入力してください",
	ProjectIDPlaceholder:   "my-project-id",
	ProjectIDRequired:      "プロジェクト ID を入力してください",
	ProjectIDInvalid:       "プロジェクト ID の形式が正しくありません",
	ProjectIDSet:           "プロジェクト ID を設定しました: ",

	NotConfigured:        "未設定",
	NotConfiguredTooltip: "c キーで設定を開く（projectId を設定してください）",
	Loading:              "...",
	ErrorShort:           "エラー",

	Title:           "Google Cloud Billing Watcher",
	CurrentCost:     "現在のコスト",
	BeforeCredits:   "割引前",
	Credits:         "割引額",
	Total:           "小計",
	Budget:          "予算",
	LastMonthFormat: "{0}月 (確定)",
	Last3Months:     "過去3ヶ月",
	YearlyFormat:    "{0}年間",
	LastUpdated:     "最終更新",
	ClickMenu:       "? キーでメニューを表示",
}

// Messages returns the catalog for lang. Unknown languages get English.
func Messages(lang Language) Catalog {
	if lang == Japanese {
		return ja
	}
	return en
}

// Format substitutes arg for the {0} placeholder in tmpl.
func Format(tmpl, arg string) string {
	return strings.ReplaceAll(tmpl, "{0}", arg)
}

// ResolveLanguage maps a language setting to a display language. "en" and
// "ja" are honored as-is; anything else defers to the host tag.
func ResolveLanguage(setting, hostTag string) Language {
	switch setting {
	case string(English):
		return English
	case string(Japanese):
		return Japanese
	}
	if strings.HasPrefix(strings.ToLower(NormalizeTag(hostTag)), "ja") {
		return Japanese
	}
	return English
}

// NormalizeTag turns a POSIX locale such as "ja_JP.UTF-8" into a BCP 47
// tag. Unparsable input is returned unchanged.
func NormalizeTag(raw string) string {
	s := raw
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" {
		return raw
	}
	tag, err := language.Parse(s)
	if err != nil {
		return raw
	}
	return tag.String()
}

// Tag returns the x/text language tag for lang.
func (l Language) Tag() language.Tag {
	if l == Japanese {
		return language.Japanese
	}
	return language.English
}
