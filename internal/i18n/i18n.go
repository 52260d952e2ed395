// Package i18n holds the country table, language names and UI string
// tables. Translation coverage is intentionally partial; missing keys
// fall back to English and then to the key itself.
package i18n

import "arcadia-news/internal/models"

// Countries is the home-page flag grid, in display order.
var Countries = []models.Country{
	{Code: "US", Name: "USA", Flag: "🇺🇸", Language: "en"},
	{Code: "RU", Name: "Russia", Flag: "🇷🇺", Language: "ru"},
	{Code: "CN", Name: "China", Flag: "🇨🇳", Language: "zh"},
	{Code: "DE", Name: "Germany", Flag: "🇩🇪", Language: "de"},
	{Code: "FR", Name: "France", Flag: "🇫🇷", Language: "fr"},
	{Code: "GB", Name: "United Kingdom", Flag: "🇬🇧", Language: "en"},
	{Code: "IN", Name: "India", Flag: "🇮🇳", Language: "hi"},
	{Code: "TR", Name: "Turkey", Flag: "🇹🇷", Language: "tr"},
	{Code: "JP", Name: "Japan", Flag: "🇯🇵", Language: "ja"},
	{Code: "KR", Name: "South Korea", Flag: "🇰🇷", Language: "ko"},
	{Code: "BR", Name: "Brazil", Flag: "🇧🇷", Language: "pt"},
	{Code: "CA", Name: "Canada", Flag: "🇨🇦", Language: "en"},
	{Code: "AU", Name: "Australia", Flag: "🇦🇺", Language: "en"},
	{Code: "IT", Name: "Italy", Flag: "🇮🇹", Language: "it"},
	{Code: "ES", Name: "Spain", Flag: "🇪🇸", Language: "es"},
	{Code: "NL", Name: "Netherlands", Flag: "🇳🇱", Language: "nl"},
	{Code: "SE", Name: "Sweden", Flag: "🇸🇪", Language: "sv"},
	{Code: "CH", Name: "Switzerland", Flag: "🇨🇭", Language: "de"},
	{Code: "SG", Name: "Singapore", Flag: "🇸🇬", Language: "en"},
	{Code: "AE", Name: "UAE", Flag: "🇦🇪", Language: "ar"},
	{Code: "SA", Name: "Saudi Arabia", Flag: "🇸🇦", Language: "ar"},
}

// CountryByCode looks up a country by its ISO code, case-insensitively
// via prior normalization by the caller. Returns nil when unknown.
func CountryByCode(code string) *models.Country {
	for i := range Countries {
		if Countries[i].Code == code {
			return &Countries[i]
		}
	}
	return nil
}

// Languages maps language codes to their native names.
var Languages = map[string]string{
	"en": "English",
	"ru": "Русский",
	"zh": "中文",
	"de": "Deutsch",
	"fr": "Français",
	"hi": "हिन्दी",
	"tr": "Türkçe",
	"ja": "日本語",
	"ko": "한국어",
	"pt": "Português",
	"it": "Italiano",
	"es": "Español",
	"nl": "Nederlands",
	"sv": "Svenska",
	"ar": "العربية",
}

var translations = map[string]map[string]string{
	"en": {
		"nav.login":      "Login",
		"nav.register":   "Register",
		"nav.dashboard":  "Dashboard",
		"nav.logout":     "Logout",
		"nav.addArticle": "Add Article",

		"home.title":         "Arcadia News",
		"home.subtitle":      "Global News from Every Corner of the World",
		"home.selectCountry": "Select a country to view news",

		"categories.recommended": "Recommended",
		"categories.tech":        "Technology",
		"categories.blockchain":  "Blockchain",
		"categories.news":        "News",
		"categories.politics":    "Politics",
		"categories.economy":     "Economy",

		"auth.login":           "Login",
		"auth.register":        "Register",
		"auth.email":           "Email",
		"auth.password":        "Password",
		"auth.confirmPassword": "Confirm Password",
		"auth.firstName":       "First Name",
		"auth.lastName":        "Last Name",
		"auth.username":        "Username",
		"auth.loginButton":     "Sign In",
		"auth.registerButton":  "Sign Up",
		"auth.welcome":         "Welcome to Arcadia News!",

		"dashboard.title":          "Dashboard",
		"dashboard.balance":        "Balance",
		"dashboard.topUpBalance":   "Top Up Balance",
		"dashboard.addArticle":     "Add Article",
		"dashboard.myArticles":     "My Articles",
		"dashboard.paymentHistory": "Payment History",
		"dashboard.earned":         "Earned",
		"dashboard.spent":          "Spent",

		"article.likes":      "likes",
		"article.comments":   "comments",
		"article.like":       "Like",
		"article.comment":    "Comment",
		"article.addComment": "Add Comment",
		"article.cost":       "Cost",
		"article.acd":        "ACD",

		"form.submit":   "Submit",
		"form.cancel":   "Cancel",
		"form.publish":  "Publish",
		"form.title":    "Title",
		"form.content":  "Content",
		"form.category": "Category",
		"form.country":  "Country",
		"form.images":   "Images",
		"form.video":    "Video",

		"balance.insufficient": "Insufficient balance",
		"balance.topUp":        "Top up your balance to continue",
		"balance.current":      "Current Balance",

		"error.actionFailed":  "Insufficient balance or network error",
		"error.loginRequired": "Please login to continue",

		"validate.emptyComment":    "Comment cannot be empty",
		"validate.commentTooLong":  "Comment must be under 2,000 characters",
		"validate.missingTitle":    "Title is required",
		"validate.missingContent":  "Content is required",
		"validate.missingCountry":  "Country is required",
		"validate.missingCategory": "Category is required",
		"validate.contentTooLong":  "Content must be under 10,000 characters",
		"validate.tooManyImages":   "At most 10 images are allowed",
		"validate.imageTooLarge":   "Each image must be under 10MB",
		"validate.videoTooLarge":   "Video must be under 35MB",
	},
	"ru": {
		"nav.login":      "Войти",
		"nav.register":   "Регистрация",
		"nav.dashboard":  "Кабинет",
		"nav.logout":     "Выйти",
		"nav.addArticle": "Добавить статью",

		"home.title":         "Arcadia News",
		"home.subtitle":      "Мировые новости со всех уголков планеты",
		"home.selectCountry": "Выберите страну для просмотра новостей",

		"categories.recommended": "Рекомендуемое",
		"categories.tech":        "Технологии",
		"categories.blockchain":  "Блокчейн",
		"categories.news":        "Новости",
		"categories.politics":    "Политика",
		"categories.economy":     "Экономика",

		"auth.login":          "Вход",
		"auth.register":       "Регистрация",
		"auth.email":          "Эл. почта",
		"auth.password":       "Пароль",
		"auth.loginButton":    "Войти",
		"auth.registerButton": "Зарегистрироваться",

		"dashboard.title":          "Кабинет",
		"dashboard.balance":        "Баланс",
		"dashboard.topUpBalance":   "Пополнить баланс",
		"dashboard.myArticles":     "Мои статьи",
		"dashboard.paymentHistory": "История платежей",

		"article.like":       "Нравится",
		"article.comment":    "Комментарий",
		"article.addComment": "Добавить комментарий",

		"balance.insufficient": "Недостаточно средств",
		"balance.current":      "Текущий баланс",

		"error.actionFailed":  "Недостаточно средств или сетевая ошибка",
		"error.loginRequired": "Войдите, чтобы продолжить",

		"validate.emptyComment":   "Комментарий не может быть пустым",
		"validate.missingTitle":   "Укажите заголовок",
		"validate.contentTooLong": "Текст должен быть короче 10 000 символов",
	},
}

// T returns the translation for key in lang, falling back to English
// and finally to the key itself.
func T(lang, key string) string {
	if table, ok := translations[lang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	if s, ok := translations["en"][key]; ok {
		return s
	}
	return key
}

// FlagRows splits the country list into the home grid's 4-3-4-3-4-3
// row pattern.
func FlagRows() [][]models.Country {
	widths := []int{4, 3, 4, 3, 4, 3}
	var rows [][]models.Country
	i := 0
	for _, w := range widths {
		if i >= len(Countries) {
			break
		}
		end := i + w
		if end > len(Countries) {
			end = len(Countries)
		}
		rows = append(rows, Countries[i:end])
		i = end
	}
	return rows
}
