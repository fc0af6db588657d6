package domain

// Locale selects which source clients and name classifier apply.
// Only English is wired today; adding a locale is configuration plus a
// classifier binding, not a new algorithm.
type Locale string

// LocaleEnglish is the only locale with a bound source set and classifier.
const LocaleEnglish Locale = "en"
