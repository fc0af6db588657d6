// Package nlp provides the named-entity classifier used to tell person
// names apart from plain topic keywords.
package nlp

import (
	"log/slog"

	"github.com/jdkato/prose/v2"

	"quotesuggest/internal/domain"
	"quotesuggest/internal/ports"
)

// personLabel is the NER label for people.
const personLabel = "PERSON"

// Classifier decides whether a phrase names a person by running it through
// the prose NER model. The phrase counts as a person when the first entity
// recognized in it is tagged PERSON.
type Classifier struct {
	logger *slog.Logger
}

// NewClassifier creates an English name classifier.
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Classifier{
		logger: logger.With(slog.String("component", "nlp.Classifier")),
	}
}

// IsPerson implements ports.NameClassifier. Phrases the model cannot
// process are treated as non-persons.
func (c *Classifier) IsPerson(phrase string) bool {
	doc, err := prose.NewDocument(phrase,
		prose.WithSegmentation(false),
		prose.WithExtraction(true),
	)
	if err != nil {
		c.logger.Debug("entity extraction failed",
			slog.String("phrase", phrase),
			slog.Any("error", err),
		)

		return false
	}

	entities := doc.Entities()
	if len(entities) == 0 {
		return false
	}

	return entities[0].Label == personLabel
}

// Registry maps locales to their name classifiers. Only English ships today;
// asking for anything else is an unsupported-locale error rather than a
// silent fallback to the wrong model.
type Registry struct {
	classifiers map[domain.Locale]ports.NameClassifier
}

// NewRegistry creates an empty classifier registry.
func NewRegistry() *Registry {
	return &Registry{classifiers: make(map[domain.Locale]ports.NameClassifier)}
}

// Register adds a classifier for a locale, replacing any previous one.
func (r *Registry) Register(locale domain.Locale, classifier ports.NameClassifier) {
	r.classifiers[locale] = classifier
}

// ForLocale implements ports.ClassifierRegistry.
func (r *Registry) ForLocale(locale domain.Locale) (ports.NameClassifier, error) {
	classifier, ok := r.classifiers[locale]
	if !ok {
		return nil, domain.NewUnsupportedLocaleError(locale)
	}

	return classifier, nil
}
