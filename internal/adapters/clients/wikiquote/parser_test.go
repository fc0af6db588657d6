package wikiquote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotesuggest/internal/domain"
)

// personSet is a NameClassifier double backed by a fixed allow list.
type personSet map[string]bool

func (p personSet) IsPerson(phrase string) bool { return p[phrase] }

func wrap(body string) string {
	return `<div class="mw-parser-output">` + body + `</div>`
}

func TestParsePage_NonPersonTitleIsSkipped(t *testing.T) {
	body := wrap(`
		<h2><span class="mw-headline">Quotes</span></h2>
		<ul><li>Friendship is everything.</li></ul>`)

	quotes, err := parsePage("Friendship", body, personSet{})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestParsePage_SimpleListQuotes(t *testing.T) {
	body := wrap(`
		<p>Mark Twain was an author.</p>
		<h2><span class="mw-headline">Quotes</span></h2>
		<ul><li>The secret of getting ahead is getting started.</li></ul>
		<ul><li>Courage is resistance to fear, mastery of fear.</li></ul>
		<h2><span class="mw-headline">External links</span></h2>
		<ul><li>Official website</li></ul>`)

	quotes, err := parsePage("Mark Twain", body, personSet{"Mark Twain": true})
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	assert.Equal(t, "The secret of getting ahead is getting started.", quotes[0].Text)
	assert.Equal(t, "Mark Twain", quotes[0].Author)
	assert.Equal(t, "Courage is resistance to fear, mastery of fear.", quotes[1].Text)
}

func TestParsePage_QuoteWithInlineDescription(t *testing.T) {
	body := wrap(`
		<h2><span class="mw-headline">Quotes</span></h2>
		<ul><li>Golf is a good walk spoiled.<i>Attributed, 1948</i></li></ul>`)

	quotes, err := parsePage("Mark Twain", body, personSet{"Mark Twain": true})
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	assert.Equal(t, "Golf is a good walk spoiled.", quotes[0].Text)
	assert.Equal(t, "Attributed, 1948", quotes[0].Description)
}

func TestParsePage_NestedAttributionList(t *testing.T) {
	body := wrap(`
		<h2><span class="mw-headline">Quotes</span></h2>
		<ul><li>When in doubt<br>tell the truth <ul><li>Following the Equator, 1897</li></ul></li></ul>`)

	quotes, err := parsePage("Mark Twain", body, personSet{"Mark Twain": true})
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	assert.Equal(t, "When in doubt\ntell the truth", quotes[0].Text)
	assert.Equal(t, "Following the Equator, 1897", quotes[0].Description)
}

func TestParsePage_StripsLinksAndFootnotes(t *testing.T) {
	body := wrap(`
		<h2><span class="mw-headline">Quotes</span></h2>
		<ul><li>Travel to <a href="/wiki/Rome">Rome</a> once<a href="#cite_note-1">[1]</a><sup>note</sup>.</li></ul>`)

	quotes, err := parsePage("Mark Twain", body, personSet{"Mark Twain": true})
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	assert.Equal(t, "Travel to Rome once.", quotes[0].Text)
}

func TestParsePage_DisputedBlockIsDropped(t *testing.T) {
	body := wrap(`
		<h2><span class="mw-headline">Quotes</span></h2>
		<ul><li>A genuine quote.</li></ul>
		<div class="quotebox"><b>Disputed</b><ul><li>Probably never said this.</li></ul></div>`)

	quotes, err := parsePage("Mark Twain", body, personSet{"Mark Twain": true})
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	assert.Equal(t, "A genuine quote.", quotes[0].Text)
}

func TestParsePage_PoemBlocks(t *testing.T) {
	body := wrap(`
		<h2><span class="mw-headline">Quotes</span></h2>
		<div class="poem"><span>Hamlet, Act III</span>To be, or not to be,
that is the question</div>`)

	quotes, err := parsePage("William Shakespeare", body, personSet{"William Shakespeare": true})
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	assert.Equal(t, "To be, or not to be,\nthat is the question", quotes[0].Text)
	assert.Equal(t, "Hamlet, Act III", quotes[0].Description)
}

func TestParsePage_NoQuotesHeading(t *testing.T) {
	body := wrap(`<p>A stub page with no quote section yet.</p>`)

	quotes, err := parsePage("Mark Twain", body, personSet{"Mark Twain": true})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestParsePage_DedupableOutput(t *testing.T) {
	body := wrap(`
		<h2><span class="mw-headline">Quotes</span></h2>
		<ul><li>Repeat after me.</li></ul>
		<ul><li>Repeat after me.</li></ul>`)

	quotes, err := parsePage("Mark Twain", body, personSet{"Mark Twain": true})
	require.NoError(t, err)

	// The parser reports what the page says; collapsing duplicates is the
	// aggregator's job.
	require.Len(t, quotes, 2)
	assert.Len(t, domain.Dedup(quotes), 1)
}
