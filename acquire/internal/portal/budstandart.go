package portal

import (
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the production portal.
const DefaultBaseURL = "https://online.budstandart.com"

var idDocRe = regexp.MustCompile(`[?&]id_doc=(\d+)`)

// Budstandart is the 2024 markup of online.budstandart.com (Ukrainian UI).
type Budstandart struct {
	base   *url.URL
	markup Markup
}

// NewBudstandart returns the adapter rooted at baseURL. An empty baseURL
// selects DefaultBaseURL.
func NewBudstandart(baseURL string) (*Budstandart, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Budstandart{
		base: u,
		markup: Markup{
			Fingerprint: `a[href*="/ua/catalog/"], #bsdoctext, form[action*="login"]`,

			SearchItems: `a[href*="id_doc"]`,
			RecentItems: `a[href*="doc-page.html?id_doc="]`,

			IdentifierInput: `input[type="text"], input[type="email"], input:not([type])`,
			SecretInput:     `input[type="password"]`,
			SubmitControl:   `button, input[type="submit"]`,
			SubmitText:      "Увійти",

			GreetingMarkers: []string{"Доброго дня", "Особистий кабінет"},
			LoginMarkers:    []string{"Вхід на сервіс"},
			FailureMarkers:  []string{"Невірний логін або пароль", "Неправильний логін або пароль"},

			Title:        `h1.doc-title, h1`,
			MetadataRows: `.doc-metadata tr, .document-info tr`,
			AssetLinks:   `a[href*=".pdf"], a[href*="download"]`,

			ViewerFrame: `iframe`,
			FrameParam:  "file",
			Content:     `#bsdoctext`,

			Lang:        "uk",
			SourceLabel: "Джерело",
		},
	}, nil
}

func (b *Budstandart) Name() string    { return "budstandart-v1" }
func (b *Budstandart) Base() *url.URL  { return b.base }
func (b *Budstandart) Markup() *Markup { return &b.markup }

func (b *Budstandart) HomeURL() string  { return b.path("/ua/", nil) }
func (b *Budstandart) LoginURL() string { return b.path("/ua/login.html", nil) }

func (b *Budstandart) SearchURL(query string) string {
	return b.path("/ua/catalog/searchdoc.html", url.Values{"request": {query}})
}

func (b *Budstandart) DetailURL(id string) string {
	return b.path("/ua/catalog/doc-page.html", url.Values{"id_doc": {id}})
}

func (b *Budstandart) ViewerURL(id string) string {
	return b.path("/ua/catalog/document.html", url.Values{"id_doc": {id}})
}

func (b *Budstandart) DocumentID(href string) (string, bool) {
	m := idDocRe.FindStringSubmatch(href)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (b *Budstandart) Probe(doc *goquery.Document) bool {
	return doc.Find(b.markup.Fingerprint).Length() > 0
}

func (b *Budstandart) path(p string, q url.Values) string {
	u := *b.base
	u.Path = p
	u.RawQuery = q.Encode()
	return u.String()
}
