package acquire

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hazyhaar/docfetch/acquire/internal/browser"
	"github.com/hazyhaar/docfetch/acquire/internal/browser/browsertest"
	"github.com/hazyhaar/docfetch/acquire/internal/portal"
	"github.com/hazyhaar/docfetch/acquire/model"
)

const base = "https://portal.test"

const (
	greeting = `<header><a href="/ua/catalog/">Каталог</a> Доброго дня, Олена!</header>`

	homeHTML = `<html><body>` + greeting + `
<ul class="new-docs">
  <li><a href="/ua/catalog/doc-page.html?id_doc=900">ДСТУ 9000:2024 Нова редакція</a></li>
  <li><a href="/ua/catalog/doc-page.html?id_doc=901">ДБН Г.1-1:2024</a></li>
</ul></body></html>`

	loggedOut = `<html><body><a href="/ua/login.html">Вхід на сервіс</a></body></html>`

	loginHTML = `<html><body><h2>Вхід на сервіс</h2><form>
<input type="text" name="login"><input type="password" name="pass"><button>Увійти</button>
</form></body></html>`

	searchHTML = `<html><body>` + greeting + `
<a href="/ua/catalog/doc-page.html?id_doc=1">ДБН В.2.2-15:2019 Житлові будинки</a>
<a href="/ua/catalog/doc-page.html?id_doc=2">ДБН В.1.1-7:2016 Пожежна безпека</a>
<a href="/ua/catalog/doc-page.html?id_doc=3">ДБН В.2.5-28:2018 Природне і штучне освітлення</a>
</body></html>`

	detailHTML = `<html><body>` + greeting + `
<h1 class="doc-title">ДБН В.2.2-15:2019 Житлові будинки</h1>
<table class="doc-metadata"><tr><td>Статус:</td><td>Чинний</td></tr></table>
</body></html>`

	viewerHTML = `<html><body>` + greeting + `<div id="bsdoctext"><p>Ці норми поширюються на проектування.</p></div></body></html>`
)

type harness struct {
	adapter     portal.Adapter
	page        *browsertest.Page
	connects    int
	releases    int
	connectErr  error
	transitions []State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	a, err := portal.NewBudstandart(base)
	if err != nil {
		t.Fatal(err)
	}
	return &harness{
		adapter: a,
		page: browsertest.New(map[string]string{
			a.HomeURL():        homeHTML,
			a.LoginURL():       loginHTML,
			a.SearchURL("ДБН"): searchHTML,
			a.DetailURL("1"):   detailHTML,
			a.ViewerURL("1"):   viewerHTML,
		}),
	}
}

func (h *harness) acquirer(t *testing.T, cfg Config) *Acquirer {
	t.Helper()
	cfg.BaseURL = base
	a, err := New(cfg,
		WithConnector(func(ctx context.Context, _ browser.Config) (browser.Page, func() error, error) {
			h.connects++
			if h.connectErr != nil {
				return nil, nil, h.connectErr
			}
			return h.page, func() error { h.releases++; return nil }, nil
		}),
		WithTransitionHook(func(_ string, _, to State) {
			h.transitions = append(h.transitions, to)
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestSearch_LimitTwoOfThree(t *testing.T) {
	h := newHarness(t)
	got, err := h.acquirer(t, Config{}).Search(context.Background(), "ДБН", 2)
	if err != nil {
		t.Fatal(err)
	}

	want := []model.Reference{
		{ExternalID: "1", Title: "ДБН В.2.2-15:2019 Житлові будинки", URL: base + "/ua/catalog/doc-page.html?id_doc=1"},
		{ExternalID: "2", Title: "ДБН В.1.1-7:2016 Пожежна безпека", URL: base + "/ua/catalog/doc-page.html?id_doc=2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	wantStates := []State{StateAuthenticating, StateListing, StateDone}
	if diff := cmp.Diff(wantStates, h.transitions); diff != "" {
		t.Errorf("transitions (-want +got):\n%s", diff)
	}
	if h.connects != 1 || h.releases != 1 {
		t.Errorf("connects=%d releases=%d", h.connects, h.releases)
	}
	if h.page.Submits != 0 {
		t.Error("already authenticated session submitted the login form")
	}
}

func TestSearch_ZeroLimitListsNothing(t *testing.T) {
	// WHAT: a zero limit is taken literally.
	// WHY: defaults belong to the CLI and tool surfaces, not the library.
	h := newHarness(t)
	for _, limit := range []int{0, -1} {
		got, err := h.acquirer(t, Config{}).Search(context.Background(), "ДБН", limit)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("limit %d: got %d entries", limit, len(got))
		}
	}
}

func TestRecent_LogsInFirst(t *testing.T) {
	h := newHarness(t)
	h.page.Pages[h.adapter.HomeURL()] = loggedOut
	h.page.OnSubmit = func() (string, error) {
		h.page.Pages[h.adapter.HomeURL()] = homeHTML
		return homeHTML, nil
	}

	creds := model.Credentials{Identifier: "olena@example.com", Secret: "pw"}
	got, err := h.acquirer(t, Config{Credentials: creds}).Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if h.page.Submits != 1 {
		t.Errorf("submits = %d", h.page.Submits)
	}
	if len(got) != 2 || got[1].Title != "ДБН Г.1-1:2024" {
		t.Errorf("got %+v", got)
	}
}

func TestAuthRejected_FailsBeforeListing(t *testing.T) {
	h := newHarness(t)
	h.page.Pages[h.adapter.HomeURL()] = loggedOut
	h.page.AfterSubmit = loginHTML

	creds := model.Credentials{Identifier: "olena@example.com", Secret: "wrong"}
	_, err := h.acquirer(t, Config{Credentials: creds}).Search(context.Background(), "ДБН", 5)
	if !errors.Is(err, model.ErrAuthRejected) {
		t.Fatalf("err = %v, want ErrAuthRejected", err)
	}
	if diff := cmp.Diff([]State{StateAuthenticating, StateFailed}, h.transitions); diff != "" {
		t.Errorf("transitions (-want +got):\n%s", diff)
	}
	if h.releases != 1 {
		t.Errorf("browser not released on failure: %d", h.releases)
	}
	if h.page.Visited(h.adapter.SearchURL("ДБН")) != 0 {
		t.Error("search ran without a session")
	}
}

func TestConnectFailure(t *testing.T) {
	h := newHarness(t)
	h.connectErr = errors.New("dial tcp 127.0.0.1:9222: connection refused")

	_, err := h.acquirer(t, Config{}).Recent(context.Background(), 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if h.releases != 0 {
		t.Error("release called without a connection")
	}
	if h.transitions[len(h.transitions)-1] != StateFailed {
		t.Errorf("transitions = %v", h.transitions)
	}
}

func TestDocument(t *testing.T) {
	h := newHarness(t)
	d, err := h.acquirer(t, Config{}).Document(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	if d.Title != "ДБН В.2.2-15:2019 Житлові будинки" || d.MetadataValue("Статус") != "Чинний" {
		t.Errorf("got %+v", d)
	}
	for _, s := range h.transitions {
		if s == StateExtracting {
			t.Error("document lookup entered extraction")
		}
	}
}

func TestDocument_NotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.acquirer(t, Config{}).Document(context.Background(), "404")
	if !errors.Is(err, model.ErrDocumentNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestDownload_FallsBackToHTML(t *testing.T) {
	h := newHarness(t)
	h.page.PDFError = errors.New("PrintToPDF is not implemented")
	dir := t.TempDir()

	res, err := h.acquirer(t, Config{DownloadDir: dir}).Download(context.Background(), "1", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Strategy != model.StrategyHTMLCapture {
		t.Errorf("strategy = %s", res.Strategy)
	}
	if res.ExternalID != "1" {
		t.Errorf("reference = %+v", res.Reference)
	}
	fi, err := os.Stat(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != res.Size {
		t.Errorf("size = %d, file has %d", res.Size, fi.Size())
	}

	want := []State{StateAuthenticating, StateDetailFetching, StateExtracting, StateDone}
	if diff := cmp.Diff(want, h.transitions); diff != "" {
		t.Errorf("transitions (-want +got):\n%s", diff)
	}
}

func TestDownload_NothingExtractable(t *testing.T) {
	h := newHarness(t)
	h.page.PDFError = errors.New("renderer crashed")
	h.page.Pages[h.adapter.ViewerURL("1")] = `<html><body>` + greeting + `</body></html>`

	_, err := h.acquirer(t, Config{DownloadDir: t.TempDir()}).Download(context.Background(), "1", "")
	if !errors.Is(err, model.ErrContentNotExtractable) {
		t.Errorf("err = %v", err)
	}
	if h.releases != 1 {
		t.Error("browser not released")
	}
}

type v2Adapter struct{ *portal.Budstandart }

func (v2Adapter) Name() string { return "budstandart-v2" }

func TestAdapterSelection(t *testing.T) {
	h := newHarness(t)
	v1 := h.adapter.(*portal.Budstandart)
	other := v2Adapter{v1}

	a, err := New(Config{BaseURL: base},
		WithAdapters(other, v1),
		WithConnector(func(context.Context, browser.Config) (browser.Page, func() error, error) {
			return h.page, func() error { return nil }, nil
		}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Recent(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
}
