package portal

import (
	"net/url"
	"testing"
)

func TestBudstandart_URLs(t *testing.T) {
	b, err := NewBudstandart("")
	if err != nil {
		t.Fatal(err)
	}

	if got := b.DetailURL("90348"); got != "https://online.budstandart.com/ua/catalog/doc-page.html?id_doc=90348" {
		t.Errorf("DetailURL = %q", got)
	}
	if got := b.ViewerURL("90348"); got != "https://online.budstandart.com/ua/catalog/document.html?id_doc=90348" {
		t.Errorf("ViewerURL = %q", got)
	}
	if got := b.LoginURL(); got != "https://online.budstandart.com/ua/login.html" {
		t.Errorf("LoginURL = %q", got)
	}

	u, err := url.Parse(b.SearchURL("ДБН В.2.2"))
	if err != nil {
		t.Fatal(err)
	}
	if u.Path != "/ua/catalog/searchdoc.html" {
		t.Errorf("search path = %q", u.Path)
	}
	if q := u.Query().Get("request"); q != "ДБН В.2.2" {
		t.Errorf("search request = %q", q)
	}
}

func TestBudstandart_DocumentID(t *testing.T) {
	b, _ := NewBudstandart("")

	tests := []struct {
		href string
		id   string
		ok   bool
	}{
		{"/ua/catalog/doc-page.html?id_doc=90348", "90348", true},
		{"https://online.budstandart.com/ua/catalog/doc-page.html?lang=ua&id_doc=7", "7", true},
		{"/ua/catalog/doc-page.html?id_doc=", "", false},
		{"/ua/catalog/doc-page.html?id_doc=abc", "", false},
		{"/ua/news.html", "", false},
	}
	for _, tt := range tests {
		id, ok := b.DocumentID(tt.href)
		if id != tt.id || ok != tt.ok {
			t.Errorf("DocumentID(%q) = %q, %v; want %q, %v", tt.href, id, ok, tt.id, tt.ok)
		}
	}
}

func TestBudstandart_CustomBase(t *testing.T) {
	b, err := NewBudstandart("http://127.0.0.1:8080")
	if err != nil {
		t.Fatal(err)
	}
	if got := b.HomeURL(); got != "http://127.0.0.1:8080/ua/" {
		t.Errorf("HomeURL = %q", got)
	}
}

func TestSelect(t *testing.T) {
	b, _ := NewBudstandart("")

	a, ok := Select(`<html><body><a href="/ua/catalog/searchdoc.html">Каталог</a></body></html>`, b)
	if !ok || a.Name() != b.Name() {
		t.Errorf("Select: got %v, %v", a, ok)
	}

	a, ok = Select(`<html><body><p>maintenance</p></body></html>`, b)
	if ok {
		t.Error("Select should not match unrelated markup")
	}
	if a == nil {
		t.Error("Select should fall back to the first adapter")
	}

	if a, ok := Select("<html></html>"); a != nil || ok {
		t.Error("Select with no adapters should return nil")
	}
}

func TestResolve(t *testing.T) {
	base, _ := url.Parse("https://online.budstandart.com/ua/")
	if got := Resolve(base, "/files/a.pdf"); got != "https://online.budstandart.com/files/a.pdf" {
		t.Errorf("Resolve relative = %q", got)
	}
	if got := Resolve(base, "https://cdn.example.com/a.pdf"); got != "https://cdn.example.com/a.pdf" {
		t.Errorf("Resolve absolute = %q", got)
	}
}
