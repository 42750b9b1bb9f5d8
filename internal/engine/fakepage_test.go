package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// fakePage implements Page over a goquery document, so the state machine and
// pipeline can be exercised without a browser. Navigation swaps documents;
// clicks and key presses run test-installed hooks to simulate the target
// site reacting.
type fakePage struct {
	doc    *goquery.Document
	url    string
	pages  map[string]string
	values map[*html.Node]string

	// onClick runs for every element click; tests use it to swap the
	// document when the search button is clicked.
	onClick func(p *fakePage, sel *goquery.Selection)
	// onEnter runs when Enter is pressed on an element.
	onEnter func(p *fakePage)

	// navTimeouts makes the first N navigations fail like a timeout.
	navTimeouts int
	navCount    int
	clicks      []string
}

func newFakePage(pages map[string]string) *fakePage {
	return &fakePage{
		pages:  pages,
		values: make(map[*html.Node]string),
	}
}

func (p *fakePage) setHTML(raw string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	p.doc = doc
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navCount++
	if p.navTimeouts > 0 {
		p.navTimeouts--
		return context.DeadlineExceeded
	}
	raw, ok := p.pages[url]
	if !ok {
		return errors.New("no such page: " + url)
	}
	p.url = url
	p.setHTML(raw)
	return nil
}

func (p *fakePage) WaitReady(context.Context) error { return nil }

func (p *fakePage) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	if p.doc == nil || p.doc.Find(selector).Length() == 0 {
		return context.DeadlineExceeded
	}
	return nil
}

func (p *fakePage) Query(_ context.Context, selector string) ([]Element, error) {
	if p.doc == nil {
		return nil, nil
	}
	return p.wrap(p.doc.Find(selector)), nil
}

func (p *fakePage) BodyText(context.Context) (string, error) {
	if p.doc == nil {
		return "", nil
	}
	return p.doc.Find("body").Text(), nil
}

func (p *fakePage) TagCounts(_ context.Context, tags ...string) (map[string]int, error) {
	counts := make(map[string]int, len(tags))
	for _, tag := range tags {
		if p.doc != nil {
			counts[tag] = p.doc.Find(tag).Length()
		}
	}
	return counts, nil
}

func (p *fakePage) URL(context.Context) (string, error) { return p.url, nil }

func (p *fakePage) Screenshot(context.Context) ([]byte, error) {
	return nil, errors.New("screenshots unsupported")
}

func (p *fakePage) wrap(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	for i := 0; i < sel.Length(); i++ {
		out = append(out, &fakeElement{page: p, sel: sel.Eq(i)})
	}
	return out
}

// value returns the text typed into the first element matching selector.
func (p *fakePage) value(selector string) string {
	sel := p.doc.Find(selector)
	if sel.Length() == 0 {
		return ""
	}
	return p.values[sel.Get(0)]
}

type fakeElement struct {
	page *fakePage
	sel  *goquery.Selection
}

func (e *fakeElement) Query(_ context.Context, selector string) ([]Element, error) {
	return e.page.wrap(e.sel.Find(selector)), nil
}

func (e *fakeElement) Text(context.Context) (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

func (e *fakeElement) HTML(context.Context) (string, error) {
	return e.sel.Html()
}

func (e *fakeElement) Attribute(_ context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *fakeElement) Click(context.Context) error {
	if id, ok := e.sel.Attr("id"); ok {
		e.page.clicks = append(e.page.clicks, "#"+id)
	} else {
		e.page.clicks = append(e.page.clicks, goquery.NodeName(e.sel))
	}
	if e.page.onClick != nil {
		e.page.onClick(e.page, e.sel)
	}
	return nil
}

func (e *fakeElement) Clear(context.Context) error {
	e.page.values[e.sel.Get(0)] = ""
	return nil
}

func (e *fakeElement) TypeChar(_ context.Context, c rune) error {
	e.page.values[e.sel.Get(0)] += string(c)
	return nil
}

func (e *fakeElement) Press(_ context.Context, key string) error {
	if key == "Enter" && e.page.onEnter != nil {
		e.page.onEnter(e.page)
	}
	return nil
}

func (e *fakeElement) Closest(_ context.Context, selector string) (Element, error) {
	closest := e.sel.Closest(selector)
	if closest.Length() == 0 {
		return nil, nil
	}
	return &fakeElement{page: e.page, sel: closest.Eq(0)}, nil
}
