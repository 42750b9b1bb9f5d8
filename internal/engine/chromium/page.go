package chromium

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/job-seekers/harvest/internal/engine"
)

// Page implements engine.Page against a live Chrome tab.
type Page struct {
	ctx context.Context
}

// run executes chromedp actions on the tab while honoring the caller's
// context: cancellation or deadline on ctx aborts the action without
// tearing the tab down.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if p.ctx.Err() != nil {
		return engine.ErrSessionClosed
	}

	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *Page) WaitReady(ctx context.Context) error {
	return p.run(ctx, chromedp.WaitReady("body", chromedp.ByQuery))
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.run(wctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (p *Page) Query(ctx context.Context, selector string) ([]engine.Element, error) {
	var nodes []*cdp.Node
	err := p.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}
	return p.wrap(nodes), nil
}

func (p *Page) BodyText(ctx context.Context) (string, error) {
	var text string
	err := p.run(ctx, chromedp.Text("body", &text, chromedp.ByQuery))
	return text, err
}

func (p *Page) TagCounts(ctx context.Context, tags ...string) (map[string]int, error) {
	counts := make([]int, len(tags))
	actions := make([]chromedp.Action, 0, len(tags))
	for i, tag := range tags {
		actions = append(actions, chromedp.Evaluate(
			fmt.Sprintf("document.querySelectorAll(%q).length", tag), &counts[i]))
	}
	if err := p.run(ctx, actions...); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(tags))
	for i, tag := range tags {
		out[tag] = counts[i]
	}
	return out, nil
}

func (p *Page) URL(ctx context.Context) (string, error) {
	var url string
	err := p.run(ctx, chromedp.Location(&url))
	return url, err
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := p.run(ctx, chromedp.CaptureScreenshot(&buf))
	return buf, err
}

func (p *Page) wrap(nodes []*cdp.Node) []engine.Element {
	out := make([]engine.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &element{page: p, node: n})
	}
	return out
}

// element is a handle to one DOM node. Reads go through the DevTools
// runtime scoped to the node; input goes through real mouse and key events
// so the page sees them as user interaction.
type element struct {
	page *Page
	node *cdp.Node
}

// call resolves the node to a remote object and invokes fn with the node as
// its receiver. fn must be a JavaScript function expression; its return
// value is decoded into out when out is non-nil.
func (e *element) call(ctx context.Context, fn string, out interface{}) error {
	return e.page.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		res, exc, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		if out == nil || res == nil || res.Value == nil {
			return nil
		}
		return json.Unmarshal(res.Value, out)
	}))
}

func (e *element) Query(ctx context.Context, selector string) ([]engine.Element, error) {
	var nodes []*cdp.Node
	err := e.page.run(ctx, chromedp.Nodes(selector, &nodes,
		chromedp.ByQueryAll, chromedp.AtLeast(0), chromedp.FromNode(e.node)))
	if err != nil {
		return nil, err
	}
	return e.page.wrap(nodes), nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	var text string
	// innerText reflects what the user sees; textContent is the fallback
	// for nodes the layout engine has not materialized.
	err := e.call(ctx, `function() {
		return (this.innerText !== undefined ? this.innerText : this.textContent) || "";
	}`, &text)
	return strings.TrimSpace(text), err
}

func (e *element) HTML(ctx context.Context) (string, error) {
	var html string
	err := e.call(ctx, `function() { return this.innerHTML || ""; }`, &html)
	return html, err
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	value, ok := e.node.Attribute(name)
	return value, ok, nil
}

func (e *element) Click(ctx context.Context) error {
	return e.page.run(ctx, chromedp.MouseClickNode(e.node))
}

func (e *element) Clear(ctx context.Context) error {
	return e.call(ctx, `function() {
		this.value = "";
		this.dispatchEvent(new Event("input", { bubbles: true }));
	}`, nil)
}

func (e *element) TypeChar(ctx context.Context, c rune) error {
	return e.page.run(ctx, chromedp.KeyEventNode(e.node, string(c)))
}

func (e *element) Press(ctx context.Context, key string) error {
	if key == "Enter" {
		key = kb.Enter
	}
	return e.page.run(ctx, chromedp.KeyEventNode(e.node, key))
}

func (e *element) Closest(ctx context.Context, selector string) (engine.Element, error) {
	var out engine.Element
	err := e.page.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(ctx)
		if err != nil {
			return err
		}
		res, exc, err := runtime.CallFunctionOn(fmt.Sprintf(
			`function() { return this.closest(%q); }`, selector)).
			WithObjectID(obj.ObjectID).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		if res == nil || res.ObjectID == "" {
			return nil
		}

		nodeID, err := dom.RequestNode(res.ObjectID).Do(ctx)
		if err != nil {
			return err
		}
		node, err := dom.DescribeNode().WithNodeID(nodeID).Do(ctx)
		if err != nil {
			return err
		}
		node.NodeID = nodeID
		out = &element{page: e.page, node: node}
		return nil
	}))
	return out, err
}
