package extract

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/contentstruct/contentstruct/internal/assets"
	"github.com/contentstruct/contentstruct/internal/document"
	"github.com/contentstruct/contentstruct/internal/ids"
	"github.com/contentstruct/contentstruct/internal/imagemeta"
	"github.com/contentstruct/contentstruct/internal/slugs"
)

// Walker flattens markdown trees into items and assets.
type Walker struct {
	// ContentDir is the content root, used for gallery directory
	// expansion.
	ContentDir string

	// Resolver checks existence of file-backed assets discovered during
	// the walk.
	Resolver *assets.Resolver

	// Prober supplies image dimensions and embedded text. Nil disables
	// probing.
	Prober imagemeta.Prober

	// LinkExtensions is the allow-list of extensions for which links
	// become linked-file assets. Empty disables link assets.
	LinkExtensions map[string]bool

	// Warnf receives per-record warnings. Nil silences them.
	Warnf func(format string, args ...any)
}

// Result is the flattened form of one document.
type Result struct {
	Items    []Item
	Assets   []assets.Asset
	Headings []Heading
}

// state carries every cursor and counter of one document traversal. It is
// passed explicitly through the recursion; nothing is closed over.
type state struct {
	doc     *document.Document
	source  []byte
	items   []Item
	assets  []assets.Asset
	heads   []Heading
	current *Heading // nearest enclosing heading

	headingSlugs map[string]bool
	imageSlugs   map[string]bool
	codeSlugs    map[string]bool
	linkSlugs    map[string]bool
	tableCounter int
	imageCounter int
}

func newState(doc *document.Document, source []byte) *state {
	return &state{
		doc:          doc,
		source:       source,
		headingSlugs: make(map[string]bool),
		imageSlugs:   make(map[string]bool),
		codeSlugs:    make(map[string]bool),
		linkSlugs:    make(map[string]bool),
	}
}

// level is the depth of the nearest enclosing heading, 0 before the first.
func (st *state) level() int {
	if st.current == nil {
		return 0
	}
	return st.current.Depth
}

// emit appends an item, assigning its level and dense order index.
func (st *state) emit(item Item) {
	item.Level = st.level()
	item.OrderIndex = len(st.items)
	st.items = append(st.items, item)
}

func (st *state) addAsset(a assets.Asset) {
	st.assets = append(st.assets, a)
}

func (st *state) identity(localSlug string) assets.Identity {
	uid := ids.AssetUID(st.doc.UID, localSlug)
	return assets.Identity{
		AssetUID:     uid,
		AssetSID:     ids.Short(uid),
		DocumentSID:  st.doc.SID,
		ParentDocUID: st.doc.UID,
	}
}

// Walk parses body and flattens it. The document's Headings list is filled
// as a side effect.
func (w *Walker) Walk(body string, doc *document.Document) Result {
	source := []byte(body)
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(source))

	st := newState(doc, source)
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		w.visitBlock(child, st)
	}

	headingSlugs := make([]string, len(st.heads))
	for i, h := range st.heads {
		headingSlugs[i] = h.Slug
	}
	doc.Headings = headingSlugs

	return Result{Items: st.items, Assets: st.assets, Headings: st.heads}
}

func (w *Walker) visitBlock(n ast.Node, st *state) {
	switch t := n.(type) {
	case *ast.Heading:
		w.visitHeading(t, st)
	case *east.Table:
		w.visitTable(t, st)
	case *ast.FencedCodeBlock:
		w.visitFencedCode(t, st)
	case *ast.CodeBlock:
		w.visitCodeBody(codeBody(t, st.source), "code", "", st)
	case *ast.Paragraph:
		w.visitParagraph(t, st)
	case *ast.TextBlock:
		w.visitParagraph(t, st)
	default:
		// Lists, blockquotes and other containers contribute nothing
		// themselves; their children are extracted in place.
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			w.visitBlock(child, st)
		}
	}
}

func (w *Walker) visitHeading(n *ast.Heading, st *state) {
	headingText := nodeText(n, st.source)
	slug := ids.NextUnique(slugs.Title(headingText), st.headingSlugs)
	st.headingSlugs[slug] = true

	uid := ids.AssetUID(st.doc.UID, slug)
	heading := Heading{
		Slug:  slug,
		Text:  headingText,
		Depth: n.Level,
		UID:   uid,
		SID:   ids.Short(uid),
	}
	st.heads = append(st.heads, heading)
	st.current = &st.heads[len(st.heads)-1]

	item := Item{Type: ItemHeading, BodyText: headingText, Slug: slug}
	if hasComplexInline(n) {
		item.Tree = snapshotJSON(n, st.source)
	}
	st.emit(item)
}

func (w *Walker) visitTable(n *east.Table, st *state) {
	st.tableCounter++
	slug := "table-" + strconv.Itoa(st.tableCounter)
	identity := st.identity(slug)

	data := tableData(n, st.source)
	st.addAsset(&assets.Table{
		Identity: identity,
		Data:     data,
		Text:     nodeText(n, st.source),
	})
	st.emit(Item{
		Type:     ItemTable,
		Slug:     slug,
		AssetUID: identity.AssetUID,
		BodyText: PlaceholderText(string(assets.KindTable), identity.AssetUID) + " " + tableDescription(data),
	})
}

func (w *Walker) visitFencedCode(n *ast.FencedCodeBlock, st *state) {
	language := "code"
	if lang := n.Language(st.source); len(lang) > 0 {
		language = string(lang)
	}
	meta := fenceMeta(n, st.source)
	w.visitCodeBody(codeBody(n, st.source), language, meta, st)
}

func (w *Walker) visitCodeBody(body, language, meta string, st *state) {
	slug := ids.NextUnique(slugs.Code(language, meta), st.codeSlugs)
	st.codeSlugs[slug] = true
	identity := st.identity(slug)

	st.addAsset(&assets.Code{
		Identity: identity,
		Language: language,
		Meta:     meta,
		Body:     body,
	})
	st.emit(Item{
		Type:     ItemCode,
		Slug:     slug,
		AssetUID: identity.AssetUID,
		BodyText: PlaceholderText(string(assets.KindCode), identity.AssetUID),
	})

	if isGalleryBlock(language, meta) {
		w.expandGallery(body, st)
	}
}

// expandGallery turns a gallery declaration into one image asset per
// resolved path, all attached to the owning code item's document.
func (w *Walker) expandGallery(body string, st *state) {
	paths := galleryPaths(body, st.doc.BaseDir, w.ContentDir)
	if len(paths) == 0 && strings.TrimSpace(body) != "" {
		w.warnf("gallery in %s resolved to no paths", st.doc.UID)
		return
	}
	for _, rawPath := range paths {
		slug := ids.NextUnique(slugs.Image("", "", rawPath), st.imageSlugs)
		st.imageSlugs[slug] = true

		asset := &assets.GalleryImage{
			Identity: st.identity(slug),
			Ref:      assets.FileRef{Path: assets.ResolveDocumentPath(st.doc.BaseDir, rawPath)},
			Slug:     slug,
		}
		w.Resolver.ResolveAll([]assets.Asset{asset})
		if !asset.Ref.Exists {
			continue
		}
		st.addAsset(asset)
	}
}

func (w *Walker) visitParagraph(n ast.Node, st *state) {
	raw := nodeLiteral(n, st.source)
	if directive, ok := parseBlockDirective(raw); ok {
		if directive == nil {
			return // bare closing fence
		}
		st.emit(Item{
			Type:     ItemDirective,
			Slug:     directive.Name,
			BodyText: directive.Label,
			Tree:     directive.metadataJSON(),
		})
		return
	}

	// Split the paragraph into runs of plain inline content interleaved
	// with embedded images and links, preserving reading order.
	snapshotPending := hasComplexInline(n)
	var run []ast.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		nodes := run
		run = nil
		w.flushRun(n, nodes, &snapshotPending, st)
	}

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Image:
			flush()
			w.visitImage(c, st)
		case *ast.Link:
			flush()
			w.visitLink(c, st)
		default:
			run = append(run, child)
		}
	}
	flush()
}

// flushRun emits one paragraph item for a run of plain inline nodes. Text
// directives inside the run become their own items after it.
func (w *Walker) flushRun(paragraph ast.Node, run []ast.Node, snapshotPending *bool, st *state) {
	var sb strings.Builder
	for _, n := range run {
		writeLiteral(n, st.source, &sb)
	}
	rendered, directives := parseInlineDirectives(sb.String())
	rendered = strings.Join(strings.Fields(rendered), " ")

	if rendered != "" {
		item := Item{Type: ItemParagraph, BodyText: rendered}
		// The snapshot covers the whole paragraph; attach it to the first
		// textual run only.
		if *snapshotPending {
			item.Tree = snapshotJSON(paragraph, st.source)
			*snapshotPending = false
		}
		st.emit(item)
	}
	for _, d := range directives {
		directive := d
		st.emit(Item{
			Type:     ItemDirective,
			Slug:     directive.Name,
			BodyText: directive.Label,
			Tree:     directive.metadataJSON(),
		})
	}
}

func (w *Walker) visitImage(n *ast.Image, st *state) {
	alt := nodeText(n, st.source)
	title := string(n.Title)
	url := strings.TrimSpace(string(n.Destination))

	slug := ids.NextUnique(slugs.Image(title, alt, url), st.imageSlugs)
	st.imageSlugs[slug] = true

	item := Item{Type: ItemImage, Slug: slug, BodyText: alt}
	if item.BodyText == "" {
		item.BodyText = title
	}

	// Absolute, protocol and host-relative URLs are external: the item is
	// recorded but no asset is created.
	if url == "" || assets.IsExternalURL(url) || strings.HasPrefix(url, "/") {
		st.emit(item)
		return
	}

	asset := &assets.Image{
		Identity: st.identity(slug),
		Ref:      assets.FileRef{Path: assets.ResolveDocumentPath(st.doc.BaseDir, url)},
		Slug:     slug,
		Title:    title,
		Alt:      alt,
		URL:      url,
	}
	w.Resolver.ResolveAll([]assets.Asset{asset})
	if !asset.Ref.Exists {
		st.emit(item)
		return
	}

	w.probeImage(asset)
	asset.OrderIndex = st.imageCounter
	st.imageCounter++
	st.addAsset(asset)
	item.AssetUID = asset.AssetUID
	st.emit(item)
}

// probeImage attaches dimensions and embedded text. A probe failure drops
// the metadata for this image only.
func (w *Walker) probeImage(asset *assets.Image) {
	if w.Prober == nil {
		return
	}
	if info, err := w.Prober.Probe(asset.Ref.AbsPath); err == nil {
		asset.Width = info.Width
		asset.Height = info.Height
	} else {
		w.warnf("failed to probe image %s: %v", asset.Ref.Path, err)
	}
	if texts, err := w.Prober.EmbeddedText(asset.Ref.AbsPath); err == nil {
		asset.TextList = texts
	}
}

func (w *Walker) visitLink(n *ast.Link, st *state) {
	linkText := nodeText(n, st.source)
	title := string(n.Title)
	url := strings.TrimSpace(string(n.Destination))

	slug := ids.NextUnique(slugs.Link(title, linkText), st.linkSlugs)
	st.linkSlugs[slug] = true

	item := Item{Type: ItemLink, Slug: slug, BodyText: linkText}
	if item.BodyText == "" {
		item.BodyText = title
	}
	if hasComplexInline(n) {
		item.Tree = snapshotJSON(n, st.source)
	}

	asset := w.linkAsset(n, url, slug, st)
	if asset != nil {
		st.addAsset(asset)
		item.AssetUID = asset.AssetUID
	}
	st.emit(item)
}

// linkAsset creates a linked-file asset when the target's extension is on
// the allow-list and the target resolves to an existing local file.
func (w *Walker) linkAsset(n *ast.Link, url, slug string, st *state) *assets.LinkedFile {
	if len(w.LinkExtensions) == 0 {
		return nil
	}
	if url == "" || assets.IsExternalURL(url) || strings.HasPrefix(url, "/") {
		return nil
	}
	ext := assets.ExtOf(url)
	if !w.LinkExtensions[ext] {
		return nil
	}

	asset := &assets.LinkedFile{
		Identity: st.identity("link-" + slug),
		Ref: assets.FileRef{
			Path: assets.ResolveDocumentPath(st.doc.BaseDir, url),
			Ext:  ext,
		},
		URL: url,
	}
	w.Resolver.ResolveAll([]assets.Asset{asset})
	if !asset.Ref.Exists {
		return nil
	}
	return asset
}

func (w *Walker) warnf(format string, args ...any) {
	if w.Warnf != nil {
		w.Warnf(format, args...)
	}
}

// fenceMeta returns the info-string words after the language tag.
func fenceMeta(n *ast.FencedCodeBlock, source []byte) string {
	if n.Info == nil {
		return ""
	}
	info := string(n.Info.Segment.Value(source))
	fields := strings.Fields(info)
	if len(fields) < 2 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}

func codeBody(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

