// Package assets defines the asset variants a document can embed and the
// resolver that checks their referenced files.
//
// Each asset kind is its own type carrying only the fields relevant to that
// kind; the flat storage row shape exists only at the persistence boundary
// in the index package.
package assets

// Kind tags the asset variants.
type Kind string

const (
	KindTable        Kind = "table"
	KindCode         Kind = "codeblock"
	KindImage        Kind = "image"
	KindGalleryImage Kind = "gallery_image"
	KindLinkedFile   Kind = "linked_file"
	KindModel        Kind = "model"
)

// Asset is one distinguishable sub-resource of a document.
type Asset interface {
	Kind() Kind
	UID() string
	SID() string
	DocSID() string

	// FileRef returns the file reference for file-backed assets, nil for
	// assets whose content lives in memory.
	FileRef() *FileRef
}

// Identity carries the fields every asset kind shares.
type Identity struct {
	AssetUID     string // {document_uid}#{local-slug}
	AssetSID     string
	DocumentSID  string
	ParentDocUID string
}

func (id Identity) UID() string    { return id.AssetUID }
func (id Identity) SID() string    { return id.AssetSID }
func (id Identity) DocSID() string { return id.DocumentSID }

// FileRef locates an asset backed by a file on disk. Path is relative to
// the content root unless it starts with "/", which is resolved against the
// public directory. The resolver fills AbsPath and Exists.
type FileRef struct {
	Path    string
	AbsPath string
	Ext     string
	Exists  bool
}

// Table holds tabular data extracted from a GFM table: one object per data
// row, keyed by the header cells.
type Table struct {
	Identity
	Data []map[string]string
	Text string
}

func (*Table) Kind() Kind        { return KindTable }
func (*Table) FileRef() *FileRef { return nil }

// Code holds the body of a fenced code block.
type Code struct {
	Identity
	Language string
	Meta     string
	Body     string
}

func (*Code) Kind() Kind        { return KindCode }
func (*Code) FileRef() *FileRef { return nil }

// Image is a local image referenced inline.
type Image struct {
	Identity
	Ref      FileRef
	Slug     string
	Title    string
	Alt      string
	URL      string
	Width    int
	Height   int
	TextList []string // text embedded in the image (SVG only)

	// OrderIndex is the image's position among the document's images.
	OrderIndex int
}

func (*Image) Kind() Kind          { return KindImage }
func (a *Image) FileRef() *FileRef { return &a.Ref }

// GalleryImage is an image discovered by expanding a gallery code block.
type GalleryImage struct {
	Identity
	Ref  FileRef
	Slug string
}

func (*GalleryImage) Kind() Kind          { return KindGalleryImage }
func (a *GalleryImage) FileRef() *FileRef { return &a.Ref }

// LinkedFile is a local file referenced by a link whose extension is on the
// linkable allow-list.
type LinkedFile struct {
	Identity
	Ref FileRef
	URL string
}

func (*LinkedFile) Kind() Kind          { return KindLinkedFile }
func (a *LinkedFile) FileRef() *FileRef { return &a.Ref }

// Model carries structured metadata for a document: either the opaque
// frontmatter fields serialized as JSON, or a co-located model file.
type Model struct {
	Identity
	Payload []byte   // serialized frontmatter, nil when file-backed
	Ref     *FileRef // model file, nil when payload-backed
}

func (*Model) Kind() Kind          { return KindModel }
func (a *Model) FileRef() *FileRef { return a.Ref }
