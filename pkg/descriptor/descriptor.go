// Package descriptor reads and writes NuGet package descriptors (.nuspec).
//
// The scaffolded descriptor is treated as a fixed template: fields are only
// ever overwritten, never created, and everything else in the document is
// written back as it was read.
package descriptor

import (
	"errors"
	"fmt"
	"os"

	"github.com/beevik/etree"
	"github.com/fulmenhq/nuspecgen/pkg/safeio"
)

// Metadata field element names, in the order nuget spec emits them.
const (
	FieldID           = "id"
	FieldVersion      = "version"
	FieldTitle        = "title"
	FieldAuthors      = "authors"
	FieldOwners       = "owners"
	FieldLicenseURL   = "licenseUrl"
	FieldProjectURL   = "projectUrl"
	FieldIconURL      = "iconUrl"
	FieldDescription  = "description"
	FieldReleaseNotes = "releaseNotes"
	FieldTags         = "tags"
)

// Fields lists every field the pipeline writes.
var Fields = []string{
	FieldID,
	FieldVersion,
	FieldTitle,
	FieldAuthors,
	FieldOwners,
	FieldLicenseURL,
	FieldProjectURL,
	FieldIconURL,
	FieldDescription,
	FieldReleaseNotes,
	FieldTags,
}

const metadataTag = "metadata"

// ErrNoMetadata indicates a document without a metadata element.
var ErrNoMetadata = errors.New("descriptor has no metadata element")

// MissingElementError is returned when a field element is absent from the
// template.
type MissingElementError struct {
	Field string
	Path  string
}

func (e *MissingElementError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("descriptor has no <%s> element under <%s>", e.Field, metadataTag)
	}
	return fmt.Sprintf("descriptor %s has no <%s> element under <%s>", e.Path, e.Field, metadataTag)
}

// Document is an in-memory descriptor.
type Document struct {
	doc      *etree.Document
	metadata *etree.Element
	path     string
}

// Load reads and parses the descriptor at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is resolved inside the project directory by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.path = path
	return d, nil
}

// Parse parses descriptor XML. The metadata element is either the root or a
// direct child of it (<package><metadata>).
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("descriptor is not well-formed XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, ErrNoMetadata
	}

	metadata := root
	if root.Tag != metadataTag {
		metadata = root.SelectElement(metadataTag)
	}
	if metadata == nil {
		return nil, ErrNoMetadata
	}
	return &Document{doc: doc, metadata: metadata}, nil
}

// Validate checks that every element in Fields exists.
func (d *Document) Validate() error {
	var errs []error
	for _, name := range Fields {
		if d.metadata.SelectElement(name) == nil {
			errs = append(errs, &MissingElementError{Field: name, Path: d.path})
		}
	}
	return errors.Join(errs...)
}

// Field returns the text of the named field.
func (d *Document) Field(name string) (string, error) {
	el := d.metadata.SelectElement(name)
	if el == nil {
		return "", &MissingElementError{Field: name, Path: d.path}
	}
	return el.Text(), nil
}

// SetField replaces the text of an existing field element. Attributes and
// the element's position are kept.
func (d *Document) SetField(name, value string) error {
	el := d.metadata.SelectElement(name)
	if el == nil {
		return &MissingElementError{Field: name, Path: d.path}
	}
	for _, child := range el.ChildElements() {
		el.RemoveChild(child)
	}
	el.SetText(value)
	return nil
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	return d.doc.WriteToBytes()
}

// Save writes the document to path, keeping the existing file mode.
func (d *Document) Save(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return fmt.Errorf("failed to serialize descriptor: %w", err)
	}
	if err := safeio.WriteFilePreservePerms(path, data); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	return nil
}
