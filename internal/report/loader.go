// Package report loads nmap XML reports and turns their host elements into
// the host and port records persisted by the importer.
package report

import (
	"encoding/xml"
	"io"
	"os"

	"golang.org/x/net/html/charset"

	"github.com/anstrom/nmapdb/internal/errors"
)

const hostElement = "host"

// errNoRootElement is reported for input that contains no XML element at all.
var errNoRootElement = xmlError("no root element found")

type xmlError string

func (e xmlError) Error() string { return string(e) }

// Document is a fully decoded nmap report.
type Document struct {
	// Path is the file the document was loaded from, if any.
	Path string
	// Hosts holds every host element of the report in document order.
	Hosts []HostXML
}

// Load reads and decodes the report at path. The file is closed before Load
// returns. Missing or unreadable files yield CodeFileNotFound; input that is
// not well-formed XML yields CodeMalformedReport.
func Load(path string) (*Document, error) {
	file, err := os.Open(path) //nolint:gosec // report paths are operator supplied
	if err != nil {
		return nil, errors.ErrFileNotFound(path, err)
	}
	defer func() { _ = file.Close() }()

	doc, err := Decode(file)
	if err != nil {
		var importErr *errors.ImportError
		if errors.As(err, &importErr) {
			importErr.File = path
		}
		return nil, err
	}

	doc.Path = path
	return doc, nil
}

// Decode parses a report from r. Host elements are collected wherever they
// appear in the tree, not only as direct children of nmaprun. Only markup
// that is not well-formed fails the decode; attribute values are never
// interpreted here.
func Decode(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	doc := &Document{}
	sawElement := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.ErrMalformedReport("", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawElement = true

		if start.Name.Local != hostElement {
			continue
		}

		var host HostXML
		if err := decoder.DecodeElement(&host, &start); err != nil {
			return nil, errors.ErrMalformedReport("", err)
		}
		doc.Hosts = append(doc.Hosts, host)
	}

	if !sawElement {
		return nil, errors.ErrMalformedReport("", errNoRootElement)
	}

	return doc, nil
}
