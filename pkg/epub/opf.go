package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// opfPackage is the root <package> element of the OPF file.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
}

type opfMetadata struct {
	Titles    []string `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators  []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Languages []string `xml:"http://purl.org/dc/elements/1.1/ language"`
}

type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

type opfSpine struct {
	Toc      string            `xml:"toc,attr"`
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

type opfSpineItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// Metadata is the subset of Dublin Core metadata the engine's consumers
// care about.
type Metadata struct {
	Title    string
	Creators []string
	Language string
}

func parseOPF(data []byte) (*opfPackage, error) {
	var pkg opfPackage
	if err := xml.Unmarshal(preprocessHTMLEntities(stripBOM(data)), &pkg); err != nil {
		return nil, fmt.Errorf("epub: parse OPF: %w", err)
	}
	return &pkg, nil
}

func extractMetadata(pkg *opfPackage) Metadata {
	m := Metadata{}
	if len(pkg.Metadata.Titles) > 0 {
		m.Title = strings.TrimSpace(pkg.Metadata.Titles[0])
	}
	for _, c := range pkg.Metadata.Creators {
		if c = strings.TrimSpace(c); c != "" {
			m.Creators = append(m.Creators, c)
		}
	}
	if len(pkg.Metadata.Languages) > 0 {
		m.Language = strings.TrimSpace(pkg.Metadata.Languages[0])
	}
	return m
}
