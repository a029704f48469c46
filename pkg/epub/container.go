package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// containerPath is the well-known location of container.xml.
const containerPath = "META-INF/container.xml"

// containerXML models META-INF/container.xml, which points at the OPF.
type containerXML struct {
	XMLName   xml.Name        `xml:"container"`
	RootFiles []containerRoot `xml:"rootfiles>rootfile"`
}

type containerRoot struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// locateOPF finds the OPF package path: container.xml first, then a scan
// for the first .opf entry (some authoring tools omit the container file).
func locateOPF(zr *zip.Reader) (string, error) {
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, containerPath) {
			return parseContainerXML(f)
		}
	}

	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("%w: no OPF package found", ErrInvalidEPUB)
}

func parseContainerXML(f *zip.File) (string, error) {
	data, err := readZipFile(f)
	if err != nil {
		return "", fmt.Errorf("epub: read container.xml: %w", err)
	}

	var c containerXML
	if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
		return "", fmt.Errorf("epub: parse container.xml: %w", err)
	}

	var fallback string
	for _, rf := range c.RootFiles {
		full := strings.TrimSpace(rf.FullPath)
		if full == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), "application/oebps-package+xml") {
			return full, nil
		}
		if fallback == "" {
			fallback = full
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("%w: container.xml has no usable rootfile", ErrInvalidEPUB)
	}
	return fallback, nil
}
