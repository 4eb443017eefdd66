// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx assembles DOCX files produced for consecutive page ranges into
// one document. It only splices package parts; it never interprets layout.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	documentPart     = "word/document.xml"
	relsPart         = "word/_rels/document.xml.rels"
	contentTypesPart = "[Content_Types].xml"

	pageBreak = `<w:p><w:r><w:br w:type="page"/></w:r></w:p>`
)

var (
	relAttr         = regexp.MustCompile(`\br:(id|embed|link|pict)="([^"]+)"`)
	headerFooterRef = regexp.MustCompile(`<w:(header|footer)Reference\b[^>]*/>`)
	drawingID       = regexp.MustCompile(`(<wp:docPr\b[^>]*?\sid=")\d+"`)
)

// Merge writes the concatenation of parts, in order, to dst. The first part
// supplies styles, numbering, settings and headers; later parts contribute
// their body content and the media it references. Each part keeps its own
// section properties so page size and margins survive the merge.
func Merge(parts []string, dst string) error {
	switch len(parts) {
	case 0:
		return errors.New("merging DOCX: no parts")
	case 1:
		return copyFile(parts[0], dst)
	}

	base, err := readPackage(parts[0])
	if err != nil {
		return err
	}
	prefix, inner, suffix, err := splitBody(string(base.files[documentPart]))
	if err != nil {
		return fmt.Errorf("%s: %w", parts[0], err)
	}
	content, sect := splitSectPr(inner)

	var body strings.Builder
	body.WriteString(content)

	for i, p := range parts[1:] {
		body.WriteString(sectionBreak(sect))

		part, err := readPackage(p)
		if err != nil {
			return err
		}
		_, partInner, _, err := splitBody(string(part.files[documentPart]))
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		partContent, partSect := splitSectPr(partInner)

		partContent, err = base.adopt(part, partContent, fmt.Sprintf("m%d", i+1))
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		body.WriteString(partContent)
		sect = headerFooterRef.ReplaceAllString(partSect, "")
	}
	body.WriteString(sect)

	base.files[documentPart] = []byte(prefix + renumberDrawings(body.String()) + suffix)
	return base.writeTo(dst)
}

// renumberDrawings assigns sequential drawing object IDs across the merged
// body. Each part numbers its drawings from 1, and Word requires them unique.
func renumberDrawings(body string) string {
	n := 0
	return drawingID.ReplaceAllStringFunc(body, func(m string) string {
		n++
		return drawingID.FindStringSubmatch(m)[1] + strconv.Itoa(n) + `"`
	})
}

// sectionBreak turns a body-level sectPr into a paragraph that ends the
// section. Parts without section properties are separated by a page break.
func sectionBreak(sect string) string {
	if sect == "" {
		return pageBreak
	}
	return "<w:p><w:pPr>" + sect + "</w:pPr></w:p>"
}

// splitBody returns the document XML before the body content, the body
// content, and everything from </w:body> on.
func splitBody(doc string) (prefix, inner, suffix string, err error) {
	start := strings.Index(doc, "<w:body")
	if start < 0 {
		return "", "", "", errors.New("document.xml has no w:body")
	}
	open := strings.IndexByte(doc[start:], '>')
	if open < 0 {
		return "", "", "", errors.New("document.xml has a malformed w:body tag")
	}
	open += start + 1

	end := strings.LastIndex(doc, "</w:body>")
	if end < open {
		return "", "", "", errors.New("document.xml has an unterminated w:body")
	}
	return doc[:open], doc[open:end], doc[end:], nil
}

// splitSectPr separates the trailing body-level w:sectPr from the content.
func splitSectPr(inner string) (content, sect string) {
	search := inner
	for {
		i := strings.LastIndex(search, "<w:sectPr")
		if i < 0 {
			return inner, ""
		}
		next := search[i+len("<w:sectPr"):]
		if next != "" && (next[0] == ' ' || next[0] == '>' || next[0] == '/') {
			tail := strings.TrimSpace(inner[i:])
			if strings.HasSuffix(tail, "</w:sectPr>") || isSelfClosing(tail) {
				return inner[:i], tail
			}
			return inner, ""
		}
		search = search[:i]
	}
}

func isSelfClosing(tag string) bool {
	return strings.HasSuffix(tag, "/>") && strings.Count(tag, ">") == 1
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relationships struct {
	Items []relationship `xml:"Relationship"`
}

type typeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentTypes struct {
	Defaults []typeDefault `xml:"Default"`
}

// pkg is an in-memory DOCX package.
type pkg struct {
	name  string
	files map[string][]byte
	order []string
}

func readPackage(name string) (*pkg, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("opening DOCX %s: %w", name, err)
	}
	defer zr.Close()

	p := &pkg{name: name, files: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("reading %s in %s: %w", f.Name, name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s in %s: %w", f.Name, name, err)
		}
		p.files[f.Name] = data
		p.order = append(p.order, f.Name)
	}
	if _, ok := p.files[documentPart]; !ok {
		return nil, fmt.Errorf("%s is not a DOCX package: missing %s", name, documentPart)
	}
	return p, nil
}

func (p *pkg) put(name string, data []byte) {
	if _, ok := p.files[name]; !ok {
		p.order = append(p.order, name)
	}
	p.files[name] = data
}

// adopt rewrites the relationship references in content (taken from part)
// to fresh IDs in p, copying the referenced media under a prefixed name.
func (p *pkg) adopt(part *pkg, content, prefix string) (string, error) {
	var partRels relationships
	if data, ok := part.files[relsPart]; ok {
		if err := xml.Unmarshal(data, &partRels); err != nil {
			return "", fmt.Errorf("parsing relationships: %w", err)
		}
	}
	byID := make(map[string]relationship, len(partRels.Items))
	for _, r := range partRels.Items {
		byID[r.ID] = r
	}

	var partTypes contentTypes
	if data, ok := part.files[contentTypesPart]; ok {
		if err := xml.Unmarshal(data, &partTypes); err != nil {
			return "", fmt.Errorf("parsing content types: %w", err)
		}
	}

	renamed := map[string]string{}
	var added []relationship
	var adoptErr error

	out := relAttr.ReplaceAllStringFunc(content, func(m string) string {
		sub := relAttr.FindStringSubmatch(m)
		attr, id := sub[1], sub[2]
		if newID, ok := renamed[id]; ok {
			return `r:` + attr + `="` + newID + `"`
		}
		rel, ok := byID[id]
		if !ok {
			return m
		}
		newID := prefix + "_" + id
		renamed[id] = newID

		nr := relationship{ID: newID, Type: rel.Type, Target: rel.Target, TargetMode: rel.TargetMode}
		if rel.TargetMode != "External" {
			relTarget := rel.Target
			if strings.HasPrefix(relTarget, "/") {
				relTarget = strings.TrimPrefix(strings.TrimPrefix(relTarget, "/"), "word/")
			}
			src := path.Join("word", relTarget)
			data, ok := part.files[src]
			if !ok {
				adoptErr = fmt.Errorf("relationship %s targets missing part %s", id, src)
				return m
			}
			target := path.Join(path.Dir(relTarget), prefix+"_"+path.Base(relTarget))
			nr.Target = target
			p.put(path.Join("word", target), data)
			p.ensureDefault(path.Ext(target), partTypes)
		}
		added = append(added, nr)
		return `r:` + attr + `="` + newID + `"`
	})
	if adoptErr != nil {
		return "", adoptErr
	}
	if len(added) > 0 {
		if err := p.appendRels(added); err != nil {
			return "", err
		}
	}
	return out, nil
}

func (p *pkg) appendRels(rels []relationship) error {
	data, ok := p.files[relsPart]
	if !ok {
		data = []byte(xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`)
		p.put(relsPart, data)
	}
	doc := string(data)
	end := strings.LastIndex(doc, "</Relationships>")
	if end < 0 {
		return fmt.Errorf("%s: malformed %s", p.name, relsPart)
	}

	var b strings.Builder
	for _, r := range rels {
		b.WriteString(`<Relationship Id="`)
		xml.EscapeText(&b, []byte(r.ID))
		b.WriteString(`" Type="`)
		xml.EscapeText(&b, []byte(r.Type))
		b.WriteString(`" Target="`)
		xml.EscapeText(&b, []byte(r.Target))
		b.WriteString(`"`)
		if r.TargetMode != "" {
			b.WriteString(` TargetMode="`)
			xml.EscapeText(&b, []byte(r.TargetMode))
			b.WriteString(`"`)
		}
		b.WriteString(`/>`)
	}
	p.files[relsPart] = []byte(doc[:end] + b.String() + doc[end:])
	return nil
}

// ensureDefault registers a content type for ext if the base package has none.
func (p *pkg) ensureDefault(ext string, from contentTypes) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		return
	}
	doc := string(p.files[contentTypesPart])
	var have contentTypes
	if err := xml.Unmarshal([]byte(doc), &have); err == nil {
		for _, d := range have.Defaults {
			if strings.EqualFold(d.Extension, ext) {
				return
			}
		}
	}

	ctype := ""
	for _, d := range from.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			ctype = d.ContentType
			break
		}
	}
	if ctype == "" {
		ctype = mime.TypeByExtension("." + ext)
	}
	if ctype == "" {
		ctype = "application/octet-stream"
	}

	end := strings.LastIndex(doc, "</Types>")
	if end < 0 {
		return
	}
	entry := `<Default Extension="` + ext + `" ContentType="` + ctype + `"/>`
	p.files[contentTypesPart] = []byte(doc[:end] + entry + doc[end:])
}

func (p *pkg) writeTo(dst string) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.order {
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		if _, err := w.Write(p.files[name]); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing DOCX: %w", err)
	}
	return writeAtomic(dst, buf.Bytes())
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	return writeAtomic(dst, data)
}

// writeAtomic writes data to a temp file beside dst and renames it over dst.
func writeAtomic(dst string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", dst, err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return fmt.Errorf("setting mode on %s: %w", dst, err)
	}
	if err := os.Rename(name, dst); err != nil {
		os.Remove(name)
		return fmt.Errorf("renaming into %s: %w", dst, err)
	}
	return nil
}

// Merger satisfies convert.Merger using Merge.
type Merger struct{}

// Merge implements convert.Merger.
func (Merger) Merge(parts []string, dst string) error {
	return Merge(parts, dst)
}
