package models

import (
	"sort"
	"strings"
)

// ParagraphSeparator separates paragraphs, pages and documents in merged text.
const ParagraphSeparator = "\n\n"

// Document is the extracted text of one file, keyed by page number.
type Document struct {
	ID    string         `bson:"id" json:"id" yaml:"id"`
	Pages map[int]string `bson:"pages" json:"pages" yaml:"pages"`
}

// SortedPages returns the page numbers in ascending order.
func (d Document) SortedPages() []int {
	pages := make([]int, 0, len(d.Pages))
	for page := range d.Pages {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}

// DocumentGroup is every document filed by one party of a comparison.
type DocumentGroup struct {
	Name      string     `bson:"name" json:"name" yaml:"name"`
	Documents []Document `bson:"documents" json:"documents" yaml:"documents"`
}

// Merge joins all page texts of the group, pages in numeric order within a
// document and documents in group order, separated by a blank line.
func (g DocumentGroup) Merge() string {
	var texts []string
	for _, doc := range g.Documents {
		for _, page := range doc.SortedPages() {
			texts = append(texts, doc.Pages[page])
		}
	}
	return strings.Join(texts, ParagraphSeparator)
}

// PageCount returns the number of pages across all documents.
func (g DocumentGroup) PageCount() int {
	total := 0
	for _, doc := range g.Documents {
		total += len(doc.Pages)
	}
	return total
}

// GroupFromPageMap builds a group from the text-source output format
// {document_id: {page_number: text}}. Documents are ordered by id so the
// merged text does not depend on map iteration order.
func GroupFromPageMap(name string, pages map[string]map[int]string) DocumentGroup {
	ids := make([]string, 0, len(pages))
	for id := range pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	group := DocumentGroup{Name: name, Documents: make([]Document, 0, len(ids))}
	for _, id := range ids {
		group.Documents = append(group.Documents, Document{ID: id, Pages: pages[id]})
	}
	return group
}

// TextBlock is a contiguous run of paragraphs from a merged group text.
type TextBlock struct {
	Index int    `bson:"index" json:"index" yaml:"index"`
	Text  string `bson:"text" json:"text" yaml:"text"`
}
