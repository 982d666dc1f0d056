package nyaa

import (
	"fmt"
	"strings"
)

// maxTreeDepth bounds folder nesting in a file list.
const maxTreeDepth = 64

// BuildFileTree reads the nested <ul> markup of a file-list container.
// Folders are <li> items holding an a.folder link and a nested list; files
// are <li> items holding an i.fa-file icon, a name as direct text and a
// span.file-size annotation. Other items are skipped.
func BuildFileTree(container Element) ([]Entry, error) {
	entries, err := buildEntries(container, 1)
	if err != nil {
		return nil, wrapSection("files", err)
	}
	return entries, nil
}

func buildEntries(parent Element, depth int) ([]Entry, error) {
	if depth > maxTreeDepth {
		return nil, ErrTreeTooDeep
	}
	entries := []Entry{}
	for _, list := range parent.Children("ul") {
		for _, li := range list.Children("li") {
			entry, ok, err := buildEntry(li, depth)
			if err != nil {
				return nil, err
			}
			if ok {
				entries = append(entries, entry)
			}
		}
	}
	return entries, nil
}

func buildEntry(li Element, depth int) (Entry, bool, error) {
	if links := li.Children("a.folder"); len(links) > 0 {
		children, err := buildEntries(li, depth+1)
		if err != nil {
			return nil, false, err
		}
		return Folder{Name: strings.TrimSpace(links[0].Text()), Entries: children}, true, nil
	}
	if len(li.Children("i.fa-file")) == 0 {
		return nil, false, nil
	}
	sizes := li.Children("span.file-size")
	if len(sizes) == 0 {
		return nil, false, fmt.Errorf("file %q has no size", li.DirectText())
	}
	size := strings.Trim(strings.TrimSpace(sizes[0].Text()), "()")
	return File{Name: li.DirectText(), Size: strings.TrimSpace(size)}, true, nil
}
