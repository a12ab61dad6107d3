// Copyright (c) 2026 The chm Authors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of chm.
//
// chm is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// chm is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with chm.  If not, see <https://www.gnu.org/licenses/>.

// Package sitemap renders the .hhc table-of-contents and .hhk index files
// CHM viewers expect alongside the content pages. It is intentionally a thin
// template emitter, not a help-authoring tool: it takes the names already
// decided by the caller and lays them out in the fixed HTML Help Workshop
// markup.
package sitemap

import (
	"sort"
	"strings"
	"text/template"
)

const hhcTemplate = `<!DOCTYPE HTML PUBLIC "-//IETF//DTD HTML//EN">
<HTML>
<HEAD>
<meta name="GENERATOR" content="chm">
</HEAD>
<BODY>
<OBJECT type="text/site properties">
</OBJECT>
<UL>
{{- range . }}
	<LI><OBJECT type="text/sitemap">
		<param name="Name" value="{{ .Title }}">
		<param name="Local" value="{{ .Path }}">
		</OBJECT>
{{- end }}
</UL>
</BODY>
</HTML>
`

const hhkTemplate = `<!DOCTYPE HTML PUBLIC "-//IETF//DTD HTML//EN">
<HTML>
<HEAD>
<meta name="GENERATOR" content="chm">
</HEAD>
<BODY>
<UL>
{{- range . }}
	<LI><OBJECT type="text/sitemap">
		<param name="Name" value="{{ .Title }}">
		<param name="Local" value="{{ .Path }}">
		</OBJECT>
{{- end }}
</UL>
</BODY>
</HTML>
`

// Page is one entry in the rendered table of contents or index.
type Page struct {
	Title string
	Path  string
}

var (
	hhc = template.Must(template.New("hhc").Parse(hhcTemplate))
	hhk = template.Must(template.New("hhk").Parse(hhkTemplate))
)

// PagesFromNames builds a title-sorted Page list from stored archive paths,
// deriving each page's title from its base filename.
func PagesFromNames(names []string) []Page {
	pages := make([]Page, 0, len(names))
	for _, name := range names {
		title := name
		if i := strings.LastIndexByte(title, '/'); i >= 0 {
			title = title[i+1:]
		}
		pages = append(pages, Page{Title: title, Path: name})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Title < pages[j].Title })
	return pages
}

// RenderHHC writes a table-of-contents document for pages.
func RenderHHC(w *strings.Builder, pages []Page) error {
	return hhc.Execute(w, pages) //nolint:wrapcheck // template errors are self-descriptive
}

// RenderHHK writes an index document for pages.
func RenderHHK(w *strings.Builder, pages []Page) error {
	return hhk.Execute(w, pages) //nolint:wrapcheck // template errors are self-descriptive
}
