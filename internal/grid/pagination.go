package grid

// Paging is the derived page arithmetic for a row count and page size.
type Paging struct {
	TotalRows       int
	PageRows        int
	ActivePage      int
	NoOfPages       int
	LastPageRows    int
	FirstRow        int
	CurrentPageRows int
}

// Paginate derives page counters. An active page past the last page resets
// to 1. A page size of zero or less means a single unpaged page.
func Paginate(totalRows, pageRows, activePage int) Paging {
	if totalRows < 0 {
		totalRows = 0
	}
	if pageRows <= 0 {
		pageRows = totalRows
	}
	p := Paging{TotalRows: totalRows, PageRows: pageRows}
	if totalRows == 0 || pageRows == 0 {
		p.ActivePage = 1
		return p
	}

	p.NoOfPages = totalRows / pageRows
	if totalRows%pageRows > 0 {
		p.NoOfPages++
	}
	p.LastPageRows = totalRows % pageRows
	if p.LastPageRows == 0 {
		p.LastPageRows = pageRows
	}

	if activePage < 1 || activePage > p.NoOfPages {
		activePage = 1
	}
	p.ActivePage = activePage
	p.FirstRow = pageRows * (activePage - 1)
	if activePage == p.NoOfPages {
		p.CurrentPageRows = p.LastPageRows
	} else {
		p.CurrentPageRows = pageRows
	}
	return p
}

// PageBounds returns the [start, end) slice bounds of the active page.
func PageBounds(totalRows, pageRows, activePage int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if pageRows <= 0 {
		return 0, totalRows
	}
	if activePage < 1 {
		activePage = 1
	}
	start := pageRows * (activePage - 1)
	if start >= totalRows {
		return totalRows, totalRows
	}
	end := start + pageRows
	if end > totalRows {
		end = totalRows
	}
	return start, end
}

type PageLinkKind int

const (
	LinkPrev PageLinkKind = iota
	LinkPage
	LinkEllipsis
	LinkNext
)

// PageLink is one element of the page navigation bar.
type PageLink struct {
	Kind     PageLinkKind
	Page     int
	Active   bool
	Disabled bool
}

// PageLinks lays out the page bar: prev, an ellipsis jumping back two pages,
// up to three page numbers around the active one, boundary fillers on the
// first and last page, an ellipsis jumping forward two pages, next.
func PageLinks(activePage, totalPages int) []PageLink {
	if totalPages < 1 {
		return []PageLink{
			{Kind: LinkPrev, Disabled: true},
			{Kind: LinkNext, Disabled: true},
		}
	}
	if activePage < 1 || activePage > totalPages {
		activePage = 1
	}

	var pages []int
	if totalPages >= 3 && activePage == totalPages {
		pages = append(pages, totalPages-2)
	}
	for p := activePage - 1; p <= activePage+1; p++ {
		if p >= 1 && p <= totalPages {
			pages = append(pages, p)
		}
	}
	if totalPages >= 3 && activePage == 1 {
		pages = append(pages, 3)
	}
	shown := make(map[int]bool, len(pages))
	for _, p := range pages {
		shown[p] = true
	}

	links := []PageLink{{Kind: LinkPrev, Page: activePage - 1, Disabled: activePage <= 1}}
	if back := activePage - 2; back >= 1 && !shown[back] {
		links = append(links, PageLink{Kind: LinkEllipsis, Page: back})
	}
	for _, p := range pages {
		links = append(links, PageLink{Kind: LinkPage, Page: p, Active: p == activePage})
	}
	if fwd := activePage + 2; fwd <= totalPages && !shown[fwd] {
		links = append(links, PageLink{Kind: LinkEllipsis, Page: fwd})
	}
	links = append(links, PageLink{Kind: LinkNext, Page: activePage + 1, Disabled: activePage >= totalPages})
	return links
}
