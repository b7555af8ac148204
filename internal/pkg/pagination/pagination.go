package pagination

import (
	"strconv"
	"strings"
)

// Page is one slice of a newest-first listing.
type Page struct {
	Number   int
	PerPage  int
	Total    int64
	NumPages int
}

// Resolve clamps the raw ?page= value the forgiving way: anything that is not
// a number becomes 1, numbers out of range (zero, negative or past the end)
// become the last page, and an empty listing still has a single page 1.
func Resolve(raw string, total int64, perPage int) Page {
	if perPage <= 0 {
		perPage = 10
	}

	numPages := int(total) / perPage
	if int(total)%perPage > 0 {
		numPages++
	}
	if numPages == 0 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		number = 1
	}
	if number < 1 || number > numPages {
		number = numPages
	}

	return Page{Number: number, PerPage: perPage, Total: total, NumPages: numPages}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) Limit() int {
	return p.PerPage
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasOtherPages() bool {
	return p.NumPages > 1
}

func (p Page) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

// Pages lists every page number for the paginator partial.
func (p Page) Pages() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
