package utils

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Page is one fixed-size window over an ordered collection. Number is always a
// valid page: missing, non-numeric or non-positive input selects the first
// page, and anything past the end selects the last one.
type Page struct {
	Number   int
	NumPages int
	Size     int
	Total    int64
	Offset   int
}

// NewPage resolves a raw page parameter against a collection of total items.
func NewPage(total int64, requested string, size int) Page {
	if size < 1 {
		size = 1
	}
	if total < 0 {
		total = 0
	}

	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}

	number := parseIntDefault(requested, 1)
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	return Page{
		Number:   number,
		NumPages: numPages,
		Size:     size,
		Total:    total,
		Offset:   (number - 1) * size,
	}
}

// ParsePage reads the "page" query parameter.
func ParsePage(c *fiber.Ctx, total int64, size int) Page {
	return NewPage(total, c.Query("page"), size)
}

// Len is the number of items that fall on this page.
func (p Page) Len() int {
	remaining := p.Total - int64(p.Offset)
	if remaining <= 0 {
		return 0
	}
	if remaining > int64(p.Size) {
		return p.Size
	}
	return int(remaining)
}

func (p Page) HasPrevious() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.NumPages }

func (p Page) PreviousNumber() int {
	if p.HasPrevious() {
		return p.Number - 1
	}
	return p.Number
}

func (p Page) NextNumber() int {
	if p.HasNext() {
		return p.Number + 1
	}
	return p.Number
}

// Numbers lists every page number, for rendering a paginator.
func (p Page) Numbers() []int {
	numbers := make([]int, p.NumPages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}

// PageOf is a resolved page together with the items on it.
type PageOf[T any] struct {
	Page
	Items []T
}

// Paginate slices an in-memory sequence without touching its order.
func Paginate[T any](items []T, requested string, size int) PageOf[T] {
	p := NewPage(int64(len(items)), requested, size)
	end := p.Offset + p.Len()
	return PageOf[T]{Page: p, Items: items[p.Offset:end]}
}

func ApplyPagination(db *gorm.DB, p Page) *gorm.DB {
	return db.Offset(p.Offset).Limit(p.Size)
}

func parseIntDefault(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
