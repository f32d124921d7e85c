package service

import (
	"strconv"

	"yatube/internal/model"
)

// PostsPerPage 所有 feed 的固定页大小
const PostsPerPage = 10

type Page struct {
	Items    []model.Post
	Number   int
	NumPages int
	Total    int64
}

func (p Page) HasPrevious() bool   { return p.Number > 1 }
func (p Page) HasNext() bool       { return p.Number < p.NumPages }
func (p Page) PreviousNumber() int { return p.Number - 1 }
func (p Page) NextNumber() int     { return p.Number + 1 }
func (p Page) HasOtherPages() bool { return p.NumPages > 1 }

// PageRange 1..NumPages，模板里渲染页码导航
func (p Page) PageRange() []int {
	r := make([]int, p.NumPages)
	for i := range r {
		r[i] = i + 1
	}
	return r
}

// ParsePage 缺省或非整数时为 1
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// Paginate 计算页码与偏移：越界（<1 或 >总页数）落到最后一页，空列表也有第 1 页
func Paginate(total int64, requested int) (number, numPages, offset int) {
	numPages = int((total + PostsPerPage - 1) / PostsPerPage)
	if numPages < 1 {
		numPages = 1
	}
	number = requested
	if number < 1 || number > numPages {
		number = numPages
	}
	return number, numPages, (number - 1) * PostsPerPage
}
