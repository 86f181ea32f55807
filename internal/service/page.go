package service

import "math"

const (
	// DefaultPageSize applies when the client sends no limit.
	DefaultPageSize = 6
	// MaxPageSize bounds the limit a client may ask for.
	MaxPageSize = 100
	// maxOffset keeps (Page-1)*Limit representable on every platform and database.
	maxOffset = math.MaxInt32
)

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) normalize() PageRequest {
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if maxPage := maxOffset/p.Limit + 1; p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

func (p PageRequest) Offset() int {
	p = p.normalize()
	return (p.Page - 1) * p.Limit
}

func (p PageRequest) Size() int {
	return p.normalize().Limit
}
