package viewmodel

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yatube/yatube/internal/pkg/pagination"
	"github.com/yatube/yatube/internal/pkg/statistics"
)

// Layout is the data every page hands to layouts/main.
type Layout struct {
	Page          string
	FromProtected bool
	IsError       bool
	Msg           fiber.Map
	Username      string
	UserID        uint
	IsAdmin       bool
	CSRF          string
	Stats         *statistics.StatisticsData
	OAuth         []string
}

// Paginator renders page links relative to Path.
type Paginator struct {
	pagination.Page
	Path string
}

func NewPaginator(page pagination.Page, path string) Paginator {
	return Paginator{Page: page, Path: path}
}
