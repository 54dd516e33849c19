package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/studyshelf/studyshelf/internal/model"
)

// handleContent lists catalog items, optionally filtered by type,
// class, board, subject, or a title search.
func (s *Server) handleContent(c echo.Context) error {
	query := `
		SELECT id, title, type, subject, class_id, board, price, is_free,
			file_url, preview_pages, pages, chapters, duration, lessons,
			instructor, description
		FROM content WHERE 1=1`
	args := []any{}

	add := func(clause, value string) {
		if value != "" {
			args = append(args, value)
			query += fmt.Sprintf(" AND %s = $%d", clause, len(args))
		}
	}
	add("type", c.QueryParam("type"))
	add("class_id", c.QueryParam("classId"))
	add("board", c.QueryParam("board"))
	add("subject", c.QueryParam("subject"))

	if search := c.QueryParam("search"); search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}
	query += " ORDER BY class_id, subject, title"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		c.Logger().Error("db error:", err)
		return fail(c, http.StatusInternalServerError, "Internal error")
	}
	defer rows.Close()

	items := []model.ContentItem{}
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			c.Logger().Error("scan error:", err)
			return fail(c, http.StatusInternalServerError, "Internal error")
		}
		items = append(items, item)
	}
	return ok(c, items)
}

// handleContentByID returns a single catalog item
func (s *Server) handleContentByID(c echo.Context) error {
	row := s.db.QueryRow(`
		SELECT id, title, type, subject, class_id, board, price, is_free,
			file_url, preview_pages, pages, chapters, duration, lessons,
			instructor, description
		FROM content WHERE id = $1`, c.Param("id"))

	item, err := scanContentItem(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusNotFound, "Content not found")
		}
		c.Logger().Error("db error:", err)
		return fail(c, http.StatusInternalServerError, "Internal error")
	}
	return ok(c, item)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContentItem(row rowScanner) (model.ContentItem, error) {
	var item model.ContentItem
	var board, fileURL, duration, instructor, description sql.NullString
	var previewPages, pages, chapters, lessons sql.NullInt64

	err := row.Scan(&item.ID, &item.Title, &item.Type, &item.Subject,
		&item.ClassID, &board, &item.Price, &item.IsFree,
		&fileURL, &previewPages, &pages, &chapters, &duration,
		&lessons, &instructor, &description)
	if err != nil {
		return item, err
	}

	item.Board = board.String
	item.FileURL = fileURL.String
	item.PreviewPages = int(previewPages.Int64)
	item.Pages = int(pages.Int64)
	item.Chapters = int(chapters.Int64)
	item.Duration = duration.String
	item.Lessons = int(lessons.Int64)
	item.Instructor = instructor.String
	item.Description = description.String
	return item, nil
}

// Package plan pricing per class
var packagePrices = map[string]map[string]int{
	"class10": {model.PackagePDFs: 999, model.PackageVideos: 1499, model.PackageBundle: 1999},
	"class11": {model.PackagePDFs: 1199, model.PackageVideos: 1699, model.PackageBundle: 2299},
	"class12": {model.PackagePDFs: 1199, model.PackageVideos: 1699, model.PackageBundle: 2299},
	"neet":    {model.PackagePDFs: 1499, model.PackageVideos: 1999, model.PackageBundle: 2799},
}

var packageNames = map[string]string{
	model.PackagePDFs:   "All PDFs",
	model.PackageVideos: "All Videos",
	model.PackageBundle: "Complete Bundle",
}

// handlePricing returns the class package plans
func (s *Server) handlePricing(c echo.Context) error {
	plans := []model.Plan{}
	for _, class := range model.Classes {
		prices := packagePrices[class.ID]
		for _, pkg := range []string{model.PackagePDFs, model.PackageVideos, model.PackageBundle} {
			plans = append(plans, model.Plan{
				ID:      class.ID + "-" + pkg,
				Name:    class.Name + " " + packageNames[pkg],
				Type:    pkg,
				Price:   prices[pkg],
				ClassID: class.ID,
			})
		}
	}
	return ok(c, plans)
}

// handleNotifications returns the user's notifications
func (s *Server) handleNotifications(c echo.Context) error {
	userID := c.Get("user_id").(string)

	rows, err := s.db.Query(`
		SELECT id, title, body, read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		c.Logger().Error("db error:", err)
		return fail(c, http.StatusInternalServerError, "Internal error")
	}
	defer rows.Close()

	notes := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		var body sql.NullString
		var createdAt time.Time
		if err := rows.Scan(&n.ID, &n.Title, &body, &n.Read, &createdAt); err != nil {
			c.Logger().Error("scan error:", err)
			return fail(c, http.StatusInternalServerError, "Internal error")
		}
		n.Body = body.String
		n.CreatedAt = createdAt
		notes = append(notes, n)
	}
	return ok(c, notes)
}
