// internal/http/handlers.go
package http

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"visa-tracker/internal/app"
	"visa-tracker/internal/codec"
	apperrors "visa-tracker/internal/common/errors"
	"visa-tracker/internal/models"
	"visa-tracker/internal/query"
	"visa-tracker/internal/stats"
)

const (
	formatCSV  = codec.FormatCSV
	formatJSON = codec.FormatJSON

	maxTrendDays = 365
)

// ==========================
// Health
// ==========================

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) readiness(c *fiber.Ctx) error {
	if s.ready != nil {
		if err := s.ready(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"error":  err.Error(),
				"time":   time.Now().Format(time.RFC3339),
			})
		}
	}
	return c.JSON(fiber.Map{
		"status":  "ready",
		"records": s.app.Store.Len(),
		"time":    time.Now().Format(time.RFC3339),
	})
}

// ==========================
// Listing and views
// ==========================

type listResponse struct {
	Total   int                        `json:"total"`
	Records []models.ApplicationRecord `json:"records"`
}

func (s *Server) listApplications(c *fiber.Ctx) error {
	opts, err := listOptions(c)
	if err != nil {
		return err
	}

	records, version := s.app.Applications(opts)
	if version != "" {
		etag := `"` + version + `"`
		c.Set(fiber.HeaderETag, etag)
		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			return c.SendStatus(fiber.StatusNotModified)
		}
	}
	return c.JSON(listResponse{Total: len(records), Records: records})
}

func listOptions(c *fiber.Ctx) (app.ListOptions, error) {
	sortBy, err := query.ParseSortField(c.Query("sortBy"))
	if err != nil {
		return app.ListOptions{}, apperrors.NewInvalidArgumentError(err.Error())
	}
	order, err := query.ParseOrder(c.Query("sortOrder"))
	if err != nil {
		return app.ListOptions{}, apperrors.NewInvalidArgumentError(err.Error())
	}
	status, err := query.ParseStatusFilter(c.Query("status"))
	if err != nil {
		return app.ListOptions{}, apperrors.NewInvalidArgumentError(err.Error())
	}

	return app.ListOptions{
		Criteria: query.Criteria{
			University: c.Query("university"),
			Course:     c.Query("course"),
			Status:     status,
			Search:     c.Query("search"),
		},
		SortBy: sortBy,
		Order:  order,
	}, nil
}

func (s *Server) getApplication(c *fiber.Ctx) error {
	rec, err := s.app.Store.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (s *Server) filters(c *fiber.Ctx) error {
	return c.JSON(s.app.Filters())
}

func (s *Server) catalog(c *fiber.Ctx) error {
	return c.JSON(s.app.Catalog.View())
}

func (s *Server) home(c *fiber.Ctx) error {
	return c.JSON(s.app.Home(c.Query("search")))
}

func (s *Server) dashboard(c *fiber.Ctx) error {
	return c.JSON(s.app.Dashboard())
}

func (s *Server) statistics(c *fiber.Ctx) error {
	uni, err := groupSort(c, "uniSort", "uniOrder")
	if err != nil {
		return err
	}
	course, err := groupSort(c, "courseSort", "courseOrder")
	if err != nil {
		return err
	}
	return c.JSON(s.app.Statistics(uni, course))
}

// groupSort reads one statistics table ordering; the direction defaults to descending.
func groupSort(c *fiber.Ctx, fieldParam, orderParam string) (app.GroupSort, error) {
	field, err := stats.ParseGroupSortField(c.Query(fieldParam))
	if err != nil {
		return app.GroupSort{}, apperrors.NewInvalidArgumentError(err.Error())
	}
	order, err := query.ParseOrder(c.Query(orderParam))
	if err != nil {
		return app.GroupSort{}, apperrors.NewInvalidArgumentError(err.Error())
	}
	return app.GroupSort{Field: field, Descending: order == query.Desc}, nil
}

func (s *Server) trend(c *fiber.Ctx) error {
	days := stats.ShortTrendDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTrendDays {
			return apperrors.NewInvalidArgumentError("days must be a whole number between 1 and " + strconv.Itoa(maxTrendDays))
		}
		days = n
	}
	return c.JSON(s.app.Trend(days))
}

func (s *Server) updateInfo(c *fiber.Ctx) error {
	return c.JSON(s.app.UpdateInfo())
}

// ==========================
// Preferences
// ==========================

type darkModeBody struct {
	DarkMode *bool `json:"darkMode"`
}

func (s *Server) getDarkMode(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"darkMode": s.app.DarkMode()})
}

func (s *Server) putDarkMode(c *fiber.Ctx) error {
	var body darkModeBody
	if err := decodeStrict(c.Body(), &body); err != nil {
		return apperrors.NewInvalidArgumentError(err.Error())
	}
	if body.DarkMode == nil {
		return apperrors.NewInvalidArgumentError("darkMode is required")
	}
	if err := s.app.SetDarkMode(c.UserContext(), *body.DarkMode); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"darkMode": *body.DarkMode})
}

func (s *Server) toggleDarkMode(c *fiber.Ctx) error {
	on, err := s.app.ToggleDarkMode(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"darkMode": on})
}

// ==========================
// Downloads
// ==========================

func (s *Server) download(format codec.Format) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, data, err := s.app.Download(format)
		if err != nil {
			return err
		}
		c.Attachment(name)
		c.Set(fiber.HeaderContentType, format.ContentType())
		return c.Send(data)
	}
}

// ==========================
// Admin
// ==========================

type loginBody struct {
	Passcode string `json:"passcode"`
}

func (s *Server) login(c *fiber.Ctx) error {
	var body loginBody
	if err := decodeStrict(c.Body(), &body); err != nil {
		return apperrors.NewInvalidArgumentError(err.Error())
	}
	token, err := s.app.Gate.Login(body.Passcode)
	if err != nil {
		return err
	}
	s.log.Info("admin session started", map[string]interface{}{"ip": c.IP()})
	return c.JSON(fiber.Map{"token": token})
}

func (s *Server) logout(c *fiber.Ctx) error {
	s.app.Gate.Logout(c.Get(HeaderAdminToken))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) createApplication(c *fiber.Ctx) error {
	var rec models.ApplicationRecord
	if err := decodeStrict(c.Body(), &rec); err != nil {
		return apperrors.NewDecodeError("json", 0, 0, err.Error())
	}
	out, err := s.app.Store.Add(c.UserContext(), rec)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (s *Server) updateApplication(c *fiber.Ctx) error {
	patch, err := models.DecodePatch(c.Body())
	if err != nil {
		return apperrors.NewInvalidArgumentError(err.Error())
	}
	out, err := s.app.Store.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (s *Server) deleteApplication(c *fiber.Ctx) error {
	if err := s.app.Store.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// importRecords replaces the list with an uploaded export. The format follows the
// format query parameter, then the content type; JSON is the default.
func (s *Server) importRecords(c *fiber.Ctx) error {
	format := formatJSON
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), "text/csv") {
		format = formatCSV
	}
	if raw := c.Query("format"); raw != "" {
		f, err := codec.ParseFormat(raw)
		if err != nil {
			return apperrors.NewInvalidArgumentError(err.Error())
		}
		format = f
	}

	records, err := s.app.Import(c.UserContext(), format, c.Body())
	if err != nil {
		return err
	}
	return c.JSON(listResponse{Total: len(records), Records: records})
}

func (s *Server) reset(c *fiber.Ctx) error {
	if err := s.app.Store.Reset(c.UserContext()); err != nil {
		return err
	}
	records := s.app.Store.Snapshot()
	return c.JSON(listResponse{Total: len(records), Records: records})
}

func (s *Server) export(c *fiber.Ctx) error {
	format, err := codec.ParseFormat(c.Params("format"))
	if err != nil {
		return apperrors.NewInvalidArgumentError(err.Error())
	}
	info, err := s.app.Export(c.UserContext(), format)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(info)
}

// decodeStrict unmarshals a JSON body, rejecting unknown fields and trailing data.
func decodeStrict(body []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}
