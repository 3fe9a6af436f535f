package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/citrusfield/internal/core/domain"
	"github.com/samirrijal/citrusfield/internal/core/usecases"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bind decodes the JSON body into v and validates it.
func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// DashboardHandler returns the headline counters.
func DashboardHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Dashboard.Stats(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(stats)
	}
}

// ---- Surveys ----

// ListSurveysHandler returns surveys filtered by q, region, variety, from and to.
func ListSurveysHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := usecases.SurveyFilter{
			Query:   strings.TrimSpace(c.Query("q")),
			Region:  c.Query("region"),
			Variety: c.Query("variety"),
			From:    c.Query("from"),
			To:      c.Query("to"),
		}
		if len(f.Query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		surveys, err := deps.Surveys.List(c.UserContext(), f)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(paginate(c, surveys, 50, 500))
	}
}

// SurveyRegionsHandler returns the region catalogue.
func SurveyRegionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Surveys.Regions())
	}
}

// SurveyVarietiesHandler returns the variety catalogue filtered by q.
func SurveyVarietiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Surveys.Varieties(c.Query("q")))
	}
}

// SubRecordTemplateHandler returns the defaults a new sub-record starts from.
func SubRecordTemplateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Surveys.SubRecordTemplate())
	}
}

// GetSurveyHandler returns one survey.
func GetSurveyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := deps.Surveys.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(s)
	}
}

// UpdateSurveyHandler edits the general information of a survey.
func UpdateSurveyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var u usecases.GeneralUpdate
		if err := bind(c, &u); err != nil {
			return errBadRequest(c, err.Error())
		}
		s, err := deps.Surveys.UpdateGeneral(c.UserContext(), c.Params("id"), u)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(s)
	}
}

type boundaryRequest struct {
	Boundary [][]float64 `json:"boundary" validate:"required,min=4,dive,len=2"`
}

// UpdateBoundaryHandler replaces the boundary of a survey and recomputes its area.
func UpdateBoundaryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req boundaryRequest
		if err := bind(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		s, err := deps.Surveys.UpdateBoundary(c.UserContext(), c.Params("id"), req.Boundary)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(s)
	}
}

// AddSubRecordHandler appends a sub-record. An empty body adds the template.
func AddSubRecordHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub := deps.Surveys.SubRecordTemplate()
		if len(c.Body()) > 0 {
			if err := bind(c, &sub); err != nil {
				return errBadRequest(c, err.Error())
			}
		}
		created, err := deps.Surveys.AddSubRecord(c.UserContext(), c.Params("id"), sub)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// ReplaceSubRecordHandler replaces a sub-record.
func ReplaceSubRecordHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var sub domain.SurveySubRecord
		if err := bind(c, &sub); err != nil {
			return errBadRequest(c, err.Error())
		}
		updated, err := deps.Surveys.ReplaceSubRecord(c.UserContext(), c.Params("id"), c.Params("subId"), sub)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(updated)
	}
}

// DeleteSubRecordHandler removes a sub-record.
func DeleteSubRecordHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Surveys.DeleteSubRecord(c.UserContext(), c.Params("id"), c.Params("subId")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ---- Land changes ----

// ListLandChangesHandler returns the change log filtered by type and month.
func ListLandChangesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sort := c.Query("sort", "desc")
		if sort != "asc" && sort != "desc" {
			return errBadRequest(c, "sort must be asc or desc")
		}
		changes, err := deps.LandChanges.List(c.UserContext(), usecases.LandChangeFilter{
			Type:  c.Query("type"),
			Month: c.Query("month"),
			Sort:  sort,
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(paginate(c, changes, 50, 500))
	}
}

// LandChangeMonthsHandler returns the months that have changes, newest first.
func LandChangeMonthsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		months, err := deps.LandChanges.Months(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(months)
	}
}

// GetLandChangeHandler returns one land change.
func GetLandChangeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lc, err := deps.LandChanges.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(lc)
	}
}

// DraftLandChangeHandler registers a pending survey for a land change.
// It answers 201 when the draft is new and 200 when it already existed.
func DraftLandChangeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		draft, created, err := deps.LandChanges.Draft(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(draft)
	}
}

// ---- Civil requests ----

// ListCivilRequestsHandler returns requests filtered by type, status and date range.
func ListCivilRequestsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := c.Query("status", "all")
		switch status {
		case "all", "pending", "done":
		default:
			return errBadRequest(c, "status must be all, pending or done")
		}
		requests, err := deps.CivilRequests.List(c.UserContext(), usecases.CivilRequestFilter{
			Type:   c.Query("type"),
			Status: status,
			From:   c.Query("from"),
			To:     c.Query("to"),
		})
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(paginate(c, requests, 50, 500))
	}
}

// GetCivilRequestHandler returns one civil request.
func GetCivilRequestHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cr, err := deps.CivilRequests.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(cr)
	}
}

// ProcessCivilRequestHandler starts processing a request: 200 with the draft
// when done inline, 202 with the workflow ID when handed to the processor.
func ProcessCivilRequestHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.CivilRequests.Process(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		if res.WorkflowID != "" {
			return c.Status(fiber.StatusAccepted).JSON(res)
		}
		return c.JSON(res)
	}
}
