package httpapi

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var validate = validator.New()

// StateView is the JSON rendering of the controller state.
type StateView struct {
	Phase   weather.Phase         `json:"phase"`
	Error   string                `json:"error,omitempty"`
	Display *weather.DisplayModel `json:"display,omitempty"`
}

// NewStateView renders a state: the error banner only when failed, the
// display model only on success.
func NewStateView(state weather.State) StateView {
	view := StateView{Phase: state.Phase()}
	if f, ok := state.(weather.Failed); ok {
		view.Error = f.Message
	}
	if model, ok := weather.Present(state); ok {
		view.Display = &model
	}
	return view
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, controller *weather.Controller) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		return c.JSON(NewStateView(controller.State()))
	})

	v1.Post("/lookup", func(c *fiber.Ctx) error {
		var req lookupRequest
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Blank names are ignored by the controller; report the unchanged state.
		if strings.TrimSpace(req.City) == "" {
			return c.JSON(NewStateView(controller.State()))
		}

		done := controller.Submit(req.City)
		if !req.Wait {
			return c.Status(fiber.StatusAccepted).JSON(NewStateView(controller.State()))
		}

		// Bounded by the controller's query timeout.
		<-done
		return c.JSON(NewStateView(controller.State()))
	})
}

// lookupRequest is the body (or query) of a lookup submission.
type lookupRequest struct {
	City string `json:"city" validate:"max=200"`
	Wait bool   `json:"-"`
}

func (l *lookupRequest) bind(c *fiber.Ctx) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(l); err != nil {
			return err
		}
	}
	if l.City == "" {
		// Query values alias the pooled request buffer.
		l.City = utils.CopyString(c.Query("city"))
	}
	l.Wait = c.QueryBool("wait", false)
	return nil
}
