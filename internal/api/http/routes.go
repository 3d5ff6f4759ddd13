// Package httpapi exposes the station's merged state over HTTP, for pulling
// the dashboard from a phone and for poking at the cache while debugging.
// The API is read-only: persisted state is owned by the cache manager and
// only the wake cycle writes it.
package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"weatherstation/internal/render"
	"weatherstation/internal/station"
	"weatherstation/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, st *station.Station) {
	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(st.View())
	})

	v1.Get("/dashboard/text", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(render.Format(st.View()))
	})

	v1.Get("/cache/status", func(c *fiber.Ctx) error {
		v := st.View()
		stale := weather.AllCategories()
		stale.Remove(v.Fresh.Slice()...)
		return c.JSON(fiber.Map{
			"day":   v.Clock.DayOfYear,
			"hour":  v.Clock.Hour,
			"fresh": v.Fresh,
			"stale": stale,
		})
	})

	v1.Get("/hourly", func(c *fiber.Ctx) error {
		var req hourlyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		timeline := st.View().Timeline
		return c.JSON(fiber.Map{
			"from":  req.From,
			"to":    req.To,
			"slots": timeline[req.From : req.To+1],
		})
	})
}

// hourlyQuery selects a closed range of hour slots.
type hourlyQuery struct {
	From int `validate:"gte=0,lte=23"`
	To   int `validate:"gte=0,lte=23,gtefield=From"`
}

func (q *hourlyQuery) bind(c *fiber.Ctx) error {
	q.From = c.QueryInt("from", 0)
	q.To = c.QueryInt("to", weather.SlotsPerDay-1)
	return nil
}
