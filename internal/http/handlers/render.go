package handlers

import (
	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"rentalcar/internal/domain"
	"rentalcar/internal/log"
)

// NewEngine loads the page templates from dir with the helpers they use.
func NewEngine(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFunc("mileage", domain.FormatMileage)
	engine.AddFunc("card", func(car domain.Car, fav bool, csrf any) fiber.Map {
		return fiber.Map{"Car": car, "Fav": fav, "CSRFToken": csrf}
	})
	return engine
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	data["Path"] = c.Path()
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return render(c.Status(fiber.StatusNotFound), "notfound", fiber.Map{"Message": msg})
}

// ErrorHandler renders unhandled errors as a friendly page. Internal details only
// reach the log.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
		code = fe.Code
	}
	if code == fiber.StatusNotFound {
		return c.Status(code).Render("notfound", fiber.Map{"Message": "Page not found"})
	}
	log.Error(c, "server.error", err, nil)
	if rerr := c.Status(code).Render("notfound", fiber.Map{
		"Title":   "Something went wrong",
		"Message": "Something went wrong. Please try again.",
	}); rerr != nil {
		return c.Status(code).SendString("Something went wrong. Please try again.")
	}
	return nil
}
