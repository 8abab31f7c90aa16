package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lizet96/hospital-appointments/handlers"
	"github.com/lizet96/hospital-appointments/middleware"
	"github.com/lizet96/hospital-appointments/models"
)

// maxFormBody caps public form submissions
const maxFormBody = 16 * 1024

// Options are the cross-cutting pieces the routes are wired with
type Options struct {
	CORSOrigins    string
	Tokens         *middleware.TokenIssuer
	Auditor        *middleware.Auditor
	LimiterStorage fiber.Storage // nil keeps rate limit counters in memory
	AccessLog      bool
}

// SetupRoutes mounts every endpoint on app
func SetupRoutes(app *fiber.App, h *handlers.Handler, opts Options) {
	// Global middleware
	if opts.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))
	app.Use(middleware.SecurityHeaders())
	if opts.Auditor != nil {
		app.Use(opts.Auditor.Middleware())
	}
	app.Use(middleware.CreateRateLimiter(middleware.DefaultRateLimit, opts.LimiterStorage))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Hospital Appointments API",
		})
	})

	// Public
	app.Post("/login",
		middleware.CreateRateLimiter(middleware.AuthRateLimit, opts.LimiterStorage),
		h.Login)
	publicForm := middleware.CreateRateLimiter(middleware.PublicFormRateLimit, opts.LimiterStorage)
	app.Post("/appointment/request", publicForm, middleware.BodySizeLimit(maxFormBody), h.CreateRequest)
	app.Post("/contact", publicForm, middleware.BodySizeLimit(maxFormBody), h.Contact)

	auth := middleware.JWTMiddleware(opts.Tokens)

	// Nurse dashboard
	manage := app.Group("/manage", auth, middleware.RequireRole(models.RoleNurse, models.RoleAdmin))
	manage.Get("/requests", h.ListPendingRequests)
	manage.Get("/doctors", h.ListDoctorsByDepartment)
	manage.Get("/nurse/:nurse_id", h.ListNurseAppointments)
	manage.Post("/appointments", h.ApproveRequest)
	manage.Put("/appointments/payment", h.UpdatePayment)

	// Doctor dashboard
	treat := app.Group("/treat", auth, middleware.RequireRole(models.RoleDoctor, models.RoleAdmin))
	treat.Get("/appointments/:doctor_id", h.ListDoctorAppointments)
	treat.Post("/prescriptions", h.AddPrescription)
	treat.Get("/prescriptions/:appointment_id", h.GetPrescription)
	treat.Delete("/requests/appointment/:appointment_id", h.DeleteAppointment)

	// Admin dashboard
	admin := app.Group("/admin", auth, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/appointments", h.ListAppointments)
	admin.Get("/doctors", h.ListDoctors)
	admin.Get("/nurses", h.ListNurses)
	admin.Get("/requests", h.ListAllRequests)
	admin.Post("/doctors", h.CreateDoctor)
	admin.Post("/nurses", h.CreateNurse)
	admin.Get("/prescriptions/:appointment_id", h.GetPrescription)
	admin.Get("/stats", h.Stats)
	admin.Get("/logs", h.ListLogs)

	// Any signed-in staff member
	mfa := app.Group("/mfa", auth)
	mfa.Post("/setup", h.SetupMFA)
	mfa.Post("/verify", h.VerifyMFA)
	mfa.Post("/disable", h.DisableMFA)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "route not found",
			"intCode": "F30",
			"path":    c.Path(),
			"method":  c.Method(),
		})
	})
}
