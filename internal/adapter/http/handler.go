package http

import (
	"time"

	"dyd/internal/domain"
	"dyd/internal/model"
	"dyd/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler serves the SPA API and the inbound webhooks.
type Handler struct {
	cvs       *usecase.CVService
	processor *usecase.Processor
	payments  *usecase.PaymentService
	exports   *usecase.ExportService
	board     *usecase.BoardService
	dashboard *usecase.DashboardService
}

// Services groups the usecases behind the routes.
type Services struct {
	CVs       *usecase.CVService
	Processor *usecase.Processor
	Payments  *usecase.PaymentService
	Exports   *usecase.ExportService
	Board     *usecase.BoardService
	Dashboard *usecase.DashboardService
}

func NewHandler(s Services) *Handler {
	return &Handler{
		cvs:       s.CVs,
		processor: s.Processor,
		payments:  s.Payments,
		exports:   s.Exports,
		board:     s.Board,
		dashboard: s.Dashboard,
	}
}

// Register mounts every route on app. auth guards the /api group.
func (h *Handler) Register(app *fiber.App, auth fiber.Handler) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Post("/webhooks/automation", h.AutomationCallback)
	app.Post("/webhooks/stripe", h.StripeWebhook)

	api := app.Group("/api", auth)
	api.Get("/cvs", h.ListCVs)
	api.Post("/cvs", h.CreateCV)
	api.Get("/cvs/:id", h.GetCV)
	api.Put("/cvs/:id", h.UpdateCV)
	api.Delete("/cvs/:id", h.DeleteCV)
	api.Get("/cvs/:id/steps", h.CVSteps)
	api.Post("/cvs/:id/export", h.ExportCV)
	api.Get("/cvs/:id/exports", h.ListExports)

	api.Post("/analyses", h.SubmitAnalysis)
	api.Get("/analyses", h.ListAnalyses)
	api.Get("/analyses/:id", h.GetAnalysis)
	api.Get("/analyses/:id/wait", h.WaitAnalysis)

	api.Get("/board", h.Board)
	api.Post("/applications", h.CreateApplication)
	api.Patch("/applications/:id", h.UpdateApplication)
	api.Post("/applications/:id/move", h.MoveApplication)
	api.Delete("/applications/:id", h.DeleteApplication)

	api.Get("/entitlement", h.Entitlement)
	api.Get("/dashboard", h.Dashboard)
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, badRequest("invalid id")
	}
	return id, nil
}

// userAndID resolves the caller and the :id path parameter.
func userAndID(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	user, err := currentUser(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := paramID(c)
	return user, id, err
}

// Webhooks

func (h *Handler) AutomationCallback(c *fiber.Ctx) error {
	var cb usecase.Callback
	if err := c.BodyParser(&cb); err != nil {
		return badRequest("invalid payload")
	}
	job, err := h.processor.HandleCallback(c.UserContext(), c.Get("X-Automation-Secret"), cb)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": job.ID, "status": job.Status})
}

func (h *Handler) StripeWebhook(c *fiber.Ctx) error {
	if err := h.payments.HandleStripeWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"received": true})
}

// CVs

type cvReq struct {
	Title string   `json:"title"`
	Data  model.CV `json:"data"`
}

func (h *Handler) ListCVs(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.cvs.List(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handler) CreateCV(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req cvReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid payload")
	}
	rec, err := h.cvs.Create(c.UserContext(), user, req.Title, req.Data)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func (h *Handler) GetCV(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}
	rec, err := h.cvs.Get(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *Handler) UpdateCV(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}
	var req cvReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid payload")
	}
	rec, err := h.cvs.Update(c.UserContext(), user, id, req.Title, req.Data)
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *Handler) DeleteCV(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}
	if err := h.cvs.Delete(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) CVSteps(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}
	steps, err := h.cvs.Steps(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"steps": steps, "complete": usecase.Complete(steps)})
}

func (h *Handler) ExportCV(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}
	var req usecase.ExportRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest("invalid payload")
		}
	}
	exp, err := h.exports.Export(c.UserContext(), user, id, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(exp)
}

func (h *Handler) ListExports(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}
	list, err := h.exports.List(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Analyses

func (h *Handler) SubmitAnalysis(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req usecase.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid payload")
	}
	job, err := h.processor.Submit(c.UserContext(), user, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(job)
}

func (h *Handler) ListAnalyses(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	list, err := h.processor.List(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *Handler) GetAnalysis(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}
	job, err := h.processor.Get(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(job)
}

// WaitAnalysis long-polls until the job finishes. A timeout answers 202 with
// the job as last seen.
func (h *Handler) WaitAnalysis(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}
	var timeout time.Duration
	if raw := c.Query("timeout"); raw != "" {
		if timeout, err = time.ParseDuration(raw); err != nil || timeout <= 0 {
			return badRequest("invalid timeout")
		}
	}
	job, err := h.processor.Wait(c.UserContext(), user, id, timeout)
	if err == domain.ErrWaitTimeout && job != nil {
		return c.Status(fiber.StatusAccepted).JSON(job)
	}
	if err != nil {
		return err
	}
	return c.JSON(job)
}

// Board

func (h *Handler) Board(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	cols, err := h.board.Board(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"columns": cols})
}

func (h *Handler) CreateApplication(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var in usecase.ApplicationInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid payload")
	}
	app, err := h.board.Create(c.UserContext(), user, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

func (h *Handler) UpdateApplication(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}
	var in usecase.ApplicationInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid payload")
	}
	app, err := h.board.Update(c.UserContext(), user, id, in)
	if err != nil {
		return err
	}
	return c.JSON(app)
}

type moveReq struct {
	Column domain.Column `json:"column"`
	Index  int           `json:"index"`
}

func (h *Handler) MoveApplication(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}
	var req moveReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest("invalid payload")
	}
	app, err := h.board.Move(c.UserContext(), user, id, req.Column, req.Index)
	if err != nil {
		return err
	}
	return c.JSON(app)
}

func (h *Handler) DeleteApplication(c *fiber.Ctx) error {
	user, id, err := userAndID(c)
	if err != nil {
		return err
	}
	if err := h.board.Delete(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Account

func (h *Handler) Entitlement(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ent, err := h.payments.Entitlement(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(ent)
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	d, err := h.dashboard.Dashboard(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(d)
}
