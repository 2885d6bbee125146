package controller

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/serverutils"
	"rag-chat-be/internal/service"
)

type IIngestController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	IngestAsync(ctx *fiber.Ctx) error
	Remove(ctx *fiber.Ctx) error
}

type ingestController struct {
	service service.IIngestService
}

func NewIngestController(service service.IIngestService) IIngestController {
	return &ingestController{service: service}
}

func (c *ingestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ingest/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Ingest)
	h.Post("/async", c.IngestAsync)
	h.Delete("/:source", c.Remove)
}

func (c *ingestController) Ingest(ctx *fiber.Ctx) error {
	return c.handle(ctx, false)
}

// IngestAsync queues the paths for the background worker instead of
// indexing inline.
func (c *ingestController) IngestAsync(ctx *fiber.Ctx) error {
	return c.handle(ctx, true)
}

func (c *ingestController) handle(ctx *fiber.Ctx, async bool) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if async {
		req.Async = true
	}

	res, err := c.service.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ingest documents", res))
}

// Remove deletes every chunk previously indexed from a source file. The
// source name is URL-encoded in the path.
func (c *ingestController) Remove(ctx *fiber.Ctx) error {
	source, err := url.PathUnescape(ctx.Params("source"))
	if err != nil || source == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid source name")
	}

	res, err := c.service.Remove(ctx.Context(), source)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Success remove document", res))
}
