package controller

import (
	"cybot-be/internal/dto"
	"cybot-be/internal/pkg/serverutils"
	"cybot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	Index(ctx *fiber.Ctx) error
	ListSources(ctx *fiber.Ctx) error
	ListChunks(ctx *fiber.Ctx) error
}

type documentController struct {
	indexerService   service.IIndexerService
	publisherService service.IPublisherService
}

func NewDocumentController(indexerService service.IIndexerService, publisherService service.IPublisherService) IDocumentController {
	return &documentController{
		indexerService:   indexerService,
		publisherService: publisherService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/document/v1")
	h.Use(guard)
	h.Post("index", c.Index)
	h.Get("sources", c.ListSources)
	h.Get("chunks", c.ListChunks)
}

// Index queues documents for (re)indexing; chunks are built in the background.
func (c *documentController) Index(ctx *fiber.Ctx) error {
	var req dto.IndexDocumentsRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	files, skipped, err := c.indexerService.Discover(req.Paths)
	if err != nil {
		return err
	}

	queued := make([]string, 0, len(files))
	for _, f := range files {
		if err := c.publisherService.PublishIndex(ctx.UserContext(), f); err != nil {
			return err
		}
		queued = append(queued, f)
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Documents queued for indexing", dto.IndexDocumentsResponse{
		Queued:  queued,
		Skipped: skipped,
	}))
}

func (c *documentController) ListSources(ctx *fiber.Ctx) error {
	res, err := c.indexerService.ListSources(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list documents", res))
}

func (c *documentController) ListChunks(ctx *fiber.Ctx) error {
	var req dto.ListChunksRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.indexerService.ListChunks(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chunks", res))
}
