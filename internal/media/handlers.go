package media

import (
	"fmt"
	"io"
	"mime"

	"backend-travelcompanion/internal/httpx"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
)

type UploadResponse struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

func RegisterRoutes(r fiber.Router, store *Store, authMiddleware fiber.Handler) {
	r.Post("/media/upload/:kind", authMiddleware, func(c *fiber.Ctx) error {
		cat, ok := CategoryForKind(c.Params("kind"))
		if !ok {
			return fiber.NewError(fiber.StatusBadRequest, "unknown media kind")
		}
		fh, err := c.FormFile(cat.Kind())
		if err != nil || fh.Size == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "file must not be empty")
		}
		if !cat.Accepts(fh.Header.Get(fiber.HeaderContentType)) {
			return fiber.NewError(fiber.StatusBadRequest, "file must be "+cat.Kind())
		}

		src, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "cannot read upload")
		}
		defer src.Close()

		name, err := store.Save(cat, src, fh.Filename)
		if err != nil {
			return httpx.Error(err)
		}
		return c.JSON(UploadResponse{
			Filename: name,
			Path:     fmt.Sprintf("/api/media/%s/%s", cat, name),
		})
	})

	r.Get("/media/:category/:filename", func(c *fiber.Ctx) error {
		cat, ok := ParseCategory(c.Params("category"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown media category")
		}
		filename := c.Params("filename")
		f, size, err := store.Open(cat, filename)
		if err != nil {
			return httpx.Error(err)
		}

		contentType, err := sniff(f, cat)
		if err != nil {
			_ = f.Close()
			return httpx.Error(err)
		}
		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": filename}))
		// fasthttp closes f once the body is written
		return c.SendStream(f, int(size))
	})

	r.Delete("/media/:category/:filename", authMiddleware, func(c *fiber.Ctx) error {
		cat, ok := ParseCategory(c.Params("category"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown media category")
		}
		if err := store.Delete(cat, c.Params("filename")); err != nil {
			return httpx.Error(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// sniff detects the content type from the leading bytes and rewinds f.
// Unrecognised content falls back to the category default.
func sniff(f io.ReadSeeker, cat Category) (string, error) {
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind media file: %w", err)
	}
	if mt.Is("application/octet-stream") {
		return cat.DefaultContentType(), nil
	}
	return mt.String(), nil
}
