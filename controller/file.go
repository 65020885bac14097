package controller

import (
	"io"

	"chat-service/service"

	"github.com/gofiber/fiber/v2"
)

type FileController struct {
	users *service.UserService
	files *service.FileService
}

func NewFileController(users *service.UserService, files *service.FileService) *FileController {
	return &FileController{users: users, files: files}
}

// Upload stores a multipart file and returns its public hash. Identical
// bytes dedup to the existing record.
func (f *FileController) Upload(c *fiber.Ctx) error {
	user, err := currentUser(c, f.users)
	if err != nil {
		return failure(c, err)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return badInput(c)
	}
	src, err := header.Open()
	if err != nil {
		return badInput(c)
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return failure(c, err)
	}

	info, err := f.files.Upload(user, header.Header.Get("Content-Type"), data)
	if err != nil {
		return failure(c, err)
	}
	return success(c, info)
}

// Serve streams the stored bytes for a public hash.
func (f *FileController) Serve(c *fiber.Ctx) error {
	file, err := f.files.Resolve(c.Params("hash"))
	if err != nil {
		return failure(c, err)
	}
	data, err := f.files.Read(file)
	if err != nil {
		return failure(c, err)
	}
	c.Set("Content-Type", file.MimeType)
	return c.Send(data)
}
