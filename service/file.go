package service

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registered for dimension extraction of uploaded images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"chat-service/model"
	"chat-service/repository"
	"chat-service/utils"
)

type FileService struct {
	files *repository.FileRepository
	// dir is the on-disk store for uploaded bytes.
	dir string
}

func NewFileService(files *repository.FileRepository, dir string) *FileService {
	return &FileService{files: files, dir: dir}
}

// Upload stores the bytes content-addressed by sha256. Re-uploading
// identical bytes returns the existing record without writing a second
// copy; linking is O(1) metadata work once the hash exists.
func (s *FileService) Upload(owner *model.User, contentType string, data []byte) (*AttachmentInfo, error) {
	if len(data) == 0 {
		return nil, errInvalidOperation("file is empty")
	}

	sha256Hex := utils.Sha256Hex(data)
	existing, err := s.files.FindBySha256(sha256Hex)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		info := fileInfo(existing)
		return &info, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s-%s", sha256Hex, time.Now().Format("20060102150405.000"))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	height, width := extractDimensions(data, contentType)

	file := &model.AppFile{
		OwnerID:    owner.ID,
		FilePath:   path,
		Sha256Hash: sha256Hex,
		CustomHash: utils.ObfuscatedFileName(name),
		MimeType:   contentType,
		Size:       int64(len(data)),
		Height:     height,
		Width:      width,
	}
	if err := s.files.Create(file); err != nil {
		return nil, err
	}

	info := fileInfo(file)
	return &info, nil
}

// Resolve maps a public content hash to its file record.
func (s *FileService) Resolve(customHash string) (*model.AppFile, error) {
	file, err := s.files.FindByCustomHash(customHash)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, errFileNotFound(customHash)
	}
	return file, nil
}

// Read returns the stored bytes for a resolved file.
func (s *FileService) Read(file *model.AppFile) ([]byte, error) {
	return os.ReadFile(file.FilePath)
}

func fileInfo(f *model.AppFile) AttachmentInfo {
	return AttachmentInfo{
		CustomHash: f.CustomHash,
		MimeType:   f.MimeType,
		Size:       f.Size,
		Duration:   f.Duration,
		Height:     f.Height,
		Width:      f.Width,
	}
}

func extractDimensions(data []byte, contentType string) (height, width *int) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil
	}
	return &cfg.Height, &cfg.Width
}
