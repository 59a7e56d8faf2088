package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrFileNotFound = errors.New("file not found")

type StorageService interface {
	SaveUpload(data []byte, ext string) (string, string, error)
	SaveOutput(id uuid.UUID, format string, ext string, data []byte) (string, error)
	GetOutputPath(filename string) (string, error)
	DeleteFile(path string) error
	EnsureDirs() error
	Sweep(olderThan time.Time) (int, error)
}

type storageService struct {
	uploadPath string
	outputPath string
}

func NewStorageService(uploadPath, outputPath string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
		outputPath: outputPath,
	}
}

func (s *storageService) EnsureDirs() error {
	for _, dir := range []string{s.uploadPath, s.outputPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return nil
}

// SaveUpload stores an uploaded résumé under a generated name and returns the
// name and full path.
func (s *storageService) SaveUpload(data []byte, ext string) (string, string, error) {
	uniqueFilename := fmt.Sprintf("%s_%s%s", "resume", uuid.New().String(), strings.ToLower(ext))
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}
	return uniqueFilename, filePath, nil
}

// SaveOutput stores one rendering. The format is part of the name so two
// formats sharing an extension never collide.
func (s *storageService) SaveOutput(id uuid.UUID, format string, ext string, data []byte) (string, error) {
	filename := fmt.Sprintf("%s_%s%s", format, id.String(), ext)
	if err := os.WriteFile(filepath.Join(s.outputPath, filename), data, 0644); err != nil {
		return "", fmt.Errorf("failed to save rendering: %w", err)
	}
	return filename, nil
}

// GetOutputPath resolves a stored rendering by bare file name.
func (s *storageService) GetOutputPath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", ErrFileNotFound
	}

	path := filepath.Join(s.outputPath, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrFileNotFound
	}
	return path, nil
}

func (s *storageService) DeleteFile(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Sweep removes uploads and renderings last modified before olderThan.
func (s *storageService) Sweep(olderThan time.Time) (int, error) {
	removed := 0
	var errs []error
	for _, dir := range []string{s.uploadPath, s.outputPath} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("failed to list %s: %w", dir, err))
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil || !info.ModTime().Before(olderThan) {
				continue
			}
			if err := s.DeleteFile(filepath.Join(dir, entry.Name())); err != nil {
				errs = append(errs, err)
				continue
			}
			removed++
		}
	}
	return removed, errors.Join(errs...)
}
